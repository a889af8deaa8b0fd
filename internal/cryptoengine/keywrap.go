package cryptoengine

import (
	"crypto/aes"
	"io"

	aeswrap "github.com/NickBall/go-aes-key-wrap"
)

// EncryptMasterKey derives a KEK from password via scrypt, wraps both
// master keys under it with RFC 3394 AES key wrap, and writes the
// resulting KeyFile as JSON to out. The plaintext password bytes are
// zeroized inside deriveKEK before this call returns.
func (c *Cryptor) EncryptMasterKey(out io.Writer, password string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == stateDestroyed {
		return ErrDestroyed
	}

	salt, err := newScryptSalt()
	if err != nil {
		return err
	}

	params := scryptParams{
		salt:      salt,
		costParam: c.scryptCostParam,
		blockSize: c.scryptBlockSize,
		keyBits:   DefaultKeyLengthBits,
	}

	kek, err := deriveKEK(password, params)
	if err != nil {
		return err
	}
	defer zeroBytes(kek)

	block, err := aes.NewCipher(kek)
	if err != nil {
		return &IllegalStateError{Reason: "kek cipher construction: " + err.Error()}
	}

	wrappedPrimary, err := aeswrap.Wrap(block, c.keys.primary)
	if err != nil {
		return &IllegalStateError{Reason: "wrap primary key: " + err.Error()}
	}
	wrappedMac, err := aeswrap.Wrap(block, c.keys.mac)
	if err != nil {
		return &IllegalStateError{Reason: "wrap mac key: " + err.Error()}
	}

	kf := &KeyFile{
		Version:          CurrentVersion,
		ScryptSalt:       salt,
		ScryptCostParam:  params.costParam,
		ScryptBlockSize:  params.blockSize,
		KeyLength:        DefaultKeyLengthBits,
		PrimaryMasterKey: wrappedPrimary,
		HMACMasterKey:    wrappedMac,
	}

	return kf.WriteTo(out)
}

// DecryptMasterKey parses a KeyFile from in, derives the KEK with the
// parameters stored inside it, and unwraps both master keys, transitioning
// the Cryptor from Fresh to Loaded on success. Unwrap failures caused by
// key-validation (the wrap check value) are classified as ErrWrongPassword;
// any other unwrap failure is ErrDecryptFailed.
func (c *Cryptor) DecryptMasterKey(in io.Reader, password string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == stateDestroyed {
		return ErrDestroyed
	}

	kf, err := ReadKeyFile(in)
	if err != nil {
		return err
	}

	if kf.Version != CurrentVersion {
		return &UnsupportedVaultError{StoredVersion: kf.Version, SupportedVersion: CurrentVersion}
	}
	if kf.KeyLength > MaxKeyLengthBits {
		return &UnsupportedKeyLengthError{Stored: kf.KeyLength, MaxAllowed: MaxKeyLengthBits}
	}

	params := scryptParams{
		salt:      kf.ScryptSalt,
		costParam: kf.ScryptCostParam,
		blockSize: kf.ScryptBlockSize,
		keyBits:   kf.KeyLength,
	}

	kek, err := deriveKEK(password, params)
	if err != nil {
		return err
	}
	defer zeroBytes(kek)

	block, err := aes.NewCipher(kek)
	if err != nil {
		return &IllegalStateError{Reason: "kek cipher construction: " + err.Error()}
	}

	// A wrapped MasterKeyLength key is always 8 bytes longer; anything else
	// is malformed. For well-formed input, Unwrap can only fail its
	// integrity check, which means the KEK (the password) is wrong.
	if len(kf.PrimaryMasterKey) != MasterKeyLength+8 || len(kf.HMACMasterKey) != MasterKeyLength+8 {
		return ErrDecryptFailed
	}

	primary, err := aeswrap.Unwrap(block, kf.PrimaryMasterKey)
	if err != nil {
		return ErrWrongPassword
	}
	mac, err := aeswrap.Unwrap(block, kf.HMACMasterKey)
	if err != nil {
		zeroBytes(primary)
		return ErrWrongPassword
	}

	c.keys.zero()
	c.keys.primary = primary
	c.keys.mac = mac
	c.state = stateLoaded

	return nil
}
