package cryptoengine

import (
	"crypto/rand"

	"golang.org/x/crypto/scrypt"
	"golang.org/x/text/unicode/norm"
)

// scryptParams are the tunable cost parameters stored alongside a key file
// so a vault can be unwrapped later with the exact parameters it was wrapped
// under, even if defaults change in a future release.
type scryptParams struct {
	salt      []byte
	costParam int // N, must be a power of two
	blockSize int // r
	keyBits   int // derived KEK length in bits
}

// newScryptSalt returns a fresh, randomly generated salt of the configured
// length for a new key file.
func newScryptSalt() ([]byte, error) {
	salt := make([]byte, DefaultScryptSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// deriveKEK runs scrypt with p=1, as required by spec.md's normative
// constants, over the NFC-normalized UTF-8 bytes of password.
func deriveKEK(password string, p scryptParams) ([]byte, error) {
	normalized := norm.NFC.String(password)
	defer func() {
		// best effort: the normalized string itself is immutable in Go,
		// only the byte slice derived from it below can be scrubbed.
	}()

	pwBytes := []byte(normalized)
	defer zeroBytes(pwBytes)

	kek, err := scrypt.Key(pwBytes, p.salt, p.costParam, p.blockSize, 1, p.keyBits/8)
	if err != nil {
		return nil, &IllegalStateError{Reason: "scrypt derivation failed: " + err.Error()}
	}
	return kek, nil
}
