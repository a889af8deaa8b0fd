package cryptoengine

import (
	"crypto/rand"
)

// masterKeys holds the vault's long-lived key pair: a 256-bit AES key for
// content and filenames, and a 256-bit HMAC-SHA256 key. Both keys are
// either live or zeroized together; see zero.
type masterKeys struct {
	primary []byte
	mac     []byte
}

// newRandomMasterKeys generates a fresh key pair from the system PRNG, used
// when a Cryptor is constructed in the Fresh state.
func newRandomMasterKeys() (*masterKeys, error) {
	mk := &masterKeys{
		primary: make([]byte, MasterKeyLength),
		mac:     make([]byte, MasterKeyLength),
	}
	if _, err := rand.Read(mk.primary); err != nil {
		return nil, err
	}
	if _, err := rand.Read(mk.mac); err != nil {
		return nil, err
	}
	return mk, nil
}

// clone returns a copy so a worker pool can hold its own reference without
// racing the facade's zeroization.
func (mk *masterKeys) clone() *masterKeys {
	c := &masterKeys{
		primary: make([]byte, len(mk.primary)),
		mac:     make([]byte, len(mk.mac)),
	}
	copy(c.primary, mk.primary)
	copy(c.mac, mk.mac)
	return c
}

// zero overwrites both keys in place. Best-effort: Go cannot guarantee the
// compiler won't have copied the backing array elsewhere, but this is the
// same best-effort discipline the spec allows for platforms that can't
// guarantee zeroization of a protected key object.
func (mk *masterKeys) zero() {
	zeroBytes(mk.primary)
	zeroBytes(mk.mac)
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// sivKeyMaterial builds the 64-byte key tink's AES-SIV primitive expects:
// the two halves of SIV's internal S2V/CTR split, derived deterministically
// from the two master keys so filename encryption only ever depends on
// (primary, mac, name) as spec.md requires.
func (mk *masterKeys) sivKeyMaterial() []byte {
	key := make([]byte, 0, 2*MasterKeyLength)
	key = append(key, mk.mac...)
	key = append(key, mk.primary...)
	return key
}
