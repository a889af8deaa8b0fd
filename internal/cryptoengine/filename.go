package cryptoengine

import (
	"bytes"
	"crypto/sha256"
	"strings"

	"github.com/tink-crypto/tink-go/v2/daead"
	"github.com/tink-crypto/tink-go/v2/insecurecleartextkeyset"
	"github.com/tink-crypto/tink-go/v2/keyset"
	aessivpb "github.com/tink-crypto/tink-go/v2/proto/aes_siv_go_proto"
	tinkpb "github.com/tink-crypto/tink-go/v2/proto/tink_go_proto"
	"google.golang.org/protobuf/proto"
)

// filenameAlphabet is the canonical, URL-safe, case-preserving alphabet the
// filename codec uses to render SIV ciphertext as a path-safe string. This
// is a greenfield choice (spec.md's design notes explicitly permit any
// deterministic, lossless, URL-safe alphabet for implementations that do
// not need interop with a pre-existing vault format): base32hex, lowercased,
// with padding stripped since decode always receives full-byte-count input
// reconstructible from length.
const filenameAlphabet = "0123456789abcdefghijklmnopqrstuv"

// encodeFilename renders ciphertext bytes using the canonical alphabet.
func encodeFilename(data []byte) string {
	var sb strings.Builder
	var buf uint32
	var bits uint
	for _, b := range data {
		buf = buf<<8 | uint32(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			sb.WriteByte(filenameAlphabet[(buf>>bits)&0x1f])
		}
	}
	if bits > 0 {
		sb.WriteByte(filenameAlphabet[(buf<<(5-bits))&0x1f])
	}
	return sb.String()
}

var filenameDecodeTable = buildFilenameDecodeTable()

func buildFilenameDecodeTable() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = -1
	}
	for i := 0; i < len(filenameAlphabet); i++ {
		t[filenameAlphabet[i]] = int8(i)
	}
	return t
}

// decodeFilename reverses encodeFilename. Returns ErrDecryptFailed on any
// character outside the canonical alphabet.
func decodeFilename(s string) ([]byte, error) {
	var out bytes.Buffer
	var buf uint32
	var bits uint
	for i := 0; i < len(s); i++ {
		v := filenameDecodeTable[s[i]]
		if v < 0 {
			return nil, ErrDecryptFailed
		}
		buf = buf<<5 | uint32(v)
		bits += 5
		if bits >= 8 {
			bits -= 8
			out.WriteByte(byte(buf >> bits))
		}
	}
	return out.Bytes(), nil
}

// sivHandle builds an in-memory tink keyset handle wrapping raw SIV key
// material, the same construction idelchi's encryption package uses to hand
// raw bytes to tink's AES-SIV implementation without a KMS.
func sivHandle(key []byte) (*keyset.Handle, error) {
	aesSivKey := &aessivpb.AesSivKey{
		Version:  0,
		KeyValue: key,
	}
	serializedKey, err := proto.Marshal(aesSivKey)
	if err != nil {
		return nil, &IllegalStateError{Reason: "marshal siv key: " + err.Error()}
	}

	keyData := &tinkpb.KeyData{
		TypeUrl:         "type.googleapis.com/google.crypto.tink.AesSivKey",
		Value:           serializedKey,
		KeyMaterialType: tinkpb.KeyData_SYMMETRIC,
	}
	ks := &tinkpb.Keyset{
		PrimaryKeyId: 1,
		Key: []*tinkpb.Keyset_Key{{
			KeyData:          keyData,
			Status:           tinkpb.KeyStatusType_ENABLED,
			KeyId:            1,
			OutputPrefixType: tinkpb.OutputPrefixType_RAW,
		}},
	}
	serializedKeyset, err := proto.Marshal(ks)
	if err != nil {
		return nil, &IllegalStateError{Reason: "marshal siv keyset: " + err.Error()}
	}

	handle, err := insecurecleartextkeyset.Read(keyset.NewBinaryReader(bytes.NewReader(serializedKeyset)))
	if err != nil {
		return nil, &IllegalStateError{Reason: "read siv keyset: " + err.Error()}
	}
	return handle, nil
}

func (c *Cryptor) sivPrimitive() (tinkDAEAD, error) {
	handle, err := sivHandle(c.keys.sivKeyMaterial())
	if err != nil {
		return nil, err
	}
	prim, err := daead.New(handle)
	if err != nil {
		return nil, &IllegalStateError{Reason: "construct siv primitive: " + err.Error()}
	}
	return prim, nil
}

// tinkDAEAD narrows tink.DeterministicAEAD to the two methods this package
// uses.
type tinkDAEAD interface {
	EncryptDeterministically(plaintext, associatedData []byte) ([]byte, error)
	DecryptDeterministically(ciphertext, associatedData []byte) ([]byte, error)
}

// EncryptFilename deterministically encrypts a UTF-8 name: AES-SIV under
// the master keys, then the canonical alphabet. Equal names under the same
// keys always produce equal output.
func (c *Cryptor) EncryptFilename(name string) (string, error) {
	if c.isDestroyed() {
		return "", ErrDestroyed
	}
	prim, err := c.sivPrimitive()
	if err != nil {
		return "", err
	}
	ct, err := prim.EncryptDeterministically([]byte(name), nil)
	if err != nil {
		return "", &IllegalStateError{Reason: "siv encrypt: " + err.Error()}
	}
	return encodeFilename(ct), nil
}

// DecryptFilename reverses EncryptFilename. An invalid SIV tag or an
// undecodable ciphertext yields ErrDecryptFailed.
func (c *Cryptor) DecryptFilename(ciphertext string) (string, error) {
	if c.isDestroyed() {
		return "", ErrDestroyed
	}
	raw, err := decodeFilename(ciphertext)
	if err != nil {
		return "", err
	}
	prim, err := c.sivPrimitive()
	if err != nil {
		return "", err
	}
	pt, err := prim.DecryptDeterministically(raw, nil)
	if err != nil {
		return "", ErrDecryptFailed
	}
	return string(pt), nil
}

// EncryptDirectoryPath SIV-encrypts a directory id, hashes the ciphertext
// with SHA-256, canonically encodes the hash, and inserts sep between the
// first two characters and the remainder. This bounds on-disk path length
// and shards each directory's children across 32*32 subdirectories.
func (c *Cryptor) EncryptDirectoryPath(directoryID string, sep string) (string, error) {
	if c.isDestroyed() {
		return "", ErrDestroyed
	}
	prim, err := c.sivPrimitive()
	if err != nil {
		return "", err
	}
	ct, err := prim.EncryptDeterministically([]byte(directoryID), nil)
	if err != nil {
		return "", &IllegalStateError{Reason: "siv encrypt directory id: " + err.Error()}
	}
	sum := sha256.Sum256(ct)
	encoded := encodeFilename(sum[:])
	if len(encoded) < 2 {
		return "", &IllegalStateError{Reason: "encoded directory hash shorter than shard prefix"}
	}
	return encoded[:2] + sep + encoded[2:], nil
}
