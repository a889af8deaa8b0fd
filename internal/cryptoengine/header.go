package cryptoengine

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
)

// fileHeader is the 104-byte record prefixed to every encrypted file: see
// the file-format layout in the on-disk constants in constants.go.
type fileHeader struct {
	iv       [headerIVLength]byte
	nonce    [nonceLength]byte
	fileKey  [ContentKeyLength]byte
	length   uint64
	macValid bool // set by parseHeader when authenticate was requested and passed
}

// pkcs7Pad pads data to a multiple of blockSize, as idelchi-gonc's padding
// helper does, used here to grow the 40-byte sensitive block to 48 bytes.
func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+padding)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(padding)
	}
	return out
}

// pkcs7Unpad reverses pkcs7Pad, rejecting malformed padding.
func pkcs7Unpad(data []byte) ([]byte, error) {
	n := len(data)
	if n == 0 {
		return nil, ErrDecryptFailed
	}
	padding := int(data[n-1])
	if padding == 0 || padding > n || padding > aes.BlockSize {
		return nil, ErrDecryptFailed
	}
	for i := n - padding; i < n; i++ {
		if data[i] != byte(padding) {
			return nil, ErrDecryptFailed
		}
	}
	return data[:n-padding], nil
}

// buildHeader assembles and serializes a fresh header: random iv and nonce
// are generated by the caller (encryptFile) so they can also seed the
// content MAC binding and CTR counter respectively.
func buildHeader(primary, mac []byte, iv [headerIVLength]byte, nonce [nonceLength]byte, fileKey [ContentKeyLength]byte, length uint64) ([HeaderLength]byte, error) {
	var out [HeaderLength]byte

	sensitive := make([]byte, 8+ContentKeyLength)
	binary.BigEndian.PutUint64(sensitive[:8], length)
	copy(sensitive[8:], fileKey[:])
	padded := pkcs7Pad(sensitive, AESBlockLength)
	if len(padded) != sensitiveLength {
		return out, &IllegalStateError{Reason: "sensitive block padded to unexpected length"}
	}

	block, err := aes.NewCipher(primary)
	if err != nil {
		return out, &IllegalStateError{Reason: "header cipher: " + err.Error()}
	}
	ciphertext := make([]byte, sensitiveLength)
	cipher.NewCBCEncrypter(block, iv[:]).CryptBlocks(ciphertext, padded)

	copy(out[0:headerIVLength], iv[:])
	copy(out[headerIVLength:headerIVLength+nonceLength], nonce[:])
	copy(out[headerIVLength+nonceLength:headerIVLength+nonceLength+sensitiveLength], ciphertext)

	tag := hmac.New(sha256.New, mac)
	tag.Write(out[:headerIVLength+nonceLength+sensitiveLength])
	copy(out[headerIVLength+nonceLength+sensitiveLength:], tag.Sum(nil))

	return out, nil
}

// parseHeader decodes a 104-byte header. If authenticate is true, the HMAC
// is verified in constant time before the sensitive block is decrypted;
// a mismatch returns ErrMacAuthFailed and no key material is recovered.
func parseHeader(raw []byte, primary, mac []byte, authenticate bool) (*fileHeader, error) {
	if len(raw) != HeaderLength {
		return nil, ErrDecryptFailed
	}

	h := &fileHeader{}
	copy(h.iv[:], raw[0:headerIVLength])
	copy(h.nonce[:], raw[headerIVLength:headerIVLength+nonceLength])
	ciphertext := raw[headerIVLength+nonceLength : headerIVLength+nonceLength+sensitiveLength]
	storedMAC := raw[headerIVLength+nonceLength+sensitiveLength:]

	if authenticate {
		tag := hmac.New(sha256.New, mac)
		tag.Write(raw[:headerIVLength+nonceLength+sensitiveLength])
		if !hmac.Equal(tag.Sum(nil), storedMAC) {
			return nil, ErrMacAuthFailed
		}
		h.macValid = true
	}

	block, err := aes.NewCipher(primary)
	if err != nil {
		return nil, &IllegalStateError{Reason: "header cipher: " + err.Error()}
	}
	plain := make([]byte, sensitiveLength)
	cipher.NewCBCDecrypter(block, h.iv[:]).CryptBlocks(plain, ciphertext)
	unpadded, err := pkcs7Unpad(plain)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	if len(unpadded) != 8+ContentKeyLength {
		return nil, ErrDecryptFailed
	}

	h.length = binary.BigEndian.Uint64(unpadded[:8])
	copy(h.fileKey[:], unpadded[8:])
	return h, nil
}
