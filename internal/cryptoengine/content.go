package cryptoengine

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"hash"
)

// blockCounter returns the 16-byte CTR counter block for content block
// index within a file whose content nonce is nonce: the upper 8 bytes are
// the nonce, the lower 8 bytes are blockIndex * (ContentMACBlock /
// AESBlockLength), matching the fixed relationship between plaintext chunk
// size and AES block size.
func blockCounter(nonce [nonceLength]byte, blockIndex uint64) [AESBlockLength]byte {
	var ctr [AESBlockLength]byte
	copy(ctr[:nonceLength], nonce[:])
	binary.BigEndian.PutUint64(ctr[nonceLength:], blockIndex*(ContentMACBlock/AESBlockLength))
	return ctr
}

// newBlockStream returns an AES-CTR stream positioned at the start of
// blockIndex, ready to encrypt or decrypt exactly that block's bytes.
func newBlockStream(fileKey []byte, nonce [nonceLength]byte, blockIndex uint64) (cipher.Stream, error) {
	block, err := aes.NewCipher(fileKey)
	if err != nil {
		return nil, &IllegalStateError{Reason: "content cipher: " + err.Error()}
	}
	ctr := blockCounter(nonce, blockIndex)
	return cipher.NewCTR(block, ctr[:]), nil
}

// newBlockMAC returns an HMAC instance to compute or verify a content
// block's tag: HMAC(macKey, headerIV || beU64(blockIndex) || ciphertext).
// Binding headerIV prevents swapping blocks between files sharing a mac
// key; binding the index prevents reordering within one file.
func newBlockMAC(macKey []byte, headerIV [headerIVLength]byte, blockIndex uint64) hash.Hash {
	h := hmac.New(sha256.New, macKey)
	h.Write(headerIV[:])
	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], blockIndex)
	h.Write(idx[:])
	return h
}

// computeBlockMAC is a convenience wrapper for one-shot MAC computation.
func computeBlockMAC(macKey []byte, headerIV [headerIVLength]byte, blockIndex uint64, ciphertext []byte) []byte {
	h := newBlockMAC(macKey, headerIV, blockIndex)
	h.Write(ciphertext)
	return h.Sum(nil)
}
