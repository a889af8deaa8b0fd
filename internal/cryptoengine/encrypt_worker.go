package cryptoengine

// newEncryptProcessor returns a batchProcessor that encrypts a batch's
// plaintext under a continuous AES-CTR stream starting at the batch's
// first block, then emits ciphertext_i || mac_i for each block in order.
// The stream is continuous across the whole batch because content blocks
// are exactly ContentMACBlock/AESBlockLength AES blocks long, so the
// per-block counter offsets spec.md defines line up with uninterrupted CTR
// keystream consumption.
func newEncryptProcessor(fileKey []byte, nonce [nonceLength]byte, macKey []byte, headerIV [headerIVLength]byte) batchProcessor {
	return func(batch blocksData) ([]byte, error) {
		stream, err := newBlockStream(fileKey, nonce, batch.firstBlockIndex)
		if err != nil {
			return nil, err
		}

		ciphertext := make([]byte, len(batch.data))
		stream.XORKeyStream(ciphertext, batch.data)

		out := make([]byte, 0, len(ciphertext)+batch.blockCount*MACLength)
		offset := 0
		for j := 0; j < batch.blockCount; j++ {
			blockIndex := batch.firstBlockIndex + uint64(j)
			blockLen := ContentMACBlock
			if offset+blockLen > len(ciphertext) {
				blockLen = len(ciphertext) - offset
			}
			chunk := ciphertext[offset : offset+blockLen]
			mac := computeBlockMAC(macKey, headerIV, blockIndex, chunk)

			out = append(out, chunk...)
			out = append(out, mac...)
			offset += blockLen
		}
		return out, nil
	}
}
