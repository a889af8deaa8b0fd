package cryptoengine

import "crypto/hmac"

// newDecryptProcessor returns a batchProcessor that verifies each block's
// MAC (when authenticate is true) before decrypting it, as spec.md
// requires: MAC-then-decrypt enforces integrity before any plaintext is
// released. A MAC mismatch aborts the whole batch with ErrMacAuthFailed
// tagged to the failing block.
func newDecryptProcessor(fileKey []byte, nonce [nonceLength]byte, macKey []byte, headerIV [headerIVLength]byte, authenticate bool) batchProcessor {
	return func(batch blocksData) ([]byte, error) {
		stream, err := newBlockStream(fileKey, nonce, batch.firstBlockIndex)
		if err != nil {
			return nil, err
		}

		out := make([]byte, 0, len(batch.data))
		offset := 0
		for j := 0; j < batch.blockCount; j++ {
			blockIndex := batch.firstBlockIndex + uint64(j)
			clen := batch.blockLens[j]
			chunk := batch.data[offset : offset+clen]
			storedMAC := batch.data[offset+clen : offset+clen+MACLength]

			if authenticate {
				expected := computeBlockMAC(macKey, headerIV, blockIndex, chunk)
				if !hmac.Equal(expected, storedMAC) {
					return nil, &workerError{blockIndex: blockIndex, err: ErrMacAuthFailed}
				}
			}

			plain := make([]byte, clen)
			stream.XORKeyStream(plain, chunk)
			out = append(out, plain...)
			offset += clen + MACLength
		}
		return out, nil
	}
}
