package cryptoengine

import (
	"crypto/hmac"
	"crypto/rand"
	"io"
)

// snapshotKeys validates the facade is usable and returns a private copy
// of the master keys so a long-running file operation never races a
// concurrent Destroy.
func (c *Cryptor) snapshotKeys() (*masterKeys, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == stateDestroyed {
		return nil, ErrDestroyed
	}
	return c.keys.clone(), nil
}

// EncryptFile reads all of in, encrypts it under a fresh per-file content
// key, and writes header+content to out starting at offset 0. Returns the
// true plaintext length (post-obfuscation padding is never counted).
func (c *Cryptor) EncryptFile(in io.Reader, out io.WriteSeeker) (int64, error) {
	keys, err := c.snapshotKeys()
	if err != nil {
		return 0, err
	}
	defer keys.zero()

	var iv [headerIVLength]byte
	var nonce [nonceLength]byte
	var fileKey [ContentKeyLength]byte
	if _, err := rand.Read(iv[:]); err != nil {
		return 0, err
	}
	if _, err := rand.Read(nonce[:]); err != nil {
		return 0, err
	}
	if _, err := rand.Read(fileKey[:]); err != nil {
		return 0, err
	}
	defer zeroBytes(fileKey[:])

	if _, err := out.Seek(HeaderLength, io.SeekStart); err != nil {
		return 0, err
	}

	obfs := newLengthObfuscatingReader(in, minObfuscatedLength)
	processor := newEncryptProcessor(fileKey[:], nonce, keys.mac, iv)
	ex := newExecutor(c.workerCount, out, processor)

	blockIndex := uint64(0)
	batchSize := 0
	for {
		batchSize = nextBatchSize(batchSize)
		buf := make([]byte, batchSize*ContentMACBlock)
		n, rerr := io.ReadFull(obfs, buf)
		if rerr != nil && rerr != io.EOF && rerr != io.ErrUnexpectedEOF {
			ex.closeAndWait()
			return 0, rerr
		}
		if n > 0 {
			blockCount := (n + ContentMACBlock - 1) / ContentMACBlock
			batch := blocksData{data: buf[:n], firstBlockIndex: blockIndex, blockCount: blockCount}
			if serr := ex.submit(batch); serr != nil {
				ex.closeAndWait()
				return 0, serr
			}
			blockIndex += uint64(blockCount)
		}
		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			break
		}
	}

	if _, err := ex.closeAndWait(); err != nil {
		return 0, err
	}

	realLength := obfs.RealInputLength()
	header, err := buildHeader(keys.primary, keys.mac, iv, nonce, fileKey, uint64(realLength))
	if err != nil {
		return 0, err
	}
	if _, err := out.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	if _, err := out.Write(header[:]); err != nil {
		return 0, err
	}

	return realLength, nil
}

// DecryptFile parses the header from in, then decrypts the content blocks
// that follow using a worker pool, verifying every block's MAC first when
// authenticate is true. Returns the number of plaintext bytes written to
// out; on any decrypt or MAC failure it returns 0 and the error, never a
// partial count.
func (c *Cryptor) DecryptFile(in io.Reader, out io.Writer, authenticate bool) (int64, error) {
	keys, err := c.snapshotKeys()
	if err != nil {
		return 0, err
	}
	defer keys.zero()

	headerBuf := make([]byte, HeaderLength)
	if _, err := io.ReadFull(in, headerBuf); err != nil {
		return 0, ErrDecryptFailed
	}
	header, err := parseHeader(headerBuf, keys.primary, keys.mac, authenticate)
	if err != nil {
		return 0, err
	}
	defer zeroBytes(header.fileKey[:])

	limiter := newLengthLimitingWriter(out, int64(header.length))
	processor := newDecryptProcessor(header.fileKey[:], header.nonce, keys.mac, header.iv, authenticate)
	ex := newExecutor(c.workerCount, limiter, processor)

	const unit = ContentMACBlock + MACLength
	blockIndex := uint64(0)
	batchSize := 0
	for {
		batchSize = nextBatchSize(batchSize)
		buf := make([]byte, batchSize*unit)
		n, rerr := io.ReadFull(in, buf)
		if rerr != nil && rerr != io.EOF && rerr != io.ErrUnexpectedEOF {
			ex.closeAndWait()
			return 0, rerr
		}
		if n > 0 {
			blockLens, serr := splitContentBlockLengths(n)
			if serr != nil {
				ex.closeAndWait()
				return 0, serr
			}
			batch := blocksData{
				data:            buf[:n],
				firstBlockIndex: blockIndex,
				blockCount:      len(blockLens),
				blockLens:       blockLens,
			}
			if err := ex.submit(batch); err != nil {
				ex.closeAndWait()
				return 0, err
			}
			blockIndex += uint64(len(blockLens))
		}
		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			break
		}
	}

	if _, err := ex.closeAndWait(); err != nil {
		return 0, err
	}

	return limiter.BytesWritten(), nil
}

// splitContentBlockLengths divides n raw bytes (ciphertext+mac pairs) read
// from the content stream into per-block ciphertext lengths. Every block
// but the last is exactly ContentMACBlock bytes of ciphertext; the last may
// be shorter but must leave room for its trailing MAC.
func splitContentBlockLengths(n int) ([]int, error) {
	const unit = ContentMACBlock + MACLength
	var lens []int
	remaining := n
	for remaining > 0 {
		if remaining >= unit {
			lens = append(lens, ContentMACBlock)
			remaining -= unit
			continue
		}
		clen := remaining - MACLength
		if clen <= 0 {
			return nil, ErrDecryptFailed
		}
		lens = append(lens, clen)
		remaining = 0
	}
	return lens, nil
}

// DecryptedContentLength cheaply probes a file's declared plaintext length
// without decrypting any content. ok is false if the source is shorter than
// a full header (too short to have ever held content).
func (c *Cryptor) DecryptedContentLength(in io.Reader) (length int64, ok bool, err error) {
	keys, err := c.snapshotKeys()
	if err != nil {
		return 0, false, err
	}
	defer keys.zero()

	headerBuf := make([]byte, HeaderLength)
	n, rerr := io.ReadFull(in, headerBuf)
	if rerr == io.EOF || rerr == io.ErrUnexpectedEOF || n < HeaderLength {
		return 0, false, nil
	}
	if rerr != nil {
		return 0, false, rerr
	}

	header, err := parseHeader(headerBuf, keys.primary, keys.mac, true)
	if err != nil {
		return 0, false, err
	}
	return int64(header.length), true, nil
}

// DecryptRange decrypts exactly [pos, pos+length) of the plaintext, seeking
// in to the corresponding ciphertext block and running single-threaded, per
// spec.md's asymmetry between streaming decrypt (worker pool) and
// random-access decrypt (single worker). Precondition: pos+length must not
// exceed the file's declared plaintext length.
func (c *Cryptor) DecryptRange(in io.ReadSeeker, out io.Writer, pos, length int64, authenticate bool) (int64, error) {
	keys, err := c.snapshotKeys()
	if err != nil {
		return 0, err
	}
	defer keys.zero()

	if _, err := in.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	headerBuf := make([]byte, HeaderLength)
	if _, err := io.ReadFull(in, headerBuf); err != nil {
		return 0, ErrDecryptFailed
	}
	header, err := parseHeader(headerBuf, keys.primary, keys.mac, authenticate)
	if err != nil {
		return 0, err
	}
	defer zeroBytes(header.fileKey[:])

	if pos < 0 || length <= 0 || pos+length > int64(header.length) {
		return 0, ErrDecryptFailed
	}

	const unit = ContentMACBlock + MACLength
	startBlock := pos / ContentMACBlock
	offsetInBlock := pos % ContentMACBlock
	seekTo := int64(HeaderLength) + startBlock*unit
	if _, err := in.Seek(seekTo, io.SeekStart); err != nil {
		return 0, err
	}

	limiter := newLengthLimitingWriter(out, length)
	blockIndex := uint64(startBlock)
	firstBlock := true

	for limiter.BytesWritten() < length {
		buf := make([]byte, unit)
		n, rerr := io.ReadFull(in, buf)
		if rerr != nil && rerr != io.EOF && rerr != io.ErrUnexpectedEOF {
			return 0, rerr
		}
		if n == 0 {
			break
		}
		clen := n - MACLength
		if clen <= 0 {
			return 0, ErrDecryptFailed
		}
		ciphertext := buf[:clen]
		storedMAC := buf[clen:n]

		if authenticate {
			expected := computeBlockMAC(keys.mac, header.iv, blockIndex, ciphertext)
			if !hmac.Equal(expected, storedMAC) {
				return 0, ErrMacAuthFailed
			}
		}

		stream, err := newBlockStream(header.fileKey[:], header.nonce, blockIndex)
		if err != nil {
			return 0, err
		}
		plain := make([]byte, clen)
		stream.XORKeyStream(plain, ciphertext)

		toWrite := plain
		if firstBlock {
			skip := int(offsetInBlock)
			if skip > len(toWrite) {
				skip = len(toWrite)
			}
			toWrite = toWrite[skip:]
			firstBlock = false
		}
		if len(toWrite) > 0 {
			if _, werr := limiter.Write(toWrite); werr != nil {
				return 0, werr
			}
		}
		blockIndex++

		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			break
		}
	}

	return limiter.BytesWritten(), nil
}
