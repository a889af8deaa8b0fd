package cryptoengine

import (
	"crypto/rand"
	"io"
)

// lengthObfuscatingReader passes through a plaintext input unchanged, and
// once it hits EOF, appends randomized padding until the total delivered
// length reaches minLength. This defeats trivial ciphertext-length
// analysis for very small files; the true length is recovered via
// RealInputLength and stored in the encrypted header so decryptFile can
// discard the padding.
type lengthObfuscatingReader struct {
	src          io.Reader
	minLength    int64
	delivered    int64
	realLength   int64
	sawRealEOF   bool
	padRemaining int64
}

func newLengthObfuscatingReader(src io.Reader, minLength int) *lengthObfuscatingReader {
	return &lengthObfuscatingReader{src: src, minLength: int64(minLength)}
}

func (r *lengthObfuscatingReader) Read(p []byte) (int, error) {
	if !r.sawRealEOF {
		n, err := r.src.Read(p)
		r.delivered += int64(n)
		if err == io.EOF {
			r.sawRealEOF = true
			r.realLength = r.delivered
			r.padRemaining = r.minLength - r.delivered
			if r.padRemaining <= 0 {
				return n, io.EOF
			}
			return n, nil
		}
		return n, err
	}

	if r.padRemaining <= 0 {
		return 0, io.EOF
	}
	toFill := int64(len(p))
	if toFill > r.padRemaining {
		toFill = r.padRemaining
	}
	if _, err := rand.Read(p[:toFill]); err != nil {
		return 0, err
	}
	r.padRemaining -= toFill
	r.delivered += toFill
	if r.padRemaining <= 0 {
		return int(toFill), nil
	}
	return int(toFill), nil
}

// RealInputLength reports the true byte count of the wrapped source,
// valid only after the source itself has reached EOF.
func (r *lengthObfuscatingReader) RealInputLength() int64 {
	return r.realLength
}

// lengthLimitingWriter passes through at most limit bytes to dst and
// silently discards anything beyond it, mirroring how decryptFile truncates
// the length-obfuscator's padding on the way back out.
type lengthLimitingWriter struct {
	dst     io.Writer
	limit   int64
	written int64
}

func newLengthLimitingWriter(dst io.Writer, limit int64) *lengthLimitingWriter {
	return &lengthLimitingWriter{dst: dst, limit: limit}
}

func (w *lengthLimitingWriter) Write(p []byte) (int, error) {
	remaining := w.limit - w.written
	if remaining <= 0 {
		return len(p), nil
	}
	toWrite := p
	if int64(len(p)) > remaining {
		toWrite = p[:remaining]
	}
	n, err := w.dst.Write(toWrite)
	w.written += int64(n)
	if err != nil {
		return n, err
	}
	return len(p), nil
}

// BytesWritten reports how many bytes actually reached dst.
func (w *lengthLimitingWriter) BytesWritten() int64 {
	return w.written
}
