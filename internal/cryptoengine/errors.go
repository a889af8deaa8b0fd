package cryptoengine

import (
	"errors"
	"fmt"
)

// Sentinel errors. Use errors.Is against these, or errors.As against the
// typed errors below when the failure carries extra context.
var (
	// ErrWrongPassword means key-unwrap rejected the derived KEK; retryable.
	ErrWrongPassword = errors.New("cryptoengine: wrong password")

	// ErrDecryptFailed means ciphertext was malformed, a SIV tag was
	// invalid, or a requested range exceeded the file; not retryable.
	ErrDecryptFailed = errors.New("cryptoengine: decryption failed")

	// ErrMacAuthFailed is a subkind of ErrDecryptFailed signaling a header
	// or content MAC mismatch, i.e. possible tampering.
	ErrMacAuthFailed = errors.New("cryptoengine: mac authentication failed")

	// ErrEncryptFailed signals a buffer-sizing failure during CTR update;
	// this indicates a programmer error, not bad input.
	ErrEncryptFailed = errors.New("cryptoengine: encryption failed")

	// ErrDestroyed is returned by any cryptographic operation on a
	// facade that has already been destroyed.
	ErrDestroyed = errors.New("cryptoengine: cryptor has been destroyed")

	// ErrQueueTimeout is returned when a worker batch could not be
	// enqueued within the bounded backpressure interval.
	ErrQueueTimeout = errors.New("cryptoengine: worker queue enqueue timed out")
)

// UnsupportedVaultError reports a key-file version this engine cannot read.
type UnsupportedVaultError struct {
	StoredVersion    int
	SupportedVersion int
}

func (e *UnsupportedVaultError) Error() string {
	return fmt.Sprintf("cryptoengine: unsupported vault version %d (supported: %d)",
		e.StoredVersion, e.SupportedVersion)
}

// UnsupportedKeyLengthError reports a key length this engine cannot unwrap.
type UnsupportedKeyLengthError struct {
	Stored     int
	MaxAllowed int
}

func (e *UnsupportedKeyLengthError) Error() string {
	return fmt.Sprintf("cryptoengine: unsupported key length %d bits (max allowed: %d)",
		e.Stored, e.MaxAllowed)
}

// IllegalStateError represents a programmer error: a fatal assertion about
// algorithm availability or key construction that should never fail in a
// correctly configured build.
type IllegalStateError struct {
	Reason string
}

func (e *IllegalStateError) Error() string {
	return fmt.Sprintf("cryptoengine: illegal state: %s", e.Reason)
}

// workerError is the first error surfaced by the worker executor, tagged
// with the block that failed so callers can log precisely.
type workerError struct {
	blockIndex uint64
	err        error
}

func (e *workerError) Error() string {
	return fmt.Sprintf("block %d: %v", e.blockIndex, e.err)
}

func (e *workerError) Unwrap() error {
	return e.err
}
