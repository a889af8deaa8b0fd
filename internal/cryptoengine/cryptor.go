package cryptoengine

import (
	"runtime"
	"sync"

	"github.com/vaultfs/vcrypt/internal/events"
)

// cryptorState is the Fresh -> Loaded -> Destroyed lifecycle of a Cryptor.
type cryptorState int

const (
	stateFresh cryptorState = iota
	stateLoaded
	stateDestroyed
)

// Cryptor is the facade over a vault's master keys. It exposes the public
// operations named in the file-format specification:
// EncryptMasterKey, DecryptMasterKey, EncryptFilename, DecryptFilename,
// EncryptDirectoryPath, EncryptFile, DecryptFile, DecryptRange,
// DecryptedContentLength, and Destroy/IsDestroyed.
//
// A Cryptor is safe for concurrent use by multiple goroutines once Loaded;
// state transitions themselves are serialized by mu.
type Cryptor struct {
	mu    sync.Mutex
	state cryptorState
	keys  *masterKeys

	logger *events.Logger

	scryptCostParam int
	scryptBlockSize int
	workerCount     int
}

// Option configures a Cryptor at construction time.
type Option func(*Cryptor)

// WithScryptParams overrides the default scrypt cost parameters used by
// EncryptMasterKey. N must be a power of two.
func WithScryptParams(costParam, blockSize int) Option {
	return func(c *Cryptor) {
		c.scryptCostParam = costParam
		c.scryptBlockSize = blockSize
	}
}

// WithWorkerCount overrides the default worker pool size (number of CPUs)
// used by EncryptFile and DecryptFile.
func WithWorkerCount(n int) Option {
	return func(c *Cryptor) {
		if n > 0 {
			c.workerCount = n
		}
	}
}

// WithLogger attaches a logger; if omitted, operations log nothing.
func WithLogger(logger *events.Logger) Option {
	return func(c *Cryptor) {
		c.logger = logger
	}
}

// New constructs a Cryptor in the Fresh state with freshly generated master
// keys, ready for an immediate EncryptMasterKey call.
func New(opts ...Option) (*Cryptor, error) {
	keys, err := newRandomMasterKeys()
	if err != nil {
		return nil, err
	}

	c := &Cryptor{
		state:           stateFresh,
		keys:            keys,
		scryptCostParam: DefaultScryptCostParam,
		scryptBlockSize: DefaultScryptBlockSize,
		workerCount:     runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = events.Discard()
	}
	return c, nil
}

// isDestroyed reports whether Destroy has been called. Safe to call from
// any state.
func (c *Cryptor) isDestroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateDestroyed
}

// IsDestroyed reports whether Destroy has been called.
func (c *Cryptor) IsDestroyed() bool {
	return c.isDestroyed()
}

// Destroy zeroizes both master keys and transitions to Destroyed. Idempotent:
// calling Destroy more than once is a no-op after the first call.
func (c *Cryptor) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == stateDestroyed {
		return
	}
	c.keys.zero()
	c.state = stateDestroyed
}
