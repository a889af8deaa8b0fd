// Package registry tracks known vaults on disk: where each one lives, a
// checksum of its key file (to notice external edits), and when it was
// last opened. It does not hold any cryptographic key material -- only
// cryptoengine.Cryptor does, and only for the lifetime of one open vault.
package registry

import (
	"errors"

	"github.com/vaultfs/vcrypt/internal/models"
)

// Registry manages vault registry persistence.
type Registry interface {
	// Load retrieves the registry record for a vault.
	Load(vaultID string) (*models.VaultRecord, error)

	// Save persists the registry record for a vault.
	Save(vaultID string, record *models.VaultRecord) error

	// Remove deletes all registry state for a vault.
	Remove(vaultID string) error

	// List returns all known vault IDs.
	List() ([]string, error)

	// Lock acquires an exclusive lock for a vault. The JSON and SQLite
	// registries hold it in memory: it excludes other callers in the same
	// process only, not other processes, and gives up with ErrRecordLocked
	// after 5 seconds.
	Lock(vaultID string) (UnlockFunc, error)

	// Migrate transfers every record to another registry.
	Migrate(target Registry) error

	// Close releases resources.
	Close() error
}

// UnlockFunc releases a vault lock.
type UnlockFunc func()

// Errors
var (
	ErrRecordNotFound = errors.New("registry: vault record not found")
	ErrRecordLocked   = errors.New("registry: vault is locked by another operation")
	ErrRecordCorrupt  = errors.New("registry: record is corrupt")
)

// CurrentSchemaVersion for migrations.
const CurrentSchemaVersion = 1
