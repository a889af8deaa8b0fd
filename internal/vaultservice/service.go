// Package vaultservice orchestrates vault lifecycle and directory-level
// encrypt/decrypt operations on top of cryptoengine.Cryptor, the vault
// registry, and local storage. It owns no key material beyond what a
// cached, unlocked Cryptor already holds.
package vaultservice

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/vaultfs/vcrypt/internal/cryptoengine"
	"github.com/vaultfs/vcrypt/internal/events"
	"github.com/vaultfs/vcrypt/internal/models"
	"github.com/vaultfs/vcrypt/internal/registry"
	"github.com/vaultfs/vcrypt/internal/storage"
)

// keyFileName is the name of the password-wrapped key file at the root of
// every vault directory.
const keyFileName = "vault.key"

// cipherRootName is the subdirectory holding the encrypted tree.
const cipherRootName = "d"

// Service manages vault creation, unlocking, and directory encryption.
type Service struct {
	registry       registry.Registry
	logger         *events.Logger
	shardSeparator string

	// treeConcurrency bounds how many directory entries EncryptDirectory and
	// DecryptDirectory process at once within a single directory level.
	treeConcurrency int

	mu       sync.Mutex
	cryptors map[string]*cryptoengine.Cryptor
}

// NewService creates a vault service backed by reg for registry persistence.
// shardSeparator is inserted between a directory's two-character shard
// prefix and the remainder of its encrypted name; "/" matches the on-disk
// layout EncryptDirectoryPath is documented to produce.
func NewService(reg registry.Registry, logger *events.Logger, shardSeparator string) *Service {
	if shardSeparator == "" {
		shardSeparator = "/"
	}
	return &Service{
		registry:        reg,
		logger:          logger.WithField("service", "vaults"),
		shardSeparator:  shardSeparator,
		treeConcurrency: runtime.GOMAXPROCS(0),
		cryptors:        make(map[string]*cryptoengine.Cryptor),
	}
}

// CreateVault initializes a new vault at path: generates fresh master keys,
// wraps them under password into path/vault.key, creates the empty
// encrypted root, and registers the vault. It returns the new registry
// record; the vault's Cryptor is cached and immediately usable for
// EncryptDirectory.
func (s *Service) CreateVault(name, path, password string, opts ...cryptoengine.Option) (*models.VaultRecord, error) {
	s.logger.WithFields(map[string]interface{}{"name": name, "path": path}).Info("Creating vault")

	blobs, err := storage.NewLocalStore(path, s.logger)
	if err != nil {
		return nil, fmt.Errorf("create vault directory: %w", err)
	}
	if err := blobs.EnsureDir(cipherRootName); err != nil {
		return nil, fmt.Errorf("create cipher root: %w", err)
	}

	cryptor, err := cryptoengine.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("generate master keys: %w", err)
	}

	var buf bytes.Buffer
	if err := cryptor.EncryptMasterKey(&buf, password); err != nil {
		cryptor.Destroy()
		return nil, fmt.Errorf("wrap master key: %w", err)
	}

	if err := blobs.Write(keyFileName, buf.Bytes(), 0600); err != nil {
		cryptor.Destroy()
		return nil, fmt.Errorf("write key file: %w", err)
	}

	vaultID, err := newRandomID()
	if err != nil {
		cryptor.Destroy()
		return nil, err
	}

	now := vaultTimeNow()
	record := &models.VaultRecord{
		ID:              vaultID,
		Name:            name,
		Path:            path,
		KeyFileChecksum: checksumHex(buf.Bytes()),
		LastOpened:      now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.registry.Save(vaultID, record); err != nil {
		cryptor.Destroy()
		return nil, fmt.Errorf("save registry record: %w", err)
	}

	s.mu.Lock()
	s.cryptors[vaultID] = cryptor
	s.mu.Unlock()

	return record, nil
}

// OpenVault loads a vault's registry record, reads and unwraps its key
// file under password, and caches the resulting Cryptor. Returns
// cryptoengine.ErrWrongPassword unchanged if password is incorrect.
func (s *Service) OpenVault(vaultID, password string, opts ...cryptoengine.Option) (*models.VaultRecord, error) {
	record, err := s.registry.Load(vaultID)
	if err != nil {
		return nil, fmt.Errorf("load registry record: %w", err)
	}

	blobs, err := storage.NewLocalStore(record.Path, s.logger)
	if err != nil {
		return nil, fmt.Errorf("open vault directory: %w", err)
	}

	keyData, err := blobs.Read(keyFileName)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	if record.KeyFileChecksum != "" && checksumHex(keyData) != record.KeyFileChecksum {
		s.logger.WithField("vault_id", vaultID).Warn("Key file checksum mismatch; key file was modified outside vcrypt")
	}

	cryptor, err := cryptoengine.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("construct cryptor: %w", err)
	}

	if err := cryptor.DecryptMasterKey(bytes.NewReader(keyData), password); err != nil {
		cryptor.Destroy()
		return nil, err
	}

	record.LastOpened = vaultTimeNow()
	record.KeyFileChecksum = checksumHex(keyData)
	if err := s.registry.Save(vaultID, record); err != nil {
		s.logger.WithError(err).Warn("Failed to update last-opened time")
	}

	s.mu.Lock()
	s.cryptors[vaultID] = cryptor
	s.mu.Unlock()

	s.logger.WithField("vault_id", vaultID).Info("Vault unlocked")

	return record, nil
}

// CloseVault zeroizes and evicts a vault's cached Cryptor. A no-op if the
// vault was never opened.
func (s *Service) CloseVault(vaultID string) {
	s.mu.Lock()
	cryptor, ok := s.cryptors[vaultID]
	delete(s.cryptors, vaultID)
	s.mu.Unlock()

	if ok {
		cryptor.Destroy()
		s.logger.WithField("vault_id", vaultID).Info("Vault locked")
	}
}

// Cryptor returns the cached, unlocked Cryptor for vaultID, or an error if
// the vault has not been opened in this process.
func (s *Service) Cryptor(vaultID string) (*cryptoengine.Cryptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cryptor, ok := s.cryptors[vaultID]
	if !ok {
		return nil, fmt.Errorf("vault %s is not open", vaultID)
	}
	return cryptor, nil
}

// IsOpen reports whether vaultID has a cached, unlocked Cryptor.
func (s *Service) IsOpen(vaultID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.cryptors[vaultID]
	return ok
}

// ListVaults returns every registered vault.
func (s *Service) ListVaults() ([]*models.VaultRecord, error) {
	vaultIDs, err := s.registry.List()
	if err != nil {
		return nil, fmt.Errorf("list vaults: %w", err)
	}

	records := make([]*models.VaultRecord, 0, len(vaultIDs))
	for _, vaultID := range vaultIDs {
		record, err := s.registry.Load(vaultID)
		if err != nil {
			s.logger.WithError(err).WithField("vault_id", vaultID).Warn("Skipping unreadable registry record")
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// ClearCache destroys every cached Cryptor and empties the cache.
func (s *Service) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for vaultID, cryptor := range s.cryptors {
		cryptor.Destroy()
		delete(s.cryptors, vaultID)
	}
}

func checksumHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func newRandomID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func vaultTimeNow() time.Time {
	return time.Now().UTC()
}
