package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vaultfs/vcrypt/internal/events"
	"github.com/vaultfs/vcrypt/internal/models"
)

// jsonRecord wraps a VaultRecord with the metadata needed to detect file
// corruption on load.
type jsonRecord struct {
	*models.VaultRecord
	SchemaVersion int    `json:"schema_version"`
	Checksum      string `json:"checksum,omitempty"`
}

// JSONRegistry implements file-based registry storage: one JSON file per
// vault, with a ".backup" copy kept alongside to recover from a corrupted
// write.
type JSONRegistry struct {
	baseDir string
	logger  *events.Logger

	mu    sync.RWMutex
	locks map[string]*sync.Mutex
}

// NewJSONRegistry creates a JSON-based registry store.
func NewJSONRegistry(baseDir string, logger *events.Logger) (*JSONRegistry, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create registry directory: %w", err)
	}

	return &JSONRegistry{
		baseDir: baseDir,
		logger:  logger.WithField("component", "json_registry"),
		locks:   make(map[string]*sync.Mutex),
	}, nil
}

// Load reads a vault record from its JSON file.
func (s *JSONRegistry) Load(vaultID string) (*models.VaultRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.recordPath(vaultID)

	s.logger.WithFields(map[string]interface{}{
		"vault_id": vaultID,
		"path":     path,
	}).Debug("Loading vault record")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, ErrRecordNotFound
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read record file: %w", err)
	}

	var wrapper jsonRecord
	if err := json.Unmarshal(data, &wrapper); err != nil {
		if record, err := s.loadBackup(vaultID); err == nil {
			s.logger.Warn("Loaded vault record from backup due to corruption")
			return record, nil
		}
		return nil, ErrRecordCorrupt
	}

	if wrapper.Checksum != "" {
		calculated := checksumOf(wrapper.VaultRecord, wrapper.SchemaVersion)
		if calculated != wrapper.Checksum {
			s.logger.WithFields(map[string]interface{}{
				"expected": wrapper.Checksum,
				"actual":   calculated,
			}).Error("Vault record checksum mismatch")

			if record, err := s.loadBackup(vaultID); err == nil {
				return record, nil
			}
			return nil, ErrRecordCorrupt
		}
	}

	if wrapper.SchemaVersion != CurrentSchemaVersion {
		s.logger.WithField("version", wrapper.SchemaVersion).Warn("Registry schema version mismatch")
	}

	return wrapper.VaultRecord, nil
}

// Save writes a vault record to its JSON file.
func (s *JSONRegistry) Save(vaultID string, record *models.VaultRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.recordPath(vaultID)

	s.logger.WithFields(map[string]interface{}{
		"vault_id": vaultID,
		"path":     record.Path,
	}).Debug("Saving vault record")

	wrapper := jsonRecord{
		VaultRecord:   record,
		SchemaVersion: CurrentSchemaVersion,
	}
	wrapper.Checksum = checksumOf(record, wrapper.SchemaVersion)

	jsonData, err := json.MarshalIndent(wrapper, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		backupPath := path + ".backup"
		if err := s.copyFile(path, backupPath); err != nil {
			s.logger.WithError(err).Warn("Failed to create backup")
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, jsonData, 0600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if file, err := os.Open(tmpPath); err == nil {
		_ = file.Sync()
		file.Close()
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename record file: %w", err)
	}

	return nil
}

// Remove deletes a vault's registry record.
func (s *JSONRegistry) Remove(vaultID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.WithField("vault_id", vaultID).Info("Removing vault record")

	path := s.recordPath(vaultID)
	backupPath := path + ".backup"

	_ = os.Remove(path)
	_ = os.Remove(backupPath)

	return nil
}

// List returns all vault IDs with a registry record.
func (s *JSONRegistry) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read registry directory: %w", err)
	}

	var vaultIDs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if filepath.Ext(name) == ".json" && !strings.HasSuffix(name, ".backup.json") {
			vaultID := strings.TrimSuffix(name, ".json")
			vaultIDs = append(vaultIDs, vaultID)
		}
	}

	return vaultIDs, nil
}

// Lock acquires a lock for a vault.
func (s *JSONRegistry) Lock(vaultID string) (UnlockFunc, error) {
	s.mu.Lock()
	lock, exists := s.locks[vaultID]
	if !exists {
		lock = &sync.Mutex{}
		s.locks[vaultID] = lock
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		lock.Lock()
		close(done)
	}()

	select {
	case <-done:
		return func() { lock.Unlock() }, nil
	case <-time.After(5 * time.Second):
		return nil, ErrRecordLocked
	}
}

// Migrate transfers every record to another registry.
func (s *JSONRegistry) Migrate(target Registry) error {
	vaultIDs, err := s.List()
	if err != nil {
		return fmt.Errorf("list vaults: %w", err)
	}

	s.logger.WithField("count", len(vaultIDs)).Info("Migrating vault records")

	for _, vaultID := range vaultIDs {
		record, err := s.Load(vaultID)
		if err != nil {
			s.logger.WithError(err).WithField("vault_id", vaultID).Error("Failed to load record")
			continue
		}

		if err := target.Save(vaultID, record); err != nil {
			return fmt.Errorf("save vault %s: %w", vaultID, err)
		}

		s.logger.WithField("vault_id", vaultID).Debug("Migrated vault record")
	}

	return nil
}

// Close releases resources.
func (s *JSONRegistry) Close() error {
	return nil
}

func (s *JSONRegistry) recordPath(vaultID string) string {
	return filepath.Join(s.baseDir, vaultID+".json")
}

func (s *JSONRegistry) loadBackup(vaultID string) (*models.VaultRecord, error) {
	backupPath := s.recordPath(vaultID) + ".backup"

	data, err := os.ReadFile(backupPath)
	if err != nil {
		return nil, err
	}

	var wrapper jsonRecord
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, err
	}

	return wrapper.VaultRecord, nil
}

func (s *JSONRegistry) copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// checksumOf hashes a record's fields with the checksum itself left out,
// so a tampered or truncated file is caught on the next Load.
func checksumOf(record *models.VaultRecord, schemaVersion int) string {
	verification := jsonRecord{VaultRecord: record, SchemaVersion: schemaVersion}
	data, _ := json.Marshal(verification)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
