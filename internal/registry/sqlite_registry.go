package registry

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vaultfs/vcrypt/internal/events"
	"github.com/vaultfs/vcrypt/internal/models"
)

// SQLiteRegistry implements SQLite-based registry storage.
type SQLiteRegistry struct {
	db     *sql.DB
	logger *events.Logger

	mu    sync.RWMutex
	locks map[string]*sync.Mutex
}

// NewSQLiteRegistry creates a SQLite-based registry store.
func NewSQLiteRegistry(dbPath string, logger *events.Logger) (*SQLiteRegistry, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &SQLiteRegistry{
		db:     db,
		logger: logger.WithField("component", "sqlite_registry"),
		locks:  make(map[string]*sync.Mutex),
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	return store, nil
}

func (s *SQLiteRegistry) initialize() error {
	schema := `
    CREATE TABLE IF NOT EXISTS vault_records (
        vault_id TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        path TEXT NOT NULL,
        key_file_checksum TEXT NOT NULL,
        last_opened TIMESTAMP,
        created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
        updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS schema_info (
        version INTEGER PRIMARY KEY
    );

    INSERT OR IGNORE INTO schema_info (version) VALUES (?);
    `

	if _, err := s.db.Exec(schema, CurrentSchemaVersion); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

// Load retrieves a vault record from the database.
func (s *SQLiteRegistry) Load(vaultID string) (*models.VaultRecord, error) {
	s.logger.WithField("vault_id", vaultID).Debug("Loading vault record from SQLite")

	record := &models.VaultRecord{ID: vaultID}
	var lastOpened sql.NullTime

	err := s.db.QueryRow(`
        SELECT name, path, key_file_checksum, last_opened, created_at, updated_at
        FROM vault_records
        WHERE vault_id = ?
    `, vaultID).Scan(&record.Name, &record.Path, &record.KeyFileChecksum, &lastOpened, &record.CreatedAt, &record.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query record: %w", err)
	}

	if lastOpened.Valid {
		record.LastOpened = lastOpened.Time
	}

	return record, nil
}

// Save persists a vault record to the database.
func (s *SQLiteRegistry) Save(vaultID string, record *models.VaultRecord) error {
	s.logger.WithFields(map[string]interface{}{
		"vault_id": vaultID,
		"path":     record.Path,
	}).Debug("Saving vault record to SQLite")

	_, err := s.db.Exec(`
        INSERT INTO vault_records (vault_id, name, path, key_file_checksum, last_opened, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(vault_id) DO UPDATE SET
            name = excluded.name,
            path = excluded.path,
            key_file_checksum = excluded.key_file_checksum,
            last_opened = excluded.last_opened,
            updated_at = CURRENT_TIMESTAMP
    `, vaultID, record.Name, record.Path, record.KeyFileChecksum, record.LastOpened, record.CreatedAt)

	if err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}

	return nil
}

// Remove deletes a vault's registry record.
func (s *SQLiteRegistry) Remove(vaultID string) error {
	s.logger.WithField("vault_id", vaultID).Info("Removing vault record from SQLite")

	_, err := s.db.Exec("DELETE FROM vault_records WHERE vault_id = ?", vaultID)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	return nil
}

// List returns all known vault IDs.
func (s *SQLiteRegistry) List() ([]string, error) {
	rows, err := s.db.Query("SELECT vault_id FROM vault_records ORDER BY vault_id")
	if err != nil {
		return nil, fmt.Errorf("query vaults: %w", err)
	}
	defer rows.Close()

	var vaultIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan vault ID: %w", err)
		}
		vaultIDs = append(vaultIDs, id)
	}

	return vaultIDs, rows.Err()
}

// Lock acquires a lock for a vault.
func (s *SQLiteRegistry) Lock(vaultID string) (UnlockFunc, error) {
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

// Migrate is implemented by JSONRegistry; SQLite is always the migration
// target, never the source.
func (s *SQLiteRegistry) Migrate(target Registry) error {
	return fmt.Errorf("migrate from SQLite not implemented")
}

// Close closes the database.
func (s *SQLiteRegistry) Close() error {
	return s.db.Close()
}
