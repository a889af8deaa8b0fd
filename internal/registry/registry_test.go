package registry_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultfs/vcrypt/internal/events"
	"github.com/vaultfs/vcrypt/internal/models"
	"github.com/vaultfs/vcrypt/internal/registry"
)

func TestJSONRegistry(t *testing.T) {
	tmpDir := t.TempDir()
	var buf bytes.Buffer
	logger := events.NewTestLogger(events.DebugLevel, "json", &buf)

	reg, err := registry.NewJSONRegistry(tmpDir, logger)
	require.NoError(t, err)
	defer reg.Close()

	testRegistryOperations(t, reg)
}

func TestSQLiteRegistry(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "registry.db")
	var buf bytes.Buffer
	logger := events.NewTestLogger(events.DebugLevel, "json", &buf)

	reg, err := registry.NewSQLiteRegistry(dbPath, logger)
	require.NoError(t, err)
	defer reg.Close()

	testRegistryOperations(t, reg)
}

func testRegistryOperations(t *testing.T, reg registry.Registry) {
	vaultID := "test-vault-123"

	t.Run("load non-existent", func(t *testing.T) {
		_, err := reg.Load(vaultID)
		assert.ErrorIs(t, err, registry.ErrRecordNotFound)
	})

	t.Run("save and load", func(t *testing.T) {
		record := &models.VaultRecord{
			ID:              vaultID,
			Name:            "My Notes",
			Path:            "/home/user/vaults/notes",
			KeyFileChecksum: "abc123",
			CreatedAt:       time.Now().UTC().Truncate(time.Second),
			UpdatedAt:       time.Now().UTC().Truncate(time.Second),
		}

		err := reg.Save(vaultID, record)
		require.NoError(t, err)

		loaded, err := reg.Load(vaultID)
		require.NoError(t, err)

		assert.Equal(t, record.Name, loaded.Name)
		assert.Equal(t, record.Path, loaded.Path)
		assert.Equal(t, record.KeyFileChecksum, loaded.KeyFileChecksum)
	})

	t.Run("update existing", func(t *testing.T) {
		record1 := &models.VaultRecord{
			ID:              vaultID,
			Name:            "Original Name",
			Path:            "/vaults/original",
			KeyFileChecksum: "hash1",
			CreatedAt:       time.Now().UTC(),
			UpdatedAt:       time.Now().UTC(),
		}
		require.NoError(t, reg.Save(vaultID, record1))

		record2 := &models.VaultRecord{
			ID:              vaultID,
			Name:            "Renamed",
			Path:            "/vaults/moved",
			KeyFileChecksum: "hash2",
			CreatedAt:       record1.CreatedAt,
			UpdatedAt:       time.Now().UTC(),
		}
		require.NoError(t, reg.Save(vaultID, record2))

		loaded, err := reg.Load(vaultID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", loaded.Name)
		assert.Equal(t, "/vaults/moved", loaded.Path)
		assert.Equal(t, "hash2", loaded.KeyFileChecksum)
	})

	t.Run("list vaults", func(t *testing.T) {
		err := reg.Save("vault-456", &models.VaultRecord{
			ID:        "vault-456",
			Name:      "Second Vault",
			Path:      "/vaults/second",
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		})
		require.NoError(t, err)

		vaultIDs, err := reg.List()
		require.NoError(t, err)

		assert.Contains(t, vaultIDs, vaultID)
		assert.Contains(t, vaultIDs, "vault-456")
		assert.GreaterOrEqual(t, len(vaultIDs), 2)
	})

	t.Run("remove vault", func(t *testing.T) {
		err := reg.Remove(vaultID)
		require.NoError(t, err)

		_, err = reg.Load(vaultID)
		assert.ErrorIs(t, err, registry.ErrRecordNotFound)

		_, err = reg.Load("vault-456")
		assert.NoError(t, err)
	})

	t.Run("concurrent locking", func(t *testing.T) {
		unlock1, err := reg.Lock("lock-test")
		require.NoError(t, err)

		done := make(chan bool)
		go func() {
			unlock2, err := reg.Lock("lock-test")
			if err == nil {
				defer unlock2()
			}
			done <- (err == nil)
		}()

		select {
		case success := <-done:
			if success {
				t.Error("second lock acquired too quickly")
			}
		case <-time.After(100 * time.Millisecond):
		}

		unlock1()

		select {
		case success := <-done:
			if !success {
				t.Error("second lock failed after first was released")
			}
		case <-time.After(1 * time.Second):
			t.Error("second lock never acquired")
		}
	})
}

func TestJSONRegistryCorruption(t *testing.T) {
	tmpDir := t.TempDir()
	var buf bytes.Buffer
	logger := events.NewTestLogger(events.DebugLevel, "json", &buf)

	reg, err := registry.NewJSONRegistry(tmpDir, logger)
	require.NoError(t, err)

	vaultID := "corrupt-test"

	err = reg.Save(vaultID, &models.VaultRecord{
		ID:        vaultID,
		Name:      "Corrupt Candidate",
		Path:      "/vaults/corrupt",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	recordPath := filepath.Join(tmpDir, vaultID+".json")
	err = os.WriteFile(recordPath, []byte("invalid json"), 0600)
	require.NoError(t, err)

	_, err = reg.Load(vaultID)
	assert.ErrorIs(t, err, registry.ErrRecordCorrupt)
}

func TestJSONRegistryBackupRecovery(t *testing.T) {
	tmpDir := t.TempDir()
	var buf bytes.Buffer
	logger := events.NewTestLogger(events.DebugLevel, "json", &buf)

	reg, err := registry.NewJSONRegistry(tmpDir, logger)
	require.NoError(t, err)
	defer reg.Close()

	vaultID := "backup-test"

	initial := &models.VaultRecord{
		ID:        vaultID,
		Name:      "Initial",
		Path:      "/vaults/initial",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, reg.Save(vaultID, initial))

	updated := &models.VaultRecord{
		ID:        vaultID,
		Name:      "Updated",
		Path:      "/vaults/updated",
		CreatedAt: initial.CreatedAt,
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, reg.Save(vaultID, updated))

	loaded, err := reg.Load(vaultID)
	require.NoError(t, err)
	assert.Equal(t, "Updated", loaded.Name)

	mainPath := filepath.Join(tmpDir, vaultID+".json")
	err = os.WriteFile(mainPath, []byte("corrupted"), 0600)
	require.NoError(t, err)

	recovered, err := reg.Load(vaultID)
	require.NoError(t, err)
	assert.Equal(t, "Initial", recovered.Name)
}

func TestRegistryMigration(t *testing.T) {
	tmpDir := t.TempDir()
	var buf bytes.Buffer
	logger := events.NewTestLogger(events.DebugLevel, "json", &buf)

	jsonReg, err := registry.NewJSONRegistry(filepath.Join(tmpDir, "json"), logger)
	require.NoError(t, err)
	defer jsonReg.Close()

	vaultIDs := []string{"vault1", "vault2", "vault3"}
	for i, vaultID := range vaultIDs {
		err = jsonReg.Save(vaultID, &models.VaultRecord{
			ID:        vaultID,
			Name:      vaultID,
			Path:      filepath.Join("/vaults", vaultID),
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		})
		require.NoError(t, err, "save vault %d", i)
	}

	sqliteReg, err := registry.NewSQLiteRegistry(filepath.Join(tmpDir, "registry.db"), logger)
	require.NoError(t, err)
	defer sqliteReg.Close()

	err = jsonReg.Migrate(sqliteReg)
	require.NoError(t, err)

	migrated, err := sqliteReg.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, vaultIDs, migrated)
}

func TestMockRegistry(t *testing.T) {
	reg := registry.NewMockRegistry()

	_, err := reg.Load("missing")
	assert.ErrorIs(t, err, registry.ErrRecordNotFound)

	record := &models.VaultRecord{ID: "v1", Name: "Mock Vault", Path: "/vaults/mock"}
	require.NoError(t, reg.Save("v1", record))

	loaded, err := reg.Load("v1")
	require.NoError(t, err)
	assert.Equal(t, "Mock Vault", loaded.Name)

	vaultIDs, err := reg.List()
	require.NoError(t, err)
	assert.Contains(t, vaultIDs, "v1")

	require.NoError(t, reg.Remove("v1"))
	_, err = reg.Load("v1")
	assert.ErrorIs(t, err, registry.ErrRecordNotFound)
}
