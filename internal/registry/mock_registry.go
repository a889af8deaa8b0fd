package registry

import (
	"sync"

	"github.com/vaultfs/vcrypt/internal/models"
)

// MockRegistry provides an in-memory implementation for testing.
type MockRegistry struct {
	mu      sync.RWMutex
	records map[string]*models.VaultRecord
}

// NewMockRegistry creates an in-memory registry.
func NewMockRegistry() *MockRegistry {
	return &MockRegistry{
		records: make(map[string]*models.VaultRecord),
	}
}

// Load returns a copy of the stored record for vaultID.
func (m *MockRegistry) Load(vaultID string) (*models.VaultRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[vaultID]
	if !ok {
		return nil, ErrRecordNotFound
	}

	copy := *record
	return &copy, nil
}

// Save stores a copy of record under vaultID.
func (m *MockRegistry) Save(vaultID string, record *models.VaultRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copy := *record
	m.records[vaultID] = &copy
	return nil
}

// Remove deletes the record for vaultID.
func (m *MockRegistry) Remove(vaultID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, vaultID)
	return nil
}

// List returns all known vault IDs.
func (m *MockRegistry) List() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var vaultIDs []string
	for vaultID := range m.records {
		vaultIDs = append(vaultIDs, vaultID)
	}
	return vaultIDs, nil
}

// SaveRecord stores record directly, bypassing the copy-on-write Save path,
// for test setup.
func (m *MockRegistry) SaveRecord(vaultID string, record *models.VaultRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[vaultID] = record
}

// Lock is a no-op for the mock.
func (m *MockRegistry) Lock(vaultID string) (UnlockFunc, error) {
	return func() {}, nil
}

// Migrate is a no-op for the mock.
func (m *MockRegistry) Migrate(target Registry) error {
	return nil
}

// Close is a no-op for the mock.
func (m *MockRegistry) Close() error {
	return nil
}

// Clear removes every stored record.
func (m *MockRegistry) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[string]*models.VaultRecord)
}
