// Package testutil provides shared helpers for tests across the module.
package testutil

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaultfs/vcrypt/internal/events"
)

// NewTestLogger creates a debug-level logger whose output goes to a buffer
// that is never read, so all output is discarded.
func NewTestLogger() *events.Logger {
	var buf bytes.Buffer
	return events.NewTestLogger(events.DebugLevel, "json", &buf)
}

// RandomBytes returns n cryptographically random bytes, failing the test on error.
func RandomBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

// TempVaultDir creates an empty directory for a scratch vault and registers cleanup.
func TempVaultDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}
