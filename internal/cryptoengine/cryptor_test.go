package cryptoengine_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultfs/vcrypt/internal/cryptoengine"
)

func TestNewStartsFresh(t *testing.T) {
	c, err := cryptoengine.New()
	require.NoError(t, err)
	assert.False(t, c.IsDestroyed())
}

func TestFreshCryptorCanRoundTripBeforeKeyFile(t *testing.T) {
	c, err := cryptoengine.New()
	require.NoError(t, err)

	ct, err := c.EncryptFilename("notes.md")
	require.NoError(t, err)

	pt, err := c.DecryptFilename(ct)
	require.NoError(t, err)
	assert.Equal(t, "notes.md", pt)
}

func TestDestroyIsIdempotent(t *testing.T) {
	c, err := cryptoengine.New()
	require.NoError(t, err)

	c.Destroy()
	c.Destroy()
	assert.True(t, c.IsDestroyed())
}

func TestOperationsFailAfterDestroy(t *testing.T) {
	c, err := cryptoengine.New()
	require.NoError(t, err)
	c.Destroy()

	_, err = c.EncryptFilename("x")
	assert.ErrorIs(t, err, cryptoengine.ErrDestroyed)

	var out bytes.Buffer
	err = c.EncryptMasterKey(&out, "password")
	assert.ErrorIs(t, err, cryptoengine.ErrDestroyed)
}

func TestWithWorkerCountIgnoresNonPositive(t *testing.T) {
	// The worker count is not visible from outside the package; this checks
	// that a non-positive count is accepted and leaves a live Cryptor.
	c, err := cryptoengine.New(cryptoengine.WithWorkerCount(0))
	require.NoError(t, err)
	assert.False(t, c.IsDestroyed())
}
