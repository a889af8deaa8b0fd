package cryptoengine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultfs/vcrypt/internal/cryptoengine"
)

func TestEncryptFilenameIsDeterministic(t *testing.T) {
	c, err := cryptoengine.New()
	require.NoError(t, err)

	a, err := c.EncryptFilename("projects/todo.md")
	require.NoError(t, err)
	b, err := c.EncryptFilename("projects/todo.md")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	other, err := c.EncryptFilename("projects/todo2.md")
	require.NoError(t, err)
	assert.NotEqual(t, a, other)
}

func TestEncryptFilenameUsesCanonicalAlphabet(t *testing.T) {
	c, err := cryptoengine.New()
	require.NoError(t, err)

	ct, err := c.EncryptFilename("a long enough name to span several siv blocks of ciphertext")
	require.NoError(t, err)

	for _, r := range ct {
		assert.Containsf(t, "0123456789abcdefghijklmnopqrstuv", string(r), "unexpected rune %q in encoded filename", r)
	}
}

func TestDecryptFilenameRejectsForeignCiphertext(t *testing.T) {
	a, err := cryptoengine.New()
	require.NoError(t, err)
	b, err := cryptoengine.New()
	require.NoError(t, err)

	ct, err := a.EncryptFilename("secret.md")
	require.NoError(t, err)

	_, err = b.DecryptFilename(ct)
	assert.ErrorIs(t, err, cryptoengine.ErrDecryptFailed)
}

func TestDecryptFilenameRejectsInvalidAlphabet(t *testing.T) {
	c, err := cryptoengine.New()
	require.NoError(t, err)

	_, err = c.DecryptFilename("not-valid-because-of-the-dash")
	assert.ErrorIs(t, err, cryptoengine.ErrDecryptFailed)
}

func TestEncryptDirectoryPathShardsAndIsDeterministic(t *testing.T) {
	c, err := cryptoengine.New()
	require.NoError(t, err)

	path, err := c.EncryptDirectoryPath("dir-id-0001", "/")
	require.NoError(t, err)

	idx := -1
	for i, r := range path {
		if r == '/' {
			idx = i
			break
		}
	}
	require.NotEqual(t, -1, idx, "expected a shard separator")
	assert.Equal(t, 2, idx)

	again, err := c.EncryptDirectoryPath("dir-id-0001", "/")
	require.NoError(t, err)
	assert.Equal(t, path, again)

	different, err := c.EncryptDirectoryPath("dir-id-0002", "/")
	require.NoError(t, err)
	assert.NotEqual(t, path, different)
}
