package cryptoengine_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultfs/vcrypt/internal/cryptoengine"
)

func TestEncryptDecryptMasterKeyRoundTrip(t *testing.T) {
	c, err := cryptoengine.New(cryptoengine.WithScryptParams(1<<10, 8))
	require.NoError(t, err)

	var keyFile bytes.Buffer
	require.NoError(t, c.EncryptMasterKey(&keyFile, "correct horse battery staple"))

	loaded, err := cryptoengine.New(cryptoengine.WithScryptParams(1<<10, 8))
	require.NoError(t, err)
	require.NoError(t, loaded.DecryptMasterKey(bytes.NewReader(keyFile.Bytes()), "correct horse battery staple"))

	name, err := c.EncryptFilename("diary.md")
	require.NoError(t, err)
	decoded, err := loaded.DecryptFilename(name)
	require.NoError(t, err)
	assert.Equal(t, "diary.md", decoded)
}

func TestDecryptMasterKeyWrongPassword(t *testing.T) {
	c, err := cryptoengine.New(cryptoengine.WithScryptParams(1<<10, 8))
	require.NoError(t, err)

	var keyFile bytes.Buffer
	require.NoError(t, c.EncryptMasterKey(&keyFile, "swordfish"))

	loaded, err := cryptoengine.New()
	require.NoError(t, err)
	err = loaded.DecryptMasterKey(bytes.NewReader(keyFile.Bytes()), "not-swordfish")
	assert.ErrorIs(t, err, cryptoengine.ErrWrongPassword)
}

func TestDecryptMasterKeyRejectsFutureVersion(t *testing.T) {
	c, err := cryptoengine.New(cryptoengine.WithScryptParams(1<<10, 8))
	require.NoError(t, err)

	var keyFile bytes.Buffer
	require.NoError(t, c.EncryptMasterKey(&keyFile, "swordfish"))

	tampered := bytes.ReplaceAll(keyFile.Bytes(), []byte(`"version":1`), []byte(`"version":99`))
	require.NotEqual(t, keyFile.Bytes(), tampered, "fixture must actually contain the version field")

	loaded, err := cryptoengine.New()
	require.NoError(t, err)
	err = loaded.DecryptMasterKey(bytes.NewReader(tampered), "swordfish")

	var unsupported *cryptoengine.UnsupportedVaultError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, 99, unsupported.StoredVersion)
}

func TestDecryptMasterKeyRejectsMalformedKeyFile(t *testing.T) {
	loaded, err := cryptoengine.New()
	require.NoError(t, err)
	err = loaded.DecryptMasterKey(bytes.NewReader([]byte("not json")), "whatever")
	assert.Error(t, err)
}
