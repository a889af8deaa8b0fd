package models_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vaultfs/vcrypt/internal/models"
)

func TestVaultOpError(t *testing.T) {
	tests := []struct {
		name string
		err  *models.VaultOpError
		want string
	}{
		{
			name: "with path",
			err: &models.VaultOpError{
				Code:    models.ErrCodeDecryption,
				Phase:   "decrypt",
				VaultID: "vault-123",
				Path:    "notes/test.md",
				Err:     errors.New("key derivation failed"),
			},
			want: "vault decrypt [DECRYPTION_ERROR]: vault vault-123: notes/test.md: key derivation failed",
		},
		{
			name: "without path",
			err: &models.VaultOpError{
				Code:    models.ErrCodeRegistry,
				Phase:   "open",
				VaultID: "vault-456",
				Err:     errors.New("record not found"),
			},
			want: "vault open [REGISTRY_ERROR]: vault vault-456: record not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecryptError(t *testing.T) {
	tests := []struct {
		name string
		err  *models.DecryptError
		want string
	}{
		{
			name: "with path",
			err: &models.DecryptError{
				Path:   "notes/secret.md",
				Reason: "invalid key",
				Err:    errors.New("cipher: message authentication failed"),
			},
			want: "decrypt notes/secret.md: invalid key: cipher: message authentication failed",
		},
		{
			name: "without path",
			err: &models.DecryptError{
				Reason: "key derivation",
				Err:    errors.New("scrypt failed"),
			},
			want: "decrypt: key derivation: scrypt failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIntegrityError(t *testing.T) {
	err := &models.IntegrityError{
		Path:     "notes/test.md",
		Expected: "abc123",
		Actual:   "def456",
	}

	want := "integrity check failed for notes/test.md: expected abc123, got def456"
	assert.Equal(t, want, err.Error())
}

func TestErrorUnwrapping(t *testing.T) {
	baseErr := errors.New("base error")

	t.Run("VaultOpError unwrap", func(t *testing.T) {
		opErr := &models.VaultOpError{
			Code:    models.ErrCodeStorage,
			Phase:   "connect",
			VaultID: "vault-123",
			Err:     baseErr,
		}

		assert.Equal(t, baseErr, errors.Unwrap(opErr))
	})

	t.Run("DecryptError unwrap", func(t *testing.T) {
		decryptErr := &models.DecryptError{
			Path:   "test.md",
			Reason: "invalid key",
			Err:    baseErr,
		}

		assert.Equal(t, baseErr, errors.Unwrap(decryptErr))
	})
}
