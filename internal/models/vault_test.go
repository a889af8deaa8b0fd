package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vaultfs/vcrypt/internal/models"
)

func validVaultRecord() *models.VaultRecord {
	now := time.Now()
	return &models.VaultRecord{
		ID:              "vault-1",
		Name:            "Personal Notes",
		Path:            "/home/user/vaults/personal",
		KeyFileChecksum: "deadbeef",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestVaultRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*models.VaultRecord)
		wantErr string
	}{
		{
			name:   "valid record",
			modify: func(v *models.VaultRecord) {},
		},
		{
			name:    "missing id",
			modify:  func(v *models.VaultRecord) { v.ID = "" },
			wantErr: "vault ID is required",
		},
		{
			name:    "missing name",
			modify:  func(v *models.VaultRecord) { v.Name = "" },
			wantErr: "vault name is required",
		},
		{
			name:    "missing path",
			modify:  func(v *models.VaultRecord) { v.Path = "" },
			wantErr: "vault path is required",
		},
		{
			name:    "missing checksum",
			modify:  func(v *models.VaultRecord) { v.KeyFileChecksum = "" },
			wantErr: "key file checksum is required",
		},
		{
			name:    "zero created_at",
			modify:  func(v *models.VaultRecord) { v.CreatedAt = time.Time{} },
			wantErr: "created_at timestamp is required",
		},
		{
			name:    "zero updated_at",
			modify:  func(v *models.VaultRecord) { v.UpdatedAt = time.Time{} },
			wantErr: "updated_at timestamp is required",
		},
		{
			name: "updated before created",
			modify: func(v *models.VaultRecord) {
				v.CreatedAt = time.Now()
				v.UpdatedAt = v.CreatedAt.Add(-time.Hour)
			},
			wantErr: "updated_at cannot be before created_at",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validVaultRecord()
			tt.modify(v)

			err := v.Validate()
			if tt.wantErr != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
