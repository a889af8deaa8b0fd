package models

import (
	"fmt"
	"strings"
	"time"
)

// VaultRecord is the registry's view of one vault: enough metadata to open
// it again without re-deriving anything from the key file until a password
// is supplied.
type VaultRecord struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Path            string    `json:"path"`
	KeyFileChecksum string    `json:"key_file_checksum"` // sha256 hex of the on-disk key file
	LastOpened      time.Time `json:"last_opened,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Validate validates the vault record structure and data.
func (v *VaultRecord) Validate() error {
	if strings.TrimSpace(v.ID) == "" {
		return fmt.Errorf("vault ID is required")
	}

	if strings.TrimSpace(v.Name) == "" {
		return fmt.Errorf("vault name is required")
	}

	if strings.TrimSpace(v.Path) == "" {
		return fmt.Errorf("vault path is required")
	}

	if strings.TrimSpace(v.KeyFileChecksum) == "" {
		return fmt.Errorf("key file checksum is required")
	}

	if v.CreatedAt.IsZero() {
		return fmt.Errorf("created_at timestamp is required")
	}

	if v.UpdatedAt.IsZero() {
		return fmt.Errorf("updated_at timestamp is required")
	}

	if v.UpdatedAt.Before(v.CreatedAt) {
		return fmt.Errorf("updated_at cannot be before created_at")
	}

	return nil
}
