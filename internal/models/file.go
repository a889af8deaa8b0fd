package models

import (
	"path/filepath"
	"strings"
	"time"
)

// FileItem represents a file in the vault.
type FileItem struct {
	Path         string    `json:"path"`
	Hash         string    `json:"hash"`
	Size         int64     `json:"size"`
	ModifiedTime time.Time `json:"modified_time"`
	IsDirectory  bool      `json:"is_directory"`
	IsBinary     bool      `json:"is_binary"`
}

// NormalizedPath returns the cleaned, forward-slash path.
func (f *FileItem) NormalizedPath() string {
	return strings.ReplaceAll(filepath.Clean(f.Path), "\\", "/")
}