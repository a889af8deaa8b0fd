package vaultservice

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/vaultfs/vcrypt/internal/cryptoengine"
)

// rootDirectoryID is the well-known directory ID of a vault's root; every
// vault has one regardless of password, so its shard path is the same
// fixed location every time the vault is opened.
const rootDirectoryID = ""

// dirIDMarkerName holds a directory's random ID inside its pointer entry.
// The ID itself carries no information about the directory's plaintext
// name or contents, so it is stored unencrypted.
const dirIDMarkerName = "dir.id"

// EncryptDirectory recursively encrypts the plaintext tree rooted at
// sourceDir into the vault's encrypted storage. Every plaintext directory
// gets a freshly generated directory ID, so re-running EncryptDirectory
// over the same source produces a different encrypted layout each time.
func (s *Service) EncryptDirectory(vaultID, sourceDir string) error {
	cryptor, err := s.Cryptor(vaultID)
	if err != nil {
		return err
	}
	record, err := s.registry.Load(vaultID)
	if err != nil {
		return fmt.Errorf("load registry record: %w", err)
	}

	cipherRoot := filepath.Join(record.Path, cipherRootName)
	rootShard, err := s.shardDir(cryptor, cipherRoot, rootDirectoryID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(rootShard, 0700); err != nil {
		return fmt.Errorf("create vault root: %w", err)
	}

	return s.encryptTree(cryptor, cipherRoot, sourceDir, rootShard)
}

// DecryptDirectory recursively decrypts the vault's entire encrypted tree
// into destDir, which is created if it does not exist.
func (s *Service) DecryptDirectory(vaultID, destDir string) error {
	cryptor, err := s.Cryptor(vaultID)
	if err != nil {
		return err
	}
	record, err := s.registry.Load(vaultID)
	if err != nil {
		return fmt.Errorf("load registry record: %w", err)
	}

	cipherRoot := filepath.Join(record.Path, cipherRootName)
	rootShard, err := s.shardDir(cryptor, cipherRoot, rootDirectoryID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(destDir, 0700); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	return s.decryptTree(cryptor, cipherRoot, rootShard, destDir)
}

// shardDir computes the on-disk shard directory for directoryID under
// cipherRoot.
func (s *Service) shardDir(cryptor *cryptoengine.Cryptor, cipherRoot, directoryID string) (string, error) {
	shard, err := cryptor.EncryptDirectoryPath(directoryID, s.shardSeparator)
	if err != nil {
		return "", fmt.Errorf("compute shard path: %w", err)
	}
	return filepath.Join(cipherRoot, filepath.FromSlash(shard)), nil
}

// encryptTree encrypts every entry of plainDir into cipherDir (the shard
// directory that already corresponds to plainDir's directory ID). Sibling
// entries are processed concurrently, bounded by s.treeConcurrency; the
// recursion itself fans out the same way at each level below.
func (s *Service) encryptTree(cryptor *cryptoengine.Cryptor, cipherRoot, plainDir, cipherDir string) error {
	entries, err := os.ReadDir(plainDir)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", plainDir, err)
	}

	group := new(errgroup.Group)
	group.SetLimit(s.treeConcurrency)

	for _, entry := range entries {
		entry := entry
		group.Go(func() error {
			cipherName, err := cryptor.EncryptFilename(entry.Name())
			if err != nil {
				return fmt.Errorf("encrypt name %s: %w", entry.Name(), err)
			}

			plainPath := filepath.Join(plainDir, entry.Name())

			if entry.IsDir() {
				childID, err := newDirectoryID()
				if err != nil {
					return err
				}

				pointerDir := filepath.Join(cipherDir, cipherName)
				if err := os.MkdirAll(pointerDir, 0700); err != nil {
					return fmt.Errorf("create directory pointer: %w", err)
				}
				if err := os.WriteFile(filepath.Join(pointerDir, dirIDMarkerName), []byte(childID), 0600); err != nil {
					return fmt.Errorf("write directory id: %w", err)
				}

				childShard, err := s.shardDir(cryptor, cipherRoot, childID)
				if err != nil {
					return err
				}
				if err := os.MkdirAll(childShard, 0700); err != nil {
					return fmt.Errorf("create child shard: %w", err)
				}

				return s.encryptTree(cryptor, cipherRoot, plainPath, childShard)
			}

			if err := encryptFileEntry(cryptor, plainPath, filepath.Join(cipherDir, cipherName)); err != nil {
				return fmt.Errorf("encrypt file %s: %w", plainPath, err)
			}
			return nil
		})
	}

	return group.Wait()
}

// decryptTree decrypts every entry of cipherDir into plainDir, with the same
// bounded fan-out as encryptTree.
func (s *Service) decryptTree(cryptor *cryptoengine.Cryptor, cipherRoot, cipherDir, plainDir string) error {
	entries, err := os.ReadDir(cipherDir)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", cipherDir, err)
	}

	group := new(errgroup.Group)
	group.SetLimit(s.treeConcurrency)

	for _, entry := range entries {
		entry := entry
		group.Go(func() error {
			plainName, err := cryptor.DecryptFilename(entry.Name())
			if err != nil {
				return fmt.Errorf("decrypt name %s: %w", entry.Name(), err)
			}

			cipherPath := filepath.Join(cipherDir, entry.Name())
			plainPath := filepath.Join(plainDir, plainName)

			if entry.IsDir() {
				childID, err := os.ReadFile(filepath.Join(cipherPath, dirIDMarkerName))
				if err != nil {
					return fmt.Errorf("read directory id for %s: %w", plainName, err)
				}

				childShard, err := s.shardDir(cryptor, cipherRoot, string(childID))
				if err != nil {
					return err
				}
				if err := os.MkdirAll(plainPath, 0700); err != nil {
					return fmt.Errorf("create directory %s: %w", plainPath, err)
				}

				return s.decryptTree(cryptor, cipherRoot, childShard, plainPath)
			}

			if err := decryptFileEntry(cryptor, cipherPath, plainPath); err != nil {
				return fmt.Errorf("decrypt file %s: %w", plainName, err)
			}
			return nil
		})
	}

	return group.Wait()
}

func newDirectoryID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate directory id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// encryptFileEntry streams one plaintext file into one encrypted file.
func encryptFileEntry(cryptor *cryptoengine.Cryptor, plainPath, cipherPath string) error {
	in, err := os.Open(plainPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(cipherPath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = cryptor.EncryptFile(in, out)
	return err
}

// decryptFileEntry streams one encrypted file into one plaintext file.
func decryptFileEntry(cryptor *cryptoengine.Cryptor, cipherPath, plainPath string) error {
	in, err := os.Open(cipherPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(plainPath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = cryptor.DecryptFile(in, out, true)
	return err
}
