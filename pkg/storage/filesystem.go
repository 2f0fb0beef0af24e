package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// BaseFolders are created under the archive root during setup.
var BaseFolders = []string{
	"Inbox",
	"Documents",
	"Media",
	"Writing",
	"Finance",
	"Identity",
	"Correspondence",
	"Logs",
}

// Vault persists event file bytes on disk under the archive root.
// Logical storage paths (Inbox/<yyyy-mm>/<name>, Mobile/Temp/<id>.jpg)
// resolve relative to the root.
type Vault struct {
	rootDir string
}

// NewVault ensures the archive root exists and returns a handle.
func NewVault(rootDir string) (*Vault, error) {
	if rootDir == "" {
		rootDir = "./CitadelRoot"
	}
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive root: %w", err)
	}
	return &Vault{rootDir: rootDir}, nil
}

// InitBaseFolders creates the standard folder layout under the root.
func (v *Vault) InitBaseFolders() error {
	for _, name := range BaseFolders {
		if err := os.MkdirAll(filepath.Join(v.rootDir, name), 0o755); err != nil {
			return fmt.Errorf("create base folder %s: %w", name, err)
		}
	}
	return nil
}

// Save writes the given bytes to the provided logical path under the root.
func (v *Vault) Save(storagePath string, data []byte) (string, error) {
	path := v.resolve(storagePath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare vault directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write vault file: %w", err)
	}
	return storagePath, nil
}

// SaveStream copies from reader into the target file path.
func (v *Vault) SaveStream(storagePath string, r io.Reader) (string, error) {
	path := v.resolve(storagePath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare vault directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create vault file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write vault stream: %w", err)
	}
	return storagePath, nil
}

// Open returns a read-only handle for the stored file.
func (v *Vault) Open(storagePath string) (*os.File, error) {
	file, err := os.Open(v.resolve(storagePath))
	if err != nil {
		return nil, fmt.Errorf("open vault file: %w", err)
	}
	return file, nil
}

// Delete removes a stored file if present.
func (v *Vault) Delete(storagePath string) error {
	if err := os.Remove(v.resolve(storagePath)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete vault file: %w", err)
	}
	return nil
}

// Path exposes the underlying absolute path (useful for "reveal in disk").
func (v *Vault) Path(storagePath string) string {
	return v.resolve(storagePath)
}

func (v *Vault) resolve(storagePath string) string {
	if filepath.IsAbs(storagePath) {
		return storagePath
	}
	return filepath.Join(v.rootDir, filepath.FromSlash(storagePath))
}
