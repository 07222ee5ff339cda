package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/trackstore/trackstore/internal/uid"
)

// LocalBackend implements the Backend interface using the local filesystem.
// Objects are stored as files directly under a configurable root directory;
// storage keys are single path segments so no nesting is required.
type LocalBackend struct {
	// RootDir is the base directory under which all object data is stored.
	RootDir string
}

// NewLocalBackend creates a new LocalBackend rooted at the given directory.
// It creates the root directory and the temp directory if they do not exist.
func NewLocalBackend(rootDir string) (*LocalBackend, error) {
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root directory %q: %w", rootDir, err)
	}
	// Create the .tmp directory for atomic writes.
	tmpDir := filepath.Join(rootDir, ".tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating temp directory %q: %w", tmpDir, err)
	}
	return &LocalBackend{RootDir: rootDir}, nil
}

// CleanTempFiles removes all files in the .tmp directory. This is called on
// startup; any temp files left behind indicate incomplete writes from a
// previous crash.
func (b *LocalBackend) CleanTempFiles() error {
	tmpDir := filepath.Join(b.RootDir, ".tmp")
	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading temp directory: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			os.Remove(filepath.Join(tmpDir, entry.Name()))
		}
	}
	return nil
}

// objectPath returns the full filesystem path for an object.
func (b *LocalBackend) objectPath(key string) string {
	return filepath.Join(b.RootDir, key)
}

// tempPath returns a unique temporary file path in the .tmp directory.
func (b *LocalBackend) tempPath() string {
	return filepath.Join(b.RootDir, ".tmp", "tmp-"+uid.New())
}

// PutObject writes object data to a file using the atomic write pattern:
// write to temp file, fsync, rename. The content type is not persisted; the
// metadata store is authoritative for it.
func (b *LocalBackend) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	tmpPath := b.tempPath()
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing object data: %w", err)
	}

	// Fsync before rename to guarantee durability.
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, b.objectPath(key)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file to final path: %w", err)
	}

	return nil
}

// GetObject reads the object file.
func (b *LocalBackend) GetObject(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(b.objectPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("reading object file: %w", err)
	}
	return data, nil
}

// DeleteObject removes the object file. A missing file is treated as
// already deleted.
func (b *LocalBackend) DeleteObject(ctx context.Context, key string) error {
	if err := os.Remove(b.objectPath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing object file: %w", err)
	}
	return nil
}

// ObjectExists checks whether the object file exists.
func (b *LocalBackend) ObjectExists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(b.objectPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("statting object file: %w", err)
	}
	return true, nil
}

// HealthCheck verifies the root directory is accessible.
func (b *LocalBackend) HealthCheck(ctx context.Context) error {
	_, err := os.Stat(b.RootDir)
	return err
}

// Ensure LocalBackend implements Backend at compile time.
var _ Backend = (*LocalBackend)(nil)
