package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// FilesystemBackend stores blobs below a base directory with a JSON .meta
// sidecar per blob.
type FilesystemBackend struct {
	basePath string
	now      func() time.Time
}

// NewFilesystemBackend creates a new filesystem storage backend
func NewFilesystemBackend(basePath string) (*FilesystemBackend, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base path: %w", err)
	}
	return &FilesystemBackend{basePath: basePath, now: time.Now}, nil
}

func (f *FilesystemBackend) path(name string) (string, error) {
	cleaned, err := cleanName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(f.basePath, filepath.FromSlash(cleaned)), nil
}

func (f *FilesystemBackend) Put(ctx context.Context, name string, r io.Reader, contentType string) (*Object, error) {
	filePath, err := f.path(name)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// Write to a temp file first so a failed upload never leaves a partial blob.
	tmp, err := os.CreateTemp(filepath.Dir(filePath), ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	hash := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, hash), &ctxReader{ctx: ctx, r: r})
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	obj := &Object{
		Name:        name,
		ContentType: contentType,
		Size:        size,
		Checksum:    hex.EncodeToString(hash.Sum(nil)),
		CreatedTime: f.now().UTC(),
	}
	metadataJSON, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(filePath+".meta", metadataJSON, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write metadata: %w", err)
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		os.Remove(filePath + ".meta")
		return nil, fmt.Errorf("failed to store file: %w", err)
	}
	return obj, nil
}

func (f *FilesystemBackend) Open(_ context.Context, name string) (io.ReadCloser, *Object, error) {
	filePath, err := f.path(name)
	if err != nil {
		return nil, nil, err
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}

	obj := &Object{Name: name}
	if metadataBytes, err := os.ReadFile(filePath + ".meta"); err == nil {
		_ = json.Unmarshal(metadataBytes, obj)
	}
	if obj.Size == 0 {
		if info, err := file.Stat(); err == nil {
			obj.Size = info.Size()
		}
	}
	return file, obj, nil
}

func (f *FilesystemBackend) Delete(_ context.Context, name string) error {
	filePath, err := f.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	_ = os.Remove(filePath + ".meta")
	// Remove the request directory once it is empty.
	_ = os.Remove(filepath.Dir(filePath))
	return nil
}

func (f *FilesystemBackend) Exists(_ context.Context, name string) (bool, error) {
	filePath, err := f.path(name)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(filePath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// HealthCheck verifies the filesystem is writable
func (f *FilesystemBackend) HealthCheck(_ context.Context) error {
	testFile := filepath.Join(f.basePath, ".health_check")
	if err := os.WriteFile(testFile, []byte("ok"), 0o644); err != nil {
		return fmt.Errorf("filesystem not writable: %w", err)
	}
	if err := os.Remove(testFile); err != nil {
		return fmt.Errorf("filesystem cleanup failed: %w", err)
	}
	return nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
