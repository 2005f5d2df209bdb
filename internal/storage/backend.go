// Package storage keeps request attachments as named blobs.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"
)

var (
	ErrNotFound    = errors.New("blob not found")
	ErrInvalidName = errors.New("invalid blob name")
)

// Backend defines the interface for attachment blob storage.
type Backend interface {
	// Put stores the content of r under name and returns what was written.
	Put(ctx context.Context, name string, r io.Reader, contentType string) (*Object, error)

	// Open returns a reader for the blob. Callers close it.
	Open(ctx context.Context, name string) (io.ReadCloser, *Object, error)

	Delete(ctx context.Context, name string) error

	Exists(ctx context.Context, name string) (bool, error)

	// HealthCheck verifies backend is operational
	HealthCheck(ctx context.Context) error
}

// Object describes a stored blob.
type Object struct {
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Checksum    string    `json:"checksum"`
	CreatedTime time.Time `json:"created_time"`
}

// cleanName rejects absolute paths and parent references.
func cleanName(name string) (string, error) {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return "", ErrInvalidName
	}
	cleaned := path.Clean(name)
	if cleaned == "." || cleaned != name || strings.HasPrefix(cleaned, "..") {
		return "", ErrInvalidName
	}
	for _, part := range strings.Split(cleaned, "/") {
		if part == ".." || part == "" {
			return "", ErrInvalidName
		}
	}
	return cleaned, nil
}
