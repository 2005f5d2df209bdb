package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sort"
	"sync"
	"time"
)

// MemoryBackend keeps blobs in process. Used with the memory database driver.
type MemoryBackend struct {
	mu    sync.RWMutex
	blobs map[string]memoryBlob
}

type memoryBlob struct {
	obj  Object
	data []byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{blobs: make(map[string]memoryBlob)}
}

func (m *MemoryBackend) Put(ctx context.Context, name string, r io.Reader, contentType string) (*Object, error) {
	if _, err := cleanName(name); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(&ctxReader{ctx: ctx, r: r})
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(data)
	obj := Object{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Checksum:    hex.EncodeToString(sum[:]),
		CreatedTime: time.Now().UTC(),
	}

	m.mu.Lock()
	m.blobs[name] = memoryBlob{obj: obj, data: data}
	m.mu.Unlock()
	return &obj, nil
}

func (m *MemoryBackend) Open(_ context.Context, name string) (io.ReadCloser, *Object, error) {
	m.mu.RLock()
	b, ok := m.blobs[name]
	m.mu.RUnlock()
	if !ok {
		return nil, nil, ErrNotFound
	}
	obj := b.obj
	return io.NopCloser(bytes.NewReader(b.data)), &obj, nil
}

func (m *MemoryBackend) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	delete(m.blobs, name)
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Exists(_ context.Context, name string) (bool, error) {
	m.mu.RLock()
	_, ok := m.blobs[name]
	m.mu.RUnlock()
	return ok, nil
}

func (m *MemoryBackend) HealthCheck(context.Context) error { return nil }

// Names lists the stored blob names in order.
func (m *MemoryBackend) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.blobs))
	for name := range m.blobs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
