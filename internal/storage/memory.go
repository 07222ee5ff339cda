package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryBackend implements the Backend interface with an in-process map.
// It is used in tests and development mode. Fault hooks allow scripting
// failures per operation.
type MemoryBackend struct {
	mu      sync.Mutex
	objects map[string][]byte

	// PutErr, GetErr, DeleteErr, ExistsErr, when non-nil, are consulted
	// before each corresponding operation; returning a non-nil error fails
	// that call. The hooks run with the lock held.
	PutErr    func(key string) error
	GetErr    func(key string) error
	DeleteErr func(key string) error
	ExistsErr func(key string) error
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{objects: make(map[string][]byte)}
}

// PutObject stores a copy of data under key.
func (b *MemoryBackend) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.PutErr != nil {
		if err := b.PutErr(key); err != nil {
			return err
		}
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	b.objects[key] = cp
	return nil
}

// GetObject returns a copy of the stored data.
func (b *MemoryBackend) GetObject(ctx context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.GetErr != nil {
		if err := b.GetErr(key); err != nil {
			return nil, err
		}
	}
	data, ok := b.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// DeleteObject removes the object. Missing keys are a no-op.
func (b *MemoryBackend) DeleteObject(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.DeleteErr != nil {
		if err := b.DeleteErr(key); err != nil {
			return err
		}
	}
	delete(b.objects, key)
	return nil
}

// ObjectExists reports whether the key holds an object.
func (b *MemoryBackend) ObjectExists(ctx context.Context, key string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ExistsErr != nil {
		if err := b.ExistsErr(key); err != nil {
			return false, err
		}
	}
	_, ok := b.objects[key]
	return ok, nil
}

// HealthCheck always succeeds for the in-memory backend.
func (b *MemoryBackend) HealthCheck(ctx context.Context) error {
	return nil
}

// Len returns the number of stored objects. Test helper.
func (b *MemoryBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}

// Ensure MemoryBackend implements Backend at compile time.
var _ Backend = (*MemoryBackend)(nil)
