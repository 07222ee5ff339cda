// Package storage defines the interface and implementations for TrackStore's
// audio object storage layer, plus the retrying client that all workflows go
// through.
package storage

import (
	"context"
	"errors"
)

// ErrObjectNotFound is returned (wrapped) by backends when the requested key
// has no object. It is the only error class the client treats as definitive;
// everything else is a transient upstream failure.
var ErrObjectNotFound = errors.New("object not found")

// IsNotFound reports whether err indicates a definitively absent object.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// Backend defines the raw single-key blob interface. Implementations provide
// the underlying storage mechanism (S3, GCS, Azure Blob, local filesystem,
// memory) and must be safe for concurrent use. Backends perform no retries
// and no verification; that is the Client's job.
type Backend interface {
	// PutObject writes data to the backend at the specified key.
	PutObject(ctx context.Context, key string, data []byte, contentType string) error

	// GetObject retrieves the object data at the specified key. A missing
	// object yields an error wrapping ErrObjectNotFound.
	GetObject(ctx context.Context, key string) ([]byte, error)

	// DeleteObject removes the object at the specified key. Deleting a
	// missing object is not an error.
	DeleteObject(ctx context.Context, key string) error

	// ObjectExists checks whether an object exists at the specified key.
	// A missing object is (false, nil); errors mean the store could not be
	// consulted.
	ObjectExists(ctx context.Context, key string) (bool, error)

	// HealthCheck verifies that the storage backend is operational.
	HealthCheck(ctx context.Context) error
}
