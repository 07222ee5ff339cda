// Package metadata defines the interface and implementations for TrackStore's
// metadata storage layer, which tracks resource records and song records.
package metadata

import (
	"context"
	"io"
	"time"
)

// ResourceRecord represents the metadata for a single stored audio resource.
// The ID is assigned by the store on creation; the StorageKey locates the
// resource's bytes in the object store.
type ResourceRecord struct {
	ID         int64
	StorageKey string
	CreatedAt  time.Time
}

// SongRecord represents the descriptive metadata for a song. The ID matches
// the ID of the resource the metadata was extracted from.
type SongRecord struct {
	ID       int64
	Name     string
	Artist   string
	Album    string
	Duration string // mm:ss
	Year     string // four digits
}

// Store defines the interface for all metadata operations required by
// TrackStore. Implementations must be safe for concurrent use.
//
// Read operations return (nil, nil) when the requested record does not
// exist; absence is not an error at this layer.
type Store interface {
	io.Closer

	// Ping checks connectivity to the metadata store.
	Ping(ctx context.Context) error

	// Resource operations

	// CreateResource inserts a new resource record and assigns its ID.
	CreateResource(ctx context.Context, res *ResourceRecord) error

	// GetResource retrieves the resource record with the given ID.
	GetResource(ctx context.Context, id int64) (*ResourceRecord, error)

	// ResourceExists checks whether a resource record with the given ID exists.
	ResourceExists(ctx context.Context, id int64) (bool, error)

	// DeleteResource removes the resource record with the given ID.
	// Deleting a missing record is not an error.
	DeleteResource(ctx context.Context, id int64) error

	// Song operations

	// CreateSong inserts a new song record under its caller-assigned ID.
	CreateSong(ctx context.Context, song *SongRecord) error

	// GetSong retrieves the song record with the given ID.
	GetSong(ctx context.Context, id int64) (*SongRecord, error)

	// SongExists checks whether a song record with the given ID exists.
	SongExists(ctx context.Context, id int64) (bool, error)

	// DeleteSong removes the song record with the given ID.
	// Deleting a missing record is not an error.
	DeleteSong(ctx context.Context, id int64) error
}
