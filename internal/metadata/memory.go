package metadata

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements the Store interface with in-memory maps. It is used
// for development and testing. All data is lost when the process exits.
//
// The fault hooks, when non-nil, run before the corresponding operation and
// abort it when they return an error. Tests use them to inject failures at
// specific points.
type MemoryStore struct {
	mu        sync.Mutex
	nextID    int64
	resources map[int64]ResourceRecord
	songs     map[int64]SongRecord

	CreateResourceErr func(res *ResourceRecord) error
	GetResourceErr    func(id int64) error
	DeleteResourceErr func(id int64) error
	CreateSongErr     func(song *SongRecord) error
	DeleteSongErr     func(id int64) error
}

// NewMemoryStore creates a new empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:    1,
		resources: make(map[int64]ResourceRecord),
		songs:     make(map[int64]SongRecord),
	}
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error { return nil }

// Ping always succeeds for the in-memory store.
func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

// CreateResource inserts a new resource record and assigns the next ID.
func (m *MemoryStore) CreateResource(ctx context.Context, res *ResourceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateResourceErr != nil {
		if err := m.CreateResourceErr(res); err != nil {
			return err
		}
	}
	res.ID = m.nextID
	m.nextID++
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}
	m.resources[res.ID] = *res
	return nil
}

// GetResource retrieves a resource record by ID. Returns (nil, nil) when no
// record exists.
func (m *MemoryStore) GetResource(ctx context.Context, id int64) (*ResourceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetResourceErr != nil {
		if err := m.GetResourceErr(id); err != nil {
			return nil, err
		}
	}
	r, ok := m.resources[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

// ResourceExists checks whether a resource record with the given ID exists.
func (m *MemoryStore) ResourceExists(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.resources[id]
	return ok, nil
}

// DeleteResource removes the resource record with the given ID.
func (m *MemoryStore) DeleteResource(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteResourceErr != nil {
		if err := m.DeleteResourceErr(id); err != nil {
			return err
		}
	}
	delete(m.resources, id)
	return nil
}

// CreateSong inserts a new song record under its caller-assigned ID.
func (m *MemoryStore) CreateSong(ctx context.Context, song *SongRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateSongErr != nil {
		if err := m.CreateSongErr(song); err != nil {
			return err
		}
	}
	m.songs[song.ID] = *song
	return nil
}

// GetSong retrieves a song record by ID. Returns (nil, nil) when no record
// exists.
func (m *MemoryStore) GetSong(ctx context.Context, id int64) (*SongRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.songs[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// SongExists checks whether a song record with the given ID exists.
func (m *MemoryStore) SongExists(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.songs[id]
	return ok, nil
}

// DeleteSong removes the song record with the given ID.
func (m *MemoryStore) DeleteSong(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteSongErr != nil {
		if err := m.DeleteSongErr(id); err != nil {
			return err
		}
	}
	delete(m.songs, id)
	return nil
}

// ResourceCount returns the number of stored resource records. Test helper.
func (m *MemoryStore) ResourceCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.resources)
}

// SongCount returns the number of stored song records. Test helper.
func (m *MemoryStore) SongCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.songs)
}

// Ensure MemoryStore implements Store at compile time.
var _ Store = (*MemoryStore)(nil)
