package metadata

import (
	"context"
	"testing"
	"time"
)

// newTestStore creates a SQLiteStore backed by a temporary database file.
// The database is automatically cleaned up when the test finishes.
func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := t.TempDir() + "/test.db"
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore(%q) failed: %v", dbPath, err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// ---- Resource tests ----

func TestResourceCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	res := &ResourceRecord{
		StorageKey: "mp3_1740000000000_a1b2c3d4.mp3",
		CreatedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := store.CreateResource(ctx, res); err != nil {
		t.Fatalf("CreateResource: %v", err)
	}
	if res.ID <= 0 {
		t.Fatalf("assigned ID = %d, want > 0", res.ID)
	}

	got, err := store.GetResource(ctx, res.ID)
	if err != nil {
		t.Fatalf("GetResource: %v", err)
	}
	if got == nil {
		t.Fatal("GetResource returned nil")
	}
	if got.StorageKey != res.StorageKey {
		t.Errorf("StorageKey = %q, want %q", got.StorageKey, res.StorageKey)
	}
	if !got.CreatedAt.Equal(res.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, res.CreatedAt)
	}

	exists, err := store.ResourceExists(ctx, res.ID)
	if err != nil || !exists {
		t.Fatalf("ResourceExists = (%v, %v), want (true, nil)", exists, err)
	}

	if err := store.DeleteResource(ctx, res.ID); err != nil {
		t.Fatalf("DeleteResource: %v", err)
	}
	got, err = store.GetResource(ctx, res.ID)
	if err != nil {
		t.Fatalf("GetResource after delete: %v", err)
	}
	if got != nil {
		t.Errorf("GetResource after delete = %+v, want nil", got)
	}
}

func TestResourceIDsAreMonotonic(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var prev int64
	for i := 0; i < 5; i++ {
		res := &ResourceRecord{
			StorageKey: "mp3_1740000000000_" + string(rune('a'+i)) + ".mp3",
			CreatedAt:  time.Now().UTC(),
		}
		if err := store.CreateResource(ctx, res); err != nil {
			t.Fatalf("CreateResource #%d: %v", i, err)
		}
		if res.ID <= prev {
			t.Fatalf("ID %d not greater than previous %d", res.ID, prev)
		}
		prev = res.ID
	}
}

func TestCreateResourceDuplicateStorageKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	res := &ResourceRecord{StorageKey: "mp3_1_dup.mp3", CreatedAt: time.Now().UTC()}
	if err := store.CreateResource(ctx, res); err != nil {
		t.Fatalf("CreateResource: %v", err)
	}
	dup := &ResourceRecord{StorageKey: "mp3_1_dup.mp3", CreatedAt: time.Now().UTC()}
	if err := store.CreateResource(ctx, dup); err == nil {
		t.Fatal("CreateResource with duplicate storage key succeeded, want error")
	}
}

func TestGetResourceMissing(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetResource(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetResource: %v", err)
	}
	if got != nil {
		t.Errorf("GetResource = %+v, want nil", got)
	}
}

func TestDeleteResourceMissingIsNoOp(t *testing.T) {
	store := newTestStore(t)

	if err := store.DeleteResource(context.Background(), 42); err != nil {
		t.Fatalf("DeleteResource on missing record: %v", err)
	}
}

// ---- Song tests ----

func TestSongCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	song := &SongRecord{
		ID:       7,
		Name:     "We are the champions",
		Artist:   "Queen",
		Album:    "News of the world",
		Duration: "02:59",
		Year:     "1977",
	}
	if err := store.CreateSong(ctx, song); err != nil {
		t.Fatalf("CreateSong: %v", err)
	}

	got, err := store.GetSong(ctx, 7)
	if err != nil {
		t.Fatalf("GetSong: %v", err)
	}
	if got == nil {
		t.Fatal("GetSong returned nil")
	}
	if *got != *song {
		t.Errorf("GetSong = %+v, want %+v", got, song)
	}

	exists, err := store.SongExists(ctx, 7)
	if err != nil || !exists {
		t.Fatalf("SongExists = (%v, %v), want (true, nil)", exists, err)
	}

	if err := store.DeleteSong(ctx, 7); err != nil {
		t.Fatalf("DeleteSong: %v", err)
	}
	exists, err = store.SongExists(ctx, 7)
	if err != nil || exists {
		t.Fatalf("SongExists after delete = (%v, %v), want (false, nil)", exists, err)
	}
}

func TestCreateSongDuplicateID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	song := &SongRecord{ID: 3, Name: "a", Artist: "b", Album: "c", Duration: "01:00", Year: "2000"}
	if err := store.CreateSong(ctx, song); err != nil {
		t.Fatalf("CreateSong: %v", err)
	}
	if err := store.CreateSong(ctx, song); err == nil {
		t.Fatal("CreateSong with duplicate ID succeeded, want error")
	}
}

func TestPing(t *testing.T) {
	store := newTestStore(t)

	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
