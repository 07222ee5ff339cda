package song

import (
	"context"
	"strings"
	"testing"

	apperrors "github.com/trackstore/trackstore/internal/errors"
	"github.com/trackstore/trackstore/internal/metadata"
)

func validSong() *metadata.SongRecord {
	return &metadata.SongRecord{
		ID:       1,
		Name:     "We are the champions",
		Artist:   "Queen",
		Album:    "News of the world",
		Duration: "02:59",
		Year:     "1977",
	}
}

func TestCreateAndGet(t *testing.T) {
	svc := NewService(metadata.NewMemoryStore())
	ctx := context.Background()

	id, err := svc.Create(ctx, validSong())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != 1 {
		t.Fatalf("id = %d, want 1", id)
	}

	got, err := svc.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "We are the champions" || got.Year != "1977" {
		t.Errorf("Get = %+v, want the created record", got)
	}
}

func TestCreateDuplicateIsConflict(t *testing.T) {
	svc := NewService(metadata.NewMemoryStore())
	ctx := context.Background()

	if _, err := svc.Create(ctx, validSong()); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := svc.Create(ctx, validSong())
	if !apperrors.IsConflict(err) {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestGetMissingIsNotFound(t *testing.T) {
	svc := NewService(metadata.NewMemoryStore())

	_, err := svc.Get(context.Background(), 42)
	if !apperrors.IsNotFound(err) {
		t.Fatalf("err = %v, want not-found", err)
	}
}

func TestCreateValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*metadata.SongRecord)
		field  string
	}{
		{"zero ID", func(s *metadata.SongRecord) { s.ID = 0 }, "id"},
		{"empty name", func(s *metadata.SongRecord) { s.Name = "" }, "name"},
		{"overlong name", func(s *metadata.SongRecord) { s.Name = strings.Repeat("x", 101) }, "name"},
		{"empty artist", func(s *metadata.SongRecord) { s.Artist = "" }, "artist"},
		{"overlong artist", func(s *metadata.SongRecord) { s.Artist = strings.Repeat("x", 101) }, "artist"},
		{"empty album", func(s *metadata.SongRecord) { s.Album = "" }, "album"},
		{"bad duration format", func(s *metadata.SongRecord) { s.Duration = "2:59" }, "duration"},
		{"non-numeric duration", func(s *metadata.SongRecord) { s.Duration = "ab:cd" }, "duration"},
		{"seconds out of range", func(s *metadata.SongRecord) { s.Duration = "02:60" }, "duration"},
		{"year too early", func(s *metadata.SongRecord) { s.Year = "1899" }, "year"},
		{"year too late", func(s *metadata.SongRecord) { s.Year = "2100" }, "year"},
		{"non-numeric year", func(s *metadata.SongRecord) { s.Year = "19xx" }, "year"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(metadata.NewMemoryStore())
			song := validSong()
			tc.mutate(song)

			_, err := svc.Create(context.Background(), song)
			if !apperrors.IsInvalidInput(err) {
				t.Fatalf("err = %v, want invalid-input", err)
			}
			var appErr *apperrors.Error
			if !apperrors.As(err, &appErr) {
				t.Fatalf("err %v is not an *Error", err)
			}
			if _, ok := appErr.Details[tc.field]; !ok {
				t.Errorf("details = %v, want entry for %q", appErr.Details, tc.field)
			}
		})
	}
}

func TestCreateReportsAllViolationsAtOnce(t *testing.T) {
	svc := NewService(metadata.NewMemoryStore())
	song := &metadata.SongRecord{ID: 1, Duration: "bad", Year: "bad"}

	_, err := svc.Create(context.Background(), song)
	var appErr *apperrors.Error
	if !apperrors.As(err, &appErr) {
		t.Fatalf("err %v is not an *Error", err)
	}
	for _, field := range []string{"name", "artist", "album", "duration", "year"} {
		if _, ok := appErr.Details[field]; !ok {
			t.Errorf("details missing entry for %q: %v", field, appErr.Details)
		}
	}
}

func TestDeleteBatchSkipsAbsent(t *testing.T) {
	store := metadata.NewMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	for _, id := range []int64{5, 14} {
		song := validSong()
		song.ID = id
		if _, err := svc.Create(ctx, song); err != nil {
			t.Fatalf("Create(%d): %v", id, err)
		}
	}

	removed, err := svc.DeleteBatch(ctx, "5,9,14")
	if err != nil {
		t.Fatalf("DeleteBatch: %v", err)
	}
	if len(removed) != 2 || removed[0] != 5 || removed[1] != 14 {
		t.Fatalf("removed = %v, want [5 14]", removed)
	}
	if n := store.SongCount(); n != 0 {
		t.Errorf("store holds %d songs, want 0", n)
	}
}

func TestDeleteBatchRejectsMalformedList(t *testing.T) {
	svc := NewService(metadata.NewMemoryStore())

	for _, csv := range []string{"", "1,abc", "0", strings.Repeat("1,", 100) + "1"} {
		_, err := svc.DeleteBatch(context.Background(), csv)
		if !apperrors.IsInvalidInput(err) {
			t.Errorf("DeleteBatch(%q) err = %v, want invalid-input", csv, err)
		}
	}
}
