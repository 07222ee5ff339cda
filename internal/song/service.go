// Package song manages the descriptive metadata records that accompany
// ingested audio resources.
package song

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	apperrors "github.com/trackstore/trackstore/internal/errors"
	"github.com/trackstore/trackstore/internal/metadata"
)

const (
	// maxFieldLength is the maximum length of name, artist, and album.
	maxFieldLength = 100

	// maxIDListLength is the maximum length of a comma-separated ID list.
	maxIDListLength = 200
)

var (
	// durationRe matches a mm:ss duration with zero-padded components.
	durationRe = regexp.MustCompile(`^\d{2}:\d{2}$`)

	// yearRe matches a four-digit year between 1900 and 2099.
	yearRe = regexp.MustCompile(`^(19|20)\d{2}$`)
)

// Service manages song metadata records.
type Service struct {
	records metadata.Store
}

// NewService creates a new song metadata service.
func NewService(records metadata.Store) *Service {
	return &Service{records: records}
}

// Create validates and stores a song record under its caller-assigned ID,
// which identifies the audio resource the metadata describes. Creating a
// second record for the same ID is a conflict.
func (s *Service) Create(ctx context.Context, song *metadata.SongRecord) (int64, error) {
	if err := validateSong(song); err != nil {
		return 0, err
	}

	exists, err := s.records.SongExists(ctx, song.ID)
	if err != nil {
		return 0, apperrors.Unavailable(err, "checking song metadata failed")
	}
	if exists {
		return 0, apperrors.Conflict("metadata for resource %d already exists", song.ID)
	}

	if err := s.records.CreateSong(ctx, song); err != nil {
		return 0, apperrors.Unavailable(err, "storing song metadata failed")
	}
	slog.Info("song metadata created", "id", song.ID, "name", song.Name)
	return song.ID, nil
}

// Get returns the song record with the given ID.
func (s *Service) Get(ctx context.Context, id int64) (*metadata.SongRecord, error) {
	song, err := s.records.GetSong(ctx, id)
	if err != nil {
		return nil, apperrors.Unavailable(err, "reading song metadata failed")
	}
	if song == nil {
		return nil, apperrors.NotFound("song metadata for ID %d does not exist", id)
	}
	return song, nil
}

// DeleteBatch removes the song records named by a comma-separated ID list
// and returns the IDs that were actually removed. The whole list is
// rejected when it fails to parse; absent records are skipped without
// error.
func (s *Service) DeleteBatch(ctx context.Context, csv string) ([]int64, error) {
	ids, err := parseIDList(csv)
	if err != nil {
		return nil, err
	}

	removed := make([]int64, 0, len(ids))
	for _, id := range ids {
		exists, err := s.records.SongExists(ctx, id)
		if err != nil {
			slog.Error("delete failed checking song", "id", id, "error", err)
			continue
		}
		if !exists {
			continue
		}
		if err := s.records.DeleteSong(ctx, id); err != nil {
			slog.Error("delete failed removing song", "id", id, "error", err)
			continue
		}
		removed = append(removed, id)
	}
	return removed, nil
}

// validateSong checks every field and reports all violations at once in the
// error's details map.
func validateSong(song *metadata.SongRecord) error {
	details := make(map[string]string)

	if song.ID <= 0 {
		details["id"] = "must be a positive integer"
	}
	if song.Name == "" {
		details["name"] = "is required"
	} else if len(song.Name) > maxFieldLength {
		details["name"] = "must be at most 100 characters"
	}
	if song.Artist == "" {
		details["artist"] = "is required"
	} else if len(song.Artist) > maxFieldLength {
		details["artist"] = "must be at most 100 characters"
	}
	if song.Album == "" {
		details["album"] = "is required"
	} else if len(song.Album) > maxFieldLength {
		details["album"] = "must be at most 100 characters"
	}
	if !durationRe.MatchString(song.Duration) {
		details["duration"] = "must be in mm:ss format"
	} else if song.Duration[3:] >= "60" {
		details["duration"] = "seconds must be below 60"
	}
	if !yearRe.MatchString(song.Year) {
		details["year"] = "must be between 1900 and 2099"
	}

	if len(details) > 0 {
		err := apperrors.InvalidInput("song metadata failed validation")
		err.Details = details
		return err
	}
	return nil
}

// parseIDList parses a comma-separated list of positive decimal IDs.
func parseIDList(csv string) ([]int64, error) {
	if len(csv) >= maxIDListLength {
		return nil, apperrors.InvalidInput(
			"ID list is %d characters long: must be shorter than %d", len(csv), maxIDListLength).
			WithDetail("id", "list too long")
	}
	if csv == "" {
		return nil, apperrors.InvalidInput("ID list is empty")
	}

	parts := strings.Split(csv, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			return nil, apperrors.InvalidInput("invalid ID %q: must be a positive integer", part).
				WithDetail("id", "must be a positive integer")
		}
		ids = append(ids, id)
	}
	return ids, nil
}
