// Package process turns resource-created events into song metadata records.
// For each event it fetches the resource's audio bytes, extracts the ID3
// tags and playback duration, and stores the resulting record.
package process

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dhowden/tag"
	"github.com/tcolgate/mp3"

	apperrors "github.com/trackstore/trackstore/internal/errors"
	"github.com/trackstore/trackstore/internal/metadata"
)

// Default field values used when a resource carries no usable tags.
const (
	defaultTitle    = "Unknown Title"
	defaultArtist   = "Unknown Artist"
	defaultAlbum    = "Unknown Album"
	defaultYear     = "1900"
	defaultDuration = "00:00"

	// maxFieldLength caps extracted text fields at the song service limit.
	maxFieldLength = 100
)

// ContentSource fetches the audio bytes of an ingested resource.
type ContentSource interface {
	Content(ctx context.Context, id int64) ([]byte, error)
}

// MetadataSink stores an extracted song record.
type MetadataSink interface {
	Create(ctx context.Context, song *metadata.SongRecord) (int64, error)
}

// Processor extracts song metadata from ingested resources.
type Processor struct {
	source ContentSource
	sink   MetadataSink
}

// NewProcessor creates a new Processor.
func NewProcessor(source ContentSource, sink MetadataSink) *Processor {
	return &Processor{source: source, sink: sink}
}

// Process handles one resource-created event. Events for resources that
// have disappeared or already carry metadata are dropped without error so
// the consumer can make progress.
func (p *Processor) Process(ctx context.Context, resourceID int64) error {
	data, err := p.source.Content(ctx, resourceID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			slog.Warn("resource gone before processing, skipping", "id", resourceID)
			return nil
		}
		return fmt.Errorf("fetching resource %d: %w", resourceID, err)
	}

	song := ExtractMetadata(data, resourceID)

	if _, err := p.sink.Create(ctx, &song); err != nil {
		if apperrors.IsConflict(err) {
			slog.Warn("song metadata already exists, skipping", "id", resourceID)
			return nil
		}
		return fmt.Errorf("storing song metadata for resource %d: %w", resourceID, err)
	}

	slog.Info("song metadata extracted",
		"id", resourceID, "name", song.Name, "artist", song.Artist, "duration", song.Duration)
	return nil
}

// ExtractMetadata reads ID3 tags and playback duration from MP3 bytes.
// Missing or unreadable fields fall back to fixed defaults so every
// processed resource yields a valid record.
func ExtractMetadata(data []byte, resourceID int64) metadata.SongRecord {
	song := metadata.SongRecord{
		ID:       resourceID,
		Name:     defaultTitle,
		Artist:   defaultArtist,
		Album:    defaultAlbum,
		Duration: extractDuration(data),
		Year:     defaultYear,
	}

	m, err := tag.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return song
	}

	if v := truncate(m.Title()); v != "" {
		song.Name = v
	}
	if v := truncate(m.Artist()); v != "" {
		song.Artist = v
	}
	if v := truncate(m.Album()); v != "" {
		song.Album = v
	}
	if y := m.Year(); y >= 1900 && y <= 2099 {
		song.Year = fmt.Sprintf("%04d", y)
	}
	return song
}

// extractDuration sums MP3 frame durations and formats the total as mm:ss.
// Undecodable audio yields the zero duration.
func extractDuration(data []byte) string {
	var total time.Duration

	decoder := mp3.NewDecoder(bytes.NewReader(data))
	var frame mp3.Frame
	var skipped int
	for {
		if err := decoder.Decode(&frame, &skipped); err != nil {
			break
		}
		total += frame.Duration()
	}

	if total <= 0 {
		return defaultDuration
	}

	seconds := int(total.Round(time.Second).Seconds())
	minutes := seconds / 60
	seconds %= 60
	// The duration format has two digits per component.
	if minutes > 99 {
		minutes, seconds = 99, 59
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// truncate caps a tag value at the song field length limit.
func truncate(s string) string {
	if len(s) > maxFieldLength {
		return s[:maxFieldLength]
	}
	return s
}
