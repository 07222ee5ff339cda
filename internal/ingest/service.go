// Package ingest implements the resource ingestion workflow: audio payloads
// are validated, written to the object store, recorded in the metadata
// store, verified, and announced to downstream consumers. Failures after the
// first side effect trigger compensation so no half-ingested resource
// remains visible.
package ingest

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/trackstore/trackstore/internal/errors"
	"github.com/trackstore/trackstore/internal/metadata"
	"github.com/trackstore/trackstore/internal/metrics"
	"github.com/trackstore/trackstore/internal/publish"
	"github.com/trackstore/trackstore/internal/uid"
)

// ObjectStore is the slice of the storage client the ingestion workflow
// uses. The implementation handles retries and post-mutation verification.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) bool
}

// Service orchestrates resource ingestion and removal across the object
// store, the metadata store, and the event publisher.
type Service struct {
	records metadata.Store
	store   ObjectStore
	pub     publish.Publisher
}

// NewService creates a new ingestion service.
func NewService(records metadata.Store, store ObjectStore, pub publish.Publisher) *Service {
	return &Service{records: records, store: store, pub: pub}
}

// Upload validates and ingests an audio payload, returning the ID assigned
// to the new resource. The payload is written to the object store first;
// once any later step fails, both the blob and the metadata record are
// compensated away before the error is returned. A resource ID is handed
// out only after the created event has been acknowledged.
func (s *Service) Upload(ctx context.Context, data []byte) (int64, error) {
	if err := validateAudioPayload(data); err != nil {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return 0, err
	}

	key := uid.NewStorageKey("mp3", ".mp3")

	if err := s.store.Put(ctx, key, data, mpegMIMEType); err != nil {
		// The storage client cleans up its own partial writes, so there is
		// nothing to compensate yet.
		slog.Error("upload failed writing object", "key", key, "error", err)
		metrics.UploadsTotal.WithLabelValues("failure").Inc()
		return 0, err
	}

	res := &metadata.ResourceRecord{
		StorageKey: key,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.records.CreateResource(ctx, res); err != nil {
		slog.Error("upload failed creating record", "key", key, "error", err)
		s.compensate(ctx, key, 0)
		metrics.UploadsTotal.WithLabelValues("failure").Inc()
		return 0, apperrors.Unavailable(err, "recording resource metadata failed")
	}
	if res.ID == 0 {
		// A store that reports success without assigning an identity cannot
		// be trusted with anything else.
		slog.Error("metadata store assigned zero resource ID", "key", key)
		s.compensate(ctx, key, 0)
		metrics.UploadsTotal.WithLabelValues("failure").Inc()
		return 0, apperrors.Unavailable(nil, "metadata store assigned no resource ID")
	}

	// Verify the object is still readable under its key before announcing it.
	if !s.store.Exists(ctx, key) {
		slog.Error("uploaded object vanished before publish", "key", key, "id", res.ID)
		s.compensate(ctx, key, res.ID)
		metrics.UploadsTotal.WithLabelValues("failure").Inc()
		return 0, apperrors.Unavailable(nil, "uploaded object failed verification")
	}

	ack, err := s.pub.Publish(ctx, res.ID)
	if err != nil {
		// An unannounced resource is invisible to downstream processing, so
		// the whole upload rolls back rather than leaving a silent orphan.
		slog.Error("upload failed publishing event", "id", res.ID, "error", err)
		metrics.PublishFailuresTotal.Inc()
		s.compensate(ctx, key, res.ID)
		metrics.UploadsTotal.WithLabelValues("failure").Inc()
		return 0, apperrors.Unavailable(err, "publishing resource event failed")
	}

	slog.Info("resource uploaded",
		"id", res.ID, "key", key, "bytes", len(data),
		"partition", ack.Partition, "offset", ack.Offset)
	metrics.UploadsTotal.WithLabelValues("success").Inc()
	return res.ID, nil
}

// compensate removes the side effects of a failed upload: the blob first,
// then the metadata record when one was created (id > 0). Both removals are
// always attempted; failures are logged and never propagated, since the
// caller already has the original error to report.
func (s *Service) compensate(ctx context.Context, key string, id int64) {
	metrics.CompensationsTotal.Inc()

	if err := s.store.Delete(ctx, key); err != nil {
		slog.Error("compensation failed deleting object", "key", key, "error", err)
	}
	if id > 0 {
		if err := s.records.DeleteResource(ctx, id); err != nil {
			slog.Error("compensation failed deleting record", "id", id, "error", err)
		}
	}
}

// Resource returns the metadata record for the given resource. A resource
// whose record or blob is missing is reported as not found.
func (s *Service) Resource(ctx context.Context, id int64) (*metadata.ResourceRecord, error) {
	res, err := s.records.GetResource(ctx, id)
	if err != nil {
		return nil, apperrors.Unavailable(err, "reading resource metadata failed")
	}
	if res == nil {
		return nil, apperrors.NotFound("resource %d does not exist", id)
	}
	if !s.store.Exists(ctx, res.StorageKey) {
		slog.Warn("resource record has no backing object", "id", id, "key", res.StorageKey)
		return nil, apperrors.NotFound("resource %d does not exist", id)
	}
	return res, nil
}

// Content returns the audio bytes of the given resource. The stored bytes
// are re-validated before they are handed out.
func (s *Service) Content(ctx context.Context, id int64) ([]byte, error) {
	res, err := s.records.GetResource(ctx, id)
	if err != nil {
		return nil, apperrors.Unavailable(err, "reading resource metadata failed")
	}
	if res == nil {
		return nil, apperrors.NotFound("resource %d does not exist", id)
	}

	data, err := s.store.Get(ctx, res.StorageKey)
	if err != nil {
		if apperrors.IsNotFound(err) {
			slog.Warn("resource record has no backing object", "id", id, "key", res.StorageKey)
			return nil, apperrors.NotFound("resource %d does not exist", id)
		}
		return nil, err
	}

	if err := validateAudioPayload(data); err != nil {
		slog.Error("stored object failed audio validation", "id", id, "key", res.StorageKey)
		return nil, apperrors.Unavailable(nil, "stored object for resource %d is corrupted", id)
	}
	return data, nil
}

// Delete removes the resources named by a comma-separated ID list and
// returns the IDs that were actually removed. The whole list is rejected
// when it fails to parse; after that each ID is processed independently, so
// one failed removal never blocks the rest. Absent resources are skipped
// without error. For each resource the blob is removed and verified absent
// before its record is dropped.
func (s *Service) Delete(ctx context.Context, csv string) ([]int64, error) {
	ids, err := parseIDList(csv)
	if err != nil {
		return nil, err
	}

	removed := make([]int64, 0, len(ids))
	for _, id := range ids {
		res, err := s.records.GetResource(ctx, id)
		if err != nil {
			slog.Error("delete failed reading record", "id", id, "error", err)
			metrics.DeletionsTotal.WithLabelValues("failure").Inc()
			continue
		}
		if res == nil {
			metrics.DeletionsTotal.WithLabelValues("skipped").Inc()
			continue
		}

		if err := s.store.Delete(ctx, res.StorageKey); err != nil {
			// Keep the record so the resource stays discoverable and the
			// delete can be retried.
			slog.Error("delete failed removing object", "id", id, "key", res.StorageKey, "error", err)
			metrics.DeletionsTotal.WithLabelValues("failure").Inc()
			continue
		}
		if err := s.records.DeleteResource(ctx, id); err != nil {
			slog.Error("delete failed removing record", "id", id, "error", err)
			metrics.DeletionsTotal.WithLabelValues("failure").Inc()
			continue
		}

		slog.Info("resource deleted", "id", id, "key", res.StorageKey)
		metrics.DeletionsTotal.WithLabelValues("success").Inc()
		removed = append(removed, id)
	}
	return removed, nil
}
