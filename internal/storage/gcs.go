// GCS backend for TrackStore.
//
// Proxies all data operations to an upstream Google Cloud Storage bucket via
// the official Go client library. Objects live at {prefix}{key} inside the
// configured bucket.
//
// Credentials are resolved via Application Default Credentials
// (GOOGLE_APPLICATION_CREDENTIALS, gcloud auth, metadata server).

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSAPI defines the subset of the GCS client interface that the backend
// uses. This allows mocking in tests.
type GCSAPI interface {
	// NewWriter returns a writer for the given object.
	NewWriter(ctx context.Context, bucket, object, contentType string) io.WriteCloser
	// NewReader returns a reader for the given object.
	NewReader(ctx context.Context, bucket, object string) (io.ReadCloser, error)
	// Delete deletes the given object.
	Delete(ctx context.Context, bucket, object string) error
	// Attrs returns the attributes of the given object.
	Attrs(ctx context.Context, bucket, object string) (*gcs.ObjectAttrs, error)
	// BucketAttrs returns the attributes of the bucket itself.
	BucketAttrs(ctx context.Context, bucket string) (*gcs.BucketAttrs, error)
}

// realGCSClient wraps the official GCS client to satisfy GCSAPI.
type realGCSClient struct {
	client *gcs.Client
}

func (c *realGCSClient) NewWriter(ctx context.Context, bucket, object, contentType string) io.WriteCloser {
	w := c.client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	return w
}

func (c *realGCSClient) NewReader(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	return c.client.Bucket(bucket).Object(object).NewReader(ctx)
}

func (c *realGCSClient) Delete(ctx context.Context, bucket, object string) error {
	return c.client.Bucket(bucket).Object(object).Delete(ctx)
}

func (c *realGCSClient) Attrs(ctx context.Context, bucket, object string) (*gcs.ObjectAttrs, error) {
	return c.client.Bucket(bucket).Object(object).Attrs(ctx)
}

func (c *realGCSClient) BucketAttrs(ctx context.Context, bucket string) (*gcs.BucketAttrs, error) {
	return c.client.Bucket(bucket).Attrs(ctx)
}

// GCSBackend implements the Backend interface against an upstream GCS bucket.
type GCSBackend struct {
	// Bucket is the upstream GCS bucket name.
	Bucket string
	// Prefix is the key prefix for all objects in the bucket.
	Prefix string
	// client is the GCS client (satisfying the GCSAPI interface).
	client GCSAPI
}

// NewGCSBackend creates a new GCSBackend using Application Default
// Credentials and verifies the upstream bucket is accessible. endpointURL
// optionally overrides the GCS endpoint (fake-gcs-server in development).
func NewGCSBackend(ctx context.Context, bucket, prefix, endpointURL string) (*GCSBackend, error) {
	var clientOpts []option.ClientOption
	if endpointURL != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(endpointURL), option.WithoutAuthentication())
	}

	client, err := gcs.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}

	b := &GCSBackend{
		Bucket: bucket,
		Prefix: prefix,
		client: &realGCSClient{client: client},
	}

	if _, err := b.client.BucketAttrs(ctx, bucket); err != nil {
		return nil, fmt.Errorf("cannot access GCS bucket %q: %w", bucket, err)
	}

	slog.Info("GCS backend initialized", "bucket", bucket, "prefix", prefix)
	return b, nil
}

// NewGCSBackendWithClient creates a GCSBackend with a pre-configured client.
// This is primarily used for testing with mock clients.
func NewGCSBackendWithClient(bucket, prefix string, client GCSAPI) *GCSBackend {
	return &GCSBackend{
		Bucket: bucket,
		Prefix: prefix,
		client: client,
	}
}

// gcsKey maps a TrackStore storage key to an upstream GCS object name.
func (b *GCSBackend) gcsKey(key string) string {
	return b.Prefix + key
}

// PutObject uploads object data to the upstream GCS bucket. GCS writes are
// atomic: the object becomes visible only when the writer closes cleanly.
func (b *GCSBackend) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	w := b.client.NewWriter(ctx, b.Bucket, b.gcsKey(key), contentType)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("writing object to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing GCS write: %w", err)
	}
	return nil
}

// GetObject retrieves object data from the upstream GCS bucket.
func (b *GCSBackend) GetObject(ctx context.Context, key string) ([]byte, error) {
	r, err := b.client.NewReader(ctx, b.Bucket, b.gcsKey(key))
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("getting object from GCS: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading object body from GCS: %w", err)
	}
	return data, nil
}

// DeleteObject removes an object from the upstream GCS bucket. A missing
// object is treated as already deleted.
func (b *GCSBackend) DeleteObject(ctx context.Context, key string) error {
	err := b.client.Delete(ctx, b.Bucket, b.gcsKey(key))
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("deleting object from GCS: %w", err)
	}
	return nil
}

// ObjectExists checks whether an object exists in the upstream GCS bucket.
func (b *GCSBackend) ObjectExists(ctx context.Context, key string) (bool, error) {
	_, err := b.client.Attrs(ctx, b.Bucket, b.gcsKey(key))
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("checking object existence in GCS: %w", err)
	}
	return true, nil
}

// HealthCheck verifies that the upstream GCS bucket is accessible.
func (b *GCSBackend) HealthCheck(ctx context.Context) error {
	_, err := b.client.BucketAttrs(ctx, b.Bucket)
	return err
}

// Ensure GCSBackend implements Backend at compile time.
var _ Backend = (*GCSBackend)(nil)
