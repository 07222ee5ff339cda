// Azure Blob Storage backend for TrackStore.
//
// Proxies all data operations to an upstream Azure Blob container via the
// official Azure SDK for Go. Blobs live at {prefix}{key} inside the
// configured container.
//
// Credentials are resolved via DefaultAzureCredential (env vars, managed
// identity, Azure CLI, etc.).

package storage

import (
	"context"
	"fmt"
	"log/slog"
)

// AzureBlobAPI defines the subset of the Azure Blob client interface that
// the backend uses. This allows mocking in tests.
type AzureBlobAPI interface {
	// UploadBlob uploads data to a blob, overwriting if it already exists.
	UploadBlob(ctx context.Context, containerName, blobName string, data []byte, contentType string) error
	// DownloadBlob downloads a blob's contents. A missing blob yields an
	// error wrapping ErrObjectNotFound.
	DownloadBlob(ctx context.Context, containerName, blobName string) ([]byte, error)
	// DeleteBlob deletes a blob. Deleting a missing blob is not an error.
	DeleteBlob(ctx context.Context, containerName, blobName string) error
	// BlobExists checks if a blob exists.
	BlobExists(ctx context.Context, containerName, blobName string) (bool, error)
}

// AzureBackend implements the Backend interface against an upstream Azure
// Blob Storage container.
type AzureBackend struct {
	// Container is the upstream Azure Blob container name.
	Container string
	// Prefix is the key prefix for all blobs in the container.
	Prefix string
	// client is the Azure Blob client (satisfying the AzureBlobAPI interface).
	client AzureBlobAPI
}

// NewAzureBackend creates a new AzureBackend configured to proxy to the
// specified container, using DefaultAzureCredential, and verifies the
// container is reachable.
func NewAzureBackend(ctx context.Context, container, accountURL, prefix string) (*AzureBackend, error) {
	client, err := newRealAzureClient(accountURL)
	if err != nil {
		return nil, fmt.Errorf("creating Azure client: %w", err)
	}

	b := &AzureBackend{
		Container: container,
		Prefix:    prefix,
		client:    client,
	}

	// Probe a blob name that cannot exist; reachability is what matters.
	if _, err := b.client.BlobExists(ctx, container, "\x00nonexistent\x00"); err != nil {
		return nil, fmt.Errorf("cannot access Azure container %q: %w", container, err)
	}

	slog.Info("Azure backend initialized", "container", container, "account", accountURL, "prefix", prefix)
	return b, nil
}

// NewAzureBackendWithClient creates an AzureBackend with a pre-configured
// client. This is primarily used for testing with mock clients.
func NewAzureBackendWithClient(container, prefix string, client AzureBlobAPI) *AzureBackend {
	return &AzureBackend{
		Container: container,
		Prefix:    prefix,
		client:    client,
	}
}

// blobName maps a TrackStore storage key to an upstream blob name.
func (b *AzureBackend) blobName(key string) string {
	return b.Prefix + key
}

// PutObject uploads object data to the upstream Azure container.
func (b *AzureBackend) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	if err := b.client.UploadBlob(ctx, b.Container, b.blobName(key), data, contentType); err != nil {
		return fmt.Errorf("uploading blob to Azure: %w", err)
	}
	return nil
}

// GetObject retrieves object data from the upstream Azure container.
func (b *AzureBackend) GetObject(ctx context.Context, key string) ([]byte, error) {
	data, err := b.client.DownloadBlob(ctx, b.Container, b.blobName(key))
	if err != nil {
		return nil, err
	}
	return data, nil
}

// DeleteObject removes a blob from the upstream Azure container.
func (b *AzureBackend) DeleteObject(ctx context.Context, key string) error {
	if err := b.client.DeleteBlob(ctx, b.Container, b.blobName(key)); err != nil {
		return fmt.Errorf("deleting blob from Azure: %w", err)
	}
	return nil
}

// ObjectExists checks whether a blob exists in the upstream Azure container.
func (b *AzureBackend) ObjectExists(ctx context.Context, key string) (bool, error) {
	return b.client.BlobExists(ctx, b.Container, b.blobName(key))
}

// HealthCheck verifies that the upstream Azure container is reachable.
func (b *AzureBackend) HealthCheck(ctx context.Context) error {
	_, err := b.client.BlobExists(ctx, b.Container, "\x00nonexistent\x00")
	return err
}

// Ensure AzureBackend implements Backend at compile time.
var _ Backend = (*AzureBackend)(nil)
