package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apierr "github.com/trackstore/trackstore/internal/errors"
	"github.com/trackstore/trackstore/internal/metrics"
)

const (
	// DefaultAttempts is the fixed attempt cap per mutating operation.
	DefaultAttempts = 3
	// DefaultBaseDelay is the base backoff delay; the delay after attempt N
	// is DefaultBaseDelay * N.
	DefaultBaseDelay = time.Second
	// maxKeyLength bounds storage key length.
	maxKeyLength = 255
)

// Client wraps a Backend with retry, backoff, and post-operation
// verification. Every mutating call is followed by an independent
// verification read against the store rather than trusting the mutation's
// own return code: the store's acknowledgement and its observable state are
// allowed to diverge under eventual consistency or partial outages.
//
// Retries block only the calling goroutine; concurrent operations proceed
// independently.
type Client struct {
	backend Backend
	// attempts is the fixed attempt cap.
	attempts int
	// baseDelay scales the backoff: sleep baseDelay*N after attempt N.
	baseDelay time.Duration
}

// NewClient creates a Client around backend with the given retry policy.
// Non-positive attempts or delay fall back to the defaults.
func NewClient(backend Backend, attempts int, baseDelay time.Duration) *Client {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	return &Client{backend: backend, attempts: attempts, baseDelay: baseDelay}
}

// validateKey rejects keys that are empty, over-long, or unsafe as an
// object-store path segment.
func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return apierr.InvalidInput("storage key cannot be empty")
	}
	if len(key) > maxKeyLength {
		return apierr.InvalidInput("storage key too long: %d characters", len(key))
	}
	if strings.Contains(key, "..") || strings.ContainsAny(key, "/\\") {
		return apierr.InvalidInput("invalid storage key: %s", key)
	}
	return nil
}

// backoff sleeps baseDelay*attempt, returning early if ctx is cancelled.
func (c *Client) backoff(ctx context.Context, attempt int) {
	select {
	case <-time.After(c.baseDelay * time.Duration(attempt)):
	case <-ctx.Done():
	}
}

// Put uploads data under key, retrying on failure and verifying the object
// is actually visible after each apparently successful write. After the
// attempt budget is exhausted it makes a best-effort attempt to remove any
// partially written object, then reports an infrastructure error.
func (c *Client) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if len(data) == 0 {
		return apierr.InvalidInput("upload data cannot be empty")
	}
	if err := validateKey(key); err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		err := c.backend.PutObject(ctx, key, data, contentType)
		if err == nil {
			// The write acknowledged; believe the store only if the object
			// can be observed.
			if c.Exists(ctx, key) {
				metrics.StorageOperationsTotal.WithLabelValues("put", "ok").Inc()
				return nil
			}
			metrics.StorageVerificationFailuresTotal.WithLabelValues("put").Inc()
			err = fmt.Errorf("upload verification failed: object %s not found after write", key)
		}
		lastErr = err
		slog.Warn("storage put attempt failed", "key", key, "attempt", attempt, "error", err)

		if attempt < c.attempts {
			metrics.StorageRetriesTotal.WithLabelValues("put").Inc()
			c.backoff(ctx, attempt)
		}
	}

	// Final attempt failed: clean up any partial write at this key.
	c.cleanupPartialWrite(ctx, key)
	metrics.StorageOperationsTotal.WithLabelValues("put", "error").Inc()
	return apierr.Unavailable(lastErr, "failed to upload object %s after %d attempts", key, c.attempts)
}

// cleanupPartialWrite best-effort deletes whatever may have landed at key
// during a failed upload. Failures are logged and absorbed.
func (c *Client) cleanupPartialWrite(ctx context.Context, key string) {
	if !c.Exists(ctx, key) {
		return
	}
	if err := c.backend.DeleteObject(ctx, key); err != nil {
		slog.Error("failed to clean up partial upload", "key", key, "error", err)
	}
}

// Delete removes the object under key, retrying on failure. After each
// delete call that returns without error, the object's absence is
// re-verified; a still-visible object counts as a failed attempt.
func (c *Client) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		err := c.backend.DeleteObject(ctx, key)
		if err == nil {
			if !c.Exists(ctx, key) {
				metrics.StorageOperationsTotal.WithLabelValues("delete", "ok").Inc()
				return nil
			}
			metrics.StorageVerificationFailuresTotal.WithLabelValues("delete").Inc()
			err = fmt.Errorf("delete verification failed: object %s still exists", key)
		}
		lastErr = err
		slog.Warn("storage delete attempt failed", "key", key, "attempt", attempt, "error", err)

		if attempt < c.attempts {
			metrics.StorageRetriesTotal.WithLabelValues("delete").Inc()
			c.backoff(ctx, attempt)
		}
	}

	metrics.StorageOperationsTotal.WithLabelValues("delete", "error").Inc()
	return apierr.Unavailable(lastErr, "failed to delete object %s after %d attempts", key, c.attempts)
}

// Exists reports whether the object under key is observable. A missing
// object is a definitive false. Any other error talking to the store is
// deliberately treated as true: prefer refusing to overwrite or re-delete
// over silently proceeding against an unreachable store.
func (c *Client) Exists(ctx context.Context, key string) bool {
	exists, err := c.backend.ObjectExists(ctx, key)
	if err != nil {
		slog.Error("error checking object existence, assuming it exists", "key", key, "error", err)
		return true
	}
	return exists
}

// Get downloads the object under key with the same retry policy. A missing
// object fails immediately as not-found; an empty successful download is
// treated as a failed attempt (the store returned a handle but no content).
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		data, err := c.backend.GetObject(ctx, key)
		if err == nil {
			if len(data) > 0 {
				metrics.StorageOperationsTotal.WithLabelValues("get", "ok").Inc()
				return data, nil
			}
			err = fmt.Errorf("downloaded object %s is empty", key)
		} else if IsNotFound(err) {
			metrics.StorageOperationsTotal.WithLabelValues("get", "not_found").Inc()
			return nil, apierr.NotFound("object %s not found", key)
		}
		lastErr = err
		slog.Warn("storage get attempt failed", "key", key, "attempt", attempt, "error", err)

		if attempt < c.attempts {
			metrics.StorageRetriesTotal.WithLabelValues("get").Inc()
			c.backoff(ctx, attempt)
		}
	}

	metrics.StorageOperationsTotal.WithLabelValues("get", "error").Inc()
	return nil, apierr.Unavailable(lastErr, "failed to download object %s after %d attempts", key, c.attempts)
}
