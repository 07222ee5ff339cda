// Package publish emits resource lifecycle events so downstream consumers
// can react to newly ingested audio resources.
package publish

import "context"

// Ack identifies where a published event landed in the event log.
type Ack struct {
	Partition int32
	Offset    int64
}

// Publisher delivers a resource-created event carrying the resource ID.
// Publish blocks until the broker acknowledges the event or returns an
// error; callers treat an error as a failed upload.
type Publisher interface {
	Publish(ctx context.Context, resourceID int64) (Ack, error)

	// Close releases any resources held by the publisher.
	Close() error
}
