package publish

import (
	"context"
	"sync"
)

// MemoryPublisher records published events in memory. It is used for
// development without a broker and for testing.
//
// The Err hook, when non-nil, runs before each publish and fails the call
// when it returns an error.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []int64

	Err func(resourceID int64) error
}

// NewMemoryPublisher creates a new empty MemoryPublisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

// Publish records the event and returns a synthetic ack whose offset is the
// event's position in the recorded sequence.
func (p *MemoryPublisher) Publish(ctx context.Context, resourceID int64) (Ack, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		if err := p.Err(resourceID); err != nil {
			return Ack{}, err
		}
	}
	p.events = append(p.events, resourceID)
	return Ack{Partition: 0, Offset: int64(len(p.events) - 1)}, nil
}

// Close is a no-op for the in-memory publisher.
func (p *MemoryPublisher) Close() error { return nil }

// Events returns a copy of the recorded resource IDs in publish order.
// Test helper.
func (p *MemoryPublisher) Events() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]int64, len(p.events))
	copy(out, p.events)
	return out
}

// Ensure MemoryPublisher implements Publisher at compile time.
var _ Publisher = (*MemoryPublisher)(nil)
