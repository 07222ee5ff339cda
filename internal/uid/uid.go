// Package uid provides unique identifier and storage key generation for TrackStore.
package uid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// New generates a 32-character hex string suitable for use as a unique
// identifier (request IDs, temp names, etc.) using crypto/rand.
func New() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// Fallback: timestamp-based ID. Should never happen with crypto/rand.
		return fmt.Sprintf("%032x", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

// NewStorageKey generates an object storage key of the form
// {prefix}_{unix-millis}_{8-hex}{ext}. The millisecond timestamp plus the
// random suffix makes collisions across concurrent uploads negligible, and
// the character set keeps the key safe as a single path segment.
func NewStorageKey(prefix, ext string) string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%s_%d_%08x%s", prefix, time.Now().UnixMilli(), time.Now().UnixNano()&0xffffffff, ext)
	}
	return fmt.Sprintf("%s_%d_%s%s", prefix, time.Now().UnixMilli(), hex.EncodeToString(b), ext)
}
