package uid

import (
	"strings"
	"testing"
)

func TestNewLengthAndUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := New()
		if len(id) != 32 {
			t.Fatalf("New() returned %d chars, want 32: %q", len(id), id)
		}
		if seen[id] {
			t.Fatalf("New() returned duplicate ID %q", id)
		}
		seen[id] = true
	}
}

func TestNewStorageKeyShape(t *testing.T) {
	key := NewStorageKey("mp3", ".mp3")

	if !strings.HasPrefix(key, "mp3_") {
		t.Errorf("key %q missing prefix", key)
	}
	if !strings.HasSuffix(key, ".mp3") {
		t.Errorf("key %q missing extension", key)
	}
	if strings.ContainsAny(key, "/\\") || strings.Contains(key, "..") {
		t.Errorf("key %q is not a safe path segment", key)
	}
	if parts := strings.Split(key, "_"); len(parts) != 3 {
		t.Errorf("key %q has %d underscore-separated parts, want 3", key, len(parts))
	}
}

func TestNewStorageKeyUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		key := NewStorageKey("mp3", ".mp3")
		if seen[key] {
			t.Fatalf("duplicate storage key %q", key)
		}
		seen[key] = true
	}
}
