package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalBackendRoundTrip(t *testing.T) {
	backend, err := NewLocalBackend(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := backend.PutObject(ctx, "mp3_1_ab.mp3", []byte("audio bytes"), "audio/mpeg"); err != nil {
		t.Fatalf("PutObject: %v", err)
	}

	exists, err := backend.ObjectExists(ctx, "mp3_1_ab.mp3")
	if err != nil || !exists {
		t.Fatalf("ObjectExists = (%v, %v), want (true, nil)", exists, err)
	}

	data, err := backend.GetObject(ctx, "mp3_1_ab.mp3")
	if err != nil {
		t.Fatalf("GetObject: %v", err)
	}
	if string(data) != "audio bytes" {
		t.Errorf("data = %q, want %q", data, "audio bytes")
	}

	if err := backend.DeleteObject(ctx, "mp3_1_ab.mp3"); err != nil {
		t.Fatalf("DeleteObject: %v", err)
	}
	exists, err = backend.ObjectExists(ctx, "mp3_1_ab.mp3")
	if err != nil || exists {
		t.Fatalf("ObjectExists after delete = (%v, %v), want (false, nil)", exists, err)
	}
}

func TestLocalBackendGetMissing(t *testing.T) {
	backend, err := NewLocalBackend(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	_, err = backend.GetObject(context.Background(), "missing.mp3")
	if !IsNotFound(err) {
		t.Fatalf("err = %v, want object-not-found", err)
	}
}

func TestLocalBackendDeleteMissingIsNoOp(t *testing.T) {
	backend, err := NewLocalBackend(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := backend.DeleteObject(context.Background(), "missing.mp3"); err != nil {
		t.Fatalf("DeleteObject on missing key: %v", err)
	}
}

func TestLocalBackendCleanTempFiles(t *testing.T) {
	root := t.TempDir()
	backend, err := NewLocalBackend(root)
	if err != nil {
		t.Fatal(err)
	}

	stale := filepath.Join(root, ".tmp", "tmp-stale")
	if err := os.WriteFile(stale, []byte("leftover"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := backend.CleanTempFiles(); err != nil {
		t.Fatalf("CleanTempFiles: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale temp file survived CleanTempFiles")
	}
}
