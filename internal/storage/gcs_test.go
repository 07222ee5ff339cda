package storage

import (
	"bytes"
	"context"
	"io"
	"testing"

	gcs "cloud.google.com/go/storage"
)

// mockGCSClient implements GCSAPI for unit testing.
type mockGCSClient struct {
	objects map[string][]byte
}

func newMockGCSClient() *mockGCSClient {
	return &mockGCSClient{objects: make(map[string][]byte)}
}

// mockGCSWriter buffers writes and commits them on Close.
type mockGCSWriter struct {
	bytes.Buffer
	commit func([]byte)
}

func (w *mockGCSWriter) Close() error {
	w.commit(w.Bytes())
	return nil
}

func (m *mockGCSClient) NewWriter(ctx context.Context, bucket, object, contentType string) io.WriteCloser {
	key := bucket + "/" + object
	return &mockGCSWriter{commit: func(data []byte) {
		m.objects[key] = data
	}}
}

func (m *mockGCSClient) NewReader(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	data, ok := m.objects[bucket+"/"+object]
	if !ok {
		return nil, gcs.ErrObjectNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *mockGCSClient) Delete(ctx context.Context, bucket, object string) error {
	key := bucket + "/" + object
	if _, ok := m.objects[key]; !ok {
		return gcs.ErrObjectNotExist
	}
	delete(m.objects, key)
	return nil
}

func (m *mockGCSClient) Attrs(ctx context.Context, bucket, object string) (*gcs.ObjectAttrs, error) {
	data, ok := m.objects[bucket+"/"+object]
	if !ok {
		return nil, gcs.ErrObjectNotExist
	}
	return &gcs.ObjectAttrs{Name: object, Size: int64(len(data))}, nil
}

func (m *mockGCSClient) BucketAttrs(ctx context.Context, bucket string) (*gcs.BucketAttrs, error) {
	return &gcs.BucketAttrs{Name: bucket}, nil
}

func TestGCSBackendRoundTrip(t *testing.T) {
	mock := newMockGCSClient()
	backend := NewGCSBackendWithClient("tracks", "audio/", mock)
	ctx := context.Background()

	if err := backend.PutObject(ctx, "mp3_1_ab.mp3", []byte("audio bytes"), "audio/mpeg"); err != nil {
		t.Fatalf("PutObject: %v", err)
	}
	if _, ok := mock.objects["tracks/audio/mp3_1_ab.mp3"]; !ok {
		t.Fatal("object not stored under prefixed GCS name")
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

func TestGCSBackendGetMissingIsNotFound(t *testing.T) {
	backend := NewGCSBackendWithClient("tracks", "", newMockGCSClient())

	_, err := backend.GetObject(context.Background(), "missing.mp3")
	if !IsNotFound(err) {
		t.Fatalf("err = %v, want object-not-found", err)
	}
}

func TestGCSBackendDeleteMissingIsNoOp(t *testing.T) {
	backend := NewGCSBackendWithClient("tracks", "", newMockGCSClient())

	if err := backend.DeleteObject(context.Background(), "missing.mp3"); err != nil {
		t.Fatalf("DeleteObject on missing object: %v", err)
	}
}
