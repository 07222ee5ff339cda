package storage

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// mockS3Client implements S3API for unit testing.
type mockS3Client struct {
	// objects stores all objects keyed by their S3 key.
	objects map[string][]byte
	// headObjectCalls tracks the number of HeadObject calls.
	headObjectCalls int
}

func newMockS3Client() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

// mockAPIError implements smithy.APIError for testing error classification.
type mockAPIError struct {
	code       string
	message    string
	httpStatus int
}

func (e *mockAPIError) Error() string                 { return e.code + ": " + e.message }
func (e *mockAPIError) ErrorCode() string             { return e.code }
func (e *mockAPIError) ErrorMessage() string          { return e.message }
func (e *mockAPIError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }
func (e *mockAPIError) HTTPStatusCode() int           { return e.httpStatus }

func (m *mockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	m.objects[aws.ToString(params.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := m.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &mockAPIError{code: "NoSuchKey", message: "The specified key does not exist.", httpStatus: 404}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
	}, nil
}

func (m *mockS3Client) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(m.objects, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (m *mockS3Client) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	m.headObjectCalls++
	data, ok := m.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &mockAPIError{code: "NotFound", message: "Not Found", httpStatus: 404}
	}
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(data)))}, nil
}

func (m *mockS3Client) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, nil
}

func TestS3BackendRoundTrip(t *testing.T) {
	mock := newMockS3Client()
	backend := NewS3BackendWithClient("tracks", "audio/", mock)
	ctx := context.Background()

	if err := backend.PutObject(ctx, "mp3_1_ab.mp3", []byte("audio bytes"), "audio/mpeg"); err != nil {
		t.Fatalf("PutObject: %v", err)
	}
	if _, ok := mock.objects["audio/mp3_1_ab.mp3"]; !ok {
		t.Fatal("object not stored under prefixed S3 key")
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

func TestS3BackendGetMissingIsNotFound(t *testing.T) {
	backend := NewS3BackendWithClient("tracks", "", newMockS3Client())

	_, err := backend.GetObject(context.Background(), "missing.mp3")
	if !IsNotFound(err) {
		t.Fatalf("err = %v, want object-not-found", err)
	}
}

func TestIsAWSNotFound(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{&mockAPIError{code: "NoSuchKey", httpStatus: 404}, true},
		{&mockAPIError{code: "NotFound", httpStatus: 404}, true},
		{&mockAPIError{code: "SlowDown", httpStatus: 503}, false},
		{io.ErrUnexpectedEOF, false},
	}
	for _, tc := range cases {
		if got := isAWSNotFound(tc.err); got != tc.want {
			t.Errorf("isAWSNotFound(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
