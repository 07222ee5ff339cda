// S3 backend for TrackStore.
//
// Proxies all data operations to an upstream S3 bucket via the AWS SDK for
// Go v2. Metadata stays in SQLite -- this backend handles raw bytes only.
// Objects live at {prefix}{key} inside the configured bucket.
//
// Credentials are resolved via the standard AWS credential chain (env vars,
// ~/.aws/credentials, IAM role, etc.) unless static credentials are supplied.

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3API defines the subset of the AWS S3 client interface that the backend
// uses. This allows mocking in tests.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Options configures the S3 backend.
type S3Options struct {
	// Bucket is the upstream S3 bucket name.
	Bucket string
	// Region is the AWS region of the bucket.
	Region string
	// Prefix is the key prefix for all objects in the bucket.
	Prefix string
	// EndpointURL optionally overrides the S3 endpoint (MinIO, LocalStack).
	EndpointURL string
	// UsePathStyle forces path-style addressing for custom endpoints.
	UsePathStyle bool
	// AccessKeyID and SecretAccessKey are optional static credentials.
	AccessKeyID     string
	SecretAccessKey string
}

// S3Backend implements the Backend interface against an upstream Amazon S3
// (or S3-compatible) bucket.
type S3Backend struct {
	// Bucket is the upstream S3 bucket name.
	Bucket string
	// Prefix is the key prefix for all objects in the bucket.
	Prefix string
	// client is the AWS S3 client (satisfying the S3API interface).
	client S3API
}

// NewS3Backend creates a new S3Backend. It initializes the AWS SDK client
// using the default credential chain, with optional overrides for custom
// endpoint, path-style addressing, and static credentials, and verifies the
// upstream bucket is accessible.
func NewS3Backend(ctx context.Context, opts S3Options) (*S3Backend, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))

	// Use static credentials if provided, otherwise fall back to default chain.
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if opts.EndpointURL != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(opts.EndpointURL)
		})
	}
	if opts.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(cfg, s3Opts...)

	b := &S3Backend{
		Bucket: opts.Bucket,
		Prefix: opts.Prefix,
		client: client,
	}

	// Verify the upstream bucket is accessible.
	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(opts.Bucket),
	})
	if err != nil {
		return nil, fmt.Errorf("cannot access S3 bucket %q: %w", opts.Bucket, err)
	}

	slog.Info("S3 backend initialized", "bucket", opts.Bucket, "region", opts.Region, "prefix", opts.Prefix)
	return b, nil
}

// NewS3BackendWithClient creates an S3Backend with a pre-configured S3
// client. This is primarily used for testing with mock clients.
func NewS3BackendWithClient(bucket, prefix string, client S3API) *S3Backend {
	return &S3Backend{
		Bucket: bucket,
		Prefix: prefix,
		client: client,
	}
}

// s3Key maps a TrackStore storage key to an upstream S3 key.
func (b *S3Backend) s3Key(key string) string {
	return b.Prefix + key
}

// PutObject uploads object data to the upstream S3 bucket.
func (b *S3Backend) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.Bucket),
		Key:           aws.String(b.s3Key(key)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("uploading to S3: %w", err)
	}
	return nil
}

// GetObject retrieves object data from the upstream S3 bucket.
func (b *S3Backend) GetObject(ctx context.Context, key string) ([]byte, error) {
	resp, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.Bucket),
		Key:    aws.String(b.s3Key(key)),
	})
	if err != nil {
		if isAWSNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("getting object from S3: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading object body from S3: %w", err)
	}
	return data, nil
}

// DeleteObject removes an object from the upstream S3 bucket.
// Idempotent: S3 DeleteObject does not error on missing keys.
func (b *S3Backend) DeleteObject(ctx context.Context, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.Bucket),
		Key:    aws.String(b.s3Key(key)),
	})
	if err != nil {
		return fmt.Errorf("deleting object from S3: %w", err)
	}
	return nil
}

// ObjectExists checks whether an object exists in the upstream S3 bucket.
func (b *S3Backend) ObjectExists(ctx context.Context, key string) (bool, error) {
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.Bucket),
		Key:    aws.String(b.s3Key(key)),
	})
	if err != nil {
		if isAWSNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking object existence in S3: %w", err)
	}
	return true, nil
}

// HealthCheck verifies that the upstream S3 bucket is accessible.
func (b *S3Backend) HealthCheck(ctx context.Context) error {
	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(b.Bucket),
	})
	return err
}

// isAWSNotFound checks if an AWS error is a 404/NoSuchKey/NotFound error.
func isAWSNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		if code == "NoSuchKey" || code == "NotFound" || code == "404" || code == "NoSuchBucket" {
			return true
		}
	}
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var respErr interface{ HTTPStatusCode() int }
	if errors.As(err, &respErr) {
		if respErr.HTTPStatusCode() == 404 {
			return true
		}
	}
	return false
}

// Ensure S3Backend implements Backend at compile time.
var _ Backend = (*S3Backend)(nil)
