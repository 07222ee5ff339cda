// Package main is the entry point for the TrackStore metadata processor. It
// consumes resource-created events, extracts song metadata from the ingested
// audio, and stores the resulting records. It shares the metadata store and
// object storage with the TrackStore server through the same configuration.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/trackstore/trackstore/internal/config"
	"github.com/trackstore/trackstore/internal/ingest"
	"github.com/trackstore/trackstore/internal/logging"
	"github.com/trackstore/trackstore/internal/metadata"
	"github.com/trackstore/trackstore/internal/process"
	"github.com/trackstore/trackstore/internal/publish"
	"github.com/trackstore/trackstore/internal/song"
	"github.com/trackstore/trackstore/internal/storage"
)

func main() {
	configPath := flag.String("config", "trackstore.yaml", "path to configuration file")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error (default: from config or info)")
	logFormat := flag.String("log-format", "", "log format: text, json (default: from config or text)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Logging.Format = *logFormat
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

	if len(cfg.Kafka.Brokers) == 0 {
		fmt.Fprintf(os.Stderr, "kafka.brokers is required for the processor\n")
		os.Exit(1)
	}

	records, err := buildMetadataStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize metadata store: %v\n", err)
		os.Exit(1)
	}
	defer records.Close()

	backend, err := buildStorageBackend(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize storage backend: %v\n", err)
		os.Exit(1)
	}
	client := storage.NewClient(backend,
		cfg.Storage.Retry.Attempts,
		time.Duration(cfg.Storage.Retry.BaseDelayMS)*time.Millisecond)

	// The processor only reads resources, so its ingest service never
	// publishes anything.
	source := ingest.NewService(records, client, publish.NewMemoryPublisher())
	sink := song.NewService(records)
	processor := process.NewProcessor(source, sink)

	consumer, err := process.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, processor)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize consumer: %v\n", err)
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("TrackStore processor running", "group", cfg.Kafka.GroupID, "topic", cfg.Kafka.Topic)
	if err := consumer.Run(ctx); err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "consumer error: %v\n", err)
		os.Exit(1)
	}
	slog.Info("Processor stopped")
}

// buildMetadataStore constructs the metadata store selected by the config.
func buildMetadataStore(cfg *config.Config) (metadata.Store, error) {
	switch cfg.Metadata.Engine {
	case "memory":
		return metadata.NewMemoryStore(), nil
	default:
		dbPath := cfg.Metadata.SQLite.Path
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating metadata directory: %w", err)
		}
		return metadata.NewSQLiteStore(dbPath)
	}
}

// buildStorageBackend constructs the object storage backend selected by the
// config. The processor never writes objects, so the local backend skips
// temp file cleanup and leaves that to the server.
func buildStorageBackend(cfg *config.Config) (storage.Backend, error) {
	ctx := context.Background()

	switch cfg.Storage.Backend {
	case "s3":
		region := cfg.Storage.S3Region
		if region == "" {
			region = "us-east-1"
		}
		return storage.NewS3Backend(ctx, storage.S3Options{
			Bucket:          cfg.Storage.S3Bucket,
			Region:          region,
			Prefix:          cfg.Storage.S3Prefix,
			EndpointURL:     cfg.Storage.S3EndpointURL,
			UsePathStyle:    cfg.Storage.S3UsePathStyle,
			AccessKeyID:     cfg.Storage.S3AccessKeyID,
			SecretAccessKey: cfg.Storage.S3SecretAccessKey,
		})
	case "gcs":
		return storage.NewGCSBackend(ctx, cfg.Storage.GCSBucket, cfg.Storage.GCSPrefix, cfg.Storage.GCSEndpointURL)
	case "azure":
		accountURL := cfg.Storage.AzureAccountURL
		if accountURL == "" {
			accountURL = fmt.Sprintf("https://%s.blob.core.windows.net", cfg.Storage.AzureAccount)
		}
		return storage.NewAzureBackend(ctx, cfg.Storage.AzureContainer, accountURL, cfg.Storage.AzurePrefix)
	case "memory":
		return nil, fmt.Errorf("the memory backend cannot be shared with the server")
	default:
		return storage.NewLocalBackend(cfg.Storage.Local.RootDir)
	}
}
