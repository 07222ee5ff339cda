// Package main is the entry point for the TrackStore audio resource server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/trackstore/trackstore/internal/config"
	"github.com/trackstore/trackstore/internal/ingest"
	"github.com/trackstore/trackstore/internal/logging"
	"github.com/trackstore/trackstore/internal/metadata"
	"github.com/trackstore/trackstore/internal/metrics"
	"github.com/trackstore/trackstore/internal/publish"
	"github.com/trackstore/trackstore/internal/server"
	"github.com/trackstore/trackstore/internal/song"
	"github.com/trackstore/trackstore/internal/storage"
)

func main() {
	configPath := flag.String("config", "trackstore.yaml", "path to configuration file")
	port := flag.Int("port", 0, "override listening port (default: from config or 8071)")
	host := flag.String("host", "", "override listening host (default: from config or 0.0.0.0)")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error (default: from config or info)")
	logFormat := flag.String("log-format", "", "log format: text, json (default: from config or text)")
	shutdownTimeout := flag.Int("shutdown-timeout", 0, "graceful shutdown timeout in seconds (default: from config or 30)")
	maxUploadSize := flag.Int64("max-upload-size", 0, "maximum upload size in bytes (default: from config or 67108864)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Command-line flags override config file values.
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Logging.Format = *logFormat
	}
	if *shutdownTimeout != 0 {
		cfg.Server.ShutdownTimeout = *shutdownTimeout
	}
	if *maxUploadSize != 0 {
		cfg.Server.MaxUploadSize = *maxUploadSize
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	metrics.Register()

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

	pub, err := buildPublisher(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize publisher: %v\n", err)
		os.Exit(1)
	}
	defer pub.Close()

	ing := ingest.NewService(records, client, pub)
	songs := song.NewService(records)

	srv := server.New(cfg, records, ing, songs)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	// Start the server in a goroutine so we can handle shutdown signals.
	errCh := make(chan error, 1)
	go func() {
		slog.Info("TrackStore listening", "addr", addr)
		if err := srv.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("Received signal, shutting down", "signal", sig)

		// Give in-flight requests time to complete.
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("Shutdown error", "error", err)
		}
		slog.Info("Server stopped")

	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	}
}

// buildMetadataStore constructs the metadata store selected by the config.
func buildMetadataStore(cfg *config.Config) (metadata.Store, error) {
	switch cfg.Metadata.Engine {
	case "memory":
		slog.Info("Metadata store initialized", "engine", "memory")
		return metadata.NewMemoryStore(), nil
	default:
		dbPath := cfg.Metadata.SQLite.Path
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating metadata directory: %w", err)
		}
		store, err := metadata.NewSQLiteStore(dbPath)
		if err != nil {
			return nil, err
		}
		slog.Info("Metadata store initialized", "engine", "sqlite", "path", dbPath)
		return store, nil
	}
}

// buildStorageBackend constructs the object storage backend selected by the
// config.
func buildStorageBackend(cfg *config.Config) (storage.Backend, error) {
	ctx := context.Background()

	switch cfg.Storage.Backend {
	case "s3":
		if cfg.Storage.S3Bucket == "" {
			return nil, fmt.Errorf("storage.s3_bucket is required when backend is 's3'")
		}
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
		if cfg.Storage.GCSBucket == "" {
			return nil, fmt.Errorf("storage.gcs_bucket is required when backend is 'gcs'")
		}
		return storage.NewGCSBackend(ctx, cfg.Storage.GCSBucket, cfg.Storage.GCSPrefix, cfg.Storage.GCSEndpointURL)
	case "azure":
		if cfg.Storage.AzureContainer == "" {
			return nil, fmt.Errorf("storage.azure_container is required when backend is 'azure'")
		}
		accountURL := cfg.Storage.AzureAccountURL
		if accountURL == "" {
			if cfg.Storage.AzureAccount == "" {
				return nil, fmt.Errorf("storage.azure_account or storage.azure_account_url is required when backend is 'azure'")
			}
			accountURL = fmt.Sprintf("https://%s.blob.core.windows.net", cfg.Storage.AzureAccount)
		}
		return storage.NewAzureBackend(ctx, cfg.Storage.AzureContainer, accountURL, cfg.Storage.AzurePrefix)
	case "memory":
		slog.Info("Storage backend initialized", "backend", "memory")
		return storage.NewMemoryBackend(), nil
	default:
		root := cfg.Storage.Local.RootDir
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, fmt.Errorf("creating storage root directory: %w", err)
		}
		backend, err := storage.NewLocalBackend(root)
		if err != nil {
			return nil, err
		}
		// Clean orphan temp files from incomplete writes. Runs on every boot.
		if err := backend.CleanTempFiles(); err != nil {
			slog.Warn("Failed to clean temp files", "error", err)
		}
		slog.Info("Storage backend initialized", "backend", "local", "root", root)
		return backend, nil
	}
}

// buildPublisher connects the Kafka publisher, or falls back to an
// in-process publisher when no brokers are configured.
func buildPublisher(cfg *config.Config) (publish.Publisher, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		slog.Warn("No Kafka brokers configured, events stay in process")
		return publish.NewMemoryPublisher(), nil
	}
	return publish.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
}
