// Package config handles loading and parsing of TrackStore configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for TrackStore.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metadata MetadataConfig `yaml:"metadata"`
	Storage  StorageConfig  `yaml:"storage"`
	Kafka    KafkaConfig    `yaml:"kafka"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// ShutdownTimeout is the graceful shutdown timeout in seconds.
	ShutdownTimeout int `yaml:"shutdown_timeout"`
	// MaxUploadSize is the maximum accepted upload body size in bytes.
	MaxUploadSize int64 `yaml:"max_upload_size"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is the log output format: text, json.
	Format string `yaml:"format"`
}

// MetadataConfig holds metadata store settings.
type MetadataConfig struct {
	// Engine is the metadata backend engine ("sqlite" or "memory").
	Engine string       `yaml:"engine"`
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig holds SQLite-specific metadata store settings.
type SQLiteConfig struct {
	// Path is the filesystem path for the SQLite database file.
	Path string `yaml:"path"`
}

// StorageConfig holds object storage backend settings.
type StorageConfig struct {
	// Backend is the storage backend type ("local", "s3", "gcs", "azure",
	// "memory").
	Backend string      `yaml:"backend"`
	Local   LocalConfig `yaml:"local"`
	Retry   RetryConfig `yaml:"retry"`
	// S3Bucket is the bucket name for the S3 backend.
	S3Bucket string `yaml:"s3_bucket"`
	// S3Region is the AWS region for the S3 backend.
	S3Region string `yaml:"s3_region"`
	// S3Prefix is the optional key prefix for all objects in the bucket.
	S3Prefix string `yaml:"s3_prefix"`
	// S3EndpointURL overrides the S3 endpoint (MinIO, LocalStack).
	S3EndpointURL string `yaml:"s3_endpoint_url"`
	// S3UsePathStyle forces path-style addressing for custom endpoints.
	S3UsePathStyle bool `yaml:"s3_use_path_style"`
	// S3AccessKeyID and S3SecretAccessKey are optional static credentials;
	// when empty the default AWS credential chain is used.
	S3AccessKeyID     string `yaml:"s3_access_key_id"`
	S3SecretAccessKey string `yaml:"s3_secret_access_key"`
	// GCSBucket is the bucket name for the GCS backend.
	GCSBucket string `yaml:"gcs_bucket"`
	// GCSPrefix is the optional key prefix for all objects in the bucket.
	GCSPrefix string `yaml:"gcs_prefix"`
	// GCSEndpointURL overrides the GCS endpoint (fake-gcs-server).
	GCSEndpointURL string `yaml:"gcs_endpoint_url"`
	// AzureContainer is the container name for the Azure backend.
	AzureContainer string `yaml:"azure_container"`
	// AzureAccountURL is the full Azure storage account URL. If empty, it is
	// constructed from AzureAccount as https://{account}.blob.core.windows.net.
	AzureAccountURL string `yaml:"azure_account_url"`
	// AzureAccount is the storage account name for the Azure backend.
	AzureAccount string `yaml:"azure_account"`
	// AzurePrefix is the optional key prefix for all blobs in the container.
	AzurePrefix string `yaml:"azure_prefix"`
}

// LocalConfig holds local filesystem storage backend settings.
type LocalConfig struct {
	// RootDir is the base directory for local object storage.
	RootDir string `yaml:"root_dir"`
}

// RetryConfig holds the retry policy for the object store client.
type RetryConfig struct {
	// Attempts is the fixed attempt cap per operation.
	Attempts int `yaml:"attempts"`
	// BaseDelayMS is the base backoff delay in milliseconds; the delay
	// before attempt N+1 is BaseDelayMS * N.
	BaseDelayMS int `yaml:"base_delay_ms"`
}

// KafkaConfig holds event broker settings shared by the publisher and the
// processor's consumer group.
type KafkaConfig struct {
	// Brokers is the list of Kafka broker addresses. When empty, the server
	// falls back to an in-process publisher (development mode).
	Brokers []string `yaml:"brokers"`
	// Topic is the topic resource identifiers are published to.
	Topic string `yaml:"topic"`
	// GroupID is the processor's consumer group ID.
	GroupID string `yaml:"group_id"`
}

// Load reads a YAML configuration file from the given path and returns a
// parsed Config with defaults applied for unset values. If the primary path
// fails, it falls back to trackstore.example.yaml in the same or parent
// directory.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		fallbackPaths := []string{
			filepath.Join(filepath.Dir(path), "trackstore.example.yaml"),
			filepath.Join(filepath.Dir(path), "..", "trackstore.example.yaml"),
		}
		var fallbackErr error
		for _, fp := range fallbackPaths {
			data, fallbackErr = os.ReadFile(fp)
			if fallbackErr == nil {
				break
			}
		}
		if fallbackErr != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyDefaults(cfg)
	return cfg, nil
}

// Default returns a Config populated with defaults.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills in zero-valued fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8071
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30
	}
	if cfg.Server.MaxUploadSize == 0 {
		cfg.Server.MaxUploadSize = 64 << 20 // 64 MiB
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Metadata.Engine == "" {
		cfg.Metadata.Engine = "sqlite"
	}
	if cfg.Metadata.SQLite.Path == "" {
		cfg.Metadata.SQLite.Path = "data/trackstore.db"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "local"
	}
	if cfg.Storage.Local.RootDir == "" {
		cfg.Storage.Local.RootDir = "data/objects"
	}
	if cfg.Storage.Retry.Attempts == 0 {
		cfg.Storage.Retry.Attempts = 3
	}
	if cfg.Storage.Retry.BaseDelayMS == 0 {
		cfg.Storage.Retry.BaseDelayMS = 1000
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "resource-created"
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "trackstore-processor"
	}
}
