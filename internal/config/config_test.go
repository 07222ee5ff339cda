package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8071 {
		t.Errorf("default port = %d, want 8071", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default log level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Storage.Backend != "local" {
		t.Errorf("default storage backend = %q, want local", cfg.Storage.Backend)
	}
	if cfg.Storage.Retry.Attempts != 3 || cfg.Storage.Retry.BaseDelayMS != 1000 {
		t.Errorf("default retry = %+v, want 3 attempts / 1000ms", cfg.Storage.Retry)
	}
	if cfg.Kafka.Topic != "resource-created" {
		t.Errorf("default topic = %q, want resource-created", cfg.Kafka.Topic)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
  max_upload_size: 1048576
storage:
  backend: s3
  s3_bucket: tracks
  retry:
    attempts: 5
    base_delay_ms: 50
kafka:
  brokers: ["localhost:9092"]
  topic: created
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.MaxUploadSize != 1048576 {
		t.Errorf("max upload size = %d, want 1048576", cfg.Server.MaxUploadSize)
	}
	if cfg.Storage.Backend != "s3" || cfg.Storage.S3Bucket != "tracks" {
		t.Errorf("storage = %+v, want s3/tracks", cfg.Storage)
	}
	if cfg.Storage.Retry.Attempts != 5 || cfg.Storage.Retry.BaseDelayMS != 50 {
		t.Errorf("retry = %+v, want 5 attempts / 50ms", cfg.Storage.Retry)
	}
	if len(cfg.Kafka.Brokers) != 1 || cfg.Kafka.Brokers[0] != "localhost:9092" {
		t.Errorf("brokers = %v, want [localhost:9092]", cfg.Kafka.Brokers)
	}
	if cfg.Kafka.Topic != "created" {
		t.Errorf("topic = %q, want created", cfg.Kafka.Topic)
	}
	// Defaults still fill unset fields.
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("host = %q, want default 0.0.0.0", cfg.Server.Host)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load on a missing file (no fallback) should error")
	}
}
