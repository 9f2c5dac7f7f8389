package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: "9090"
redis:
  addr: localhost:6379
  ttl: 5m
catalog:
  id: reference
  path: catalogs/custom.yaml
log:
  file: logs/test.log
  maxSizeMB: 5
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Catalog.Path != "catalogs/custom.yaml" || cfg.Log.MaxSizeMB != 5 {
		t.Fatalf("unexpected catalog/log config %+v", cfg)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("expected defaults, got %v", err)
	}
	if cfg.Redis.Addr != "" || cfg.Postgres.URL != "" {
		t.Fatalf("expected zero config, got %+v", cfg)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [}"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestTTLDuration(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("empty: got %s", got)
	}
	if got := TTLDuration("90s", time.Minute); got != 90*time.Second {
		t.Fatalf("parsed: got %s", got)
	}
	if got := TTLDuration("soon", time.Minute); got != time.Minute {
		t.Fatalf("invalid: got %s", got)
	}
}
