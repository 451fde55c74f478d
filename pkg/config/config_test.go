package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.CacheTTL != 24*time.Hour {
		t.Errorf("expected 24h TTL, got %s", cfg.CacheTTL)
	}
	if cfg.MemoryCapacity != 100 {
		t.Errorf("expected capacity 100, got %d", cfg.MemoryCapacity)
	}
	if cfg.Advisor.VolumeThreshold != 100 {
		t.Errorf("expected volume threshold 100, got %d", cfg.Advisor.VolumeThreshold)
	}
	if cfg.Advisor.DefaultCost != 0.09 {
		t.Errorf("expected default cost 0.09, got %f", cfg.Advisor.DefaultCost)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
cache_dir: /tmp/qc-cache
cache_ttl: 3600000000000
memory_capacity: 10
advisor:
  volume_threshold: 50
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CacheDir != "/tmp/qc-cache" {
		t.Errorf("unexpected cache dir: %s", cfg.CacheDir)
	}
	if cfg.CacheTTL != time.Hour {
		t.Errorf("expected 1h TTL, got %s", cfg.CacheTTL)
	}
	if cfg.MemoryCapacity != 10 {
		t.Errorf("expected capacity 10, got %d", cfg.MemoryCapacity)
	}
	if cfg.Advisor.VolumeThreshold != 50 {
		t.Errorf("expected volume threshold 50, got %d", cfg.Advisor.VolumeThreshold)
	}
	// Untouched fields keep their defaults.
	if cfg.Advisor.HourlyLoadMin != 20 {
		t.Errorf("expected hourly load min 20, got %d", cfg.Advisor.HourlyLoadMin)
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("QC_TEST_DIR", "/srv/querycore")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("cache_dir: $QC_TEST_DIR/cache\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CacheDir != "/srv/querycore/cache" {
		t.Errorf("env not expanded: %s", cfg.CacheDir)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
