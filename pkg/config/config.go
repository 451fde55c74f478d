package config

import (
	"fmt"
	"os"
	"time"

	"github.com/corebrain-ai/querycore/pkg/analyzer"
	"gopkg.in/yaml.v3"
)

// Config holds all querycore configuration. Paths left empty are resolved
// to their home-directory defaults by the caller, never inside core packages.
type Config struct {
	CacheDir       string          `yaml:"cache_dir"`
	CacheTTL       time.Duration   `yaml:"cache_ttl"`
	MemoryCapacity int             `yaml:"memory_capacity"`
	QueryLogPath   string          `yaml:"query_log_path"`
	TemplatePath   string          `yaml:"template_path"`
	LogLevel       string          `yaml:"log_level"`
	LogPretty      bool            `yaml:"log_pretty"`
	Advisor        analyzer.Config `yaml:"advisor"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		CacheTTL:       24 * time.Hour,
		MemoryCapacity: 100,
		LogLevel:       "info",
		Advisor:        analyzer.DefaultConfig(),
	}
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}
