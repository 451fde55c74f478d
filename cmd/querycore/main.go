package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/corebrain-ai/querycore/pkg/config"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "querycore",
		Short:   "Query-result cache and optimization advisor",
		Version: version,
	}

	root.AddCommand(
		newCacheCmd(),
		newAdvisorCmd(),
		newTemplateCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file if given, otherwise starts from defaults,
// and fills in home-directory paths. Core packages never assume a home
// directory themselves.
func loadConfig(path string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home dir: %w", err)
	}
	base := filepath.Join(home, ".querycore")

	if cfg.CacheDir == "" {
		cfg.CacheDir = filepath.Join(base, "cache")
	}
	if cfg.QueryLogPath == "" {
		cfg.QueryLogPath = filepath.Join(base, "query_log.db")
	}
	if cfg.TemplatePath == "" {
		cfg.TemplatePath = filepath.Join(base, "templates.json")
	}

	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	return cfg, nil
}
