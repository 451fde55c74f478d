package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	cachepkg "github.com/corebrain-ai/querycore/pkg/cache"
	"github.com/corebrain-ai/querycore/pkg/config"
	"github.com/corebrain-ai/querycore/pkg/logging"
	"github.com/corebrain-ai/querycore/pkg/metadata"
)

func openCache(cfg *config.Config) (*cachepkg.Cache, *metadata.Store, error) {
	logger := logging.Setup(cfg.LogLevel, os.Stderr, cfg.LogPretty)

	meta, err := metadata.New(filepath.Join(cfg.CacheDir, "cache_metadata.db"))
	if err != nil {
		return nil, nil, err
	}

	c, err := cachepkg.New(cfg.CacheDir, cfg.CacheTTL, cfg.MemoryCapacity, meta, logger)
	if err != nil {
		meta.Close()
		return nil, nil, err
	}
	return c, meta, nil
}

func newCacheCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the query-result cache",
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			c, meta, err := openCache(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = meta.Close() }()

			stats, err := c.Stats()
			if err != nil {
				return err
			}
			fmt.Printf("Memory entries: %d\n", stats.MemoryEntries)
			fmt.Printf("Disk entries:   %d\n", stats.DiskEntries)
			fmt.Printf("Tracked total:  %d\n", stats.TotalTracked)
			fmt.Printf("Avg age:        %.0fs\n", stats.AvgAgeSeconds)
			fmt.Printf("Directory:      %s\n", stats.CacheDir)
			for _, q := range stats.TopQueries {
				fmt.Printf("  %4d  %s\n", q.Hits, q.Query)
			}
			return nil
		},
	}

	var olderThan time.Duration
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			c, meta, err := openCache(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = meta.Close() }()

			if err := c.Clear(olderThan); err != nil {
				return err
			}
			if olderThan > 0 {
				fmt.Printf("Cleared entries older than %s\n", olderThan)
			} else {
				fmt.Println("Cache cleared")
			}
			return nil
		},
	}
	clearCmd.Flags().DurationVar(&olderThan, "older-than", 0, "only clear entries last accessed before now minus this duration")

	cmd.AddCommand(statsCmd, clearCmd)
	return cmd
}
