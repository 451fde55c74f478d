package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/corebrain-ai/querycore/pkg/analyzer"
	"github.com/corebrain-ai/querycore/pkg/config"
	"github.com/corebrain-ai/querycore/pkg/logging"
)

func openAnalyzer(cfg *config.Config) (*analyzer.Analyzer, error) {
	logger := logging.Setup(cfg.LogLevel, os.Stderr, cfg.LogPretty)
	return analyzer.New(cfg.QueryLogPath, cfg.Advisor, logger)
}

func newAdvisorCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "advisor",
		Short: "Analyze query usage and suggest optimizations",
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")

	var limit int
	patternsCmd := &cobra.Command{
		Use:   "patterns",
		Short: "Show the most common query patterns",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			a, err := openAnalyzer(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			patterns, err := a.CommonPatterns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, p := range patterns {
				fmt.Printf("%5d  %-50s  avg %.3fs  ~%.2f/month\n",
					p.Count, p.Pattern, p.AvgExecutionTime, p.EstimatedMonthlyCost)
			}
			return nil
		},
	}
	patternsCmd.Flags().IntVar(&limit, "limit", 5, "maximum patterns to show")

	suggestCmd := &cobra.Command{
		Use:   "suggest",
		Short: "Generate optimization suggestions from the query log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			a, err := openAnalyzer(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			suggestions, err := a.Suggestions(cmd.Context())
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(suggestions, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	var (
		configID      string
		collection    string
		executionTime float64
		cost          float64
		results       int
	)
	logCmd := &cobra.Command{
		Use:   "log <query>",
		Short: "Record an executed query in the log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			a, err := openAnalyzer(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if cost == 0 {
				cost = cfg.Advisor.DefaultCost
			}
			return a.Record(cmd.Context(), args[0], configID, collection, executionTime, cost, results)
		},
	}
	logCmd.Flags().StringVar(&configID, "config-id", "", "database configuration ID")
	logCmd.Flags().StringVar(&collection, "collection", "", "collection or table name")
	logCmd.Flags().Float64Var(&executionTime, "execution-time", 0, "execution time in seconds")
	logCmd.Flags().Float64Var(&cost, "cost", 0, "estimated query cost (defaults to the configured cost)")
	logCmd.Flags().IntVar(&results, "results", 0, "result row count")

	var (
		sinceHours  int
		recentLimit int
	)
	recentCmd := &cobra.Command{
		Use:   "recent",
		Short: "Show recent query-log records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			a, err := openAnalyzer(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			records, err := a.RecentRecords(cmd.Context(), time.Now().Add(-time.Duration(sinceHours)*time.Hour), recentLimit)
			if err != nil {
				return err
			}
			for _, r := range records {
				fmt.Printf("%s  %-40s  %.3fs  %d rows\n",
					r.Timestamp.Format(time.RFC3339), r.Query, r.ExecutionTime, r.ResultCount)
			}
			return nil
		},
	}
	recentCmd.Flags().IntVar(&sinceHours, "since-hours", 24, "look back this many hours")
	recentCmd.Flags().IntVar(&recentLimit, "limit", 50, "maximum records to show")

	var beforeDays int
	purgeCmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete old query-log records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			a, err := openAnalyzer(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			n, err := a.Purge(cmd.Context(), time.Now().AddDate(0, 0, -beforeDays))
			if err != nil {
				return err
			}
			fmt.Printf("Purged %d records\n", n)
			return nil
		},
	}
	purgeCmd.Flags().IntVar(&beforeDays, "before-days", 90, "delete records older than this many days")

	cmd.AddCommand(patternsCmd, suggestCmd, logCmd, recentCmd, purgeCmd)
	return cmd
}
