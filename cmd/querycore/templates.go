package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corebrain-ai/querycore/pkg/logging"
	"github.com/corebrain-ai/querycore/pkg/models"
	"github.com/corebrain-ai/querycore/pkg/template"
)

func newTemplateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage query templates",
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered templates in match order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			logger := logging.Setup(cfg.LogLevel, os.Stderr, cfg.LogPretty)
			reg := template.NewRegistry(cfg.TemplatePath, logger)

			for _, t := range reg.Templates() {
				fmt.Printf("%-8s  %-45s  %s\n", t.DBType, t.Pattern, t.Description)
			}
			return nil
		},
	}

	var (
		description string
		sqlTemplate string
		dbType      string
		tables      []string
	)
	addCmd := &cobra.Command{
		Use:   "add <pattern>",
		Short: "Save a custom template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			logger := logging.Setup(cfg.LogLevel, os.Stderr, cfg.LogPretty)
			reg := template.NewRegistry(cfg.TemplatePath, logger)

			gen := template.NoQuery
			if sqlTemplate != "" {
				gen = template.SQLTemplate(sqlTemplate)
			}
			t, err := template.New(args[0], description, gen, dbType, tables)
			if err != nil {
				return err
			}
			if err := reg.SaveCustom(t); err != nil {
				return err
			}
			fmt.Printf("Saved template %q\n", t.Pattern)
			return nil
		},
	}
	addCmd.Flags().StringVar(&description, "description", "", "template description")
	addCmd.Flags().StringVar(&sqlTemplate, "sql", "", "SQL template with $1..$n placeholders")
	addCmd.Flags().StringVar(&dbType, "db-type", "sql", "target kind (sql or mongodb)")
	addCmd.Flags().StringSliceVar(&tables, "tables", nil, "tables this template applies to")

	var matchTables []string
	matchCmd := &cobra.Command{
		Use:   "match <query>",
		Short: "Try to match a query against the registered templates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			logger := logging.Setup(cfg.LogLevel, os.Stderr, cfg.LogPretty)
			reg := template.NewRegistry(cfg.TemplatePath, logger)

			schema := models.Schema{Tables: matchTables}
			t, params, ok := reg.FindMatching(args[0], schema)
			if !ok {
				fmt.Println("no matching template")
				return nil
			}

			fmt.Printf("Matched: %s (params %v)\n", t.Pattern, params)
			q, ok := t.Generate(params, schema)
			if !ok {
				fmt.Println("template could not generate a complete query")
				return nil
			}
			out, err := json.MarshalIndent(q, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	matchCmd.Flags().StringSliceVar(&matchTables, "tables", nil, "schema table names for applicability filtering")

	cmd.AddCommand(listCmd, addCmd, matchCmd)
	return cmd
}
