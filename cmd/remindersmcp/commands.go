package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/localrivet/remindersmcp/internal/config"
	"github.com/localrivet/remindersmcp/internal/errortypes"
	"github.com/localrivet/remindersmcp/internal/journal"
	"github.com/localrivet/remindersmcp/internal/tools"
	"github.com/spf13/cobra"
)

// newToolsCommand prints the tool descriptors advertised to MCP clients.
func newToolsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the MCP tool descriptors as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(tools.Descriptors())
		},
	}
}

// newHistoryCommand prints the most recent journaled tool calls.
func newHistoryCommand(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent tool calls from the call journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cfg.Journal.SQLitePath == "" {
				return errortypes.ConfigError(fmt.Errorf("journal.sqlite_path is not set"), "call journal is disabled")
			}

			j := journal.NewSQLiteJournal()
			if err := j.Initialize(cfg.Journal.SQLitePath); err != nil {
				return errortypes.DatabaseError(err, "failed to open call journal")
			}
			defer j.Close()

			entries, err := j.Recent(limit)
			if err != nil {
				return errortypes.DatabaseError(err, "failed to read call journal")
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tTOOL\tSTATUS\tDURATION\tARGS\tERROR")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.CreatedAt.Format(time.RFC3339),
					e.Tool,
					e.Status,
					e.Duration.Round(time.Millisecond),
					strings.Join(e.Argv, " "),
					e.Error)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	return cmd
}

// newConfigCommand groups configuration helpers.
func newConfigCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewConfig()
			if err := cfg.SaveToFile(opts.configPath); err != nil {
				return errortypes.ConfigError(err, "failed to write configuration")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", opts.configPath)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		},
	})

	return cmd
}
