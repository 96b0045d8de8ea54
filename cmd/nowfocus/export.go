// ABOUTME: CLI commands for exporting and importing focus data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats and JSON import.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/nowfocus/internal/storage"
	"github.com/spf13/cobra"
)

var (
	exportOutput   string
	exportCategory string
	exportSince    string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export focus data",
	Long: `Export focus data in various formats.

FORMATS:

  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export (sessions grouped by category)
  markdown   Markdown tables (for documentation/sharing)

OPTIONS:

  --output, -o     Write to file instead of stdout
  --category, -c   Only this category (markdown only)
  --since          Only include sessions since this date (markdown only)

EXAMPLES:

  nowfocus export json                        # Export all data as JSON
  nowfocus export json -o backup.json         # Save to file
  nowfocus export yaml                        # Export as YAML
  nowfocus export markdown -c reading         # Reading sessions as Markdown
  nowfocus export markdown --since 2025-01-01 # Sessions from 2025 onward`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format := args[0]

		var data []byte
		var err error

		switch format {
		case "json":
			data, err = storage.ExportJSON(repo)
		case "yaml":
			data, err = storage.ExportYAML(repo)
		case "markdown", "md":
			var category *string
			if exportCategory != "" {
				category = &exportCategory
			}
			var since *time.Time
			if exportSince != "" {
				t, perr := time.ParseInLocation("2006-01-02", exportSince, time.Local)
				if perr != nil {
					return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", exportSince)
				}
				since = &t
			}
			var md string
			md, err = storage.ExportMarkdown(repo, category, since)
			data = []byte(md)
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", format)
		}

		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
		}

		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import focus data from JSON",
	Long: `Import focus data from a JSON backup file.

Categories, habits, sessions, preferences, and the reminder are imported
from a file written by 'nowfocus export json'. Categories that already
exist are skipped; duplicate session or habit IDs cause an error.

EXAMPLES:

  nowfocus import backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		raw, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		data, err := storage.ImportJSON(repo, raw)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		color.Green("✓ Imported from %s", filename)
		fmt.Printf("  %d categories, %d habits, %d sessions\n",
			len(data.Categories), len(data.Habits), len(data.History))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVarP(&exportCategory, "category", "c", "", "only this category (markdown only)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include sessions since date (YYYY-MM-DD)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
