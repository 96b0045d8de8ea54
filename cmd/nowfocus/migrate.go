// ABOUTME: CLI command for migrating focus data between storage backends.
// ABOUTME: Copies everything from the configured backend into sqlite or markdown.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/harperreed/nowfocus/internal/config"
	"github.com/harperreed/nowfocus/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateTo     string
	migrateDest   string
	migrateDryRun bool
	migrateSwitch bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy data to another storage backend",
	Long: `Copy all focus data from the current backend into another one.

Categories, habits, sessions, preferences, and the reminder are copied.
The destination must not already hold data.

USAGE:

  nowfocus migrate --to markdown --dry-run   # Preview what would be copied
  nowfocus migrate --to markdown             # Copy into the data directory
  nowfocus migrate --to sqlite --dest ~/focus --switch

AFTER MIGRATION:

  Without --switch the configured backend is unchanged. Switch with:
    nowfocus config set backend markdown`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateTo != "sqlite" && migrateTo != "markdown" {
			return fmt.Errorf("--to must be sqlite or markdown")
		}
		if migrateTo == cfg.GetBackend() && migrateDest == "" {
			return fmt.Errorf("already using the %s backend; pass --dest to copy elsewhere", migrateTo)
		}

		dest := *cfg
		dest.Backend = migrateTo
		if migrateDest != "" {
			dest.DataDir = migrateDest
		}
		dataDir := dest.GetDataDir()

		hasData, err := destinationHasData(migrateTo, dataDir)
		if err != nil {
			return err
		}
		if hasData {
			return fmt.Errorf("destination %s already has %s data; refusing to merge", dataDir, migrateTo)
		}

		data, err := repo.GetAllData()
		if err != nil {
			return fmt.Errorf("failed to read data: %w", err)
		}

		if migrateDryRun {
			color.Yellow("Dry run mode - no changes will be made")
			fmt.Println()
			fmt.Printf("Would copy into %s (%s):\n", dataDir, migrateTo)
			printMigrateCounts(len(data.Categories), len(data.Habits), len(data.History), len(data.Preferences), data.Reminder != nil)
			return nil
		}

		dst, err := dest.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open destination: %w", err)
		}
		summary, err := storage.MigrateData(repo, dst)
		if closeErr := dst.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		color.Green("✓ Migrated to %s (%s)", dataDir, migrateTo)
		printMigrateCounts(summary.Categories, summary.Habits, summary.History, summary.Preferences, summary.Reminder)

		if migrateSwitch {
			if err := dest.Save(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			fmt.Printf("Now using the %s backend (%s)\n", migrateTo, config.GetConfigPath())
		}
		return nil
	},
}

// destinationHasData reports whether backend already stores data in dir.
func destinationHasData(backend, dir string) (bool, error) {
	if backend == "sqlite" {
		_, err := os.Stat(filepath.Join(dir, "nowfocus.db"))
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return err == nil, err
	}
	for _, sub := range []string{"history", "habits"} {
		nonEmpty, err := storage.IsDirNonEmpty(filepath.Join(dir, sub))
		if err != nil || nonEmpty {
			return nonEmpty, err
		}
	}
	return false, nil
}

func printMigrateCounts(categories, habits, history, prefs int, reminder bool) {
	fmt.Printf("  Categories:  %d\n", categories)
	fmt.Printf("  Habits:      %d\n", habits)
	fmt.Printf("  Sessions:    %d\n", history)
	fmt.Printf("  Preferences: %d\n", prefs)
	if reminder {
		fmt.Println("  Reminder:    yes")
	}
}

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "destination backend: sqlite or markdown")
	migrateCmd.Flags().StringVar(&migrateDest, "dest", "", "destination data directory (default: configured data_dir)")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	migrateCmd.Flags().BoolVar(&migrateSwitch, "switch", false, "use the destination as the configured backend afterwards")
	_ = migrateCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(migrateCmd)
}
