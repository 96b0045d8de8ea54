// ABOUTME: CLI commands for managing focus categories.
// ABOUTME: Supports list, add, remove, and select subcommands.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/nowfocus/internal/analytics"
	"github.com/harperreed/nowfocus/internal/focus"
	"github.com/harperreed/nowfocus/internal/storage"
	"github.com/spf13/cobra"
)

var categoryCmd = &cobra.Command{
	Use:     "category",
	Aliases: []string{"cat", "c"},
	Short:   "Manage focus categories",
	Long: `Manage the categories sessions are recorded under.

COMMANDS:

  list     List categories (the selected one is marked)
  add      Add a category
  remove   Remove a category and every session tagged with it
  select   Choose the category 'nowfocus start' uses by default

A fresh install starts with a single "reading" category.`,
}

var categoryListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		categories, err := repo.ListCategories()
		if err != nil {
			return fmt.Errorf("failed to list categories: %w", err)
		}

		if len(categories) == 0 {
			fmt.Println("No categories. Add one with 'nowfocus category add <name>'.")
			return nil
		}

		selected, _, err := repo.GetPreference(storage.PrefSelectedCategory)
		if err != nil {
			return err
		}
		for _, c := range categories {
			if c == selected {
				fmt.Printf("%s %s\n", color.GreenString("*"), bold.Sprint(c))
			} else {
				fmt.Printf("  %s\n", c)
			}
		}
		return nil
	},
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := repo.AddCategory(args[0]); err != nil {
			if errors.Is(err, storage.ErrDuplicateCategory) {
				return fmt.Errorf("category %q already exists", args[0])
			}
			return fmt.Errorf("failed to add category: %w", err)
		}

		tracker.Log(analytics.EventCategoryAdd, analytics.Params{analytics.ParamCategoryName: args[0]})
		color.Green("✓ Added category %s", args[0])
		return nil
	},
}

var categoryRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm", "delete"},
	Short:   "Remove a category and its sessions",
	Long: `Remove a category.

CAUTION:

  Every session tagged with the category is deleted as well.
  There is no undo.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := repo.RemoveCategory(args[0])
		if err != nil {
			return fmt.Errorf("failed to remove category: %w", err)
		}

		selected, _, err := repo.GetPreference(storage.PrefSelectedCategory)
		if err == nil && selected == args[0] {
			if err := repo.SetPreference(storage.PrefSelectedCategory, ""); err != nil {
				return err
			}
		}

		tracker.Log(analytics.EventCategoryDelete, analytics.Params{analytics.ParamCategoryName: args[0]})
		color.Yellow("✗ Removed category %s", args[0])
		if removed > 0 {
			fmt.Printf("  and %d session(s)\n", removed)
		}
		return nil
	},
}

var categorySelectCmd = &cobra.Command{
	Use:   "select <name>",
	Short: "Select the default category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := focus.SelectCategory(repo, tracker, args[0]); err != nil {
			if errors.Is(err, focus.ErrUnknownCategory) {
				return fmt.Errorf("%w (add it with 'nowfocus category add')", err)
			}
			return err
		}
		color.Green("✓ Selected %s", args[0])
		return nil
	},
}

func init() {
	categoryCmd.AddCommand(categoryListCmd, categoryAddCmd, categoryRemoveCmd, categorySelectCmd)
	rootCmd.AddCommand(categoryCmd)
}
