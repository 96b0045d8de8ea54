// ABOUTME: CLI commands for viewing and editing the config file.
// ABOUTME: Supports show and set; neither touches storage.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/nowfocus/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or change settings",
	Long: `View or change nowfocus settings.

KEYS:

  backend            sqlite (default) or markdown
  data_dir           where data lives (default ~/.local/share/nowfocus)
  duration_minutes   countdown length (default 25)
  notifier           console, desktop, or webhook
  webhook_url        URL the webhook notifier POSTs to
  listen_addr        address for 'nowfocus serve' (default 127.0.0.1:7315)
  analytics          true/false, local event log (default true)
  debug              true/false, verbose logging to stderr

EXAMPLES:

  nowfocus config show
  nowfocus config set duration_minutes 50
  nowfocus config set notifier desktop`,
	Annotations: map[string]string{skipStorage: "true"},
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show effective settings",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, faint.Sprint(config.GetConfigPath()))
		values := cfg.Values()
		for _, k := range config.Keys() {
			v := values[k]
			if v == "" {
				v = faint.Sprint("(unset)")
			}
			fmt.Fprintf(out, "%s %s\n", padRight(k, 18), v)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:         "set <key> <value>",
	Short:       "Change a setting",
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		color.Green("✓ %s = %s", args[0], cfg.Values()[args[0]])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
