// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs a stdio MCP server exposing focus history, habits, and streaks.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/nowfocus/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP allows AI assistants like Claude to read your focus history and manage
habits and categories through a standardized protocol. The server
communicates via stdin/stdout.

CLAUDE DESKTOP CONFIGURATION:

  Add this to your Claude Desktop config (claude_desktop_config.json):

  {
    "mcpServers": {
      "nowfocus": {
        "command": "nowfocus",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  list_history      Recent focus sessions
  get_streak        Consecutive-day streak (overall, category, or habit)
  get_stats         Totals, presets finished today, and per-category time
  add_habit         Create a habit
  list_habits       List habits with total focus time
  delete_habit      Delete a habit and its sessions
  list_categories   List categories
  add_category      Add a category
  remove_category   Remove a category and its sessions

AVAILABLE RESOURCES:

  focus://today     Today's sessions and presets
  focus://streak    Streaks overall and per category
  focus://summary   Last 7 days at a glance`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(repo, tracker)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
