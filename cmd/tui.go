package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xolan/haven/internal/cli"
	"github.com/xolan/haven/internal/tui"
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	Long: `Launch the interactive Terminal User Interface for haven.

Views available:
  - Mood: Check in, browse the month calendar and your trend
  - Journal: Browse, search and star entries, and reflect with insights
  - Community: Read the feed and like posts

Changes made by other haven commands show up while the TUI is open.

Keyboard shortcuts:
  - Tab/Shift+Tab: Navigate between views
  - 1-5: Check in (Mood view)
  - j/k or arrows: Navigate within lists
  - T: Next theme
  - ?: Show help
  - q: Quit`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runTUI(cmd)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	// Add --tui flag to root command for quick access
	rootCmd.PersistentFlags().Bool("tui", false, "Launch interactive terminal UI")
}

// runTUI runs the TUI on the connected services
func runTUI(cmd *cobra.Command) {
	deps := cli.GetDeps()
	if err := tui.Run(cmd.Context(), deps.Services); err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error running TUI: %v\n", err)
		deps.Exit(1)
	}
}

// CheckTUIFlag checks if the --tui flag is set and runs the TUI if so.
// Returns true if the TUI was launched, false otherwise.
func CheckTUIFlag(cmd *cobra.Command) bool {
	tuiFlag, _ := cmd.Root().PersistentFlags().GetBool("tui")
	if tuiFlag {
		runTUI(cmd)
		return true
	}
	return false
}
