package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xolan/haven/internal/cli"
	"github.com/xolan/haven/internal/cli/handlers"
)

var rootCmd = &cobra.Command{
	Use:   "haven",
	Short: "A private mood and journaling companion",
	Long: `haven is a terminal companion for daily mood check-ins, journaling and a
small supportive community.

Usage:
  haven                                        Show your streak and today's check-in
  haven <mood>                                 Check in (amazing, good, okay, low, rough or 1-5)
  haven checkin good --note 'slept well'       Check in with a note and --tag
  haven trend                                  Chart your recent moods
  haven calendar [YYYY-MM]                     Show a month of check-ins
  haven journal add <title> --content 'text'   Write a journal entry
  haven journal insights <index>               Reflect on an entry with the journal analyzer
  haven feed                                   Read the community feed
  haven export json --entity journal           Export your data
  haven validate                               Check storage health
  haven tui                                    Launch the interactive terminal UI`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return connect(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		disconnect()
	},
	Run: func(cmd *cobra.Command, args []string) {
		if CheckTUIFlag(cmd) {
			return
		}
		deps := cli.GetDeps()
		if len(args) == 1 {
			handlers.CheckIn(cmd.Context(), deps, args[0], "", nil)
			return
		}
		handlers.ShowStreak(cmd.Context(), deps)
	},
}

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check storage health",
	Long:  `Validate every stored entity and report its health, including any corrupted records.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		handlers.ValidateStorage(cmd.Context(), cli.GetDeps())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(version, commit, date string) {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(
		"haven version {{.Version}}\n" +
			"commit: " + commit + "\n" +
			"built: " + date + "\n",
	)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
