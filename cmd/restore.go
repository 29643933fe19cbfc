package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xolan/haven/internal/cli"
	"github.com/xolan/haven/internal/cli/handlers"
)

// restoreCmd represents the restore command
var restoreCmd = &cobra.Command{
	Use:   "restore <entity> [backup_number]",
	Short: "Restore an entity from a backup file",
	Long: `Restore the storage file of an entity from a backup.

A backup is taken every time a record is deleted; the three most recent are
kept. By default, restores from the most recent backup (.bak.1).
Backups are only kept by the jsonl storage backend.

Examples:
  haven restore mood        Restore check-ins from the most recent backup
  haven restore journal 2   Restore the journal from backup #2`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		backup := ""
		if len(args) == 2 {
			backup = args[1]
		}
		handlers.RestoreBackup(cli.GetDeps(), args[0], backup)
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}
