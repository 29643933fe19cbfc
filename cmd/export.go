package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xolan/haven/internal/cli"
	"github.com/xolan/haven/internal/cli/handlers"
)

// exportCmd represents the export parent command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export your data to various formats",
	Long: `Export your records for backup, migration or your own analysis.

Available formats:
  json    Export records as JSON with metadata
  yaml    Export records as YAML with metadata
  csv     Export records as CSV

Entities:
  mood (default), journal, profile, post, interaction

Examples:
  haven export json                           Export all check-ins as JSON
  haven export json --entity journal          Export your journal
  haven export csv --last 30 > moods.csv      Export the last 30 days to a file
  haven export yaml --from 2024-01-01 --to 2024-01-31`,
}

func newExportFormatCmd(format, short string) *cobra.Command {
	c := &cobra.Command{
		Use:   format,
		Short: short,
		Long: short + `.

Only your own records are exported. Check-ins are filtered on their entry date,
everything else on the date it was created.

Date Filtering:
  Use --from and --to to filter by date range
  Use --last to filter by relative days (e.g., 'last 7 days')`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			entity, _ := cmd.Flags().GetString("entity")
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")
			last, _ := cmd.Flags().GetInt("last")
			handlers.Export(cmd.Context(), cli.GetDeps(), handlers.ExportOptions{
				Format: format,
				Entity: entity,
				From:   from,
				To:     to,
				Last:   last,
			})
		},
	}
	c.Flags().StringP("entity", "e", "", "Entity to export (default mood)")
	c.Flags().String("from", "", "Start date for filtering (YYYY-MM-DD or DD/MM/YYYY)")
	c.Flags().String("to", "", "End date for filtering (YYYY-MM-DD or DD/MM/YYYY)")
	c.Flags().Int("last", 0, "Filter by last N days (e.g., --last 7 for last 7 days)")
	return c
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(
		newExportFormatCmd(handlers.FormatJSON, "Export records as JSON"),
		newExportFormatCmd(handlers.FormatYAML, "Export records as YAML"),
		newExportFormatCmd(handlers.FormatCSV, "Export records as CSV"),
	)
}
