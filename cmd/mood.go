package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xolan/haven/internal/cli"
	"github.com/xolan/haven/internal/cli/handlers"
)

// checkinCmd represents the checkin command
var checkinCmd = &cobra.Command{
	Use:   "checkin <mood>",
	Short: "Record today's mood",
	Long: `Record how you feel today. One check-in per day.

Moods: amazing (5), good (4), okay (3), low (2), rough (1).
Either the name or the score is accepted.

Suggested tags: Sleep, Exercise, Social, Work, Nature, Creative, Meditation, Nutrition

Examples:
  haven checkin good
  haven checkin 2 --note 'long day'
  haven checkin amazing --tag Exercise --tag Social`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		note, _ := cmd.Flags().GetString("note")
		tags, _ := cmd.Flags().GetStringSlice("tag")
		handlers.CheckIn(cmd.Context(), cli.GetDeps(), args[0], note, tags)
	},
}

// moodsCmd represents the moods command
var moodsCmd = &cobra.Command{
	Use:   "moods",
	Short: "List recent check-ins",
	Long: `List your check-ins, newest first.

Examples:
  haven moods               List all check-ins
  haven moods --limit 7     List the last 7 check-ins
  haven moods delete 1      Delete the most recent check-in`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		handlers.ListMoods(cmd.Context(), cli.GetDeps(), limit)
	},
}

// moodsDeleteCmd represents the moods delete command
var moodsDeleteCmd = &cobra.Command{
	Use:   "delete <index>",
	Short: "Delete a check-in",
	Long: `Delete a check-in by its index in 'haven moods'.

A backup of the mood file is taken before deleting; use 'haven restore mood'
to undo.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		yes, _ := cmd.Flags().GetBool("yes")
		handlers.DeleteMood(cmd.Context(), cli.GetDeps(), args[0], yes)
	},
}

// trendCmd represents the trend command
var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Chart recent moods",
	Long: `Chart your most recent check-ins and summarise the tags that came with them.

The window defaults to trend_window from the config file (14).

Examples:
  haven trend
  haven trend --window 30`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		window, _ := cmd.Flags().GetInt("window")
		handlers.ShowTrend(cmd.Context(), cli.GetDeps(), window)
	},
}

// calendarCmd represents the calendar command
var calendarCmd = &cobra.Command{
	Use:   "calendar [YYYY-MM]",
	Short: "Show a month of check-ins",
	Long: `Show a month grid with the mood of every logged day. Today is shown in brackets.

Examples:
  haven calendar            This month
  haven calendar 2024-02    February 2024`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		month := ""
		if len(args) == 1 {
			month = args[0]
		}
		handlers.ShowCalendar(cmd.Context(), cli.GetDeps(), month)
	},
}

// streakCmd represents the streak command
var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show your check-in streak",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		handlers.ShowStreak(cmd.Context(), cli.GetDeps())
	},
}

func init() {
	rootCmd.AddCommand(checkinCmd)
	rootCmd.AddCommand(moodsCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(streakCmd)
	moodsCmd.AddCommand(moodsDeleteCmd)

	checkinCmd.Flags().StringP("note", "n", "", "Optional note")
	checkinCmd.Flags().StringSliceP("tag", "t", nil, "Tag the check-in (repeatable)")
	moodsCmd.Flags().IntP("limit", "l", 0, "Maximum number of check-ins to list")
	moodsDeleteCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	trendCmd.Flags().IntP("window", "w", 0, "Number of check-ins to chart")
}
