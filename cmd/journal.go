package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xolan/haven/internal/cli"
	"github.com/xolan/haven/internal/cli/handlers"
	"github.com/xolan/haven/internal/filter"
	"github.com/xolan/haven/internal/journal"
	"github.com/xolan/haven/internal/mood"
)

// journalCmd represents the journal parent command
var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Write and browse journal entries",
	Long: `Write, search and reflect on journal entries.

Entries are numbered newest first; the numbers shown by 'haven journal list'
are used by show, edit, fav, delete and insights.

Examples:
  haven journal add 'Long walk' --content 'Walked along the river' --mood good
  haven journal list --favorites
  haven journal search river
  haven journal insights 1 --chat`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		handlers.ListJournal(cmd.Context(), cli.GetDeps(), nil)
	},
}

var journalAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Write a new entry",
	Long: `Write a new journal entry. Use --content - to read the body from stdin.

Suggested tags: Reflection, Gratitude, Goals, Anxiety, Growth, Memories, Dreams, Self-care

Examples:
  haven journal add 'Morning pages' --content 'Grateful for coffee' --tag Gratitude
  cat notes.md | haven journal add 'Therapy notes' --content -`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		content, _ := cmd.Flags().GetString("content")
		moodStr, _ := cmd.Flags().GetString("mood")
		tags, _ := cmd.Flags().GetStringSlice("tag")
		handlers.AddJournal(cmd.Context(), cli.GetDeps(), strings.Join(args, " "), content, moodStr, tags)
	},
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries, newest first",
	Long: `List journal entries, newest first.

Filtering:
  --tag        Only entries with every given tag (repeatable)
  --mood       Only entries with this mood
  --favorites  Only starred entries`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		f, ok := journalFilter(cmd, "")
		if !ok {
			return
		}
		handlers.ListJournal(cmd.Context(), cli.GetDeps(), f)
	},
}

var journalSearchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Search entry titles and content",
	Long: `Search journal entries for a keyword in the title or content (case-insensitive).
Accepts the same filters as 'haven journal list'.

Examples:
  haven journal search river
  haven journal search 'hard day' --tag Anxiety`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		f, ok := journalFilter(cmd, strings.Join(args, " "))
		if !ok {
			return
		}
		handlers.ListJournal(cmd.Context(), cli.GetDeps(), f)
	},
}

var journalShowCmd = &cobra.Command{
	Use:   "show <index>",
	Short: "Print an entry in full",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		handlers.ShowJournal(cmd.Context(), cli.GetDeps(), args[0])
	},
}

var journalEditCmd = &cobra.Command{
	Use:   "edit <index>",
	Short: "Edit an entry",
	Long: `Edit the title, content, mood or tags of an entry.

Usage:
  haven journal edit <index> --title 'new title'
  haven journal edit <index> --content 'new text'
  haven journal edit <index> --mood okay
  haven journal edit <index> --mood none          Remove the mood
  haven journal edit <index> --tag Goals --tag Growth

At least one flag is required. --tag replaces all tags.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		patch, ok := journalPatch(cmd)
		if !ok {
			return
		}
		handlers.EditJournal(cmd.Context(), cli.GetDeps(), args[0], patch)
	},
}

var journalFavCmd = &cobra.Command{
	Use:   "fav <index>",
	Short: "Star or unstar an entry",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		handlers.ToggleFavorite(cmd.Context(), cli.GetDeps(), args[0])
	},
}

var journalDeleteCmd = &cobra.Command{
	Use:   "delete <index>",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		yes, _ := cmd.Flags().GetBool("yes")
		handlers.DeleteJournal(cmd.Context(), cli.GetDeps(), args[0], yes)
	},
}

var journalInsightsCmd = &cobra.Command{
	Use:   "insights <index>",
	Short: "Reflect on an entry with the journal analyzer",
	Long: `Send an entry to the journal analyzer and print its reflection.

Requires a Gemini API key in GEMINI_API_KEY or [agent] api_key in the config
file. With --chat, keep asking follow-up questions until an empty line.

The analyzer is not a therapist. If you are in crisis, call or text 988.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		chat, _ := cmd.Flags().GetBool("chat")
		handlers.JournalInsights(cmd.Context(), cli.GetDeps(), args[0], chat)
	},
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalAddCmd, journalListCmd, journalSearchCmd, journalShowCmd,
		journalEditCmd, journalFavCmd, journalDeleteCmd, journalInsightsCmd)

	journalAddCmd.Flags().StringP("content", "c", "", "Entry text, or - to read stdin")
	journalAddCmd.Flags().StringP("mood", "m", "", "Optional mood")
	journalAddCmd.Flags().StringSliceP("tag", "t", nil, "Tag the entry (repeatable)")

	for _, c := range []*cobra.Command{journalListCmd, journalSearchCmd} {
		c.Flags().StringSliceP("tag", "t", nil, "Only entries with this tag (repeatable)")
		c.Flags().StringP("mood", "m", "", "Only entries with this mood")
		c.Flags().BoolP("favorites", "f", false, "Only favorite entries")
	}

	journalEditCmd.Flags().String("title", "", "New title")
	journalEditCmd.Flags().StringP("content", "c", "", "New content")
	journalEditCmd.Flags().StringP("mood", "m", "", "New mood, or none")
	journalEditCmd.Flags().StringSliceP("tag", "t", nil, "Replace the tags (repeatable)")

	journalDeleteCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	journalInsightsCmd.Flags().Bool("chat", false, "Ask follow-up questions")
}

// journalFilter builds the list filter from flags.
func journalFilter(cmd *cobra.Command, keyword string) (*filter.Filter, bool) {
	tags, _ := cmd.Flags().GetStringSlice("tag")
	favorites, _ := cmd.Flags().GetBool("favorites")
	moodStr, _ := cmd.Flags().GetString("mood")

	var m mood.Mood
	if moodStr != "" {
		var err error
		if m, err = mood.ParseMood(moodStr); err != nil {
			deps := cli.GetDeps()
			_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
			deps.Exit(1)
			return nil, false
		}
	}
	return filter.NewFilter(keyword, tags, favorites, m), true
}

// journalPatch collects the edit flags that were set.
func journalPatch(cmd *cobra.Command) (journal.Patch, bool) {
	var patch journal.Patch
	flags := cmd.Flags()
	if flags.Changed("title") {
		title, _ := flags.GetString("title")
		patch.Title = &title
	}
	if flags.Changed("content") {
		content, _ := flags.GetString("content")
		patch.Content = &content
	}
	if flags.Changed("mood") {
		moodStr, _ := flags.GetString("mood")
		var m mood.Mood
		if moodStr != "none" && moodStr != "" {
			var err error
			if m, err = mood.ParseMood(moodStr); err != nil {
				deps := cli.GetDeps()
				_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
				deps.Exit(1)
				return patch, false
			}
		}
		patch.Mood = &m
	}
	if flags.Changed("tag") {
		tags, _ := flags.GetStringSlice("tag")
		patch.Tags = &tags
	}
	return patch, true
}
