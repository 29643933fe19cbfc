package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xolan/haven/internal/cli"
	"github.com/xolan/haven/internal/filter"
	"github.com/xolan/haven/internal/journal"
	"github.com/xolan/haven/internal/mood"
	"github.com/xolan/haven/internal/service"
)

// AddJournal writes a new journal entry. A content of "-" reads the body
// from stdin.
func AddJournal(ctx context.Context, deps *cli.Deps, title, content, moodStr string, tags []string) {
	if content == "-" {
		data, err := io.ReadAll(deps.Stdin)
		if err != nil {
			_, _ = fmt.Fprintf(deps.Stderr, "Error: failed to read content from stdin: %v\n", err)
			deps.Exit(1)
			return
		}
		content = string(data)
	}

	e := journal.Entry{Title: title, Content: strings.TrimSpace(content), Tags: tags}
	if moodStr != "" {
		m, err := mood.ParseMood(moodStr)
		if err != nil {
			_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
			deps.Exit(1)
			return
		}
		e.Mood = m
	}

	created, err := deps.Services.Journal.Create(ctx, e)
	if err != nil {
		switch {
		case errors.Is(err, journal.ErrMissingTitle):
			_, _ = fmt.Fprintln(deps.Stderr, "Error: Title cannot be empty")
			_, _ = fmt.Fprintln(deps.Stderr, "Usage: haven journal add <title> --content 'text' [--mood good] [--tag name]")
		case errors.Is(err, journal.ErrMissingContent):
			_, _ = fmt.Fprintln(deps.Stderr, "Error: Content cannot be empty")
			_, _ = fmt.Fprintln(deps.Stderr, "Hint: Pass --content 'text', or --content - to read it from stdin")
		default:
			_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
		}
		deps.Exit(1)
		return
	}

	_, _ = fmt.Fprintf(deps.Stdout, "Saved: %s\n", cli.FormatJournalHeader(*created, deps.Config.Location()))
}

// ListJournal lists journal entries newest first, optionally filtered
func ListJournal(ctx context.Context, deps *cli.Deps, f *filter.Filter) {
	result, err := deps.Services.Journal.List(ctx, f)
	if err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
		deps.Exit(1)
		return
	}
	printWarnings(deps, result.Warnings)

	if result.Total == 0 {
		_, _ = fmt.Fprintln(deps.Stdout, "Your journal is empty")
		_, _ = fmt.Fprintln(deps.Stdout, "Hint: Write your first entry with 'haven journal add <title> --content text'")
		return
	}

	description := describeFilter(f)
	if len(result.Entries) == 0 {
		_, _ = fmt.Fprintf(deps.Stdout, "No journal entries %s\n", description)
		return
	}

	if description == "" {
		_, _ = fmt.Fprintln(deps.Stdout, "Journal entries:")
	} else {
		_, _ = fmt.Fprintf(deps.Stdout, "Journal entries %s:\n", description)
	}
	_, _ = fmt.Fprintln(deps.Stdout, cli.Separator)

	width := indexWidth(result.Total)
	loc := deps.Config.Location()
	for _, ie := range result.Entries {
		_, _ = fmt.Fprintf(deps.Stdout, "[%*d] %s\n", width, ie.Index, cli.FormatJournalHeader(ie.Entry, loc))
		_, _ = fmt.Fprintf(deps.Stdout, "%s  %s\n", strings.Repeat(" ", width+1), ie.Entry.Excerpt(80))
	}
	_, _ = fmt.Fprintln(deps.Stdout, cli.Separator)
	_, _ = fmt.Fprintf(deps.Stdout, "Showing %d of %d %s\n", len(result.Entries), result.Total, cli.Pluralize("entry", result.Total))
}

// describeFilter returns e.g. "matching 'sleep' tagged #Work (favorites)".
func describeFilter(f *filter.Filter) string {
	if f.IsEmpty() {
		return ""
	}
	var parts []string
	if f.Keyword != "" {
		parts = append(parts, fmt.Sprintf("matching '%s'", f.Keyword))
	}
	if len(f.Tags) > 0 {
		parts = append(parts, "tagged "+cli.FormatTags(f.Tags))
	}
	if f.Mood != "" {
		parts = append(parts, "with mood "+f.Mood.Label())
	}
	if f.FavoritesOnly {
		parts = append(parts, "(favorites)")
	}
	return strings.Join(parts, " ")
}

// ShowJournal prints a journal entry in full
func ShowJournal(ctx context.Context, deps *cli.Deps, indexStr string) {
	index, ok := parseIndex(deps, indexStr, "journal list")
	if !ok {
		return
	}
	e, err := deps.Services.Journal.Get(ctx, index)
	if err != nil {
		printIndexError(deps, err, "journal list")
		return
	}

	_, _ = fmt.Fprintln(deps.Stdout, cli.FormatJournalHeader(*e, deps.Config.Location()))
	_, _ = fmt.Fprintln(deps.Stdout, cli.Separator)
	_, _ = fmt.Fprintln(deps.Stdout, e.Content)
}

// EditJournal applies an edit to a journal entry
func EditJournal(ctx context.Context, deps *cli.Deps, indexStr string, patch journal.Patch) {
	index, ok := parseIndex(deps, indexStr, "journal list")
	if !ok {
		return
	}

	updated, err := deps.Services.Journal.Update(ctx, index, patch)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoChangesSpecified):
			_, _ = fmt.Fprintln(deps.Stderr, "Error: At least one flag (--title, --content, --mood or --tag) is required")
			_, _ = fmt.Fprintln(deps.Stderr, "Usage:")
			_, _ = fmt.Fprintln(deps.Stderr, "  haven journal edit <index> --title 'new title'")
			_, _ = fmt.Fprintln(deps.Stderr, "  haven journal edit <index> --content 'new text'")
			deps.Exit(1)
		case errors.Is(err, journal.ErrMissingTitle), errors.Is(err, journal.ErrMissingContent):
			_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
			deps.Exit(1)
		default:
			printIndexError(deps, err, "journal list")
		}
		return
	}

	_, _ = fmt.Fprintf(deps.Stdout, "Updated entry %d: %s\n", index, cli.FormatJournalHeader(*updated, deps.Config.Location()))
}

// ToggleFavorite stars or unstars a journal entry
func ToggleFavorite(ctx context.Context, deps *cli.Deps, indexStr string) {
	index, ok := parseIndex(deps, indexStr, "journal list")
	if !ok {
		return
	}
	updated, err := deps.Services.Journal.ToggleFavorite(ctx, index)
	if err != nil {
		printIndexError(deps, err, "journal list")
		return
	}
	if updated.Favorite {
		_, _ = fmt.Fprintf(deps.Stdout, "Added to favorites: %s\n", updated.Title)
	} else {
		_, _ = fmt.Fprintf(deps.Stdout, "Removed from favorites: %s\n", updated.Title)
	}
}

// DeleteJournal deletes a journal entry with optional confirmation
func DeleteJournal(ctx context.Context, deps *cli.Deps, indexStr string, skipConfirm bool) {
	index, ok := parseIndex(deps, indexStr, "journal list")
	if !ok {
		return
	}
	e, err := deps.Services.Journal.Get(ctx, index)
	if err != nil {
		printIndexError(deps, err, "journal list")
		return
	}

	_, _ = fmt.Fprintln(deps.Stdout, "Entry to delete:")
	_, _ = fmt.Fprintf(deps.Stdout, "  %s\n", cli.FormatJournalHeader(*e, deps.Config.Location()))

	if !skipConfirm && !promptConfirmation(deps.Stdout, deps.Stdin, "Delete this entry?") {
		_, _ = fmt.Fprintln(deps.Stdout, "Deletion cancelled")
		return
	}

	deleted, err := deps.Services.Journal.Delete(ctx, index)
	if err != nil {
		printIndexError(deps, err, "journal list")
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Deleted: %s\n", deleted.Title)
	_, _ = fmt.Fprintln(deps.Stdout, "Tip: Use 'haven restore journal_entry' to recover it if needed")
}
