package handlers

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xolan/haven/internal/cli"
	"github.com/xolan/haven/internal/history"
	"github.com/xolan/haven/internal/service"
	"github.com/xolan/haven/internal/storage"
)

// parseIndex converts a user supplied 1-based index. On failure it prints an
// error with a hint pointing at listCmd and exits.
func parseIndex(deps *cli.Deps, indexStr, listCmd string) (int, bool) {
	index, err := strconv.Atoi(strings.TrimSpace(indexStr))
	if err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: Invalid index '%s'. Index must be a number\n", indexStr)
		_, _ = fmt.Fprintf(deps.Stderr, "Hint: Run 'haven %s' to see available indices\n", listCmd)
		deps.Exit(1)
		return 0, false
	}
	if index < 1 {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: Index must be 1 or greater (got %d)\n", index)
		deps.Exit(1)
		return 0, false
	}
	return index, true
}

// printIndexError reports errors from index based lookups.
func printIndexError(deps *cli.Deps, err error, listCmd string) {
	_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
	if errors.Is(err, service.ErrIndexOutOfRange) || errors.Is(err, service.ErrInvalidIndex) {
		_, _ = fmt.Fprintf(deps.Stderr, "Hint: Run 'haven %s' to see available indices\n", listCmd)
	}
	deps.Exit(1)
}

// printWarnings reports corrupted stored records on stderr.
func printWarnings(deps *cli.Deps, warnings []storage.ParseWarning) {
	if len(warnings) == 0 {
		return
	}
	_, _ = fmt.Fprintf(deps.Stderr, "Warning: Found %d corrupted %s in storage:\n",
		len(warnings), cli.Pluralize("record", len(warnings)))
	for _, warning := range warnings {
		_, _ = fmt.Fprintln(deps.Stderr, cli.FormatCorruptionWarning(warning))
	}
	_, _ = fmt.Fprintln(deps.Stderr)
}

// printSkipped reports mood entries that were left out of every view.
func printSkipped(deps *cli.Deps, skipped []history.Skip) {
	if len(skipped) == 0 {
		return
	}
	_, _ = fmt.Fprintf(deps.Stderr, "Warning: Skipped %d invalid mood %s:\n",
		len(skipped), cli.Pluralize("entry", len(skipped)))
	for _, s := range skipped {
		_, _ = fmt.Fprintln(deps.Stderr, cli.FormatSkipped(s))
	}
	_, _ = fmt.Fprintln(deps.Stderr)
}

// promptConfirmation asks the user to confirm a destructive action
func promptConfirmation(stdout io.Writer, stdin io.Reader, question string) bool {
	_, _ = fmt.Fprintf(stdout, "%s [y/N]: ", question)

	scanner := bufio.NewScanner(stdin)
	if !scanner.Scan() {
		return false
	}

	response := strings.TrimSpace(scanner.Text())
	return response == "y" || response == "Y"
}

// indexWidth is the print width of the largest index n.
func indexWidth(n int) int {
	return len(strconv.Itoa(n))
}
