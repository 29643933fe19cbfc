package handlers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xolan/haven/internal/cli"
	"github.com/xolan/haven/internal/insight"
)

// ReplyTimeout bounds how long the CLI waits for one agent reply.
var ReplyTimeout = 2 * time.Minute

// JournalInsights asks the journal analyzer about an entry and prints its
// reply. With chat set, follow-up questions are read from stdin until an
// empty line or EOF.
func JournalInsights(ctx context.Context, deps *cli.Deps, indexStr string, chat bool) {
	index, ok := parseIndex(deps, indexStr, "journal list")
	if !ok {
		return
	}

	conv, entry, err := deps.Services.Insight.Analyze(ctx, index)
	if err != nil {
		if errors.Is(err, insight.ErrAgentUnavailable) {
			_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
			_, _ = fmt.Fprintln(deps.Stderr, "Hint: Set GEMINI_API_KEY or [agent] api_key in the config file")
			deps.Exit(1)
			return
		}
		printIndexError(deps, err, "journal list")
		return
	}
	defer conv.Close()

	_, _ = fmt.Fprintln(deps.Stdout, conv.Name())
	_, _ = fmt.Fprintln(deps.Stdout, cli.Separator)
	_, _ = fmt.Fprintf(deps.Stdout, "Reflecting on \"%s\"...\n\n", entry.Title)

	if !awaitReply(ctx, deps, conv) {
		return
	}
	if !chat {
		return
	}

	scanner := bufio.NewScanner(deps.Stdin)
	for {
		_, _ = fmt.Fprint(deps.Stdout, "\nYou (empty line to finish): ")
		if !scanner.Scan() {
			_, _ = fmt.Fprintln(deps.Stdout)
			return
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			return
		}
		if err := conv.Send(question); err != nil {
			_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
			deps.Exit(1)
			return
		}
		_, _ = fmt.Fprintln(deps.Stdout)
		if !awaitReply(ctx, deps, conv) {
			return
		}
	}
}

// awaitReply waits for the outstanding reply and prints it.
func awaitReply(ctx context.Context, deps *cli.Deps, conv *insight.Conversation) bool {
	waitCtx, cancel := context.WithTimeout(ctx, ReplyTimeout)
	defer cancel()
	if err := conv.Wait(waitCtx); err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: no reply from the journal analyzer: %v\n", err)
		deps.Exit(1)
		return false
	}

	reply, ok := conv.Latest()
	if !ok {
		_, _ = fmt.Fprintln(deps.Stderr, "Error: the journal analyzer did not reply")
		deps.Exit(1)
		return false
	}
	printReply(deps, reply.Content)
	return true
}

func printReply(deps *cli.Deps, content string) {
	rendered, err := cli.RenderMarkdown(content, deps.OutputWidth(), cli.IsTerminal(deps.Stdout))
	if err != nil {
		rendered = content
	}
	_, _ = fmt.Fprintln(deps.Stdout, rendered)

	if insight.NeedsCrisisSupport(content) {
		_, _ = fmt.Fprintln(deps.Stdout)
		_, _ = fmt.Fprintln(deps.Stdout, "If you need support right now:")
		for _, r := range insight.CrisisResources {
			_, _ = fmt.Fprintf(deps.Stdout, "  %s: %s\n", r.Name, r.Contact)
		}
	}
}
