// Package service provides the business logic layer for haven.
// It wraps storage, identity, the history aggregator and the insight agent,
// providing one API for both the CLI and TUI frontends.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xolan/haven/internal/community"
	"github.com/xolan/haven/internal/config"
	"github.com/xolan/haven/internal/history"
	"github.com/xolan/haven/internal/identity"
	"github.com/xolan/haven/internal/journal"
	"github.com/xolan/haven/internal/mood"
	"github.com/xolan/haven/internal/storage"
	"github.com/xolan/haven/internal/timeutil"
)

// Common errors shared by the services
var (
	ErrInvalidIndex       = errors.New("invalid index")
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrNoChangesSpecified = errors.New("at least one change must be specified")
	ErrAlreadyCheckedIn   = errors.New("you've already checked in today")
	ErrProfileRequired    = errors.New("create a community profile first")
)

// HistoryLimit caps how many valid mood entries feed the aggregator.
const HistoryLimit = 500

// IndexedMood is a mood entry with its 1-based position in a listing.
type IndexedMood struct {
	Entry mood.Entry
	Index int
}

// MoodListResult contains the results of listing mood entries
type MoodListResult struct {
	Entries  []IndexedMood
	Skipped  []history.Skip
	Warnings []storage.ParseWarning
}

// HistoryResult is an aggregated history plus what was left out of it.
type HistoryResult struct {
	History  *history.History
	Warnings []storage.ParseWarning
}

// IndexedJournal is a journal entry with its 1-based position, newest first.
type IndexedJournal struct {
	Entry journal.Entry
	Index int
}

// JournalListResult contains the results of listing journal entries
type JournalListResult struct {
	Entries  []IndexedJournal
	Total    int // entries before filtering
	Warnings []storage.ParseWarning
}

// IndexedPost is a feed post with its 1-based position and whether the
// current user has liked it.
type IndexedPost struct {
	Post  community.Post
	Index int
	Liked bool
}

// FeedResult contains the community feed
type FeedResult struct {
	Posts    []IndexedPost
	Warnings []storage.ParseWarning
}

// env is the state shared by every service.
type env struct {
	store    storage.Store
	identity identity.Provider
	config   config.Config
	logger   *zap.Logger
	now      func() time.Time
}

// today is the current civil date in the configured timezone.
func (e *env) today() timeutil.Date {
	return timeutil.DateOf(e.now().In(e.config.Location()))
}

// owner resolves the created_by value for the current user.
func (e *env) owner(ctx context.Context) (string, *identity.User, error) {
	u, err := e.identity.Current(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("failed to resolve current user: %w", err)
	}
	return identity.Owner(u), u, nil
}

// ownQuery lists the current user's records of entity.
func (e *env) ownQuery(ctx context.Context, entity, orderBy string, limit int) (storage.ListResult, error) {
	owner, _, err := e.owner(ctx)
	if err != nil {
		return storage.ListResult{}, err
	}
	return e.store.List(ctx, entity, storage.Query{
		Filter:  map[string]any{storage.FieldCreatedBy: owner},
		OrderBy: orderBy,
		Limit:   limit,
	})
}

func (e *env) logWarnings(entity string, warnings []storage.ParseWarning) {
	for _, w := range warnings {
		e.logger.Warn("corrupted record",
			zap.String("entity", entity),
			zap.Int("line", w.LineNumber),
			zap.String("error", w.Error))
	}
}

// pick returns the 1-based index-th element of n items.
func pick(index, n int) (int, error) {
	if index < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}
	if index > n {
		if n == 0 {
			return 0, fmt.Errorf("%w: nothing to choose from", ErrIndexOutOfRange)
		}
		return 0, fmt.Errorf("%w: %d (valid range: 1-%d)", ErrIndexOutOfRange, index, n)
	}
	return index - 1, nil
}
