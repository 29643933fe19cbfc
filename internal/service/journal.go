package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xolan/haven/internal/filter"
	"github.com/xolan/haven/internal/journal"
	"github.com/xolan/haven/internal/storage"
)

// JournalService provides operations for managing journal entries
type JournalService struct {
	*env
}

// Create validates and stores a new entry for the current user.
func (s *JournalService) Create(ctx context.Context, e journal.Entry) (*journal.Entry, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	owner, _, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}

	e.CreatedBy = owner
	rec, err := s.store.Create(ctx, storage.EntityJournal, e.Record())
	if err != nil {
		return nil, fmt.Errorf("failed to save journal entry: %w", err)
	}
	created := journal.FromRecord(rec)
	s.logger.Info("journal entry created", zap.String("id", created.ID))
	return &created, nil
}

// List returns the current user's entries newest first, then applies f.
// Indexes are assigned before filtering so they stay valid for Get and friends.
func (s *JournalService) List(ctx context.Context, f *filter.Filter) (*JournalListResult, error) {
	entries, warnings, err := s.all(ctx)
	if err != nil {
		return nil, err
	}

	out := &JournalListResult{Total: len(entries), Warnings: warnings}
	for i, e := range entries {
		if f.IsEmpty() || f.MatchesJournal(e) {
			out.Entries = append(out.Entries, IndexedJournal{Entry: e, Index: i + 1})
		}
	}
	return out, nil
}

func (s *JournalService) all(ctx context.Context) ([]journal.Entry, []storage.ParseWarning, error) {
	result, err := s.ownQuery(ctx, storage.EntityJournal, "-"+storage.FieldCreatedDate, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read journal entries: %w", err)
	}
	s.logWarnings(storage.EntityJournal, result.Warnings)
	return journal.FromRecords(result.Records), result.Warnings, nil
}

// Get returns the entry at the 1-based index of an unfiltered List.
func (s *JournalService) Get(ctx context.Context, index int) (*journal.Entry, error) {
	entries, _, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	i, err := pick(index, len(entries))
	if err != nil {
		return nil, err
	}
	return &entries[i], nil
}

// Update applies patch to the entry at index.
func (s *JournalService) Update(ctx context.Context, index int, patch journal.Patch) (*journal.Entry, error) {
	if patch.Empty() {
		return nil, ErrNoChangesSpecified
	}
	e, err := s.Get(ctx, index)
	if err != nil {
		return nil, err
	}
	if err := patch.Apply(*e).Validate(); err != nil {
		return nil, err
	}

	rec, err := s.store.Update(ctx, storage.EntityJournal, e.ID, patch.Record())
	if err != nil {
		return nil, fmt.Errorf("failed to update journal entry: %w", err)
	}
	updated := journal.FromRecord(rec)
	s.logger.Info("journal entry updated", zap.String("id", updated.ID))
	return &updated, nil
}

// ToggleFavorite flips the favorite flag of the entry at index.
func (s *JournalService) ToggleFavorite(ctx context.Context, index int) (*journal.Entry, error) {
	e, err := s.Get(ctx, index)
	if err != nil {
		return nil, err
	}
	rec, err := s.store.Update(ctx, storage.EntityJournal, e.ID, storage.Record{journal.FieldFavorite: !e.Favorite})
	if err != nil {
		return nil, fmt.Errorf("failed to update journal entry: %w", err)
	}
	updated := journal.FromRecord(rec)
	return &updated, nil
}

// Delete removes the entry at index.
func (s *JournalService) Delete(ctx context.Context, index int) (*journal.Entry, error) {
	e, err := s.Get(ctx, index)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, storage.EntityJournal, e.ID); err != nil {
		return nil, fmt.Errorf("failed to delete journal entry: %w", err)
	}
	s.logger.Info("journal entry deleted", zap.String("id", e.ID))
	return e, nil
}
