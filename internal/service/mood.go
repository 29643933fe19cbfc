package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/xolan/haven/internal/history"
	"github.com/xolan/haven/internal/mood"
	"github.com/xolan/haven/internal/storage"
)

// MoodService provides check-ins and the aggregated mood history
type MoodService struct {
	*env
}

// CheckIn records today's mood for the current user. The input is a mood
// label or a score from 1 to 5.
func (s *MoodService) CheckIn(ctx context.Context, input, note string, tags []string) (*mood.Entry, error) {
	m, err := mood.ParseMood(input)
	if err != nil {
		return nil, err
	}

	owner, _, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := s.Today(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyCheckedIn
	}

	e := mood.New(m, s.today(), note, tags)
	e.CreatedBy = owner
	rec, err := s.store.Create(ctx, storage.EntityMood, e.Record())
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrAlreadyCheckedIn
		}
		return nil, fmt.Errorf("failed to save check-in: %w", err)
	}

	created, err := mood.FromRecord(rec)
	if err != nil {
		return nil, fmt.Errorf("stored check-in is invalid: %w", err)
	}
	s.logger.Info("mood checked in",
		zap.String("id", created.ID),
		zap.String("mood", string(created.Mood)),
		zap.String("date", created.Date.String()))
	return &created, nil
}

// Today returns the current user's entry for today, or nil.
func (s *MoodService) Today(ctx context.Context) (*mood.Entry, error) {
	owner, _, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	result, err := s.store.List(ctx, storage.EntityMood, storage.Query{
		Filter: map[string]any{
			storage.FieldCreatedBy: owner,
			mood.FieldEntryDate:    s.today().String(),
		},
		OrderBy: "-" + storage.FieldCreatedDate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read mood entries: %w", err)
	}
	for _, r := range result.Records {
		if e, err := mood.FromRecord(r); err == nil {
			return &e, nil
		}
	}
	return nil, nil
}

// List returns up to limit of the current user's entries, newest date first.
// A limit of 0 means HistoryLimit. Invalid records are reported as skipped.
func (s *MoodService) List(ctx context.Context, limit int) (*MoodListResult, error) {
	if limit <= 0 || limit > HistoryLimit {
		limit = HistoryLimit
	}
	result, err := s.ownQuery(ctx, storage.EntityMood, "-"+mood.FieldEntryDate, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read mood entries: %w", err)
	}
	s.logWarnings(storage.EntityMood, result.Warnings)

	out := &MoodListResult{Warnings: result.Warnings}
	for _, r := range result.Records {
		e, err := mood.FromRecord(r)
		if err != nil {
			out.Skipped = append(out.Skipped, history.Skip{ID: r.ID(), Reason: err.Error()})
			continue
		}
		out.Entries = append(out.Entries, IndexedMood{Entry: e, Index: len(out.Entries) + 1})
	}
	return out, nil
}

// Recent returns the n most recent entries.
func (s *MoodService) Recent(ctx context.Context, n int) ([]mood.Entry, error) {
	result, err := s.List(ctx, n)
	if err != nil {
		return nil, err
	}
	entries := make([]mood.Entry, len(result.Entries))
	for i, ie := range result.Entries {
		entries[i] = ie.Entry
	}
	return entries, nil
}

// Delete removes the entry at the 1-based index of List.
func (s *MoodService) Delete(ctx context.Context, index int) (*mood.Entry, error) {
	result, err := s.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	i, err := pick(index, len(result.Entries))
	if err != nil {
		return nil, err
	}

	e := result.Entries[i].Entry
	if err := s.store.Delete(ctx, storage.EntityMood, e.ID); err != nil {
		return nil, fmt.Errorf("failed to delete mood entry: %w", err)
	}
	s.logger.Info("mood entry deleted", zap.String("id", e.ID), zap.String("date", e.Date.String()))
	return &e, nil
}

// History aggregates the current user's entries relative to today. A store
// failure returns an error and no partial history.
func (s *MoodService) History(ctx context.Context) (*HistoryResult, error) {
	result, err := s.ownQuery(ctx, storage.EntityMood, "", 0)
	if err != nil {
		s.logger.Error("mood history fetch failed", zap.Error(err))
		return nil, fmt.Errorf("failed to read mood entries: %w", err)
	}
	s.logWarnings(storage.EntityMood, result.Warnings)

	entries, skipped := recentValid(result.Records, HistoryLimit)
	h := history.FromEntries(entries, skipped, s.today())
	if n := len(h.Skipped()); n > 0 {
		s.logger.Warn("mood records skipped", zap.Int("count", n))
	}
	if n := h.Duplicates(); n > 0 {
		s.logger.Warn("duplicate mood dates collapsed", zap.Int("count", n))
	}
	return &HistoryResult{History: h, Warnings: result.Warnings}, nil
}

// Export returns the current user's raw mood records.
func (s *MoodService) Export(ctx context.Context) ([]storage.Record, error) {
	result, err := s.ownQuery(ctx, storage.EntityMood, mood.FieldEntryDate, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to read mood entries: %w", err)
	}
	return result.Records, nil
}

// recentValid maps records to entries and keeps the newest limit of them by
// entry date. The cap applies after validation so records with unparseable
// dates cannot crowd real ones out. Invalid records come back as skips.
func recentValid(records []storage.Record, limit int) ([]mood.Entry, []history.Skip) {
	entries := make([]mood.Entry, 0, len(records))
	var skipped []history.Skip
	for _, r := range records {
		e, err := mood.FromRecord(r)
		if err != nil {
			skipped = append(skipped, history.Skip{ID: r.ID(), Reason: err.Error()})
			continue
		}
		entries = append(entries, e)
	}
	if limit > 0 && len(entries) > limit {
		sort.SliceStable(entries, func(i, j int) bool {
			if c := entries[i].Date.Compare(entries[j].Date); c != 0 {
				return c > 0
			}
			return entries[i].CreatedDate.After(entries[j].CreatedDate)
		})
		entries = entries[:limit]
	}
	return entries, skipped
}
