package service

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/xolan/haven/internal/storage"
)

// StorageService exposes store health, backups and raw exports
type StorageService struct {
	*env
}

// Validate reports per-entity record health.
func (s *StorageService) Validate(ctx context.Context) (storage.Health, error) {
	health, err := s.store.Validate(ctx)
	if err != nil {
		return health, fmt.Errorf("failed to validate storage: %w", err)
	}
	if n := health.Corrupted(); n > 0 {
		s.logger.Warn("storage has corrupted records", zap.Int("count", n))
	}
	return health, nil
}

func (s *StorageService) backupper() (storage.Backupper, error) {
	b, ok := s.store.(storage.Backupper)
	if !ok {
		return nil, storage.ErrBackupsUnsupported
	}
	return b, nil
}

func checkEntity(entity string) error {
	if !slices.Contains(storage.Entities, entity) {
		return fmt.Errorf("%w: unknown entity %q", storage.ErrInvalidField, entity)
	}
	return nil
}

// Backups lists the backups kept for entity.
func (s *StorageService) Backups(entity string) ([]storage.BackupInfo, error) {
	if err := checkEntity(entity); err != nil {
		return nil, err
	}
	b, err := s.backupper()
	if err != nil {
		return nil, err
	}
	return b.ListBackups(entity)
}

// Restore replaces entity's data with backup n.
func (s *StorageService) Restore(entity string, n int) error {
	if err := checkEntity(entity); err != nil {
		return err
	}
	b, err := s.backupper()
	if err != nil {
		return err
	}
	return b.RestoreBackup(entity, n)
}

// Export returns the current user's raw records of entity, oldest first.
func (s *StorageService) Export(ctx context.Context, entity string) ([]storage.Record, error) {
	if err := checkEntity(entity); err != nil {
		return nil, err
	}
	result, err := s.ownQuery(ctx, entity, storage.FieldCreatedDate, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s records: %w", entity, err)
	}
	return result.Records, nil
}

// WatchDir returns the directory holding the entity files when the backend
// keeps them as plain files.
func (s *StorageService) WatchDir() (string, bool) {
	d, ok := s.store.(interface{ Dir() string })
	if !ok {
		return "", false
	}
	return d.Dir(), true
}
