package storage

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

const (
	// BackupSuffix is the file extension for backup files
	BackupSuffix = ".bak"
	// MaxBackupCount is the maximum number of backup files to keep
	MaxBackupCount = 3
)

// BackupInfo contains information about a backup file
type BackupInfo struct {
	Entity string // Entity the backup belongs to
	Number int    // The backup number (1, 2, or 3)
	Path   string // The full path to the backup file
}

// Backupper is implemented by stores that keep rotating file backups.
type Backupper interface {
	ListBackups(entity string) ([]BackupInfo, error)
	RestoreBackup(entity string, n int) error
}

// BackupPath returns the path to a backup file with the given rotation number.
// Backup files are named <file>.bak.N; lower numbers are more recent.
func BackupPath(storagePath string, n int) string {
	return fmt.Sprintf("%s%s.%d", storagePath, BackupSuffix, n)
}

// rotateBackups shifts existing backup files to make room for a new backup.
// It renames .bak.1 -> .bak.2, .bak.2 -> .bak.3, and deletes the oldest .bak.3
// if it exists. Missing files are not an error.
func rotateBackups(storagePath string) error {
	if err := os.Remove(BackupPath(storagePath, MaxBackupCount)); err != nil && !os.IsNotExist(err) {
		return err
	}

	for i := MaxBackupCount - 1; i >= 1; i-- {
		if err := os.Rename(BackupPath(storagePath, i), BackupPath(storagePath, i+1)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// CreateBackup copies the storage file to .bak.1 before a destructive modification,
// rotating older backups. If the storage file doesn't exist, no backup is created.
func CreateBackup(storagePath string) error {
	if _, err := os.Stat(storagePath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := rotateBackups(storagePath); err != nil {
		return err
	}
	return copyFile(storagePath, BackupPath(storagePath, 1))
}

// ListFileBackups returns existing backups of a storage file, most recent first.
func ListFileBackups(storagePath string) []BackupInfo {
	var backups []BackupInfo
	for i := 1; i <= MaxBackupCount; i++ {
		path := BackupPath(storagePath, i)
		if _, err := os.Stat(path); err == nil {
			backups = append(backups, BackupInfo{Number: i, Path: path})
		}
	}
	return backups
}

// RestoreFileBackup copies backup n over the storage file.
// The current state is backed up first, so a restore can itself be undone.
func RestoreFileBackup(storagePath string, n int) error {
	if n < 1 || n > MaxBackupCount {
		return fmt.Errorf("invalid backup number %d, must be between 1 and %d", n, MaxBackupCount)
	}

	backupPath := BackupPath(storagePath, n)
	if _, err := os.Stat(backupPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("backup %d does not exist", n)
		}
		return err
	}

	// Rotation renames backupPath, so read it from a temporary copy.
	tmp := storagePath + ".restore"
	if err := copyFile(backupPath, tmp); err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp) }()

	if err := CreateBackup(storagePath); err != nil {
		return err
	}
	return os.Rename(tmp, storagePath)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// ListBackups returns the backups of an entity file, most recent first.
func (s *JSONLStore) ListBackups(entity string) ([]BackupInfo, error) {
	if err := validateEntity(entity); err != nil {
		return nil, err
	}
	backups := ListFileBackups(s.Path(entity))
	for i := range backups {
		backups[i].Entity = entity
	}
	return backups, nil
}

// RestoreBackup restores backup n (1 is most recent) of an entity file.
func (s *JSONLStore) RestoreBackup(entity string, n int) error {
	if err := validateEntity(entity); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := RestoreFileBackup(s.Path(entity), n); err != nil {
		return err
	}
	s.opts.logger.Info("restored backup", zap.String("entity", entity), zap.Int("backup", n))
	return nil
}
