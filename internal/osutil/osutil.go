// Package osutil resolves haven's per-user directories behind a swappable provider.
package osutil

import (
	"os"
	"path/filepath"
)

// AppName names the per-user directory under the OS config dir.
const AppName = "haven"

// PathProvider abstracts the OS calls used to locate and create app directories.
type PathProvider interface {
	UserConfigDir() (string, error)
	MkdirAll(path string, perm os.FileMode) error
}

// DefaultPathProvider uses real OS functions.
type DefaultPathProvider struct{}

func (DefaultPathProvider) UserConfigDir() (string, error) {
	return os.UserConfigDir()
}

func (DefaultPathProvider) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Provider is swapped out by tests.
var Provider PathProvider = DefaultPathProvider{}

func SetProvider(p PathProvider) {
	Provider = p
}

func ResetProvider() {
	Provider = DefaultPathProvider{}
}

// AppDir returns <config dir>/haven/<elem...>, creating it if needed.
func AppDir(elem ...string) (string, error) {
	configDir, err := Provider.UserConfigDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(append([]string{configDir, AppName}, elem...)...)
	if err := Provider.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
