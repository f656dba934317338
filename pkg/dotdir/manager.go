// Package dotdir resolves the .folio/ directory holding config.toml and the
// default SQLite database.
package dotdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DirName is the name of the folio directory.
const DirName = ".folio"

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the absolute path of the .folio/ directory to use, creating
// it when missing. An override wins, then ./.folio/ when it exists, then
// ~/.folio/.
func (m *Manager) Target(overrideDir string) (string, error) {
	dir, err := m.resolve(overrideDir)
	if err != nil {
		return "", err
	}
	return ensure(dir)
}

// Local creates ./.folio/ in the working directory and returns its
// absolute path.
func (m *Manager) Local() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	return ensure(filepath.Join(cwd, DirName))
}

// File returns the absolute path of name inside the resolved directory.
func (m *Manager) File(overrideDir, name string) (string, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func (m *Manager) resolve(overrideDir string) (string, error) {
	if overrideDir != "" {
		return overrideDir, nil
	}

	if cwd, err := os.Getwd(); err == nil {
		local := filepath.Join(cwd, DirName)
		info, err := os.Stat(local)
		switch {
		case err == nil && info.IsDir():
			return local, nil
		case err != nil && !errors.Is(err, os.ErrNotExist):
			return "", fmt.Errorf("checking %s: %w", local, err)
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

func ensure(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating folio directory %s: %w", dir, err)
	}
	return filepath.Abs(dir)
}
