// Package dotdir manages the .mealprep/ and ~/.mealprep directories.
//
// The directory holds config.toml, the default SQLite database and the
// session state used to resume a chat with the meal-prep agent.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the mealprep directory.
	dirName = ".mealprep"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .mealprep/ directory.
// Order of precedence is as follows:
//  1. Provided override (created if missing)
//  2. Local ./.mealprep/ dir
//  3. Home ~/.mealprep/ dir
//
// If none is found, Target returns an empty string and no error.
func (m *Manager) Target(overrideDir string) (string, error) {
	if overrideDir != "" {
		if err := os.MkdirAll(overrideDir, 0o755); err != nil {
			return "", fmt.Errorf("creating mealprep directory %s: %w", overrideDir, err)
		}
		return filepath.Abs(overrideDir)
	}

	if m.localDirExists() {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		return filepath.Join(cwd, dirName), nil
	}

	home, err := m.homeDir()
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(home); err == nil && info.IsDir() {
		return home, nil
	}

	return "", nil
}

// Ensure behaves like Target but creates ~/.mealprep/ when no directory
// could be resolved. Commands that must persist state call Ensure.
func (m *Manager) Ensure(overrideDir string) (string, error) {
	dir, err := m.Target(overrideDir)
	if err != nil || dir != "" {
		return dir, err
	}

	home, err := m.homeDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(home, 0o755); err != nil {
		return "", fmt.Errorf("creating mealprep directory %s: %w", home, err)
	}
	return home, nil
}

func (m *Manager) homeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// localDirExists checks whether a .mealprep/ directory exists in the current
// working directory.
func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	info, err := os.Stat(filepath.Join(cwd, dirName))
	return err == nil && info.IsDir()
}
