package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// LocalStorage manages the output directory where chat sessions drop their
// scripts and generated media.
type LocalStorage struct {
	outputDir string
}

func NewLocalStorage(outputDir string) *LocalStorage {
	return &LocalStorage{outputDir: outputDir}
}

func (s *LocalStorage) OutputDir() string {
	return s.outputDir
}

func (s *LocalStorage) EnsureDirectories() error {
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// Save writes a file, creating its parent directory as needed.
func (s *LocalStorage) Save(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// ListSessions returns the session directories under the output dir.
func (s *LocalStorage) ListSessions() ([]string, error) {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	var sessions []string
	for _, entry := range entries {
		if entry.IsDir() {
			sessions = append(sessions, filepath.Join(s.outputDir, entry.Name()))
		}
	}
	return sessions, nil
}

// ClearSessions removes all session directories and reports how many.
func (s *LocalStorage) ClearSessions() (int, error) {
	sessions, err := s.ListSessions()
	if err != nil {
		return 0, err
	}

	for i, dir := range sessions {
		if err := os.RemoveAll(dir); err != nil {
			return i, fmt.Errorf("failed to remove %s: %w", dir, err)
		}
	}
	return len(sessions), nil
}
