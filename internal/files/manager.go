package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Manager provides file management operations rooted at a base directory
type Manager struct {
	baseDir string
}

// NewManager creates a new file manager instance. An empty baseDir uses
// the working directory.
func NewManager(baseDir string) *Manager {
	return &Manager{baseDir: baseDir}
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	_, err := os.Stat(m.resolvePath(path))
	return err == nil
}

// ReadFile reads the entire content of a file
func (m *Manager) ReadFile(path string) ([]byte, error) {
	fullPath := m.resolvePath(path)

	slog.Debug("Reading file",
		slog.String("path", path),
		slog.String("full_path", fullPath))

	return os.ReadFile(fullPath)
}

// WriteFileAtomic streams write's output into a temporary file next to
// path and renames it into place once write succeeds, so readers never see
// a half-written export.
func (m *Manager) WriteFileAtomic(path string, write func(io.Writer) error) (string, error) {
	fullPath := m.resolvePath(path)
	dir := filepath.Dir(fullPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if err := write(tmp); err != nil {
		cleanup()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, fullPath); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}

	slog.Info("Wrote file", slog.String("path", fullPath))
	return fullPath, nil
}

// EnsureDirectory creates a directory if it doesn't exist
func (m *Manager) EnsureDirectory(path string) error {
	return os.MkdirAll(m.resolvePath(path), 0755)
}

// resolvePath resolves a path relative to the base directory
func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) || m.baseDir == "" {
		return path
	}
	return filepath.Join(m.baseDir, path)
}
