package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// File stores the history blob in a single file.
type File struct {
	path string
}

// NewFile returns a file-backed storage port.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

// Load implements history.Storage. A missing file yields "".
func (f *File) Load() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read history file: %w", err)
	}
	return string(data), nil
}

// Save implements history.Storage. The blob replaces the file atomically.
func (f *File) Save(blob string) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create history dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "history-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp history: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	if _, err := writer.WriteString(blob); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush history: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync history: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close history: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}
