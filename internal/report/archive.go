package report

import (
	"fmt"
	"os"
	"path/filepath"
)

// Archive keeps the uploaded closing sheets
type Archive interface {
	// Put stores a file and returns the name to fetch it by
	Put(name string, data []byte) (string, error)

	// Get retrieves a stored file
	Get(name string) ([]byte, error)

	// Delete removes a stored file
	Delete(name string) error
}

// LocalArchive implements Archive on a local directory
type LocalArchive struct {
	basePath string
}

// NewLocalArchive creates the directory if needed
func NewLocalArchive(basePath string) (*LocalArchive, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}
	return &LocalArchive{basePath: basePath}, nil
}

// path keeps every name inside the archive directory
func (l *LocalArchive) path(name string) string {
	return filepath.Join(l.basePath, filepath.Base(name))
}

// Put writes a file to the archive
func (l *LocalArchive) Put(name string, data []byte) (string, error) {
	name = filepath.Base(name)
	if err := os.WriteFile(l.path(name), data, 0644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	return name, nil
}

// Get reads a file from the archive
func (l *LocalArchive) Get(name string) ([]byte, error) {
	data, err := os.ReadFile(l.path(name))
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

// Delete removes a file from the archive
func (l *LocalArchive) Delete(name string) error {
	if err := os.Remove(l.path(name)); err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}
