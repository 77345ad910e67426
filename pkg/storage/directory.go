package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Directory is a writable folder the user agreed to save into
type Directory struct {
	path string
}

// OpenDirectory creates path if needed and returns it as a Directory
func OpenDirectory(path string) (*Directory, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Directory{path: path}, nil
}

// Path returns the directory path
func (d *Directory) Path() string {
	return d.path
}

// Kind identifies the directory-backed path in logs and reports
func (d *Directory) Kind() string {
	return "directory"
}

// Write stores data as name inside the directory, replacing any existing
// file of that name
func (d *Directory) Write(ctx context.Context, name string, data []byte) error {
	return writeFileAtomic(filepath.Join(d.path, name), data)
}

// writeFileAtomic writes through a temporary file so readers never see a
// partial file
func writeFileAtomic(filename string, data []byte) error {
	tempFile := filename + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = out.Write(data)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write file data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}
