package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Downloader starts a single-file download under a suggested name. Names
// may contain one "/" to group files into a folder of the download client.
type Downloader interface {
	Trigger(ctx context.Context, name string, data []byte) error
}

// DownloadsFolder emulates a download client by writing straight into its
// folder on disk
type DownloadsFolder struct {
	Root string
}

// Trigger writes data to Root/name, creating the group folder if needed
func (f *DownloadsFolder) Trigger(ctx context.Context, name string, data []byte) error {
	filename := filepath.Join(f.Root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create download folder: %w", err)
	}
	return writeFileAtomic(filename, data)
}
