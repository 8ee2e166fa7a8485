package storage

import (
	"context"
	"io"
	"time"
)

// FileInfo describes one stored export.
type FileInfo struct {
	Key     string    `json:"key"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// ExportStore keeps generated report files.
type ExportStore interface {
	// NewKey returns a fresh, collision-free key such as
	// "outstanding-2024-03-31-1f0c2a9e.csv".
	NewKey(prefix, ext string) string

	SaveFile(key string, reader io.Reader) error

	ReadFile(key string) (io.ReadCloser, error)

	// FileExists checks if a file exists and returns its size
	FileExists(ctx context.Context, key string) (exists bool, size int64, err error)

	DeleteFile(ctx context.Context, key string) error

	// List returns stored exports, newest first.
	List(ctx context.Context) ([]FileInfo, error)
}
