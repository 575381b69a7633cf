package datasource

import (
	"context"
	"io"
	"os"
)

// FileSource reads a table from the local filesystem
type FileSource struct {
	path string
}

// NewFileSource creates a source for a local CSV file
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Open opens the file
func (s *FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewSourceError(s.Name(), ErrCodeNotFound, "file does not exist", ErrNotFound)
		}
		return nil, NewSourceError(s.Name(), ErrCodeUnknown, "failed to open file", err)
	}
	return f, nil
}

// Name returns the file path
func (s *FileSource) Name() string {
	return "file://" + s.path
}
