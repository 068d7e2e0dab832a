package datreader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// File serves ranges from a local archive file.
type File struct {
	f *os.File
}

// OpenFile opens path read-only. The returned reader owns the handle;
// Close releases it.
func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return &File{f: f}, nil
}

func (r *File) ReadRange(_ context.Context, offset uint32, length int) ([]byte, error) {
	buf := make([]byte, length)
	n, err := r.f.ReadAt(buf, int64(offset))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: want %d bytes at %#x, got %d", ErrShortRead, length, offset, n)
		}
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return buf, nil
}

func (r *File) Close() error { return r.f.Close() }
