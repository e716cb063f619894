package store

import (
	"context"
	"fmt"
	"io"
	"os"
)

// ReadError reports why the configuration file could not be read.
// The HTTP layer collapses every ReadError into the same 500 response;
// the cause is kept for logging.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("store: read %q: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Store serves the contents of one file. It holds no cache: every Read opens,
// reads and closes the file, so concurrent readers share nothing and content
// replaced on disk is visible to the next call.
type Store struct {
	path string
	open func(name string) (*os.File, error) // injectable for tests
}

// New creates a Store for the file at path.
func New(path string) *Store {
	return &Store{path: path, open: os.Open}
}

// Path returns the file path the Store reads from.
func (s *Store) Path() string {
	return s.path
}

// Read returns the full contents of the file. Any failure, including a
// cancelled ctx or a directory at the path, is returned as a *ReadError.
func (s *Store) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ReadError{Path: s.path, Err: err}
	}

	f, err := s.open(s.path)
	if err != nil {
		return nil, &ReadError{Path: s.path, Err: err}
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, &ReadError{Path: s.path, Err: err}
	}
	if fi.IsDir() {
		return nil, &ReadError{Path: s.path, Err: fmt.Errorf("is a directory")}
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, &ReadError{Path: s.path, Err: err}
	}
	return data, nil
}
