package fs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tendant/simple-blog/pkg/simpleblog"
)

// Store is a filesystem implementation of the simpleblog.Store interface
// backed by a single JSON document.
type Store struct {
	mu   sync.RWMutex
	path string
}

// Config options for the filesystem store
type Config struct {
	Path string // Path of the JSON document holding the posts
}

// New creates a new filesystem store. The file does not need to exist yet.
func New(config Config) (*Store, error) {
	if config.Path == "" {
		return nil, errors.New("path is required")
	}
	return &Store{path: filepath.Clean(config.Path)}, nil
}

// Path returns the location of the backing document
func (s *Store) Path() string {
	return s.path
}

// Load reads and decodes the backing document
func (s *Store) Load(ctx context.Context) ([]simpleblog.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, s.wrap("load", simpleblog.ErrSourceNotFound)
	} else if err != nil {
		return nil, s.wrap("load", fmt.Errorf("failed to open file: %w", err))
	}
	defer f.Close()

	records, err := simpleblog.DecodeRecords(f)
	if err != nil {
		return nil, s.wrap("load", err)
	}
	return records, nil
}

// Save atomically replaces the backing document with records
func (s *Store) Save(ctx context.Context, records []simpleblog.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := simpleblog.EncodeRecords(&buf, records); err != nil {
		return s.wrap("save", fmt.Errorf("failed to encode records: %w", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return s.wrap("save", fmt.Errorf("failed to create directory: %w", err))
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return s.wrap("save", fmt.Errorf("failed to create temp file: %w", err))
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return s.wrap("save", fmt.Errorf("failed to write temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return s.wrap("save", fmt.Errorf("failed to close temp file: %w", err))
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return s.wrap("save", fmt.Errorf("failed to set permissions: %w", err))
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return s.wrap("save", fmt.Errorf("failed to replace file: %w", err))
	}
	return nil
}

func (s *Store) wrap(op string, err error) error {
	return &simpleblog.SourceError{Source: "fs:" + s.path, Op: op, Err: err}
}
