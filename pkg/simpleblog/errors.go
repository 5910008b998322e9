package simpleblog

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrPostNotFound indicates a post was not found
	ErrPostNotFound = errors.New("post not found")

	// ErrSourceNotFound indicates the backing data source does not exist
	ErrSourceNotFound = errors.New("source not found")

	// ErrMalformedSource indicates the backing data source could not be decoded
	ErrMalformedSource = errors.New("malformed source")

	// ErrReadOnlySource indicates the source cannot be written to
	ErrReadOnlySource = errors.New("source is read-only")

	// ErrInvalidInput indicates a publish request failed validation
	ErrInvalidInput = errors.New("invalid input")
)

// LoadError is returned by Load when the collection cannot be built.
type LoadError struct {
	Op  string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s failed: %v", e.Op, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// SourceError represents an error related to a source or store operation
type SourceError struct {
	Source string
	Op     string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source operation %s failed on %s: %v", e.Op, e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// RecordError describes a record that could not be resolved into a Post.
type RecordError struct {
	Index int
	Key   string
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d (%q): %v", e.Index, e.Key, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
