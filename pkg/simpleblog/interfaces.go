package simpleblog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// Source defines the interface for backing stores the collection is loaded from
type Source interface {
	// Load returns every record in source order
	Load(ctx context.Context) ([]Record, error)
}

// Store is a Source that can also be written back by the publishing workflow
type Store interface {
	Source

	// Save replaces the full record set, preserving the given order
	Save(ctx context.Context, records []Record) error
}

// Reader defines the read-only query surface of the content accessor.
// *Accessor implements it; handlers and tools accept it so tests can
// substitute fixtures.
type Reader interface {
	ListAll() []Post
	GetByKey(key string) (Post, bool)
	ListByCategory(category string) []Post
	ListByTag(tag string) []Post
	RelatedTo(post Post, limit int) []Post
	ListCategories() []string
	ListTags() []string
	ListFeatured(limit int) []Post
	Search(query string) []Post
}

// DecodeRecords reads a JSON array of records. Anything other than exactly
// one array, including null, is reported as ErrMalformedSource.
func DecodeRecords(r io.Reader) ([]Record, error) {
	dec := json.NewDecoder(r)

	var records *[]Record
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
	}
	if records == nil {
		return nil, fmt.Errorf("%w: document is null", ErrMalformedSource)
	}
	if err := dec.Decode(&json.RawMessage{}); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after the post array", ErrMalformedSource)
	}

	if *records == nil {
		return []Record{}, nil
	}
	return *records, nil
}

// EncodeRecords writes records as an indented JSON array followed by a newline.
func EncodeRecords(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(records)
}
