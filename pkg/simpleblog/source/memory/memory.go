package memory

import (
	"context"
	"sync"

	"github.com/tendant/simple-blog/pkg/simpleblog"
)

// Store is an in-memory implementation of the simpleblog.Store interface
type Store struct {
	mu      sync.RWMutex
	records []simpleblog.Record
}

// New creates a new in-memory store seeded with records
func New(records ...simpleblog.Record) simpleblog.Store {
	return &Store{records: simpleblog.CloneRecords(records)}
}

// Load returns a copy of the stored records
func (s *Store) Load(ctx context.Context) ([]simpleblog.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return simpleblog.CloneRecords(s.records), nil
}

// Save replaces the stored records with a copy of records
func (s *Store) Save(ctx context.Context, records []simpleblog.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = simpleblog.CloneRecords(records)
	return nil
}
