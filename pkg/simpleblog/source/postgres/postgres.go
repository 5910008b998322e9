package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-blog/pkg/simpleblog"
)

// TableName is the table posts are stored in
const TableName = "blog_post"

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// DB is a DBTX that can start transactions, such as *pgxpool.Pool or *pgx.Conn
type DB interface {
	DBTX
	Begin(context.Context) (pgx.Tx, error)
}

// Store implements simpleblog.Store using PostgreSQL. Each post is one
// row holding its JSON document; position keeps source order.
type Store struct {
	db    DB
	table string
	pool  *pgxpool.Pool
}

// New creates a new PostgreSQL store. An empty schema uses the search path.
func New(db DB, schema string) *Store {
	return &Store{db: db, table: tableIdent(schema)}
}

// Connect opens a connection pool and creates a store that owns it
func Connect(ctx context.Context, databaseURL, schema string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	s := New(pool, schema)
	s.pool = pool
	return s, nil
}

// Close releases the pool opened by Connect. It is a no-op otherwise.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func tableIdent(schema string) string {
	if schema == "" {
		return pgx.Identifier{TableName}.Sanitize()
	}
	return pgx.Identifier{schema, TableName}.Sanitize()
}

// EnsureSchema creates the posts table when it does not exist
func (s *Store) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			position INTEGER NOT NULL PRIMARY KEY,
			slug TEXT NOT NULL,
			document JSONB NOT NULL
		)`, s.table)

	if _, err := s.db.Exec(ctx, query); err != nil {
		return s.handlePostgresError("ensure schema", err)
	}
	return nil
}

// Load returns every stored record ordered by position
func (s *Store) Load(ctx context.Context) ([]simpleblog.Record, error) {
	query := fmt.Sprintf(`SELECT position, document FROM %s ORDER BY position`, s.table)

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, s.handlePostgresError("load", err)
	}
	defer rows.Close()

	records := []simpleblog.Record{}
	for rows.Next() {
		var (
			position int
			document []byte
		)
		if err := rows.Scan(&position, &document); err != nil {
			return nil, s.handlePostgresError("load", err)
		}

		var record simpleblog.Record
		if err := json.Unmarshal(document, &record); err != nil {
			return nil, s.wrap("load", fmt.Errorf("%w: position %d: %v", simpleblog.ErrMalformedSource, position, err))
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, s.handlePostgresError("load", err)
	}

	return records, nil
}

// Save replaces the table contents with records in a single transaction
func (s *Store) Save(ctx context.Context, records []simpleblog.Record) error {
	documents := make([]string, len(records))
	for i, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			return s.wrap("save", fmt.Errorf("failed to encode record %d: %w", i, err))
		}
		documents[i] = string(data)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return s.handlePostgresError("save", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s`, s.table)); err != nil {
		return s.handlePostgresError("save", err)
	}

	insert := fmt.Sprintf(`INSERT INTO %s (position, slug, document) VALUES ($1, $2, $3)`, s.table)
	for i, record := range records {
		if _, err := tx.Exec(ctx, insert, i, record.Slug, documents[i]); err != nil {
			return s.handlePostgresError("save", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return s.handlePostgresError("save", err)
	}
	return nil
}

// Error handling helper
func (s *Store) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42P01", "3F000": // undefined_table, invalid_schema_name
			return s.wrap(operation, simpleblog.ErrSourceNotFound)
		default:
			return s.wrap(operation, fmt.Errorf("database error: %s (code: %s)", pgErr.Message, pgErr.Code))
		}
	}
	return s.wrap(operation, fmt.Errorf("database error: %w", err))
}

func (s *Store) wrap(op string, err error) error {
	return &simpleblog.SourceError{Source: "postgres:" + s.table, Op: op, Err: err}
}
