package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-blog/pkg/simpleblog"
)

func TestTableIdent(t *testing.T) {
	assert.Equal(t, `"blog_post"`, tableIdent(""))
	assert.Equal(t, `"content"."blog_post"`, tableIdent("content"))
}

// newTestPool connects to BLOG_TEST_DATABASE_URL and creates a throwaway schema
func newTestPool(t *testing.T) (*pgxpool.Pool, string) {
	t.Helper()

	connString := os.Getenv("BLOG_TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("Skipping postgres test: BLOG_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, pool.Ping(ctx), "Failed to ping test database")

	schema := fmt.Sprintf("blog_test_%d", time.Now().UnixNano())
	_, err = pool.Exec(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
		pool.Close()
	})
	return pool, schema
}

func TestStore_LoadMissingTable(t *testing.T) {
	pool, schema := newTestPool(t)
	store := New(pool, schema)

	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, simpleblog.ErrSourceNotFound)
}

func TestStore_SaveAndLoad(t *testing.T) {
	pool, schema := newTestPool(t)
	store := New(pool, schema)
	ctx := context.Background()

	require.NoError(t, store.EnsureSchema(ctx))
	require.NoError(t, store.EnsureSchema(ctx))

	records, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	first := []simpleblog.Record{
		{Slug: "zeta", Title: "Zeta", Author: simpleblog.AuthorField{Name: "Kim", Role: "Editor", Structured: true}},
		{Slug: "alpha", Title: "Alpha", ReadingTime: simpleblog.ReadingTimeField{Minutes: 4}},
	}
	require.NoError(t, store.Save(ctx, first))

	records, err = store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "zeta", records[0].Slug)
	assert.Equal(t, "alpha", records[1].Slug)
	assert.True(t, records[0].Author.Structured)
	assert.Equal(t, 4, records[1].ReadingTime.Minutes)

	require.NoError(t, store.Save(ctx, first[1:]))
	records, err = store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "alpha", records[0].Slug)
}
