package markdown

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-blog/pkg/simpleblog"
)

const planReview = `---
title: Preparing for your NDIS plan review
excerpt: What to bring and what to ask.
author:
  name: Priya Nair
  role: Support Coordinator
publishedAt: "2024-05-02T09:30:00.000Z"
category: NDIS Planning
tags:
  - ndis
  - planning
featured: true
---
# Before the meeting

Gather your **reports** and goals.
`

const hydro = `---
slug: hydrotherapy-benefits
title: Five benefits of hydrotherapy
author: Bright Support Team
publishedAt: "2024-04-10"
category: Allied Health
readingTime: 4 min read
---
Warm water helps.
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestSource_Load(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a-plan-review.md", planReview)
	writeFile(t, dir, "b-hydro.md", hydro)
	writeFile(t, dir, "notes.txt", "ignored")

	src, err := New(Config{Dir: dir})
	require.NoError(t, err)

	records, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "a-plan-review", first.Slug)
	assert.Equal(t, "Preparing for your NDIS plan review", first.Title)
	assert.True(t, first.Author.Structured)
	assert.Equal(t, "Priya Nair", first.Author.Name)
	assert.Equal(t, "Support Coordinator", first.Author.Role)
	assert.Equal(t, []string{"ndis", "planning"}, first.Tags)
	assert.True(t, first.Featured)
	assert.Contains(t, first.Content, `<h1 id="before-the-meeting">Before the meeting</h1>`)
	assert.Contains(t, first.Content, "<strong>reports</strong>")
	assert.Equal(t, 1, first.ReadingTime.Minutes)

	second := records[1]
	assert.Equal(t, "hydrotherapy-benefits", second.Slug)
	assert.False(t, second.Author.Structured)
	assert.Equal(t, "Bright Support Team", second.Author.Name)
	assert.Equal(t, "4 min read", second.ReadingTime.Text)
	assert.Equal(t, "<p>Warm water helps.</p>\n", second.Content)

	post, err := second.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 2024, post.PublishedAt.Year())
}

func TestSource_LoadNested(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "2024/post.md", "---\ntitle: Nested\n---\nBody")

	src, err := New(Config{Dir: dir})
	require.NoError(t, err)

	records, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "post", records[0].Slug)
}

func TestSource_LoadMissingDir(t *testing.T) {
	src, err := New(Config{Dir: filepath.Join(t.TempDir(), "missing")})
	require.NoError(t, err)

	_, err = src.Load(context.Background())
	assert.ErrorIs(t, err, simpleblog.ErrSourceNotFound)
}

func TestSource_LoadMalformedFrontMatter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.md", "---\ntitle: [unclosed\n---\nBody")

	src, err := New(Config{Dir: dir})
	require.NoError(t, err)

	_, err = src.Load(context.Background())
	assert.ErrorIs(t, err, simpleblog.ErrMalformedSource)
}

func TestNew_RequiresDir(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
