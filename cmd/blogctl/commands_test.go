package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-blog/pkg/simpleblog"
	"github.com/tendant/simple-blog/pkg/simpleblog/api"
)

const testPosts = `[
  {
    "slug": "plan-review",
    "title": "Getting ready for your plan review",
    "excerpt": "A checklist for review meetings.",
    "content": "Bring your goals and recent reports.",
    "author": "Bright Support Team",
    "publishedAt": "2024-05-02T09:30:00.000Z",
    "updatedAt": "2024-05-02T09:30:00.000Z",
    "category": "NDIS Planning",
    "tags": ["ndis", "planning"],
    "readingTime": 5,
    "featured": true
  },
  {
    "slug": "budget-basics",
    "title": "Understanding your NDIS budget",
    "excerpt": "Core, capacity building and capital explained.",
    "content": "Your plan is split into three budgets.",
    "author": {"name": "Sam Lee", "role": "Plan Manager"},
    "publishedAt": "2024-04-01T08:00:00.000Z",
    "updatedAt": "2024-04-01T08:00:00.000Z",
    "category": "NDIS Planning",
    "tags": ["ndis", "budget"],
    "readingTime": "3 min read"
  },
  {
    "slug": "hydrotherapy",
    "title": "Hydrotherapy for daily living",
    "excerpt": "Warm water sessions.",
    "content": "Hydrotherapy supports mobility.",
    "author": "Bright Support Team",
    "publishedAt": "2024-03-15T08:00:00.000Z",
    "updatedAt": "2024-03-15T08:00:00.000Z",
    "category": "Allied Health",
    "tags": ["therapy"],
    "readingTime": 4
  }
]`

func writePosts(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "posts.json")
	require.NoError(t, os.WriteFile(path, []byte(testPosts), 0644))
	return path
}

func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("BLOG_SOURCE_URL", "")

	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

func TestListCommand_Table(t *testing.T) {
	path := writePosts(t)

	output, err := runCommand(t, "", "--source", "file://"+path, "list")
	require.NoError(t, err)

	assert.Contains(t, output, "plan-review")
	assert.Contains(t, output, "budget-basics")
	assert.Contains(t, output, "hydrotherapy")
	assert.Less(t, strings.Index(output, "plan-review"), strings.Index(output, "hydrotherapy"))
}

func TestListCommand_FilterJSON(t *testing.T) {
	path := writePosts(t)

	output, err := runCommand(t, "", "--source", "file://"+path, "--json", "list", "--tag", "budget")
	require.NoError(t, err)

	var posts []api.PostResponse
	require.NoError(t, json.Unmarshal([]byte(output), &posts))
	require.Len(t, posts, 1)
	assert.Equal(t, "budget-basics", posts[0].Key)
}

func TestGetCommand(t *testing.T) {
	path := writePosts(t)

	output, err := runCommand(t, "", "--source", "file://"+path, "get", "budget-basics")
	require.NoError(t, err)
	assert.Contains(t, output, "Understanding your NDIS budget")
	assert.Contains(t, output, "Sam Lee")
	assert.Contains(t, output, "3 min read")

	_, err = runCommand(t, "", "--source", "file://"+path, "get", "missing")
	assert.ErrorIs(t, err, simpleblog.ErrPostNotFound)
}

func TestRelatedCommand(t *testing.T) {
	path := writePosts(t)

	output, err := runCommand(t, "", "--source", "file://"+path, "--json", "related", "plan-review")
	require.NoError(t, err)

	var posts []api.PostResponse
	require.NoError(t, json.Unmarshal([]byte(output), &posts))
	require.Len(t, posts, 1)
	assert.Equal(t, "budget-basics", posts[0].Key)
}

func TestCategoriesAndTagsCommands(t *testing.T) {
	path := writePosts(t)

	output, err := runCommand(t, "", "--source", "file://"+path, "--json", "categories")
	require.NoError(t, err)
	var categories []string
	require.NoError(t, json.Unmarshal([]byte(output), &categories))
	assert.ElementsMatch(t, []string{"NDIS Planning", "Allied Health"}, categories)

	output, err = runCommand(t, "", "--source", "file://"+path, "tags")
	require.NoError(t, err)
	assert.Contains(t, output, "therapy\n")
	assert.Contains(t, output, "budget\n")
}

func TestFeaturedAndSearchCommands(t *testing.T) {
	path := writePosts(t)

	output, err := runCommand(t, "", "--source", "file://"+path, "--json", "featured")
	require.NoError(t, err)
	var featured []api.PostResponse
	require.NoError(t, json.Unmarshal([]byte(output), &featured))
	require.Len(t, featured, 1)
	assert.Equal(t, "plan-review", featured[0].Key)

	output, err = runCommand(t, "", "--source", "file://"+path, "search", "MOBILITY")
	require.NoError(t, err)
	assert.Contains(t, output, "hydrotherapy")
	assert.NotContains(t, output, "plan-review")
}

func TestMissingSourceFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.json")

	_, err := runCommand(t, "", "--source", "file://"+path, "list")
	assert.ErrorIs(t, err, simpleblog.ErrSourceNotFound)
}

func TestPublishCommand(t *testing.T) {
	path := writePosts(t)
	request := `{
		"title": "Choosing a support coordinator",
		"article": "A good coordinator helps you use your plan well.",
		"summary": "What to look for.",
		"focus_keyword": "support coordination",
		"secondary_keywords": "ndis, coordination",
		"content_cluster": "support-coordination"
	}`

	output, err := runCommand(t, request, "--source", "file://"+path, "publish")
	require.NoError(t, err)
	assert.Contains(t, output, "Created")
	assert.Contains(t, output, "choosing-a-support-coordinator")

	output, err = runCommand(t, "", "--source", "file://"+path, "--json", "get", "choosing-a-support-coordinator")
	require.NoError(t, err)
	var post api.PostResponse
	require.NoError(t, json.Unmarshal([]byte(output), &post))
	assert.Equal(t, "Choosing a support coordinator", post.Title)

	output, err = runCommand(t, request, "--source", "file://"+path, "publish")
	require.NoError(t, err)
	assert.Contains(t, output, "Updated")
}

func TestPublishCommand_ReadOnlySource(t *testing.T) {
	dir := t.TempDir()

	_, err := runCommand(t, `{"title":"x","article":"y"}`, "--source", "markdown://"+dir, "publish")
	assert.ErrorIs(t, err, simpleblog.ErrReadOnlySource)
}

func TestPublishCommand_MemorySourceRejected(t *testing.T) {
	_, err := runCommand(t, `{"title":"x","article":"y"}`, "--source", "memory://", "publish")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persistent source")
}

func TestReadingTimeCommand(t *testing.T) {
	text := strings.Repeat("word ", 401)

	output, err := runCommand(t, text, "reading-time")
	require.NoError(t, err)
	assert.Equal(t, "401 words, 3 min read\n", output)

	output, err = runCommand(t, text, "--json", "reading-time", "-")
	require.NoError(t, err)
	assert.JSONEq(t, `{"wordCount":401,"readingTime":3}`, output)
}
