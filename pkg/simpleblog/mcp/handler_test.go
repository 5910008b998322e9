package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-blog/pkg/simpleblog"
)

func testHandler(t *testing.T) *Handler {
	t.Helper()
	a, err := simpleblog.FromRecords([]simpleblog.Record{
		{
			Slug:        "plan-review",
			Title:       "Preparing for your plan review",
			PublishedAt: "2024-05-01",
			Category:    "NDIS Planning",
			Tags:        []string{"ndis", "planning"},
			Featured:    true,
		},
		{
			Slug:        "budget-basics",
			Title:       "Budget basics",
			PublishedAt: "2024-04-01",
			Category:    "NDIS Planning",
			Tags:        []string{"ndis"},
		},
		{
			Slug:        "day-programs",
			Title:       "Day programs",
			PublishedAt: "2024-03-01",
			Category:    "Community",
			Featured:    true,
		},
	})
	require.NoError(t, err)
	return NewHandler(a, 0, 0)
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func decodeKeys(t *testing.T, res *mcp.CallToolResult) []string {
	t.Helper()
	var items []PostSummary
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &items))
	keys := make([]string, len(items))
	for i, item := range items {
		keys[i] = item.Key
	}
	return keys
}

func TestHandler_ListPosts(t *testing.T) {
	h := testHandler(t)
	ctx := context.Background()

	res, err := h.handleListPosts(ctx, callRequest(nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"plan-review", "budget-basics", "day-programs"}, decodeKeys(t, res))

	res, err = h.handleListPosts(ctx, callRequest(map[string]interface{}{"category": "Community"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"day-programs"}, decodeKeys(t, res))

	res, err = h.handleListPosts(ctx, callRequest(map[string]interface{}{"tag": "planning"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"plan-review"}, decodeKeys(t, res))
}

func TestHandler_GetPost(t *testing.T) {
	h := testHandler(t)
	ctx := context.Background()

	res, err := h.handleGetPost(ctx, callRequest(map[string]interface{}{"key": "budget-basics"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), `"title": "Budget basics"`)

	res, err = h.handleGetPost(ctx, callRequest(map[string]interface{}{"key": "missing"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = h.handleGetPost(ctx, callRequest(nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandler_RelatedAndFeatured(t *testing.T) {
	h := testHandler(t)
	ctx := context.Background()

	res, err := h.handleRelatedPosts(ctx, callRequest(map[string]interface{}{"key": "plan-review"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"budget-basics"}, decodeKeys(t, res))

	res, err = h.handleRelatedPosts(ctx, callRequest(map[string]interface{}{"key": "nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = h.handleFeaturedPosts(ctx, callRequest(map[string]interface{}{"limit": float64(1)}))
	require.NoError(t, err)
	assert.Equal(t, []string{"plan-review"}, decodeKeys(t, res))
}

func TestHandler_SearchCategoriesTags(t *testing.T) {
	h := testHandler(t)
	ctx := context.Background()

	res, err := h.handleSearchPosts(ctx, callRequest(map[string]interface{}{"query": "BUDGET"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"budget-basics"}, decodeKeys(t, res))

	res, err = h.handleListCategories(ctx, callRequest(nil))
	require.NoError(t, err)
	var categories []string
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &categories))
	assert.Equal(t, []string{"NDIS Planning", "Community"}, categories)

	res, err = h.handleListTags(ctx, callRequest(nil))
	require.NoError(t, err)
	var tags []string
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &tags))
	assert.Equal(t, []string{"ndis", "planning"}, tags)
}

func TestHandler_RegisterTools(t *testing.T) {
	s := server.NewMCPServer("test", "1.0.0")
	testHandler(t).RegisterTools(s)

	resp := s.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	for _, name := range []string{"list_posts", "get_post", "related_posts", "search_posts", "list_categories", "list_tags", "featured_posts"} {
		assert.Contains(t, string(data), `"name":"`+name+`"`)
	}
}
