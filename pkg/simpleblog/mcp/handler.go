package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/tendant/simple-blog/pkg/simpleblog"
	"github.com/tendant/simple-blog/pkg/simpleblog/api"
)

// Handler exposes blog queries as MCP tools
type Handler struct {
	reader        simpleblog.Reader
	featuredLimit int
	relatedLimit  int
}

// NewHandler creates a new instance of Handler. Non-positive limits fall back to 3.
func NewHandler(reader simpleblog.Reader, featuredLimit, relatedLimit int) *Handler {
	if featuredLimit <= 0 {
		featuredLimit = 3
	}
	if relatedLimit <= 0 {
		relatedLimit = 3
	}
	return &Handler{reader: reader, featuredLimit: featuredLimit, relatedLimit: relatedLimit}
}

// RegisterTools registers the blog tools with the MCP server
func (h *Handler) RegisterTools(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List blog posts newest first, optionally filtered by category or tag"),
		mcp.WithString("category", mcp.Description("Exact category name")),
		mcp.WithString("tag", mcp.Description("Exact tag")),
	), h.handleListPosts)

	s.AddTool(mcp.NewTool("get_post",
		mcp.WithDescription("Get a single blog post by its key (slug)"),
		mcp.WithString("key", mcp.Required(), mcp.Description("Post key")),
	), h.handleGetPost)

	s.AddTool(mcp.NewTool("related_posts",
		mcp.WithDescription("List posts related to a post by category and shared tags"),
		mcp.WithString("key", mcp.Required(), mcp.Description("Key of the anchor post")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of posts")),
	), h.handleRelatedPosts)

	s.AddTool(mcp.NewTool("search_posts",
		mcp.WithDescription("Case-insensitive search over title, summary, body, tags and keywords"),
		mcp.WithString("query", mcp.Required(), mcp.Description("Text to search for")),
	), h.handleSearchPosts)

	s.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List the distinct post categories"),
	), h.handleListCategories)

	s.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List the distinct post tags"),
	), h.handleListTags)

	s.AddTool(mcp.NewTool("featured_posts",
		mcp.WithDescription("List the newest featured posts"),
		mcp.WithNumber("limit", mcp.Description("Maximum number of posts")),
	), h.handleFeaturedPosts)
}

func (h *Handler) handleListPosts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	var posts []simpleblog.Post
	if tag := stringArg(args, "tag"); tag != "" {
		posts = h.reader.ListByTag(tag)
	} else if category := stringArg(args, "category"); category != "" {
		posts = h.reader.ListByCategory(category)
	} else {
		posts = h.reader.ListAll()
	}
	return jsonResult(summaries(posts))
}

func (h *Handler) handleGetPost(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := stringArg(request.GetArguments(), "key")
	if key == "" {
		return mcp.NewToolResultError("key is required"), nil
	}

	post, ok := h.reader.GetByKey(key)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("post %q not found", key)), nil
	}
	return jsonResult(api.NewPostResponse(post))
}

func (h *Handler) handleRelatedPosts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	key := stringArg(args, "key")
	if key == "" {
		return mcp.NewToolResultError("key is required"), nil
	}

	post, ok := h.reader.GetByKey(key)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("post %q not found", key)), nil
	}
	return jsonResult(summaries(h.reader.RelatedTo(post, intArg(args, "limit", h.relatedLimit))))
}

func (h *Handler) handleSearchPosts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := stringArg(request.GetArguments(), "query")
	return jsonResult(summaries(h.reader.Search(query)))
}

func (h *Handler) handleListCategories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.reader.ListCategories())
}

func (h *Handler) handleListTags(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.reader.ListTags())
}

func (h *Handler) handleFeaturedPosts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := intArg(request.GetArguments(), "limit", h.featuredLimit)
	return jsonResult(summaries(h.reader.ListFeatured(limit)))
}

// PostSummary is the listing shape returned by tools; bodies are left out
type PostSummary struct {
	Key         string   `json:"key"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	PublishedAt string   `json:"published_at"`
	ReadingTime string   `json:"reading_time"`
	Featured    bool     `json:"featured"`
}

func summaries(posts []simpleblog.Post) []PostSummary {
	out := make([]PostSummary, len(posts))
	for i, p := range posts {
		out[i] = PostSummary{
			Key:         p.Key,
			Title:       p.Title,
			Summary:     p.Summary,
			Category:    p.Category,
			Tags:        p.Tags,
			PublishedAt: simpleblog.FormatTimestamp(p.PublishedAt),
			ReadingTime: p.ReadingTime.Label(),
			Featured:    p.Featured,
		}
	}
	return out
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key]; ok && v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// intArg reads a numeric argument; JSON numbers arrive as float64
func intArg(args map[string]interface{}, key string, defaultValue int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return defaultValue
}
