package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-blog/pkg/simpleblog"
)

const defaultLimit = 3

// AuthorResponse is the response body for a post author
type AuthorResponse struct {
	Name    string `json:"name"`
	Avatar  string `json:"avatar,omitempty"`
	Role    string `json:"role,omitempty"`
	Initial string `json:"initial"`
}

// ReadingTimeResponse is the response body for a reading time estimate
type ReadingTimeResponse struct {
	Minutes int    `json:"minutes"`
	Label   string `json:"label"`
}

// PostResponse is the response body for a post
type PostResponse struct {
	ID                 string              `json:"id,omitempty"`
	Key                string              `json:"key"`
	Title              string              `json:"title"`
	Summary            string              `json:"summary"`
	Body               string              `json:"body"`
	Author             AuthorResponse      `json:"author"`
	PublishedAt        time.Time           `json:"published_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
	Category           string              `json:"category"`
	Tags               []string            `json:"tags"`
	Keywords           []string            `json:"keywords"`
	CoverImageRef      string              `json:"cover_image_ref,omitempty"`
	ReadingTime        ReadingTimeResponse `json:"reading_time"`
	Featured           bool                `json:"featured"`
	RelatedServiceRefs []string            `json:"related_service_refs"`
	MetaDescription    string              `json:"meta_description,omitempty"`
	SEO                *simpleblog.SEO     `json:"seo,omitempty"`
	NDIS               *simpleblog.NDIS    `json:"ndis,omitempty"`
}

// NewPostResponse converts a post into its response body
func NewPostResponse(p simpleblog.Post) PostResponse {
	return PostResponse{
		ID:      p.ID,
		Key:     p.Key,
		Title:   p.Title,
		Summary: p.Summary,
		Body:    p.Body,
		Author: AuthorResponse{
			Name:    p.Author.Name,
			Avatar:  p.Author.Avatar,
			Role:    p.Author.Role,
			Initial: p.Author.Initial(),
		},
		PublishedAt:        p.PublishedAt,
		UpdatedAt:          p.UpdatedAt,
		Category:           p.Category,
		Tags:               p.Tags,
		Keywords:           p.Keywords,
		CoverImageRef:      p.CoverImageRef,
		ReadingTime:        ReadingTimeResponse{Minutes: p.ReadingTime.Minutes, Label: p.ReadingTime.Label()},
		Featured:           p.Featured,
		RelatedServiceRefs: p.RelatedServiceRefs,
		MetaDescription:    p.MetaDescription,
		SEO:                p.SEO,
		NDIS:               p.NDIS,
	}
}

func newPostResponses(posts []simpleblog.Post) []PostResponse {
	resp := make([]PostResponse, len(posts))
	for i, p := range posts {
		resp[i] = NewPostResponse(p)
	}
	return resp
}

// PostsHandler serves read-only queries over the post collection
type PostsHandler struct {
	reader        simpleblog.Reader
	featuredLimit int
	relatedLimit  int
}

// NewPostsHandler creates a new posts handler. Non-positive limits fall back to 3.
func NewPostsHandler(reader simpleblog.Reader, featuredLimit, relatedLimit int) *PostsHandler {
	if featuredLimit <= 0 {
		featuredLimit = defaultLimit
	}
	if relatedLimit <= 0 {
		relatedLimit = defaultLimit
	}
	return &PostsHandler{
		reader:        reader,
		featuredLimit: featuredLimit,
		relatedLimit:  relatedLimit,
	}
}

// Routes returns the routes for posts. Every segment below the mount point is
// a post key, so collection-wide views are query parameters or are mounted
// beside it by MountRoutes.
func (h *PostsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListPosts)
	r.Get("/{key}", h.GetPost)
	r.Get("/{key}/related", h.ListRelated)

	return r
}

// ListPosts lists posts newest first, optionally narrowed by featured, q, tag
// or category
func (h *PostsHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if raw := query.Get("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid featured %q", raw), http.StatusBadRequest)
			return
		}
		if featured {
			h.ListFeatured(w, r)
			return
		}
	}

	var posts []simpleblog.Post
	switch {
	case query.Has("q"):
		posts = h.reader.Search(query.Get("q"))
	case query.Get("tag") != "":
		posts = h.reader.ListByTag(query.Get("tag"))
	case query.Get("category") != "":
		posts = h.reader.ListByCategory(query.Get("category"))
	default:
		posts = h.reader.ListAll()
	}

	render.JSON(w, r, newPostResponses(posts))
}

// GetPost returns a single post by key
func (h *PostsHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	post, ok := h.reader.GetByKey(key)
	if !ok {
		http.Error(w, simpleblog.ErrPostNotFound.Error(), http.StatusNotFound)
		return
	}

	render.JSON(w, r, NewPostResponse(post))
}

// ListRelated returns posts related to the post identified by key
func (h *PostsHandler) ListRelated(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	limit, err := parseLimit(r, h.relatedLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	post, ok := h.reader.GetByKey(key)
	if !ok {
		http.Error(w, simpleblog.ErrPostNotFound.Error(), http.StatusNotFound)
		return
	}

	render.JSON(w, r, newPostResponses(h.reader.RelatedTo(post, limit)))
}

// ListFeatured returns the newest featured posts
func (h *PostsHandler) ListFeatured(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, h.featuredLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	render.JSON(w, r, newPostResponses(h.reader.ListFeatured(limit)))
}

// ListCategories returns the distinct categories
func (h *PostsHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.reader.ListCategories())
}

// ListTags returns the distinct tags
func (h *PostsHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.reader.ListTags())
}

func parseLimit(r *http.Request, defaultValue int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultValue, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("invalid limit %q", raw)
	}
	return limit, nil
}
