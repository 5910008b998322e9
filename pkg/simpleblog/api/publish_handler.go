package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"github.com/tendant/simple-blog/pkg/simpleblog"
	"github.com/tendant/simple-blog/pkg/simpleblog/publish"
)

// Publisher publishes posts into the backing store
type Publisher interface {
	Publish(ctx context.Context, in publish.Input) (*publish.Result, error)
}

// PublishHandler accepts posts from the content workflow
type PublishHandler struct {
	publisher Publisher
	tokenAuth *jwtauth.JWTAuth
}

// NewPublishHandler creates a new publish handler. When jwtSecret is set,
// requests must carry an HS256 bearer token signed with it.
func NewPublishHandler(publisher Publisher, jwtSecret string) *PublishHandler {
	h := &PublishHandler{publisher: publisher}
	if jwtSecret != "" {
		h.tokenAuth = jwtauth.New("HS256", []byte(jwtSecret), nil)
	}
	return h
}

// Routes returns the routes for publishing
func (h *PublishHandler) Routes() chi.Router {
	r := chi.NewRouter()

	if h.tokenAuth != nil {
		r.Use(jwtauth.Verifier(h.tokenAuth))
		r.Use(jwtauth.Authenticator)
	}
	r.Post("/", h.Publish)

	return r
}

// Publish creates or updates a post
func (h *PublishHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var in publish.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.publisher.Publish(r.Context(), in)
	if err != nil {
		if errors.Is(err, simpleblog.ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("Failed to publish post", "title", in.Title, "error", err)
		http.Error(w, "Failed to publish post", http.StatusInternalServerError)
		return
	}

	if result.Created {
		render.Status(r, http.StatusCreated)
	}
	render.JSON(w, r, result)
}
