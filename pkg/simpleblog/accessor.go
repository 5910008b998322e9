package simpleblog

import (
	"context"
	"log/slog"
	"sort"
	"strings"
)

// Accessor serves read-only queries over a collection loaded once.
// The zero value is an empty collection.
type Accessor struct {
	logger *slog.Logger

	// posts keeps source order; byDate is the same posts sorted by
	// PublishedAt descending, ties in source order.
	posts  []Post
	byDate []Post
}

var _ Reader = (*Accessor)(nil)

// Option represents a functional option for configuring the accessor
type Option func(*Accessor)

// WithLogger sets the logger used for load-time warnings
func WithLogger(logger *slog.Logger) Option {
	return func(a *Accessor) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an accessor over already-resolved posts. The slice is copied.
func New(posts []Post, options ...Option) *Accessor {
	a := &Accessor{logger: slog.Default()}
	for _, option := range options {
		option(a)
	}

	a.posts = make([]Post, len(posts))
	for i, p := range posts {
		a.posts[i] = p.clone()
	}

	a.byDate = make([]Post, len(a.posts))
	copy(a.byDate, a.posts)
	sort.SliceStable(a.byDate, func(i, j int) bool {
		return a.byDate[i].PublishedAt.After(a.byDate[j].PublishedAt)
	})

	a.warnOnKeys()
	return a
}

// FromRecords resolves wire records and builds an accessor over them.
// The first record that cannot be resolved fails the whole build.
func FromRecords(records []Record, options ...Option) (*Accessor, error) {
	posts := make([]Post, 0, len(records))
	for i, r := range records {
		p, err := r.Resolve()
		if err != nil {
			return nil, &RecordError{Index: i, Key: r.Slug, Err: err}
		}
		posts = append(posts, p)
	}
	return New(posts, options...), nil
}

// Load reads every record from src and builds the accessor. There is no
// fallback: a missing or malformed source is returned as a *LoadError.
func Load(ctx context.Context, src Source, options ...Option) (*Accessor, error) {
	if src == nil {
		return nil, &LoadError{Op: "open", Err: ErrSourceNotFound}
	}

	records, err := src.Load(ctx)
	if err != nil {
		return nil, &LoadError{Op: "read", Err: err}
	}

	a, err := FromRecords(records, options...)
	if err != nil {
		return nil, &LoadError{Op: "resolve", Err: err}
	}

	a.logger.Info("Blog posts loaded", "count", len(a.posts))
	return a, nil
}

// warnOnKeys logs keys that GetByKey cannot address unambiguously.
func (a *Accessor) warnOnKeys() {
	seen := make(map[string]struct{}, len(a.posts))
	for i, p := range a.posts {
		if p.Key == "" {
			a.logger.Warn("Post has no key", "index", i, "title", p.Title)
			continue
		}
		if _, dup := seen[p.Key]; dup {
			a.logger.Warn("Duplicate post key, later post is shadowed", "key", p.Key, "index", i)
			continue
		}
		seen[p.Key] = struct{}{}
	}
}

// Len returns the number of posts in the collection
func (a *Accessor) Len() int {
	return len(a.posts)
}

// Query operations

// ListAll returns every post, most recently published first.
func (a *Accessor) ListAll() []Post {
	return a.filter(func(Post) bool { return true })
}

// GetByKey returns the first post, in source order, whose key equals key.
func (a *Accessor) GetByKey(key string) (Post, bool) {
	for _, p := range a.posts {
		if p.Key == key {
			return p.clone(), true
		}
	}
	return Post{}, false
}

// ListByCategory returns posts whose category equals category exactly.
func (a *Accessor) ListByCategory(category string) []Post {
	return a.filter(func(p Post) bool { return p.Category == category })
}

// ListByTag returns posts carrying tag.
func (a *Accessor) ListByTag(tag string) []Post {
	return a.filter(func(p Post) bool { return p.HasTag(tag) })
}

// RelatedTo ranks other posts by relevance to post: 2 points for the same
// category and 1 for every tag of the candidate that post also carries.
// Posts with no overlap are left out. Equal scores keep source order.
func (a *Accessor) RelatedTo(post Post, limit int) []Post {
	if limit <= 0 {
		return []Post{}
	}

	type scored struct {
		post  Post
		score int
	}
	var candidates []scored
	for _, p := range a.posts {
		if p.Key == post.Key {
			continue
		}
		if score := relevance(post, p); score > 0 {
			candidates = append(candidates, scored{post: p, score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	result := make([]Post, len(candidates))
	for i, c := range candidates {
		result[i] = c.post.clone()
	}
	return result
}

func relevance(anchor, candidate Post) int {
	score := 0
	if candidate.Category == anchor.Category {
		score += 2
	}
	for _, tag := range candidate.Tags {
		if anchor.HasTag(tag) {
			score++
		}
	}
	return score
}

// ListCategories returns each distinct category once, in first-seen order.
func (a *Accessor) ListCategories() []string {
	seen := make(map[string]struct{})
	categories := []string{}
	for _, p := range a.posts {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	return categories
}

// ListTags returns each distinct tag once, in first-seen order.
func (a *Accessor) ListTags() []string {
	seen := make(map[string]struct{})
	tags := []string{}
	for _, p := range a.posts {
		for _, tag := range p.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	return tags
}

// ListFeatured returns up to limit featured posts, most recent first.
func (a *Accessor) ListFeatured(limit int) []Post {
	if limit <= 0 {
		return []Post{}
	}
	featured := a.filter(func(p Post) bool { return p.Featured })
	if len(featured) > limit {
		featured = featured[:limit]
	}
	return featured
}

// Search returns posts whose title, summary, body, tags or keywords contain
// query, ignoring case. An empty query matches every post.
func (a *Accessor) Search(query string) []Post {
	q := strings.ToLower(query)
	return a.filter(func(p Post) bool { return matches(p, q) })
}

func matches(p Post, lowerQuery string) bool {
	if strings.Contains(strings.ToLower(p.Title), lowerQuery) ||
		strings.Contains(strings.ToLower(p.Summary), lowerQuery) ||
		strings.Contains(strings.ToLower(p.Body), lowerQuery) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), lowerQuery) {
			return true
		}
	}
	for _, keyword := range p.Keywords {
		if strings.Contains(strings.ToLower(keyword), lowerQuery) {
			return true
		}
	}
	return false
}

// filter returns copies of the date-ordered posts accepted by keep.
func (a *Accessor) filter(keep func(Post) bool) []Post {
	result := []Post{}
	for _, p := range a.byDate {
		if keep(p) {
			result = append(result, p.clone())
		}
	}
	return result
}
