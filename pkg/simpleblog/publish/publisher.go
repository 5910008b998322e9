package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-blog/pkg/simpleblog"
)

const (
	// DefaultAuthor is credited on every published post unless overridden
	DefaultAuthor = "Bright Support Team"

	// DefaultImage is used when the input carries no image
	DefaultImage = "/images/blog/default-hero.jpg"

	maxTags              = 5
	metaDescriptionRunes = 155
)

// Input is a publish request as produced by the content workflow
type Input struct {
	Title             string   `json:"title"`
	Article           string   `json:"article"`
	Summary           string   `json:"summary"`
	FocusKeyword      string   `json:"focus_keyword"`
	InternalLinks     []string `json:"internal_links,omitempty"`
	ImageURL          string   `json:"image_url,omitempty"`
	ContentCluster    string   `json:"content_cluster,omitempty"`
	CTAType           string   `json:"cta_type,omitempty"`
	TargetAudience    string   `json:"target_audience,omitempty"`
	SecondaryKeywords string   `json:"secondary_keywords,omitempty"`
	Topic             string   `json:"topic,omitempty"`
	SEOScore          *int     `json:"seo_score,omitempty"`
}

// Result reports what was written
type Result struct {
	Success     bool   `json:"success"`
	Slug        string `json:"slug"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	WordCount   int    `json:"wordCount"`
	ReadingTime int    `json:"readingTime"`
	Created     bool   `json:"created"`
}

// Publisher turns publish requests into records and upserts them into a store.
// Publishing never touches an already-loaded Accessor.
type Publisher struct {
	mu     sync.Mutex
	store  simpleblog.Store
	logger *slog.Logger
	now    func() time.Time
	author string
	image  string
}

// Option configures a Publisher
type Option func(*Publisher)

// WithLogger sets the publisher logger
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

// WithAuthor overrides the author credited on published posts
func WithAuthor(author string) Option {
	return func(p *Publisher) {
		if author != "" {
			p.author = author
		}
	}
}

// WithDefaultImage overrides the image used when the input has none
func WithDefaultImage(image string) Option {
	return func(p *Publisher) {
		if image != "" {
			p.image = image
		}
	}
}

// New creates a publisher writing to store
func New(store simpleblog.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
		author: DefaultAuthor,
		image:  DefaultImage,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish validates in, builds its record and upserts it by slug
func (p *Publisher) Publish(ctx context.Context, in Input) (*Result, error) {
	record, err := p.buildRecord(in)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	records, err := p.store.Load(ctx)
	if errors.Is(err, simpleblog.ErrSourceNotFound) {
		p.logger.Info("No existing blog posts found, starting fresh")
		records = []simpleblog.Record{}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load existing posts: %w", err)
	}

	created := true
	for i, existing := range records {
		if existing.Slug != record.Slug {
			continue
		}
		created = false
		record.PublishedAt = existing.PublishedAt
		record.Featured = existing.Featured
		record.RelatedServices = existing.RelatedServices
		if existing.ID != "" {
			record.ID = existing.ID
		}
		records[i] = record
		break
	}
	if created {
		records = append(records, record)
	}

	if err := p.store.Save(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to save posts: %w", err)
	}

	if created {
		p.logger.Info("Created new blog post", "slug", record.Slug, "id", record.ID)
	} else {
		p.logger.Info("Updated existing blog post", "slug", record.Slug, "id", record.ID)
	}

	return &Result{
		Success:     true,
		Slug:        record.Slug,
		URL:         "/blog/" + record.Slug,
		PublishedAt: record.PublishedAt,
		WordCount:   *record.WordCount,
		ReadingTime: record.ReadingTime.Minutes,
		Created:     created,
	}, nil
}

func (p *Publisher) buildRecord(in Input) (simpleblog.Record, error) {
	if strings.TrimSpace(in.Title) == "" {
		return simpleblog.Record{}, fmt.Errorf("%w: title is required", simpleblog.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Article) == "" {
		return simpleblog.Record{}, fmt.Errorf("%w: article is required", simpleblog.ErrInvalidInput)
	}
	slug := Slugify(in.Title)
	if slug == "" {
		return simpleblog.Record{}, fmt.Errorf("%w: title %q does not produce a slug", simpleblog.ErrInvalidInput, in.Title)
	}

	now := simpleblog.FormatTimestamp(p.now())
	wordCount := simpleblog.CountWords(in.Article)
	secondary := splitKeywords(in.SecondaryKeywords)

	tags := secondary
	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}

	var keywords []string
	if focus := strings.TrimSpace(in.FocusKeyword); focus != "" {
		keywords = append(keywords, focus)
	}
	keywords = append(keywords, secondary...)

	image := in.ImageURL
	if image == "" {
		image = p.image
	}

	return simpleblog.Record{
		ID:              uuid.NewString(),
		Slug:            slug,
		Title:           in.Title,
		Excerpt:         in.Summary,
		Content:         in.Article,
		Author:          simpleblog.AuthorField{Name: p.author},
		FeaturedImage:   image,
		PublishedAt:     now,
		UpdatedAt:       now,
		Category:        CategoryFor(in.ContentCluster),
		Tags:            append([]string{}, tags...),
		ReadingTime:     simpleblog.ReadingTimeField{Minutes: simpleblog.CalculateReadingTime(in.Article)},
		Keywords:        keywords,
		MetaDescription: truncateRunes(in.Summary, metaDescriptionRunes),
		PrimaryKeyword:  in.FocusKeyword,
		ContentCluster:  in.ContentCluster,
		CTAType:         in.CTAType,
		SEOScore:        in.SEOScore,
		WordCount:       &wordCount,
	}, nil
}

func splitKeywords(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
