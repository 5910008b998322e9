package simpleblog

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// WordsPerMinute is the reading speed used to estimate reading time.
const WordsPerMinute = 200

// timestampLayouts are tried in order when parsing publishedAt/updatedAt.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp. An empty string yields the zero time.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// FormatTimestamp renders t the way the publishing workflow writes it:
// UTC with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// CountWords returns the number of whitespace-separated words in s.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// CalculateReadingTime estimates reading time in whole minutes, rounded up.
func CalculateReadingTime(body string) int {
	return int(math.Ceil(float64(CountWords(body)) / WordsPerMinute))
}

// Resolve converts a wire record into its canonical Post. Absent optional
// fields become their zero value; only unparseable timestamps are rejected.
func (r Record) Resolve() (Post, error) {
	publishedAt, err := ParseTimestamp(r.PublishedAt)
	if err != nil {
		return Post{}, fmt.Errorf("publishedAt: %w", err)
	}
	updatedAt, err := ParseTimestamp(r.UpdatedAt)
	if err != nil {
		return Post{}, fmt.Errorf("updatedAt: %w", err)
	}
	if updatedAt.IsZero() {
		updatedAt = publishedAt
	}

	cover := r.CoverImage
	if cover == "" {
		cover = r.FeaturedImage
	}

	p := Post{
		ID:                 r.ID,
		Key:                r.Slug,
		Title:              r.Title,
		Summary:            r.Excerpt,
		Body:               r.Content,
		Author:             Author{Name: r.Author.Name, Avatar: r.Author.Avatar, Role: r.Author.Role},
		PublishedAt:        publishedAt,
		UpdatedAt:          updatedAt,
		Category:           r.Category,
		Tags:               cloneStrings(r.Tags),
		Keywords:           cloneStrings(r.Keywords),
		CoverImageRef:      cover,
		ReadingTime:        ReadingTime{Minutes: r.ReadingTime.Minutes, Text: r.ReadingTime.Text},
		Featured:           r.Featured,
		RelatedServiceRefs: cloneStrings(r.RelatedServices),
		MetaDescription:    r.MetaDescription,
		PrimaryKeyword:     r.PrimaryKeyword,
		ContentCluster:     r.ContentCluster,
		CTAType:            r.CTAType,
	}
	if r.SEOScore != nil {
		p.SEOScore = *r.SEOScore
	}
	if r.WordCount != nil {
		p.WordCount = *r.WordCount
	}
	if r.SEO != nil {
		seo := *r.SEO
		p.SEO = &seo
	}
	if r.NDIS != nil {
		ndis := *r.NDIS
		p.NDIS = &ndis
	}
	return p, nil
}
