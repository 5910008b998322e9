package simpleblog

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Post is the canonical, resolved form of a blog post.
type Post struct {
	ID                 string      `json:"id,omitempty"`
	Key                string      `json:"key"`
	Title              string      `json:"title"`
	Summary            string      `json:"summary"`
	Body               string      `json:"body"`
	Author             Author      `json:"author"`
	PublishedAt        time.Time   `json:"published_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
	Category           string      `json:"category"`
	Tags               []string    `json:"tags"`
	Keywords           []string    `json:"keywords"`
	CoverImageRef      string      `json:"cover_image_ref,omitempty"`
	ReadingTime        ReadingTime `json:"reading_time"`
	Featured           bool        `json:"featured"`
	RelatedServiceRefs []string    `json:"related_service_refs"`
	SEOScore           int         `json:"seo_score,omitempty"`
	WordCount          int         `json:"word_count,omitempty"`
	MetaDescription    string      `json:"meta_description,omitempty"`
	PrimaryKeyword     string      `json:"primary_keyword,omitempty"`
	ContentCluster     string      `json:"content_cluster,omitempty"`
	CTAType            string      `json:"cta_type,omitempty"`
	SEO                *SEO        `json:"seo,omitempty"`
	NDIS               *NDIS       `json:"ndis,omitempty"`
}

// Author identifies who wrote a post. Avatar and Role are empty when the
// source only carried a display name.
type Author struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Role   string `json:"role,omitempty"`
}

// Initial returns the first letter of the author's name, used when no avatar is set.
func (a Author) Initial() string {
	for _, r := range strings.TrimSpace(a.Name) {
		return strings.ToUpper(string(r))
	}
	return ""
}

// ReadingTime is the estimated reading time of a post. Text keeps a
// preformatted label when the source supplied one.
type ReadingTime struct {
	Minutes int    `json:"minutes"`
	Text    string `json:"text,omitempty"`
}

// Label renders the reading time for display.
func (r ReadingTime) Label() string {
	if r.Text != "" {
		return r.Text
	}
	return fmt.Sprintf("%d min read", r.Minutes)
}

// HasTag reports whether the post carries tag exactly.
func (p Post) HasTag(tag string) bool {
	return slices.Contains(p.Tags, tag)
}

// clone returns a copy of p that shares no mutable state with it.
func (p Post) clone() Post {
	c := p
	c.Tags = cloneStrings(p.Tags)
	c.Keywords = cloneStrings(p.Keywords)
	c.RelatedServiceRefs = cloneStrings(p.RelatedServiceRefs)
	if p.SEO != nil {
		seo := *p.SEO
		c.SEO = &seo
	}
	if p.NDIS != nil {
		ndis := *p.NDIS
		c.NDIS = &ndis
	}
	return c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}
