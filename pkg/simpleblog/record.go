package simpleblog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Record is a post as it appears in the backing data source. Field names
// follow the JSON documents produced by the publishing workflow.
type Record struct {
	ID              string           `json:"id,omitempty"`
	Slug            string           `json:"slug"`
	Title           string           `json:"title"`
	Excerpt         string           `json:"excerpt"`
	Content         string           `json:"content"`
	Author          AuthorField      `json:"author"`
	CoverImage      string           `json:"coverImage,omitempty"`
	FeaturedImage   string           `json:"featuredImage,omitempty"`
	PublishedAt     string           `json:"publishedAt"`
	UpdatedAt       string           `json:"updatedAt"`
	Category        string           `json:"category"`
	Tags            []string         `json:"tags"`
	ReadingTime     ReadingTimeField `json:"readingTime"`
	Keywords        []string         `json:"keywords,omitempty"`
	MetaDescription string           `json:"metaDescription,omitempty"`
	Featured        bool             `json:"featured,omitempty"`
	RelatedServices []string         `json:"relatedServices,omitempty"`
	PrimaryKeyword  string           `json:"primaryKeyword,omitempty"`
	ContentCluster  string           `json:"contentCluster,omitempty"`
	CTAType         string           `json:"ctaType,omitempty"`
	SEOScore        *int             `json:"seoScore,omitempty"`
	WordCount       *int             `json:"wordCount,omitempty"`
	SEO             *SEO             `json:"seo,omitempty"`
	NDIS            *NDIS            `json:"ndis,omitempty"`
}

// SEO holds search-engine overrides attached to a post
type SEO struct {
	MetaTitle       string `json:"metaTitle"`
	MetaDescription string `json:"metaDescription"`
	Keywords        string `json:"keywords"`
	OGImage         string `json:"ogImage"`
}

// NDIS holds service classification attached to a post
type NDIS struct {
	ServiceName         string  `json:"serviceName"`
	ServiceCategory     string  `json:"serviceCategory"`
	Location            string  `json:"location"`
	ComplianceScore     float64 `json:"complianceScore"`
	PersonFirstLanguage bool    `json:"personFirstLanguage"`
}

// AuthorField decodes an author given either as a plain display name or as
// an object with name, avatar and role. It encodes back in the shape it was
// read in.
type AuthorField struct {
	Name   string
	Avatar string
	Role   string

	// Structured is true when the author was (or should be) written as an object
	Structured bool
}

type authorObject struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Role   string `json:"role"`
}

// UnmarshalJSON implements json.Unmarshaler
func (a *AuthorField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*a = AuthorField{}
		return nil
	case data[0] == '"':
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return fmt.Errorf("author: %w", err)
		}
		*a = AuthorField{Name: name}
		return nil
	}

	var obj authorObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("author: %w", err)
	}
	*a = AuthorField{Name: obj.Name, Avatar: obj.Avatar, Role: obj.Role, Structured: true}
	return nil
}

// MarshalJSON implements json.Marshaler
func (a AuthorField) MarshalJSON() ([]byte, error) {
	if !a.Structured {
		return json.Marshal(a.Name)
	}
	return json.Marshal(authorObject{Name: a.Name, Avatar: a.Avatar, Role: a.Role})
}

// ReadingTimeField decodes a reading time given either as a number of
// minutes or as preformatted text such as "5 min read".
type ReadingTimeField struct {
	Minutes int

	// Text is set when the value was (or should be) written as a string
	Text string
}

// UnmarshalJSON implements json.Unmarshaler
func (r *ReadingTimeField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*r = ReadingTimeField{}
		return nil
	case data[0] == '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return fmt.Errorf("readingTime: %w", err)
		}
		*r = ReadingTimeField{Minutes: leadingInt(text), Text: text}
		return nil
	}

	var minutes float64
	if err := json.Unmarshal(data, &minutes); err != nil {
		return fmt.Errorf("readingTime: %w", err)
	}
	*r = ReadingTimeField{Minutes: int(math.Ceil(minutes))}
	return nil
}

// MarshalJSON implements json.Marshaler
func (r ReadingTimeField) MarshalJSON() ([]byte, error) {
	if r.Text != "" {
		return json.Marshal(r.Text)
	}
	return json.Marshal(r.Minutes)
}

// leadingInt returns the first run of digits in s, or 0 when there is none.
func leadingInt(s string) int {
	start := strings.IndexAny(s, "0123456789")
	if start < 0 {
		return 0
	}
	end := start
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[start:end])
	if err != nil {
		return 0
	}
	return n
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	c := r
	c.Tags = slices.Clone(r.Tags)
	c.Keywords = slices.Clone(r.Keywords)
	c.RelatedServices = slices.Clone(r.RelatedServices)
	if r.SEOScore != nil {
		v := *r.SEOScore
		c.SEOScore = &v
	}
	if r.WordCount != nil {
		v := *r.WordCount
		c.WordCount = &v
	}
	if r.SEO != nil {
		seo := *r.SEO
		c.SEO = &seo
	}
	if r.NDIS != nil {
		ndis := *r.NDIS
		c.NDIS = &ndis
	}
	return c
}

// CloneRecords deep-copies a record slice. The result is never nil.
func CloneRecords(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
