package simpleblog

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `[
  {
    "slug": "ndis-plan-reviews",
    "title": "Preparing for your NDIS plan review",
    "excerpt": "What to bring and what to ask.",
    "content": "<p>Plan reviews ...</p>",
    "author": "Bright Support Team",
    "publishedAt": "2024-05-02T09:30:00.000Z",
    "updatedAt": "2024-05-03T10:00:00.000Z",
    "category": "NDIS Planning",
    "tags": ["ndis", "planning"],
    "featuredImage": "/images/blog/plan-review.jpg",
    "readingTime": 6,
    "keywords": ["plan review"],
    "featured": true,
    "seoScore": 87,
    "wordCount": 1180
  },
  {
    "slug": "hydrotherapy-benefits",
    "title": "Five benefits of hydrotherapy",
    "excerpt": "Why warm water helps.",
    "content": "...",
    "author": {"name": "Priya Nair", "avatar": "/images/team/priya.jpg", "role": "Physiotherapist"},
    "coverImage": "/images/blog/hydro.jpg",
    "publishedAt": "2024-04-10",
    "updatedAt": "",
    "category": "Allied Health",
    "readingTime": "4 min read",
    "ndis": {"serviceName": "Hydrotherapy", "serviceCategory": "Capacity Building", "location": "Shepparton", "complianceScore": 92, "personFirstLanguage": true}
  }
]`

func TestDecodeRecords_Variants(t *testing.T) {
	records, err := DecodeRecords(strings.NewReader(sampleDocument))
	require.NoError(t, err)
	require.Len(t, records, 2)

	first, second := records[0], records[1]

	assert.Equal(t, "Bright Support Team", first.Author.Name)
	assert.False(t, first.Author.Structured)
	assert.Equal(t, 6, first.ReadingTime.Minutes)
	assert.Empty(t, first.ReadingTime.Text)

	assert.True(t, second.Author.Structured)
	assert.Equal(t, "Physiotherapist", second.Author.Role)
	assert.Equal(t, 4, second.ReadingTime.Minutes)
	assert.Equal(t, "4 min read", second.ReadingTime.Text)
	assert.Nil(t, second.Tags)
}

func TestRecordResolve(t *testing.T) {
	records, err := DecodeRecords(strings.NewReader(sampleDocument))
	require.NoError(t, err)

	p, err := records[0].Resolve()
	require.NoError(t, err)
	assert.Equal(t, "ndis-plan-reviews", p.Key)
	assert.Equal(t, "What to bring and what to ask.", p.Summary)
	assert.Equal(t, Author{Name: "Bright Support Team"}, p.Author)
	assert.Equal(t, "/images/blog/plan-review.jpg", p.CoverImageRef)
	assert.Equal(t, time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC), p.PublishedAt)
	assert.Equal(t, "6 min read", p.ReadingTime.Label())
	assert.Equal(t, 87, p.SEOScore)
	assert.Equal(t, 1180, p.WordCount)
	assert.True(t, p.Featured)
	assert.Equal(t, []string{}, p.RelatedServiceRefs)

	q, err := records[1].Resolve()
	require.NoError(t, err)
	assert.Equal(t, "/images/blog/hydro.jpg", q.CoverImageRef)
	assert.Equal(t, "Priya Nair", q.Author.Name)
	assert.Equal(t, "P", q.Author.Initial())
	assert.Equal(t, "4 min read", q.ReadingTime.Label())
	assert.Equal(t, q.PublishedAt, q.UpdatedAt)
	assert.Equal(t, []string{}, q.Tags)
	require.NotNil(t, q.NDIS)
	assert.Equal(t, "Shepparton", q.NDIS.Location)
}

func TestRecord_RoundTripKeepsVariantShape(t *testing.T) {
	records, err := DecodeRecords(strings.NewReader(sampleDocument))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeRecords(&buf, records))

	var raw []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))

	assert.Equal(t, "Bright Support Team", raw[0]["author"])
	assert.Equal(t, float64(6), raw[0]["readingTime"])
	assert.IsType(t, map[string]interface{}{}, raw[1]["author"])
	assert.Equal(t, "4 min read", raw[1]["readingTime"])
}

func TestDecodeRecords_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", "{{"},
		{"object instead of array", `{"slug": "x"}`},
		{"author wrong type", `[{"slug": "x", "author": 42}]`},
		{"reading time wrong type", `[{"slug": "x", "readingTime": true}]`},
		{"null document", "null\n"},
		{"empty document", ""},
		{"trailing garbage", `[] trailing garbage {`},
		{"second array", `[{"slug": "x"}] [{"slug": "y"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRecords(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, ErrMalformedSource)
		})
	}
}

func TestDecodeRecords_EmptyArray(t *testing.T) {
	records, err := DecodeRecords(strings.NewReader("[]\n"))
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"", time.Time{}, false},
		{"2024-01-01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"2024-01-01T08:00:00+10:00", time.Date(2023, 12, 31, 22, 0, 0, 0, time.UTC), false},
		{"2024-01-01T08:00:00", time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), false},
		{"2024-01-01 08:00:00", time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), false},
		{"01/02/2024", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestLeadingInt(t *testing.T) {
	assert.Equal(t, 5, leadingInt("5 min read"))
	assert.Equal(t, 12, leadingInt("about 12 minutes"))
	assert.Equal(t, 0, leadingInt("quick read"))
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2024, 3, 4, 5, 6, 7, 8_000_000, time.FixedZone("AEST", 10*3600))
	assert.Equal(t, "2024-03-03T19:06:07.008Z", FormatTimestamp(ts))
}
