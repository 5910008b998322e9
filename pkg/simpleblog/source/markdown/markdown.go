// Package markdown loads posts from a directory of Markdown files with YAML
// front matter. Front matter keys match the JSON record fields; the body is
// rendered to HTML and becomes the post content.
package markdown

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/tendant/simple-blog/pkg/simpleblog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Source is a read-only simpleblog.Source over a Markdown directory
type Source struct {
	dir string
	md  goldmark.Markdown
}

// Config options for the Markdown source
type Config struct {
	Dir string // Directory walked for *.md files
}

// New creates a new Markdown source
func New(config Config) (*Source, error) {
	if config.Dir == "" {
		return nil, errors.New("directory is required")
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)
	return &Source{dir: filepath.Clean(config.Dir), md: md}, nil
}

// Load parses every Markdown file under the directory in lexical path order
func (s *Source) Load(ctx context.Context) ([]simpleblog.Record, error) {
	info, err := os.Stat(s.dir)
	if os.IsNotExist(err) {
		return nil, s.wrap(simpleblog.ErrSourceNotFound)
	} else if err != nil {
		return nil, s.wrap(fmt.Errorf("failed to stat directory: %w", err))
	}
	if !info.IsDir() {
		return nil, s.wrap(fmt.Errorf("%s is not a directory", s.dir))
	}

	records := []simpleblog.Record{}
	walkErr := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("error accessing path '%s' during walk: %w", path, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		record, err := s.parseFile(path)
		if err != nil {
			return err
		}
		records = append(records, record)
		return nil
	})
	if walkErr != nil {
		return nil, s.wrap(walkErr)
	}

	return records, nil
}

func (s *Source) parseFile(path string) (simpleblog.Record, error) {
	fileBytes, err := os.ReadFile(path)
	if err != nil {
		return simpleblog.Record{}, fmt.Errorf("failed to read file '%s': %w", path, err)
	}

	var fmData map[string]interface{}
	body, err := frontmatter.Parse(bytes.NewReader(fileBytes), &fmData)
	if err != nil {
		return simpleblog.Record{}, fmt.Errorf("%w: front matter in '%s': %v", simpleblog.ErrMalformedSource, path, err)
	}

	// Front matter goes through the JSON decoder so the author and
	// readingTime variants are handled in one place.
	data, err := json.Marshal(normalize(fmData))
	if err != nil {
		return simpleblog.Record{}, fmt.Errorf("%w: front matter in '%s': %v", simpleblog.ErrMalformedSource, path, err)
	}
	var record simpleblog.Record
	if len(fmData) > 0 {
		if err := json.Unmarshal(data, &record); err != nil {
			return simpleblog.Record{}, fmt.Errorf("%w: front matter in '%s': %v", simpleblog.ErrMalformedSource, path, err)
		}
	}

	if record.Slug == "" {
		record.Slug = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	if len(bytes.TrimSpace(body)) > 0 {
		var html bytes.Buffer
		if err := s.md.Convert(body, &html); err != nil {
			return simpleblog.Record{}, fmt.Errorf("failed to convert markdown to HTML for file '%s': %w", path, err)
		}
		record.Content = html.String()

		if record.ReadingTime.Minutes == 0 && record.ReadingTime.Text == "" {
			record.ReadingTime.Minutes = simpleblog.CalculateReadingTime(string(body))
		}
	}

	return record, nil
}

// normalize converts YAML-decoded values into JSON-encodable ones.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	case time.Time:
		return simpleblog.FormatTimestamp(t)
	default:
		return v
	}
}

func (s *Source) wrap(err error) error {
	return &simpleblog.SourceError{Source: "markdown:" + s.dir, Op: "load", Err: err}
}
