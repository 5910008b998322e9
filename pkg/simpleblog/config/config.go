package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/tendant/simple-blog/pkg/simpleblog"
	"github.com/tendant/simple-blog/pkg/simpleblog/publish"
	fssource "github.com/tendant/simple-blog/pkg/simpleblog/source/fs"
	mdsource "github.com/tendant/simple-blog/pkg/simpleblog/source/markdown"
	"github.com/tendant/simple-blog/pkg/simpleblog/source/memory"
	pgsource "github.com/tendant/simple-blog/pkg/simpleblog/source/postgres"
	s3source "github.com/tendant/simple-blog/pkg/simpleblog/source/s3"
)

// Source types
const (
	SourceMemory   = "memory"
	SourceFS       = "fs"
	SourceMarkdown = "markdown"
	SourceS3       = "s3"
	SourcePostgres = "postgres"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:        "8080",
		Environment: "development",
		SourceURL:   "memory://",
		Source: SourceConfig{
			Type:   SourceMemory,
			Config: map[string]interface{}{},
		},
		DefaultFeaturedLimit: 3,
		DefaultRelatedLimit:  3,
	}
}

// ServerConfig represents configuration for the blog content services
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Backing source of the post collection
	SourceURL string
	Source    SourceConfig
	DBSchema  string // Postgres schema holding the blog_post table

	// JWTSecret enables HS256 auth on the publish endpoint when set
	JWTSecret string

	DefaultFeaturedLimit int
	DefaultRelatedLimit  int

	Logger *slog.Logger

	// built lazily so the accessor and publisher share one store
	built simpleblog.Source
}

// SourceConfig represents configuration for the post source
type SourceConfig struct {
	Type   string // "memory", "fs", "markdown", "s3", "postgres"
	Config map[string]interface{}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.DefaultFeaturedLimit <= 0 || c.DefaultRelatedLimit <= 0 {
		return errors.New("default limits must be positive")
	}

	switch c.Source.Type {
	case SourceMemory:
	case SourceFS:
		if getString(c.Source.Config, "path", "") == "" {
			return errors.New("fs source requires a path")
		}
	case SourceMarkdown:
		if getString(c.Source.Config, "dir", "") == "" {
			return errors.New("markdown source requires a directory")
		}
	case SourceS3:
		if getString(c.Source.Config, "bucket", "") == "" || getString(c.Source.Config, "key", "") == "" {
			return errors.New("s3 source requires a bucket and key")
		}
	case SourcePostgres:
		if getString(c.Source.Config, "database_url", "") == "" {
			return errors.New("postgres source requires a database url")
		}
	default:
		return fmt.Errorf("unsupported source type: %s", c.Source.Type)
	}

	return nil
}

func (c *ServerConfig) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// BuildSource creates the configured Source. Repeated calls return the same instance.
func (c *ServerConfig) BuildSource(ctx context.Context) (simpleblog.Source, error) {
	if c.built != nil {
		return c.built, nil
	}

	cfg := c.Source.Config
	var (
		src simpleblog.Source
		err error
	)
	switch c.Source.Type {
	case SourceMemory:
		src = memory.New()

	case SourceFS:
		src, err = fssource.New(fssource.Config{Path: getString(cfg, "path", "")})

	case SourceMarkdown:
		src, err = mdsource.New(mdsource.Config{Dir: getString(cfg, "dir", "")})

	case SourceS3:
		src, err = s3source.New(s3source.Config{
			Region:          getString(cfg, "region", "us-east-1"),
			Bucket:          getString(cfg, "bucket", ""),
			Key:             getString(cfg, "key", ""),
			AccessKeyID:     getString(cfg, "access_key_id", ""),
			SecretAccessKey: getString(cfg, "secret_access_key", ""),
			Endpoint:        getString(cfg, "endpoint", ""),
			UsePathStyle:    getBool(cfg, "use_path_style", false),
		})

	case SourcePostgres:
		src, err = pgsource.Connect(ctx, getString(cfg, "database_url", ""), c.DBSchema)

	default:
		err = fmt.Errorf("unsupported source type: %s", c.Source.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build %s source: %w", c.Source.Type, err)
	}

	c.built = src
	return src, nil
}

// BuildStore creates the configured Source and returns it as a writable Store.
// Read-only sources fail with simpleblog.ErrReadOnlySource.
func (c *ServerConfig) BuildStore(ctx context.Context) (simpleblog.Store, error) {
	src, err := c.BuildSource(ctx)
	if err != nil {
		return nil, err
	}
	store, ok := src.(simpleblog.Store)
	if !ok {
		return nil, fmt.Errorf("%s source: %w", c.Source.Type, simpleblog.ErrReadOnlySource)
	}

	if pg, ok := store.(*pgsource.Store); ok && getBool(c.Source.Config, "ensure_schema", true) {
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return store, nil
}

// BuildAccessor loads the collection from the configured source
func (c *ServerConfig) BuildAccessor(ctx context.Context) (*simpleblog.Accessor, error) {
	src, err := c.BuildSource(ctx)
	if err != nil {
		return nil, err
	}
	return simpleblog.Load(ctx, src, simpleblog.WithLogger(c.logger()))
}

// BuildPublisher creates a Publisher over the configured store
func (c *ServerConfig) BuildPublisher(ctx context.Context, opts ...publish.Option) (*publish.Publisher, error) {
	store, err := c.BuildStore(ctx)
	if err != nil {
		return nil, err
	}
	opts = append([]publish.Option{publish.WithLogger(c.logger())}, opts...)
	return publish.New(store, opts...), nil
}

// Close releases connections held by the built source
func (c *ServerConfig) Close() {
	if pg, ok := c.built.(*pgsource.Store); ok {
		pg.Close()
	}
}

func getString(config map[string]interface{}, key string, defaultValue string) string {
	if value, exists := config[key]; exists {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return defaultValue
}

func getBool(config map[string]interface{}, key string, defaultValue bool) bool {
	if value, exists := config[key]; exists {
		if b, ok := value.(bool); ok {
			return b
		}
		if str, ok := value.(string); ok {
			if b, err := strconv.ParseBool(str); err == nil {
				return b
			}
		}
	}
	return defaultValue
}
