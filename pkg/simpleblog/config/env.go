package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// WithEnv applies environment variable overrides using the provided prefix.
//
// Environment variable mapping:
//
//	PORT           - Server port (default: "8080")
//	ENVIRONMENT    - Runtime environment (default: "development")
//	SOURCE_URL     - Post source, see WithSourceURL (default: "memory://")
//	DB_SCHEMA      - Postgres schema for postgres sources
//	JWT_SECRET     - Enables auth on the publish endpoint
//	FEATURED_LIMIT - Default featured limit (default: 3)
//	RELATED_LIMIT  - Default related limit (default: 3)
//	S3_ENDPOINT    - Custom endpoint for s3 sources
//	S3_PATH_STYLE  - Path-style addressing for s3 sources
//
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_REGION are read without
// the prefix for s3 sources.
func WithEnv(prefix string) Option {
	return func(c *ServerConfig) error {
		if v, ok := lookupEnv(prefix, "PORT"); ok && v != "" {
			c.Port = v
		}
		if v, ok := lookupEnv(prefix, "ENVIRONMENT"); ok && v != "" {
			c.Environment = v
		}
		if v, ok := lookupEnv(prefix, "SOURCE_URL"); ok && v != "" {
			if err := WithSourceURL(v)(c); err != nil {
				return err
			}
		}
		if v, ok := lookupEnv(prefix, "DB_SCHEMA"); ok && v != "" {
			c.DBSchema = v
		}
		if v, ok := lookupEnv(prefix, "JWT_SECRET"); ok {
			c.JWTSecret = v
		}

		if n, ok, err := parseIntEnv(prefix, "FEATURED_LIMIT"); err != nil {
			return err
		} else if ok {
			c.DefaultFeaturedLimit = n
		}
		if n, ok, err := parseIntEnv(prefix, "RELATED_LIMIT"); err != nil {
			return err
		} else if ok {
			c.DefaultRelatedLimit = n
		}

		if c.Source.Type == SourceS3 {
			if err := applyS3Env(prefix, c); err != nil {
				return err
			}
		}
		return nil
	}
}

func applyS3Env(prefix string, c *ServerConfig) error {
	if v, ok := lookupEnv(prefix, "S3_ENDPOINT"); ok && v != "" {
		c.Source.Config["endpoint"] = v
	}
	if b, ok, err := parseBoolEnv(prefix, "S3_PATH_STYLE"); err != nil {
		return err
	} else if ok {
		c.Source.Config["use_path_style"] = b
	}

	if accessKey, ok := os.LookupEnv("AWS_ACCESS_KEY_ID"); ok && accessKey != "" {
		c.Source.Config["access_key_id"] = accessKey
	}
	if secretKey, ok := os.LookupEnv("AWS_SECRET_ACCESS_KEY"); ok && secretKey != "" {
		c.Source.Config["secret_access_key"] = secretKey
	}
	if !sourceURLHasRegion(c.SourceURL) {
		if region, ok := os.LookupEnv("AWS_REGION"); ok && region != "" {
			c.Source.Config["region"] = region
		}
	}
	return nil
}

// sourceURLHasRegion reports whether an s3 SOURCE_URL pins the region
func sourceURLHasRegion(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Query().Get("region") != ""
}

// parseSourceURL turns a SOURCE_URL into a SourceConfig
func parseSourceURL(raw string) (SourceConfig, error) {
	if raw == "" || raw == "memory" || raw == "memory://" {
		return SourceConfig{Type: SourceMemory, Config: map[string]interface{}{}}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return SourceConfig{}, fmt.Errorf("invalid SOURCE_URL %q: %w", raw, err)
	}

	switch u.Scheme {
	case "file":
		path := u.Host + u.Path
		if path == "" {
			return SourceConfig{}, fmt.Errorf("filesystem path cannot be empty in SOURCE_URL")
		}
		return SourceConfig{Type: SourceFS, Config: map[string]interface{}{"path": path}}, nil

	case "markdown":
		dir := u.Host + u.Path
		if dir == "" {
			return SourceConfig{}, fmt.Errorf("markdown directory cannot be empty in SOURCE_URL")
		}
		return SourceConfig{Type: SourceMarkdown, Config: map[string]interface{}{"dir": dir}}, nil

	case "s3":
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return SourceConfig{}, fmt.Errorf("SOURCE_URL must name a bucket and key: s3://bucket/key.json")
		}
		cfg := map[string]interface{}{
			"bucket": u.Host,
			"key":    key,
			"region": "us-east-1",
		}
		q := u.Query()
		if region := q.Get("region"); region != "" {
			cfg["region"] = region
		}
		if endpoint := q.Get("endpoint"); endpoint != "" {
			cfg["endpoint"] = endpoint
		}
		if ps := q.Get("path_style"); ps != "" {
			b, err := strconv.ParseBool(ps)
			if err != nil {
				return SourceConfig{}, fmt.Errorf("invalid path_style in SOURCE_URL: %w", err)
			}
			cfg["use_path_style"] = b
		}
		return SourceConfig{Type: SourceS3, Config: cfg}, nil

	case "postgres", "postgresql":
		return SourceConfig{Type: SourcePostgres, Config: map[string]interface{}{"database_url": raw}}, nil
	}

	return SourceConfig{}, fmt.Errorf("unsupported SOURCE_URL format: %s (use 'memory://', 'file://...', 'markdown://...', 's3://...' or 'postgres://...')", raw)
}

func lookupEnv(prefix, key string) (string, bool) {
	return os.LookupEnv(prefix + key)
}

func parseBoolEnv(prefix, key string) (bool, bool, error) {
	raw, ok := lookupEnv(prefix, key)
	if !ok || raw == "" {
		return false, false, nil
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false, fmt.Errorf("invalid boolean for %s%s: %w", prefix, key, err)
	}
	return parsed, true, nil
}

func parseIntEnv(prefix, key string) (int, bool, error) {
	raw, ok := lookupEnv(prefix, key)
	if !ok || raw == "" {
		return 0, false, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("invalid integer for %s%s: %w", prefix, key, err)
	}
	return parsed, true, nil
}
