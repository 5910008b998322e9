package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/simple-blog/pkg/simpleblog"
	"github.com/tendant/simple-blog/pkg/simpleblog/api"
	"github.com/tendant/simple-blog/pkg/simpleblog/config"
)

type Config struct {
	Environment   string `env:"BLOG_ENVIRONMENT" env-default:"development"`
	SourceURL     string `env:"BLOG_SOURCE_URL" env-default:"memory://"`
	DBSchema      string `env:"BLOG_DB_SCHEMA"`
	JWTSecret     string `env:"BLOG_JWT_SECRET"`
	FeaturedLimit int    `env:"BLOG_FEATURED_LIMIT" env-default:"3"`
	RelatedLimit  int    `env:"BLOG_RELATED_LIMIT" env-default:"3"`
	CacheMaxAge   int    `env:"BLOG_CACHE_MAX_AGE" env-default:"300"`
	S3            S3Config
}

type S3Config struct {
	Endpoint     string `env:"AWS_S3_ENDPOINT"`
	UsePathStyle bool   `env:"AWS_S3_PATH_STYLE" env-default:"false"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables", "err", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}

	opts := []config.Option{
		config.WithEnvironment(cfg.Environment),
		config.WithSourceURL(cfg.SourceURL),
		config.WithDefaultLimits(cfg.FeaturedLimit, cfg.RelatedLimit),
		config.WithJWTSecret(cfg.JWTSecret),
		config.WithLogger(slog.Default()),
	}
	if cfg.DBSchema != "" {
		opts = append(opts, config.WithDBSchema(cfg.DBSchema))
	}
	if cfg.S3.Endpoint != "" {
		opts = append(opts, config.WithS3Endpoint(cfg.S3.Endpoint, cfg.S3.UsePathStyle))
	}

	serverConfig, err := config.Load(opts...)
	if err != nil {
		slog.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}
	defer serverConfig.Close()

	ctx := context.Background()
	accessor, err := serverConfig.BuildAccessor(ctx)
	if err != nil {
		slog.Error("Failed to load blog posts", "source", cfg.SourceURL, "err", err)
		os.Exit(1)
	}
	slog.Info("Loaded blog posts", "source", cfg.SourceURL, "count", accessor.Len())

	routerConfig := api.RouterConfig{
		Reader:        accessor,
		JWTSecret:     serverConfig.JWTSecret,
		FeaturedLimit: serverConfig.DefaultFeaturedLimit,
		RelatedLimit:  serverConfig.DefaultRelatedLimit,
		CacheMaxAge:   cfg.CacheMaxAge,
		Logger:        slog.Default(),
	}

	publisher, err := serverConfig.BuildPublisher(ctx)
	switch {
	case errors.Is(err, simpleblog.ErrReadOnlySource):
		slog.Warn("Source is read-only, publish endpoint disabled", "source", cfg.SourceURL)
	case err != nil:
		slog.Error("Failed to create publisher", "err", err)
		os.Exit(1)
	default:
		routerConfig.Publisher = publisher
	}

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	api.MountRoutes(server.R, routerConfig)

	server.Run()
}
