package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/tendant/simple-blog/pkg/simpleblog/config"
	"github.com/tendant/simple-blog/pkg/simpleblog/mcp"
)

type Config struct {
	Host          string `env:"HOST" env-default:"localhost"`
	Port          uint16 `env:"PORT" env-default:"8000"`
	BaseURL       string `env:"BASE_URL" env-default:"http://localhost:8000"`
	SourceURL     string `env:"BLOG_SOURCE_URL" env-default:"memory://"`
	DBSchema      string `env:"BLOG_DB_SCHEMA"`
	FeaturedLimit int    `env:"BLOG_FEATURED_LIMIT" env-default:"3"`
	RelatedLimit  int    `env:"BLOG_RELATED_LIMIT" env-default:"3"`
	S3Endpoint    string `env:"AWS_S3_ENDPOINT"`
	S3PathStyle   bool   `env:"AWS_S3_PATH_STYLE" env-default:"false"`
}

func main() {
	var mode = flag.String("mode", "stdio", "Server mode: 'stdio', 'sse', or 'http'")
	flag.Parse()

	if err := godotenv.Load(".env"); err != nil {
		slog.Info("No .env file found or error loading it, using default values", "err", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}

	opts := []config.Option{
		config.WithSourceURL(cfg.SourceURL),
		config.WithDefaultLimits(cfg.FeaturedLimit, cfg.RelatedLimit),
	}
	if cfg.DBSchema != "" {
		opts = append(opts, config.WithDBSchema(cfg.DBSchema))
	}
	if cfg.S3Endpoint != "" {
		opts = append(opts, config.WithS3Endpoint(cfg.S3Endpoint, cfg.S3PathStyle))
	}
	serverConfig, err := config.Load(opts...)
	if err != nil {
		slog.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}
	defer serverConfig.Close()

	accessor, err := serverConfig.BuildAccessor(context.Background())
	if err != nil {
		slog.Error("Failed to load blog posts", "source", cfg.SourceURL, "err", err)
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"Blog Content Mcp",
		"1.0.0",
		server.WithResourceCapabilities(true, true),
	)

	handler := mcp.NewHandler(accessor, serverConfig.DefaultFeaturedLimit, serverConfig.DefaultRelatedLimit)
	handler.RegisterTools(s)

	switch *mode {
	case "sse":
		sseServer := server.NewSSEServer(s, server.WithBaseURL(cfg.BaseURL))
		slog.Info("Starting SSE server", "base url", cfg.BaseURL)
		if err := sseServer.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			slog.Error("Failed to start SSE server", "err", err)
			os.Exit(-1)
		}
	case "http":
		httpServer := server.NewStreamableHTTPServer(s)
		slog.Info("HTTP server listening", "port", cfg.Port)
		if err := httpServer.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			slog.Error("Server error", "err", err)
			os.Exit(-1)
		}
	default:
		slog.Info("Starting in stdio mode", "posts", accessor.Len())
		if err := server.ServeStdio(s); err != nil {
			slog.Error("Failed to start stdio server", "err", err)
			os.Exit(-1)
		}
	}
}
