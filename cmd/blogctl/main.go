package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/tendant/simple-blog/pkg/simpleblog"
	"github.com/tendant/simple-blog/pkg/simpleblog/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	var sourceURL string
	var jsonOutput bool
	var verbose bool

	defaultSource := os.Getenv("BLOG_SOURCE_URL")
	if defaultSource == "" {
		defaultSource = "file://./posts.json"
	}

	rootCmd := &cobra.Command{
		Use:   "blogctl",
		Short: "Query and publish blog posts",
		Long: `blogctl reads a blog post collection from any supported source and
answers the same queries as the HTTP API.

Sources are given as URLs: file:///path/posts.json, markdown:///path/dir,
s3://bucket/key, postgres://... or memory://.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&sourceURL, "source", "s", defaultSource, "post source URL (default $BLOG_SOURCE_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of tables")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewGetCommand())
	rootCmd.AddCommand(NewRelatedCommand())
	rootCmd.AddCommand(NewSearchCommand())
	rootCmd.AddCommand(NewCategoriesCommand())
	rootCmd.AddCommand(NewTagsCommand())
	rootCmd.AddCommand(NewFeaturedCommand())
	rootCmd.AddCommand(NewPublishCommand())
	rootCmd.AddCommand(NewReadingTimeCommand())

	return rootCmd
}

// configFromFlags builds the source configuration selected by --source
func configFromFlags(cmd *cobra.Command) (*config.ServerConfig, error) {
	sourceURL, _ := cmd.Flags().GetString("source")
	verbose, _ := cmd.Flags().GetBool("verbose")

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	// BLOG_SOURCE_URL is already the flag default; an explicit --source wins
	opts := []config.Option{config.WithEnv("BLOG_"), config.WithLogger(logger)}
	if cmd.Flags().Changed("source") || os.Getenv("BLOG_SOURCE_URL") == "" {
		opts = append(opts, config.WithSourceURL(sourceURL))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadAccessor loads the collection selected by --source
func loadAccessor(cmd *cobra.Command) (*simpleblog.Accessor, *config.ServerConfig, error) {
	cfg, err := configFromFlags(cmd)
	if err != nil {
		return nil, nil, err
	}
	accessor, err := cfg.BuildAccessor(cmd.Context())
	if err != nil {
		cfg.Close()
		return nil, nil, fmt.Errorf("failed to load posts: %w", err)
	}
	return accessor, cfg, nil
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
