package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/tendant/simple-blog/pkg/simpleblog"
	"github.com/tendant/simple-blog/pkg/simpleblog/api"
	"github.com/tendant/simple-blog/pkg/simpleblog/config"
	"github.com/tendant/simple-blog/pkg/simpleblog/publish"
)

func NewListCommand() *cobra.Command {
	var category string
	var tag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts, newest first",
		Long:  `List all posts, or only those in a category or carrying a tag.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			accessor, cfg, err := loadAccessor(cmd)
			if err != nil {
				return err
			}
			defer cfg.Close()

			var posts []simpleblog.Post
			switch {
			case tag != "":
				posts = accessor.ListByTag(tag)
			case category != "":
				posts = accessor.ListByCategory(category)
			default:
				posts = accessor.ListAll()
			}
			return printPosts(cmd, posts)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only posts in this category")
	cmd.Flags().StringVar(&tag, "tag", "", "Only posts carrying this tag")

	return cmd
}

func NewGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Show a single post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accessor, cfg, err := loadAccessor(cmd)
			if err != nil {
				return err
			}
			defer cfg.Close()

			post, ok := accessor.GetByKey(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", simpleblog.ErrPostNotFound, args[0])
			}
			if jsonOutput(cmd) {
				return writeJSON(out(cmd), api.NewPostResponse(post))
			}
			printPost(out(cmd), post)
			return nil
		},
	}

	return cmd
}

func NewRelatedCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "related <key>",
		Short: "List posts related to a post",
		Long:  `List posts sharing the post's category or tags, most relevant first.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accessor, cfg, err := loadAccessor(cmd)
			if err != nil {
				return err
			}
			defer cfg.Close()

			post, ok := accessor.GetByKey(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", simpleblog.ErrPostNotFound, args[0])
			}
			if !cmd.Flags().Changed("limit") {
				limit = cfg.DefaultRelatedLimit
			}
			return printPosts(cmd, accessor.RelatedTo(post, limit))
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 3, "Maximum number of related posts")

	return cmd
}

func NewSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search titles, summaries, bodies, tags and keywords",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accessor, cfg, err := loadAccessor(cmd)
			if err != nil {
				return err
			}
			defer cfg.Close()

			return printPosts(cmd, accessor.Search(strings.Join(args, " ")))
		},
	}

	return cmd
}

func NewCategoriesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List distinct categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			accessor, cfg, err := loadAccessor(cmd)
			if err != nil {
				return err
			}
			defer cfg.Close()

			return printNames(cmd, accessor.ListCategories())
		},
	}

	return cmd
}

func NewTagsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List distinct tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			accessor, cfg, err := loadAccessor(cmd)
			if err != nil {
				return err
			}
			defer cfg.Close()

			return printNames(cmd, accessor.ListTags())
		},
	}

	return cmd
}

func NewFeaturedCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "featured",
		Short: "List featured posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			accessor, cfg, err := loadAccessor(cmd)
			if err != nil {
				return err
			}
			defer cfg.Close()

			if !cmd.Flags().Changed("limit") {
				limit = cfg.DefaultFeaturedLimit
			}
			return printPosts(cmd, accessor.ListFeatured(limit))
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 3, "Maximum number of featured posts")

	return cmd
}

func NewPublishCommand() *cobra.Command {
	var author string

	cmd := &cobra.Command{
		Use:   "publish [file]",
		Short: "Create or update a post from a JSON publish request",
		Long: `Read a publish request (title, article, summary, focus_keyword, ...) as JSON
from a file or stdin, and upsert the resulting post into the source by slug.

The source must be writable and persistent: file://, s3:// or postgres://.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			var in publish.Input
			if err := json.Unmarshal(data, &in); err != nil {
				return fmt.Errorf("invalid publish request: %w", err)
			}

			cfg, err := configFromFlags(cmd)
			if err != nil {
				return err
			}
			defer cfg.Close()

			if cfg.Source.Type == config.SourceMemory {
				return errors.New("publish needs a persistent source; memory:// is discarded when blogctl exits")
			}

			var opts []publish.Option
			if author != "" {
				opts = append(opts, publish.WithAuthor(author))
			}
			publisher, err := cfg.BuildPublisher(cmd.Context(), opts...)
			if err != nil {
				return fmt.Errorf("failed to create publisher: %w", err)
			}

			result, err := publisher.Publish(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("publish failed: %w", err)
			}

			if jsonOutput(cmd) {
				return writeJSON(out(cmd), result)
			}
			action := color.New(color.Bold, color.FgHiGreen).Sprint("Created")
			if !result.Created {
				action = color.New(color.Bold, color.FgHiCyan).Sprint("Updated")
			}
			fmt.Fprintf(out(cmd), "%s %s\n", action, result.URL)
			fmt.Fprintf(out(cmd), "  published: %s\n  words: %d\n  reading time: %d min\n",
				result.PublishedAt, result.WordCount, result.ReadingTime)
			return nil
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "Author name for new posts")

	return cmd
}

func NewReadingTimeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reading-time [file]",
		Short: "Estimate reading time of a text",
		Long:  `Count the words of a file or stdin and estimate the reading time at 200 words per minute.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			text := string(data)
			words := simpleblog.CountWords(text)
			minutes := simpleblog.CalculateReadingTime(text)

			if jsonOutput(cmd) {
				return writeJSON(out(cmd), map[string]int{"wordCount": words, "readingTime": minutes})
			}
			fmt.Fprintf(out(cmd), "%d words, %s\n", words, simpleblog.ReadingTime{Minutes: minutes}.Label())
			return nil
		},
	}

	return cmd
}

// readInput reads the named file, or stdin when no file or "-" is given
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return data, nil
}

func printPosts(cmd *cobra.Command, posts []simpleblog.Post) error {
	if jsonOutput(cmd) {
		responses := make([]api.PostResponse, 0, len(posts))
		for _, p := range posts {
			responses = append(responses, api.NewPostResponse(p))
		}
		return writeJSON(out(cmd), responses)
	}

	if len(posts) == 0 {
		fmt.Fprintln(out(cmd), "No posts found.")
		return nil
	}

	tableString := &strings.Builder{}
	table := tablewriter.NewWriter(tableString)
	table.SetHeader([]string{"Key", "Title", "Category", "Published", "Read", ""})
	table.SetAutoWrapText(false)
	for _, p := range posts {
		featured := ""
		if p.Featured {
			featured = "★"
		}
		table.Append([]string{
			p.Key,
			p.Title,
			p.Category,
			p.PublishedAt.Format("2006-01-02"),
			strconv.Itoa(p.ReadingTime.Minutes) + "m",
			featured,
		})
	}
	table.Render()

	fmt.Fprint(out(cmd), tableString.String())
	return nil
}

func printNames(cmd *cobra.Command, names []string) error {
	if jsonOutput(cmd) {
		return writeJSON(out(cmd), names)
	}
	for _, name := range names {
		fmt.Fprintln(out(cmd), name)
	}
	return nil
}

func printPost(w io.Writer, p simpleblog.Post) {
	fmt.Fprintln(w, color.New(color.Bold).Sprint(p.Title))
	fmt.Fprintf(w, "%s | %s | %s | %s\n",
		p.Author.Name, p.PublishedAt.Format("2 Jan 2006"), p.Category, p.ReadingTime.Label())
	if len(p.Tags) > 0 {
		fmt.Fprintf(w, "tags: %s\n", strings.Join(p.Tags, ", "))
	}
	if p.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", p.Summary)
	}
	if p.Body != "" {
		fmt.Fprintf(w, "\n%s\n", p.Body)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
