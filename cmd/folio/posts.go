package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eringen/folio"
	"github.com/eringen/folio/blog"
	"github.com/eringen/folio/richtext"
	"github.com/eringen/folio/views"
)

func loadPostService(configFile string) (*blog.Service, error) {
	cfg, err := folio.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	if cfg.Contentful.SpaceID == "" || cfg.Contentful.AccessToken == "" {
		return nil, fmt.Errorf("CONTENTFUL_SPACE_ID and CONTENTFUL_ACCESS_TOKEN must be set")
	}
	return folio.NewPostService(cfg, zap.NewNop())
}

func newPostsCommand(configFile *string) *cobra.Command {
	var opts blog.ListOptions

	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List published blog posts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadPostService(*configFile)
			if err != nil {
				return err
			}
			list, err := svc.ListPosts(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return printPosts(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().StringVar(&opts.Tag, "tag", "", "only posts with this tag")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of posts")
	cmd.Flags().IntVar(&opts.Skip, "skip", 0, "number of posts to skip")
	return cmd
}

func printPosts(w io.Writer, list blog.PostList) error {
	if len(list.Posts) == 0 {
		_, err := fmt.Fprintln(w, dimStyle.Render("No posts yet."))
		return err
	}
	for _, p := range list.Posts {
		lines := []string{
			titleStyle.Render(p.Title),
			dimStyle.Render(strings.TrimSpace(views.FormatDate(p.PublishDate) + "  /blog/" + p.Slug + "/")),
		}
		if len(p.Tags) > 0 {
			lines = append(lines, tagStyle.Render("#"+strings.Join(p.Tags, " #")))
		}
		if _, err := fmt.Fprintln(w, cardStyle.Render(strings.Join(lines, "\n"))); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%d of %d posts", len(list.Posts), list.Total)))
	return err
}

func newPostCommand(configFile *string) *cobra.Command {
	var raw bool
	var width int

	cmd := &cobra.Command{
		Use:   "post <slug>",
		Short: "Render one blog post in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadPostService(*configFile)
			if err != nil {
				return err
			}
			post, err := svc.GetPost(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			md := postMarkdown(post)
			if raw {
				_, err = io.WriteString(cmd.OutOrStdout(), md)
				return err
			}
			r, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(width),
			)
			if err != nil {
				return err
			}
			out, err := r.Render(md)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print Markdown without terminal styling")
	cmd.Flags().IntVar(&width, "width", 80, "word wrap width")
	return cmd
}

// postMarkdown renders a post as a Markdown document with a short header.
func postMarkdown(p blog.Post) string {
	var b strings.Builder
	b.WriteString("# " + p.Title + "\n\n")

	var meta []string
	if d := views.FormatDate(p.PublishDate); d != "" {
		meta = append(meta, d)
	}
	if p.Author != nil && p.Author.Name != "" {
		meta = append(meta, p.Author.Name)
	}
	if p.ReadingTime > 0 {
		meta = append(meta, fmt.Sprintf("%d min read", p.ReadingTime))
	}
	if len(meta) > 0 {
		b.WriteString("_" + strings.Join(meta, " · ") + "_\n\n")
	}

	b.WriteString(richtext.Render(p.Content, markdownRules()))
	if len(p.Tags) > 0 {
		b.WriteString("Tags: " + strings.Join(p.Tags, ", ") + "\n")
	}
	return b.String()
}
