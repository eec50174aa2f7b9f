package blog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/eringen/folio/contentful"
)

const (
	// DefaultContentType is the content type id of blog posts.
	DefaultContentType = "blogPost"
	// DefaultPageSize is used when ListOptions.Limit is zero.
	DefaultPageSize = 100

	maxPageSize  = 1000
	includeDepth = 2
)

// Source runs entry queries against the content service.
// *contentful.Client implements it.
type Source interface {
	Entries(ctx context.Context, q contentful.Query) (*contentful.Collection, error)
}

// Service implements post list and post detail retrieval.
type Service struct {
	src         Source
	log         *zap.Logger
	contentType string
	locale      string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used to report content service failures.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// WithContentType overrides the blog post content type id.
func WithContentType(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.contentType = id
		}
	}
}

// WithLocale requests entries in a specific locale.
func WithLocale(locale string) Option {
	return func(s *Service) {
		s.locale = locale
	}
}

// NewService creates a Service reading from src.
func NewService(src Source, opts ...Option) *Service {
	s := &Service{
		src:         src,
		log:         zap.NewNop(),
		contentType: DefaultContentType,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListPosts returns a page of posts ordered by publish date, newest first.
// On failure it returns an empty list together with an error wrapping
// ErrUnavailable.
func (s *Service) ListPosts(ctx context.Context, opts ListOptions) (PostList, error) {
	q := contentful.Query{
		ContentType: s.contentType,
		Order:       "-fields.publishDate",
		Skip:        max(opts.Skip, 0),
		Limit:       clampLimit(opts.Limit),
		Include:     includeDepth,
		Locale:      s.locale,
	}
	if tag := strings.TrimSpace(opts.Tag); tag != "" {
		q.Fields = map[string]string{"tags[in]": tag}
	}

	coll, err := s.src.Entries(ctx, q)
	if err != nil {
		s.log.Error("fetch blog posts", zap.Error(err), zap.Int("skip", q.Skip), zap.String("tag", opts.Tag))
		return PostList{Posts: []PostSummary{}}, fmt.Errorf("%w: list posts: %w", ErrUnavailable, err)
	}

	posts := make([]PostSummary, 0, len(coll.Items))
	for _, item := range coll.Items {
		posts = append(posts, MapSummary(item))
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].PublishDate.After(posts[j].PublishDate)
	})
	return PostList{Posts: posts, Total: coll.Total}, nil
}

// GetPost returns the post with the given slug, ErrNotFound when none
// matches, or an error wrapping ErrUnavailable.
func (s *Service) GetPost(ctx context.Context, slug string) (Post, error) {
	if strings.TrimSpace(slug) == "" {
		return Post{}, ErrNotFound
	}
	coll, err := s.src.Entries(ctx, contentful.Query{
		ContentType: s.contentType,
		Fields:      map[string]string{"slug": slug},
		Limit:       1,
		Include:     includeDepth,
		Locale:      s.locale,
	})
	if err != nil {
		s.log.Error("fetch blog post", zap.Error(err), zap.String("slug", slug))
		return Post{}, fmt.Errorf("%w: get post %q: %w", ErrUnavailable, slug, err)
	}
	if len(coll.Items) == 0 {
		return Post{}, ErrNotFound
	}
	return MapPost(coll.Items[0]), nil
}

func clampLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultPageSize
	case n > maxPageSize:
		return maxPageSize
	default:
		return n
	}
}
