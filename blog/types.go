// Package blog retrieves blog posts from the content service and maps them
// into fixed-shape values for the views.
package blog

import (
	"errors"
	"time"

	"github.com/eringen/folio/richtext"
)

var (
	// ErrNotFound is returned when no post matches a slug.
	ErrNotFound = errors.New("blog: post not found")
	// ErrUnavailable wraps any failure talking to the content service.
	ErrUnavailable = errors.New("blog: content service unavailable")
)

// Image is a featured image.
type Image struct {
	URL   string
	Title string
}

// Picture is an author's portrait.
type Picture struct {
	URL string
}

// Author is the post's author.
type Author struct {
	Name    string
	Picture *Picture
}

// PostSummary is the card-sized projection of a post.
type PostSummary struct {
	Title         string
	Slug          string
	FeaturedImage *Image
	Excerpt       string
	PublishDate   time.Time
	Author        *Author
	Tags          []string
}

// Post is a full post, summary plus body.
type Post struct {
	PostSummary
	Content     *richtext.Node
	ReadingTime int // minutes
}

// PostList is one page of summaries and the total number of posts.
type PostList struct {
	Posts []PostSummary
	Total int
}

// ListOptions selects a page of posts.
type ListOptions struct {
	Skip  int
	Limit int
	Tag   string
}
