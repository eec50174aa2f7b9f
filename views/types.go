package views

import (
	"github.com/eringen/folio/blog"
	"github.com/eringen/folio/contact"
	"github.com/eringen/folio/profile"
)

// SiteConfig holds site-wide settings populated from environment variables.
// Every handler passes this to templates so nothing is hardcoded.
type SiteConfig struct {
	Name        string // SITE_NAME
	URL         string // SITE_URL
	Description string // SITE_DESCRIPTION
	Author      string // SITE_AUTHOR
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
	JSONLD      string
}

// ContactForm is the contact section's view state.
type ContactForm struct {
	Form *contact.Form
	CSRF string
	// Sent is set on the page shown after a successful submission.
	Sent bool
}

// HomePage is the portfolio page.
type HomePage struct {
	Site        SiteConfig
	Meta        PageMeta
	Profile     *profile.Profile
	RecentPosts []blog.PostSummary
	Contact     ContactForm
}

// BlogPage is one page of the post list.
type BlogPage struct {
	Site        SiteConfig
	Meta        PageMeta
	Posts       []blog.PostSummary
	Total       int
	Page        int
	NextPage    int // 0 when there is no further page
	Tag         string
	Unavailable bool
}

// PostPage is a single post with related posts.
type PostPage struct {
	Site    SiteConfig
	Meta    PageMeta
	Post    blog.Post
	Related []blog.PostSummary
}

// StatusPage is used for the not found and error pages.
type StatusPage struct {
	Site    SiteConfig
	Meta    PageMeta
	Code    int
	Title   string
	Message string
}
