package blog

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/eringen/folio/contentful"
	"github.com/eringen/folio/richtext"
)

var publishDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// MapSummary converts a raw blogPost entry. Missing optional fields map to
// nil or empty values.
func MapSummary(e *contentful.Entry) PostSummary {
	title, _ := e.String("title")
	slug, _ := e.String("slug")
	excerpt, _ := e.String("excerpt")
	date, _ := e.String("publishDate")

	tags := e.Strings("tags")
	if tags == nil {
		tags = []string{}
	}

	return PostSummary{
		Title:         title,
		Slug:          slug,
		FeaturedImage: mapImage(e),
		Excerpt:       excerpt,
		PublishDate:   parsePublishDate(date),
		Author:        mapAuthor(e),
		Tags:          tags,
	}
}

// MapPost converts a raw blogPost entry including its rich text body.
func MapPost(e *contentful.Entry) Post {
	p := Post{PostSummary: MapSummary(e)}
	var doc richtext.Node
	if e.Decode("content", &doc) {
		p.Content = &doc
		p.ReadingTime = richtext.ReadingTime(&doc)
	}
	return p
}

func mapImage(e *contentful.Entry) *Image {
	asset, ok := e.Link("featuredImage")
	if !ok {
		return nil
	}
	url, ok := assetURL(asset)
	if !ok {
		return nil
	}
	title, _ := asset.String("title")
	return &Image{URL: url, Title: title}
}

func mapAuthor(e *contentful.Entry) *Author {
	entry, ok := e.Link("author")
	if !ok {
		return nil
	}
	name, _ := entry.String("name")
	author := &Author{Name: name}
	if pic, ok := entry.Link("picture"); ok {
		if url, ok := assetURL(pic); ok {
			author.Picture = &Picture{URL: url}
		}
	}
	return author
}

func assetURL(asset *contentful.Entry) (string, bool) {
	file, ok := asset.Object("file")
	if !ok {
		return "", false
	}
	var url string
	if err := json.Unmarshal(file["url"], &url); err != nil || url == "" {
		return "", false
	}
	return absoluteURL(url), true
}

// absoluteURL prefixes protocol-relative asset URLs with https.
func absoluteURL(u string) string {
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}

func parsePublishDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range publishDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
