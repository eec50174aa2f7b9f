package views

import (
	"context"
	"html"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/folio/richtext"
)

// Article renders a rich text document as HTML. A nil document renders nothing.
func Article(doc *richtext.Node) templ.Component {
	return richtext.Render(doc, ArticleRules())
}

// ArticleRules is the HTML rule table for post bodies. Hyperlinks always open
// in a new tab with noopener and noreferrer; links with a scheme other than
// http, https, mailto or tel render as plain text.
func ArticleRules() richtext.Rules[templ.Component] {
	return richtext.Rules[templ.Component]{
		Text: textComponent,
		Join: func(children []templ.Component) templ.Component {
			return templ.Join(children...)
		},
		Paragraph:     element("p", "mb-4 leading-relaxed"),
		Heading1:      element("h1", "text-3xl font-bold mt-8 mb-4"),
		Heading2:      element("h2", "text-2xl font-bold mt-8 mb-3"),
		Heading3:      element("h3", "text-xl font-bold mt-6 mb-3"),
		UnorderedList: element("ul", "list-disc pl-6 mb-4"),
		OrderedList:   element("ol", "list-decimal pl-6 mb-4"),
		ListItem:      element("li", "mb-1"),
		Quote:         element("blockquote", "border-l-4 pl-4 italic my-4"),
		Hyperlink:     hyperlink,
	}
}

var markTags = []struct{ mark, tag string }{
	{richtext.MarkBold, "strong"},
	{richtext.MarkItalic, "em"},
	{richtext.MarkUnderline, "u"},
	{richtext.MarkCode, "code"},
}

func textComponent(n *richtext.Node) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var tags []string
		for _, m := range markTags {
			if n.HasMark(m.mark) {
				tags = append(tags, m.tag)
			}
		}
		var b strings.Builder
		for _, t := range tags {
			b.WriteString("<" + t + ">")
		}
		b.WriteString(templ.EscapeString(n.Value))
		for i := len(tags) - 1; i >= 0; i-- {
			b.WriteString("</" + tags[i] + ">")
		}
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func element(tag, class string) richtext.Rule[templ.Component] {
	return func(_ *richtext.Node, children []templ.Component) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			if _, err := io.WriteString(w, `<`+tag+` class="`+class+`">`); err != nil {
				return err
			}
			for _, c := range children {
				if err := c.Render(ctx, w); err != nil {
					return err
				}
			}
			_, err := io.WriteString(w, `</`+tag+`>`)
			return err
		})
	}
}

func hyperlink(n *richtext.Node, children []templ.Component) templ.Component {
	href := safeURL(n.Data.URI)
	if href == "" {
		return templ.Join(children...)
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<a href="`+href+`" target="_blank" rel="noopener noreferrer" class="underline decoration-2 underline-offset-4">`); err != nil {
			return err
		}
		for _, c := range children {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</a>`)
		return err
	})
}

// safeURL returns an attribute-escaped URL, or "" when the URL is not a
// site-relative path, fragment, or http(s)/mailto/tel link.
func safeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	// Browsers read "/\host" the same as "//host".
	if strings.HasPrefix(val, "//") || strings.HasPrefix(val, "/\\") {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
