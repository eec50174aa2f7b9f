package views

import (
	"context"
	"embed"
	"html/template"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/folio/contact"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"formatDate":  FormatDate,
	"isoDate":     ISODate,
	"imageURL":    ImageURL,
	"imageAlt":    ImageAlt,
	"tagClass":    TagClass,
	"jsonld":      func(s string) template.JS { return template.JS(s) },
	"year":        func() int { return time.Now().Year() },
	"successText": func() string { return contact.SuccessText },
}

var (
	homeTmpl   = mustPage("home.html")
	blogTmpl   = mustPage("blog.html")
	postTmpl   = mustPage("post.html")
	statusTmpl = mustPage("status.html")
)

func mustPage(name string) *template.Template {
	return template.Must(template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name))
}

// execute wraps a named html/template as a templ component.
func execute(t *template.Template, name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return t.ExecuteTemplate(w, name, data)
	})
}

// Home renders the portfolio page.
func Home(p HomePage) templ.Component {
	return execute(homeTmpl, "layout", p)
}

// ContactSection renders only the contact form, for HTMX swaps.
func ContactSection(f ContactForm) templ.Component {
	return execute(homeTmpl, "contact", f)
}

// BlogList renders a page of posts.
func BlogList(p BlogPage) templ.Component {
	return execute(blogTmpl, "layout", p)
}

// BlogSection renders the post list without the layout.
func BlogSection(p BlogPage) templ.Component {
	return execute(blogTmpl, "content", p)
}

// Post renders a single post. The body goes through ArticleRules.
func Post(p PostPage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		body, err := templ.ToGoHTML(ctx, Article(p.Post.Content))
		if err != nil {
			return err
		}
		return postTmpl.ExecuteTemplate(w, "layout", struct {
			PostPage
			Body template.HTML
		}{p, body})
	})
}

// NotFound renders the 404 page.
func NotFound(p StatusPage) templ.Component {
	if p.Title == "" {
		p.Title = "Page not found"
	}
	if p.Message == "" {
		p.Message = "The page you are looking for does not exist or has been moved."
	}
	return statusPage(p)
}

// ServerError renders the 5xx page.
func ServerError(p StatusPage) templ.Component {
	if p.Title == "" {
		p.Title = "Something went wrong"
	}
	if p.Message == "" {
		p.Message = "Please try again in a few minutes."
	}
	return statusPage(p)
}

func statusPage(p StatusPage) templ.Component {
	if p.Meta.Title == "" {
		p.Meta.Title = p.Title
		if p.Site.Name != "" {
			p.Meta.Title += " | " + p.Site.Name
		}
	}
	if p.Meta.OGType == "" {
		p.Meta.OGType = "website"
	}
	return execute(statusTmpl, "layout", p)
}
