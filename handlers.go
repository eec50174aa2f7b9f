package folio

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/folio/blog"
	"github.com/eringen/folio/contact"
	"github.com/eringen/folio/views"
)

const (
	recentPostCount  = 3
	relatedPostCount = 3
	feedPostLimit    = 100
)

func (a *App) site() views.SiteConfig {
	return views.SiteConfig{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
	}
}

func isHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}

func (a *App) homePage(c echo.Context, form views.ContactForm) views.HomePage {
	site := a.site()
	p := a.Profile.Get()
	title := site.Name
	if p != nil && p.Name != "" {
		title = p.Name
		if p.Headline != "" {
			title += " - " + p.Headline
		}
	}
	recent, _ := a.Posts.ListPosts(c.Request().Context(), blog.ListOptions{Limit: recentPostCount})
	return views.HomePage{
		Site: site,
		Meta: views.PageMeta{
			Title:       title,
			Description: site.Description,
			URL:         views.BuildURL(site.URL),
			OGType:      "website",
			JSONLD:      views.WebsiteJsonLD(site),
		},
		Profile:     p,
		RecentPosts: recent.Posts,
		Contact:     form,
	}
}

func (a *App) handleHome(c echo.Context) error {
	form := views.ContactForm{
		Form: contact.NewForm(),
		CSRF: CsrfToken(c),
		Sent: popContactSent(c),
	}
	if isHTMX(c) && c.QueryParam("partial") == "contact" {
		return Render(c, a.Views.ContactSection(form))
	}
	return Render(c, a.Views.Home(a.homePage(c, form)))
}

func (a *App) handleContact(c echo.Context) error {
	ctx := c.Request().Context()
	ip := c.RealIP()
	msg := contact.Message{
		Name:    c.FormValue("name"),
		Email:   c.FormValue("email"),
		Message: c.FormValue("message"),
	}
	form := contact.Restore(c.FormValue("token"), msg)
	if err := form.Submit(); err != nil {
		return err
	}

	var err error
	status := http.StatusOK
	if !a.contactLimiter.Check(ip) {
		err = errors.New("rate limited")
		status = http.StatusTooManyRequests
	} else {
		err = a.Contact.Submit(ctx, form.Token, msg)
		if !errors.Is(err, contact.ErrInvalid) {
			a.contactLimiter.Record(ip)
		}
	}
	if rerr := form.Resolve(err); rerr != nil {
		return rerr
	}

	if form.Phase == contact.Succeeded {
		if isHTMX(c) {
			return Render(c, a.Views.ContactSection(views.ContactForm{Form: form, CSRF: CsrfToken(c), Sent: true}))
		}
		if err := setContactSent(c); err != nil {
			a.Log.Warn("save contact flash", zap.Error(err))
		}
		return c.Redirect(http.StatusSeeOther, "/#contact")
	}

	switch {
	case status == http.StatusTooManyRequests:
		form.Error = "Too many messages from your network. Please try again later."
	case errors.Is(err, contact.ErrInvalid):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, contact.ErrInFlight):
		status = http.StatusConflict
		form.Error = "Your message is already being sent. Please wait a moment."
	default:
		status = http.StatusBadGateway
		a.Log.Warn("contact submission failed", zap.Error(err), zap.String("ip", ip))
	}

	view := views.ContactForm{Form: form, CSRF: CsrfToken(c)}
	if isHTMX(c) {
		// htmx only swaps 2xx responses.
		return Render(c, a.Views.ContactSection(view))
	}
	return RenderStatus(c, status, a.Views.Home(a.homePage(c, view)))
}

func (a *App) handleBlog(c echo.Context) error {
	ctx := c.Request().Context()
	site := a.site()
	size := a.Config.BlogPageSize
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	tag := strings.TrimSpace(c.QueryParam("tag"))

	data := views.BlogPage{
		Site: site,
		Meta: views.PageMeta{
			Title:       "Blog | " + site.Name,
			Description: site.Description,
			URL:         views.BuildURL(site.URL, "blog"),
			OGType:      "website",
		},
		Page: page,
		Tag:  tag,
	}
	status := http.StatusOK

	list, err := a.Posts.ListPosts(ctx, blog.ListOptions{Skip: (page - 1) * size, Limit: size, Tag: tag})
	switch {
	case errors.Is(err, blog.ErrUnavailable):
		data.Unavailable = true
		status = http.StatusServiceUnavailable
	case err != nil:
		return err
	default:
		data.Posts = list.Posts
		data.Total = list.Total
		if (page-1)*size+len(list.Posts) < list.Total {
			data.NextPage = page + 1
		}
		if page > 1 && len(list.Posts) == 0 {
			return echo.ErrNotFound
		}
	}

	if isHTMX(c) && c.QueryParam("partial") == "blog" {
		return RenderStatus(c, status, a.Views.BlogSection(data))
	}
	return RenderStatus(c, status, a.Views.BlogList(data))
}

func (a *App) handlePost(c echo.Context) error {
	ctx := c.Request().Context()
	site := a.site()
	post, err := a.Posts.GetPost(ctx, c.Param("slug"))
	switch {
	case errors.Is(err, blog.ErrNotFound):
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(views.StatusPage{Site: site, Code: http.StatusNotFound}))
	case errors.Is(err, blog.ErrUnavailable):
		return RenderStatus(c, http.StatusServiceUnavailable, a.Views.ServerError(views.StatusPage{
			Site:    site,
			Code:    http.StatusServiceUnavailable,
			Title:   "Post temporarily unavailable",
			Message: "We could not load this post right now. Please try again in a few minutes.",
		}))
	case err != nil:
		return err
	}

	var related []blog.PostSummary
	if list, err := a.Posts.ListPosts(ctx, blog.ListOptions{}); err == nil {
		related = views.FilterRelatedPosts(post.PostSummary, list.Posts, relatedPostCount)
	}

	meta := views.PageMeta{
		Title:       post.Title + " | " + site.Name,
		Description: post.Excerpt,
		URL:         views.BuildURL(site.URL, "blog", post.Slug),
		OGType:      "article",
		JSONLD:      views.BlogPostingJsonLD(site, post.PostSummary),
	}
	if post.FeaturedImage != nil {
		meta.Image = post.FeaturedImage.URL
	}
	return Render(c, a.Views.Post(views.PostPage{Site: site, Meta: meta, Post: post, Related: related}))
}

func (a *App) feedPosts(c echo.Context) ([]blog.PostSummary, error) {
	list, err := a.Posts.ListPosts(c.Request().Context(), blog.ListOptions{Limit: feedPostLimit})
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable).SetInternal(err)
	}
	return list.Posts, nil
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.feedPosts(c)
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.feedPosts(c)
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\n\nSitemap: %s\n", strings.TrimSuffix(views.BuildURL(a.Config.URL), "/")+"/sitemap.xml")
	return c.String(http.StatusOK, body)
}

func handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "version": Version})
}

// handleContentfulWebhook drops cached posts when content is published or
// unpublished. The shared secret is sent in the X-Webhook-Secret header.
func (a *App) handleContentfulWebhook(c echo.Context) error {
	got := c.Request().Header.Get("X-Webhook-Secret")
	if subtle.ConstantTimeCompare([]byte(got), []byte(a.Config.Contentful.WebhookSecret)) != 1 {
		return echo.NewHTTPError(http.StatusUnauthorized)
	}
	if a.Cache != nil {
		a.Cache.Invalidate()
	}
	a.Log.Info("content webhook",
		zap.String("topic", c.Request().Header.Get("X-Contentful-Topic")),
		zap.Bool("cache", a.Cache != nil))
	return c.NoContent(http.StatusNoContent)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(views.StatusPage{Site: a.site(), Code: http.StatusNotFound}))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Log.Error("server error", zap.Error(err), zap.String("uri", c.Request().RequestURI))
		_ = RenderStatus(c, code, a.Views.ServerError(views.StatusPage{Site: a.site(), Code: code}))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
