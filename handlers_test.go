package folio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/folio/blog"
	"github.com/eringen/folio/contact"
	"github.com/eringen/folio/profile"
)

type fakePosts struct {
	mu        sync.Mutex
	list      blog.PostList
	listErr   error
	posts     map[string]blog.Post
	getErr    error
	listOpts  []blog.ListOptions
	getCalls  int
	listCalls int
}

func (f *fakePosts) ListPosts(_ context.Context, opts blog.ListOptions) (blog.PostList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.listOpts = append(f.listOpts, opts)
	if f.listErr != nil {
		return blog.PostList{Posts: []blog.PostSummary{}}, f.listErr
	}
	return f.list, nil
}

func (f *fakePosts) GetPost(_ context.Context, slug string) (blog.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return blog.Post{}, f.getErr
	}
	p, ok := f.posts[slug]
	if !ok {
		return blog.Post{}, blog.ErrNotFound
	}
	return p, nil
}

type fakeContact struct {
	mu   sync.Mutex
	err  error
	msgs []contact.Message
}

func (f *fakeContact) Submit(_ context.Context, _ string, m contact.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m = m.Normalize()
	if err := m.Validate(); err != nil {
		return err
	}
	f.msgs = append(f.msgs, m)
	return f.err
}

func samplePosts() *fakePosts {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	first := blog.PostSummary{Title: "First Post", Slug: "first", Excerpt: "One", PublishDate: date, Tags: []string{"go"}}
	second := blog.PostSummary{Title: "Second Post", Slug: "second", PublishDate: date.AddDate(0, 0, -1), Tags: []string{"go"}}
	return &fakePosts{
		list: blog.PostList{Posts: []blog.PostSummary{first, second}, Total: 2},
		posts: map[string]blog.Post{
			"first": {PostSummary: first, ReadingTime: 1},
		},
	}
}

func newTestApp(t *testing.T, posts PostSource, sub ContactSubmitter, mutate ...func(*SiteConfig)) *App {
	t.Helper()
	cfg := SiteConfig{
		Name:          "Test Folio",
		URL:           "https://example.com",
		Description:   "A test site",
		SessionSecret: "test-secret-test-secret-test-sec",
	}
	for _, m := range mutate {
		m(&cfg)
	}
	a := New(cfg, DefaultViews(), WithPostSource(posts), WithContactService(sub))
	require.NoError(t, a.Init(context.Background()))
	t.Cleanup(func() { a.Close() })
	return a
}

func serve(a *App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func get(a *App, target string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return serve(a, req)
}

func contactRequest(form url.Values, htmx bool) *http.Request {
	form.Set("_csrf", "csrf-test-token")
	req := httptest.NewRequest(http.MethodPost, "/contact/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "_csrf", Value: "csrf-test-token"})
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	return req
}

func validForm() url.Values {
	return url.Values{
		"name":    {"Sam"},
		"email":   {"sam@example.com"},
		"message": {"Hello there"},
	}
}

func TestHomePage(t *testing.T) {
	a := newTestApp(t, samplePosts(), &fakeContact{})
	rec := get(a, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, profile.Default().Name)
	assert.Contains(t, body, "First Post")
	assert.Contains(t, body, `action="/contact/"`)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestHomeContactPartial(t *testing.T) {
	a := newTestApp(t, samplePosts(), &fakeContact{})
	rec := get(a, "/?partial=contact", "HX-Request", "true")
	require.Equal(t, http.StatusOK, rec.Code)
	body := strings.TrimSpace(rec.Body.String())
	assert.True(t, strings.HasPrefix(body, "<form"), body)
	assert.NotContains(t, body, "<html")
}

func TestHomeSurvivesUnavailableBlog(t *testing.T) {
	a := newTestApp(t, &fakePosts{listErr: blog.ErrUnavailable}, &fakeContact{})
	rec := get(a, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Latest posts")
}

func TestBlogList(t *testing.T) {
	posts := samplePosts()
	posts.list.Total = 30
	a := newTestApp(t, posts, &fakeContact{}, func(c *SiteConfig) { c.BlogPageSize = 2 })

	rec := get(a, "/blog/?page=2&tag=go")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/blog/first/"`)
	assert.Contains(t, body, "Load More")
	assert.Contains(t, body, "page=3")

	last := posts.listOpts[len(posts.listOpts)-1]
	assert.Equal(t, blog.ListOptions{Skip: 2, Limit: 2, Tag: "go"}, last)
}

func TestBlogListEmpty(t *testing.T) {
	a := newTestApp(t, &fakePosts{list: blog.PostList{Posts: []blog.PostSummary{}}}, &fakeContact{})
	rec := get(a, "/blog/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Coming Soon")

	rec = get(a, "/blog/?page=4")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBlogListUnavailable(t *testing.T) {
	a := newTestApp(t, &fakePosts{listErr: fmt.Errorf("%w: boom", blog.ErrUnavailable)}, &fakeContact{})
	rec := get(a, "/blog/")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "temporarily unavailable")
	assert.NotContains(t, rec.Body.String(), "Coming Soon")
}

func TestBlogRedirectsWithoutTrailingSlash(t *testing.T) {
	a := newTestApp(t, samplePosts(), &fakeContact{})
	rec := get(a, "/blog")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/blog/", rec.Header().Get("Location"))
}

func TestPostPage(t *testing.T) {
	a := newTestApp(t, samplePosts(), &fakeContact{})
	rec := get(a, "/blog/first/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>First Post | Test Folio</title>")
	assert.Contains(t, body, "Related posts")
	assert.Contains(t, body, `href="/blog/second/"`)
	assert.Contains(t, body, "BlogPosting")
}

func TestPostNotFound(t *testing.T) {
	a := newTestApp(t, samplePosts(), &fakeContact{})
	rec := get(a, "/blog/missing/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found")
}

func TestPostUnavailable(t *testing.T) {
	a := newTestApp(t, &fakePosts{getErr: fmt.Errorf("%w: timeout", blog.ErrUnavailable)}, &fakeContact{})
	rec := get(a, "/blog/first/")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "temporarily unavailable")
}

func TestUnknownRouteRendersNotFound(t *testing.T) {
	a := newTestApp(t, samplePosts(), &fakeContact{})
	rec := get(a, "/nope/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found")
}

func TestContactSuccessRedirectsWithFlash(t *testing.T) {
	sub := &fakeContact{}
	a := newTestApp(t, samplePosts(), sub)

	rec := serve(a, contactRequest(validForm(), false))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/#contact", rec.Header().Get("Location"))
	require.Len(t, sub.msgs, 1)
	assert.Equal(t, "Sam", sub.msgs[0].Name)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	page := serve(a, req)
	assert.Contains(t, page.Body.String(), "Thank you for your message!")
	assert.NotContains(t, page.Body.String(), "Send Message")
}

func TestContactHTMXSuccess(t *testing.T) {
	a := newTestApp(t, samplePosts(), &fakeContact{})
	rec := serve(a, contactRequest(validForm(), true))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Thank you for your message!")
	assert.NotContains(t, body, "Hello there", "fields are cleared after success")
}

func TestContactValidationKeepsValues(t *testing.T) {
	sub := &fakeContact{}
	a := newTestApp(t, samplePosts(), sub)
	form := validForm()
	form.Set("email", "not-an-email")

	rec := serve(a, contactRequest(form, false))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Please enter a valid email address.")
	assert.Contains(t, body, "Hello there")
	assert.Contains(t, body, `value="not-an-email"`)
	assert.Empty(t, sub.msgs)
}

func TestContactForwardFailureKeepsValues(t *testing.T) {
	sub := &fakeContact{err: errors.New("endpoint down")}
	a := newTestApp(t, samplePosts(), sub)

	rec := serve(a, contactRequest(validForm(), false))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "There was an error submitting your message. Please try again.")
	assert.Contains(t, body, "Hello there")
	assert.Contains(t, body, "Send Message", "form stays editable")

	rec = serve(a, contactRequest(validForm(), true))
	assert.Equal(t, http.StatusOK, rec.Code, "htmx responses stay 2xx so the form is swapped")
	assert.Contains(t, rec.Body.String(), "There was an error submitting your message.")
}

func TestContactReusesToken(t *testing.T) {
	a := newTestApp(t, samplePosts(), &fakeContact{err: errors.New("down")})
	form := validForm()
	form.Set("token", "6f1c0a4e-8a43-4b8e-9a5e-0d3f3f1c2b7a")
	rec := serve(a, contactRequest(form, true))
	assert.Contains(t, rec.Body.String(), `value="6f1c0a4e-8a43-4b8e-9a5e-0d3f3f1c2b7a"`)
}

func TestContactRequiresCSRF(t *testing.T) {
	a := newTestApp(t, samplePosts(), &fakeContact{})
	req := httptest.NewRequest(http.MethodPost, "/contact/", strings.NewReader(validForm().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := serve(a, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestContactRateLimited(t *testing.T) {
	sub := &fakeContact{}
	a := newTestApp(t, samplePosts(), sub)
	for i := 0; i < 5; i++ {
		rec := serve(a, contactRequest(validForm(), false))
		require.Equal(t, http.StatusSeeOther, rec.Code, "attempt %d", i)
	}
	rec := serve(a, contactRequest(validForm(), false))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Too many messages")
	assert.Len(t, sub.msgs, 5)
}

func TestFeedAndSitemap(t *testing.T) {
	a := newTestApp(t, samplePosts(), &fakeContact{})

	rec := get(a, "/feed.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/rss+xml")
	body := rec.Body.String()
	assert.Contains(t, body, "<link>https://example.com/blog/first/</link>")
	assert.Contains(t, body, "<pubDate>Fri, 01 Mar 2024 00:00:00 +0000</pubDate>")
	assert.Contains(t, body, "<category>go</category>")

	rec = get(a, "/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.Contains(t, body, "<loc>https://example.com/blog/</loc>")
	assert.Contains(t, body, "<loc>https://example.com/blog/second/</loc>")
	assert.Contains(t, body, "<lastmod>2024-03-01</lastmod>")
}

func TestFeedUnavailable(t *testing.T) {
	a := newTestApp(t, &fakePosts{listErr: blog.ErrUnavailable}, &fakeContact{})
	rec := get(a, "/feed.xml")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRobotsAndHealth(t *testing.T) {
	a := newTestApp(t, samplePosts(), &fakeContact{})

	rec := get(a, "/robots.txt")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sitemap: https://example.com/sitemap.xml")

	rec = get(a, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","version":"dev"}`, rec.Body.String())
}

func TestPlaceholderRoute(t *testing.T) {
	a := newTestApp(t, samplePosts(), &fakeContact{})
	rec := get(a, "/placeholder.png?width=320&height=180")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 180, img.Bounds().Dy())

	rec = get(a, "/placeholder.png?width=20000&height=20000")
	require.Equal(t, http.StatusOK, rec.Code)
	img, err = png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, maxPlaceholderWidth, img.Bounds().Dx())
	assert.Equal(t, maxPlaceholderHeight, img.Bounds().Dy())
}

func TestStaticStylesheet(t *testing.T) {
	a := newTestApp(t, samplePosts(), &fakeContact{})
	rec := get(a, "/static/site.css")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "--ink")
}

func TestWebhook(t *testing.T) {
	t.Run("not registered without secret", func(t *testing.T) {
		a := newTestApp(t, samplePosts(), &fakeContact{})
		rec := serve(a, httptest.NewRequest(http.MethodPost, "/hooks/contentful", nil))
		assert.NotEqual(t, http.StatusNoContent, rec.Code)
	})

	posts := samplePosts()
	a := newTestApp(t, posts, &fakeContact{}, func(c *SiteConfig) {
		c.Contentful.WebhookSecret = "s3cret"
		c.PostCacheTTL = time.Hour
	})
	require.NotNil(t, a.Cache)

	get(a, "/blog/")
	get(a, "/blog/")
	assert.Equal(t, 1, posts.listCalls, "second list is served from cache")

	req := httptest.NewRequest(http.MethodPost, "/hooks/contentful", nil)
	req.Header.Set("X-Webhook-Secret", "wrong")
	assert.Equal(t, http.StatusUnauthorized, serve(a, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/hooks/contentful", nil)
	req.Header.Set("X-Webhook-Secret", "s3cret")
	req.Header.Set("X-Contentful-Topic", "ContentManagement.Entry.publish")
	assert.Equal(t, http.StatusNoContent, serve(a, req).Code)

	get(a, "/blog/")
	assert.Equal(t, 2, posts.listCalls, "invalidated cache reloads")
}

func TestInitRequiresSessionSecret(t *testing.T) {
	a := New(SiteConfig{}, DefaultViews(), WithPostSource(samplePosts()), WithContactService(&fakeContact{}))
	assert.ErrorContains(t, a.Init(context.Background()), "SessionSecret")
}

func TestInitRequiresContentCredentials(t *testing.T) {
	a := New(SiteConfig{SessionSecret: "x"}, DefaultViews(), WithContactService(&fakeContact{}))
	assert.ErrorContains(t, a.Init(context.Background()), "Contentful")
}
