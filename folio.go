// Package folio is a personal portfolio and blog server built with Go, Echo,
// and templ. Blog posts come from the Contentful Content Delivery API; the
// portfolio page is rendered from a YAML profile and carries a contact form
// that is forwarded to an external form endpoint.
//
// Users may replace any page through the ViewFuncs struct; folio handles
// the handler logic, middleware, content retrieval and contact pipeline.
package folio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/folio/blog"
	"github.com/eringen/folio/contact"
	"github.com/eringen/folio/contentful"
	"github.com/eringen/folio/profile"
	"github.com/eringen/folio/views"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// ViewFuncs holds the components the server calls when rendering pages.
type ViewFuncs struct {
	Home           func(views.HomePage) templ.Component
	ContactSection func(views.ContactForm) templ.Component
	BlogList       func(views.BlogPage) templ.Component
	BlogSection    func(views.BlogPage) templ.Component
	Post           func(views.PostPage) templ.Component
	NotFound       func(views.StatusPage) templ.Component
	ServerError    func(views.StatusPage) templ.Component
}

// DefaultViews returns the built-in views.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:           views.Home,
		ContactSection: views.ContactSection,
		BlogList:       views.BlogList,
		BlogSection:    views.BlogSection,
		Post:           views.Post,
		NotFound:       views.NotFound,
		ServerError:    views.ServerError,
	}
}

// ContactSubmitter accepts contact form submissions. *contact.Service implements it.
type ContactSubmitter interface {
	Submit(ctx context.Context, token string, m contact.Message) error
}

// App is the central folio application. It wires together content
// retrieval, the cache, the contact pipeline, handlers and middleware.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Log     *zap.Logger
	Views   ViewFuncs
	Posts   PostSource
	Cache   *PostCache
	Profile *profile.Holder
	Contact ContactSubmitter

	contactStore   *contact.Store
	contactLimiter *RateLimiter
	profileWatcher *profile.Watcher
	customRoutes   []func(*App)
	staticDir      string
}

// New creates a new App with the given configuration and views.
func New(cfg SiteConfig, vf ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Log:       zap.NewNop(),
		Views:     vf,
		staticDir: "public",
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init builds every dependency that was not supplied as an option and
// registers middleware and routes. Start calls it; tests call it directly.
func (a *App) Init(ctx context.Context) error {
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("folio: SessionSecret is required")
	}

	if a.Posts == nil {
		if err := a.Config.validate(); err != nil {
			return err
		}
		svc, err := NewPostService(a.Config, a.Log.Named("blog"))
		if err != nil {
			return err
		}
		a.Posts = svc
	}
	if a.Config.PostCacheTTL > 0 {
		a.Cache = NewPostCache(a.Posts, a.Config.PostCacheTTL)
		a.Posts = a.Cache
	}

	if a.Profile == nil {
		p, err := profile.Load(a.Config.ProfilePath)
		if err != nil {
			return fmt.Errorf("folio: load profile: %w", err)
		}
		a.Profile = profile.NewHolder(p)
		if a.Config.ProfileWatch && a.Config.ProfilePath != "" {
			w, err := profile.NewWatcher(a.Config.ProfilePath, a.Profile, a.Log.Named("profile"))
			if err != nil {
				return fmt.Errorf("folio: watch profile: %w", err)
			}
			if err := w.Start(ctx); err != nil {
				w.Stop()
				return fmt.Errorf("folio: watch profile: %w", err)
			}
			a.profileWatcher = w
		}
	}

	if a.Contact == nil {
		store, err := contact.NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("folio: init contact store: %w", err)
		}
		a.contactStore = store
		a.Contact = contact.NewService(
			contact.NewForwarder(a.Config.ContactEndpoint, a.Config.ContactTimeout),
			store,
			a.Log.Named("contact"),
		)
	}
	a.contactLimiter = NewRateLimiter(5, 10*time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the app and serves until ctx is cancelled, then shuts
// the server down gracefully.
func (a *App) Start(ctx context.Context) error {
	if err := a.Init(ctx); err != nil {
		return err
	}
	defer a.Close()

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("listening", zap.String("addr", a.Config.Addr), zap.String("url", a.Config.URL))
		errCh <- a.Echo.Start(a.Config.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("folio: shutdown: %w", err)
	}
	return nil
}

// NewPostService builds the Contentful backed blog service described by cfg.
func NewPostService(cfg SiteConfig, log *zap.Logger) (*blog.Service, error) {
	client, err := contentful.NewClient(contentful.Config{
		SpaceID:     cfg.Contentful.SpaceID,
		AccessToken: cfg.Contentful.AccessToken,
		Environment: cfg.Contentful.Environment,
		Host:        cfg.Contentful.Host,
		Timeout:     cfg.Contentful.Timeout,
	}, contentful.WithUserAgent("folio/"+Version))
	if err != nil {
		return nil, fmt.Errorf("folio: init content client: %w", err)
	}
	return blog.NewService(client,
		blog.WithLogger(log),
		blog.WithContentType(cfg.Contentful.ContentType),
		blog.WithLocale(cfg.Contentful.Locale),
	), nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	staticFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	e.GET("/static/*", echo.WrapHandler(http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))))

	// User's static assets
	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/healthz", handleHealth)
	e.GET("/placeholder.png", handlePlaceholder)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	e.GET("/", a.handleHome)
	e.POST("/contact/", a.handleContact)
	e.GET("/blog/", a.handleBlog)
	e.GET("/blog/:slug/", a.handlePost)

	if a.Config.Contentful.WebhookSecret != "" {
		e.POST("/hooks/contentful", a.handleContentfulWebhook)
	}
}

// Close releases the resources Init acquired. It is safe to call more than once.
func (a *App) Close() error {
	if a.contactLimiter != nil {
		a.contactLimiter.Stop()
	}
	if a.profileWatcher != nil {
		a.profileWatcher.Stop()
		a.profileWatcher = nil
	}
	if a.contactStore != nil {
		err := a.contactStore.Close()
		a.contactStore = nil
		return err
	}
	return nil
}
