package folio

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap"
)

// SiteConfig holds all configuration for a folio site. Values come from the
// environment, optionally layered over a YAML file.
type SiteConfig struct {
	Name        string `yaml:"name" env:"SITE_NAME" env-description:"Site name"`
	URL         string `yaml:"url" env:"SITE_URL" env-description:"Canonical URL"`
	Description string `yaml:"description" env:"SITE_DESCRIPTION" env-description:"Site description for RSS and meta tags"`
	Author      string `yaml:"author" env:"SITE_AUTHOR" env-description:"Author name for JSON-LD"`

	Addr string `yaml:"addr" env:"ADDR" env-description:"Listen address"`

	Contentful ContentfulConfig `yaml:"contentful"`

	BlogPageSize int           `yaml:"blog_page_size" env:"BLOG_PAGE_SIZE" env-description:"Posts per blog page"`
	PostCacheTTL time.Duration `yaml:"post_cache_ttl" env:"POST_CACHE_TTL" env-description:"Post cache TTL, 0 disables caching"`

	ContactEndpoint string        `yaml:"contact_endpoint" env:"CONTACT_FORM_ENDPOINT" env-description:"URL contact messages are posted to"`
	ContactTimeout  time.Duration `yaml:"contact_timeout" env:"CONTACT_TIMEOUT" env-description:"Contact forward timeout"`
	DatabasePath    string        `yaml:"database_path" env:"DATABASE_PATH" env-description:"SQLite path for contact messages"`

	ProfilePath  string `yaml:"profile_path" env:"PROFILE_PATH" env-description:"Portfolio YAML file, empty for the built-in placeholder"`
	ProfileWatch bool   `yaml:"profile_watch" env:"PROFILE_WATCH" env-description:"Reload the profile file on change"`

	SessionSecret string `yaml:"session_secret" env:"SESSION_SECRET" env-description:"Required: session encryption secret"`
	CookieSecure  bool   `yaml:"cookie_secure" env:"COOKIE_SECURE" env-description:"Set true for HTTPS"`

	LogLevel       string `yaml:"log_level" env:"LOG_LEVEL" env-description:"debug, info, warn or error"`
	LogDevelopment bool   `yaml:"log_development" env:"LOG_DEVELOPMENT" env-description:"Human readable console logs"`
}

// ContentfulConfig holds the Content Delivery API settings.
type ContentfulConfig struct {
	SpaceID       string        `yaml:"space_id" env:"CONTENTFUL_SPACE_ID" env-description:"Space id"`
	AccessToken   string        `yaml:"access_token" env:"CONTENTFUL_ACCESS_TOKEN" env-description:"Delivery API access token"`
	Environment   string        `yaml:"environment" env:"CONTENTFUL_ENVIRONMENT" env-description:"Environment id"`
	Host          string        `yaml:"host" env:"CONTENTFUL_HOST" env-description:"API host, preview.contentful.com for drafts"`
	ContentType   string        `yaml:"content_type" env:"CONTENTFUL_CONTENT_TYPE" env-description:"Blog post content type id"`
	Locale        string        `yaml:"locale" env:"CONTENTFUL_LOCALE" env-description:"Locale code, empty for the space default"`
	Timeout       time.Duration `yaml:"timeout" env:"CONTENTFUL_TIMEOUT" env-description:"Request timeout"`
	WebhookSecret string        `yaml:"webhook_secret" env:"CONTENTFUL_WEBHOOK_SECRET" env-description:"Shared secret for the cache invalidation webhook"`
}

// LoadConfig reads configuration from the YAML file at path, if given, and
// then from the environment. Defaults are applied afterwards.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return SiteConfig{}, fmt.Errorf("folio: read config: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

// ConfigUsage describes every environment variable, for CLI help output.
func ConfigUsage() string {
	var cfg SiteConfig
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return text
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Portfolio"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.Contentful.Environment == "" {
		c.Contentful.Environment = "master"
	}
	if c.Contentful.Host == "" {
		c.Contentful.Host = "cdn.contentful.com"
	}
	if c.Contentful.ContentType == "" {
		c.Contentful.ContentType = "blogPost"
	}
	if c.Contentful.Timeout <= 0 {
		c.Contentful.Timeout = 10 * time.Second
	}
	if c.BlogPageSize <= 0 {
		c.BlogPageSize = 12
	}
	if c.PostCacheTTL < 0 {
		c.PostCacheTTL = 0
	}
	if c.ContactTimeout <= 0 {
		c.ContactTimeout = 10 * time.Second
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/contact.db"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c SiteConfig) validate() error {
	if c.SessionSecret == "" {
		return fmt.Errorf("folio: SessionSecret is required")
	}
	if c.Contentful.SpaceID == "" || c.Contentful.AccessToken == "" {
		return fmt.Errorf("folio: Contentful space id and access token are required")
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithLogger sets the application logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.Log = l
	}
}

// WithPostSource replaces the content service, for tests and previews.
func WithPostSource(src PostSource) Option {
	return func(a *App) {
		a.Posts = src
	}
}

// WithContactService replaces the contact pipeline.
func WithContactService(s ContactSubmitter) Option {
	return func(a *App) {
		a.Contact = s
	}
}
