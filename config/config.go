package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Extract   ExtractConfig
	Output    OutputConfig
	Webhook   WebhookConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// Page is one source page and the category label its cards belong to.
type Page struct {
	URL      string
	Category string
}

// ServerConfig controls the read-only HTTP API.
type ServerConfig struct {
	Host string // default: "127.0.0.1"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// DefaultProxy is the proxy URL for all requests.
	DefaultProxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Stealth injects go-rod/stealth evasions before every navigation.
	Stealth bool // default: false
}

// ScraperConfig controls page visiting.
type ScraperConfig struct {
	// BaseURL is prefixed to every page file in Pages.
	BaseURL string

	// Pages is the fixed page-visitation order. Parsed from
	// TIER_PAGES as "file=Category,file=Category".
	Pages []Page

	// FetchMode is "browser" (default), "http" or "auto".
	FetchMode string

	// pagesErr holds the TIER_PAGES parse failure; Validate reports it.
	pagesErr error

	// NavigationTimeout bounds navigation plus load for one page.
	NavigationTimeout time.Duration // default: 30s

	// BlockedResourceTypes lists resource types to block in the browser.
	// default: ["Image", "Font", "Media"]
	BlockedResourceTypes []string
}

// ExtractConfig holds the CSS selectors used by the card extractor.
type ExtractConfig struct {
	CardSelector  string // default: ".card"
	NameSelector  string // default: `[class*="card-name"], .card-title, .name`
	ScoreSelector string // default: `[class*="score"], .card-score`
}

// OutputConfig holds the two output locations.
type OutputConfig struct {
	SnapshotPath string // default: "tm-tierlist-cards.json"
	ExportPath   string // default: "tm-tierlist-cards.csv"

	// TopN is the number of cards listed in the summary report.
	TopN int // default: 5
}

// WebhookConfig controls the snapshot.written notification.
type WebhookConfig struct {
	URL    string
	Secret string
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// DefaultBaseURL is the published tier list the pages are read from.
const DefaultBaseURL = "https://rusliksu.github.io/tm-tierlist/output/"

// DefaultPages is the page-visitation order: corporations, preludes,
// projects, CEOs.
var DefaultPages = []Page{
	{URL: "tierlist_corporations_ru.html", Category: "Корпорации"},
	{URL: "tierlist_preludes_ru.html", Category: "Прелюдии"},
	{URL: "tierlist_projects_ru.html", Category: "Проектные карты"},
	{URL: "tierlist_ceos_ru.html", Category: "CEO"},
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host: envOr("TIER_HOST", "127.0.0.1"),
			Port: envIntOr("TIER_PORT", 8080),
			Mode: envOr("TIER_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:     envBoolOr("TIER_HEADLESS", true),
			DefaultProxy: os.Getenv("TIER_PROXY"),
			NoSandbox:    envBoolOr("TIER_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("TIER_BROWSER_BIN"),
			Stealth:      envBoolOr("TIER_STEALTH", false),
		},
		Scraper: ScraperConfig{
			BaseURL:           envOr("TIER_BASE_URL", DefaultBaseURL),
			FetchMode:         envOr("TIER_FETCH_MODE", "browser"),
			NavigationTimeout: envDurationOr("TIER_NAV_TIMEOUT", 30*time.Second),
			BlockedResourceTypes: envSliceOr("TIER_BLOCKED_RESOURCES", []string{
				"Image", "Font", "Media",
			}),
		},
		Extract: ExtractConfig{
			CardSelector:  envOr("TIER_CARD_SELECTOR", ".card"),
			NameSelector:  envOr("TIER_NAME_SELECTOR", `[class*="card-name"], .card-title, .name`),
			ScoreSelector: envOr("TIER_SCORE_SELECTOR", `[class*="score"], .card-score`),
		},
		Output: OutputConfig{
			SnapshotPath: envOr("TIER_SNAPSHOT_PATH", "tm-tierlist-cards.json"),
			ExportPath:   envOr("TIER_EXPORT_PATH", "tm-tierlist-cards.csv"),
			TopN:         envIntOr("TIER_TOP_N", 5),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("TIER_WEBHOOK_URL"),
			Secret: os.Getenv("TIER_WEBHOOK_SECRET"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("TIER_AUTH_ENABLED", false),
			APIKeys: envSliceOr("TIER_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("TIER_RATE_RPS", 5.0),
			Burst:             envIntOr("TIER_RATE_BURST", 10),
		},
		Log: LogConfig{
			Level:  envOr("TIER_LOG_LEVEL", "info"),
			Format: envOr("TIER_LOG_FORMAT", "text"),
		},
	}
	cfg.Scraper.Pages, cfg.Scraper.pagesErr = envPages("TIER_PAGES", DefaultPages)
	return cfg
}

// SetPages replaces the page list, clearing any TIER_PAGES parse failure.
func (c *ScraperConfig) SetPages(pages []Page) {
	c.Pages = pages
	c.pagesErr = nil
}

// PageURLs resolves every configured page against BaseURL, keeping the
// visitation order.
func (c ScraperConfig) PageURLs() []Page {
	pages := make([]Page, len(c.Pages))
	for i, p := range c.Pages {
		url := p.URL
		if !strings.Contains(url, "://") {
			url = c.BaseURL + url
		}
		pages[i] = Page{URL: url, Category: p.Category}
	}
	return pages
}

// Validate reports configuration that would make a run meaningless.
func (c *Config) Validate() error {
	if c.Scraper.pagesErr != nil {
		return fmt.Errorf("TIER_PAGES: %w", c.Scraper.pagesErr)
	}
	if len(c.Scraper.Pages) == 0 {
		return fmt.Errorf("config: no pages configured")
	}
	seen := make(map[string]struct{}, len(c.Scraper.Pages))
	for _, p := range c.Scraper.Pages {
		if p.URL == "" || p.Category == "" {
			return fmt.Errorf("config: page %q has an empty url or category", p.URL+"="+p.Category)
		}
		if _, dup := seen[p.Category]; dup {
			return fmt.Errorf("config: category %q is configured twice", p.Category)
		}
		seen[p.Category] = struct{}{}
	}
	switch c.Scraper.FetchMode {
	case "browser", "http", "auto":
	default:
		return fmt.Errorf("config: unknown fetch mode %q (want browser, http or auto)", c.Scraper.FetchMode)
	}
	if c.Output.SnapshotPath == "" {
		return fmt.Errorf("config: snapshot path is empty")
	}
	return nil
}

// --- helper functions ---

// envPages parses "file=Category,file=Category". An unset variable yields
// fallback; a malformed one yields no pages and the parse error.
func envPages(key string, fallback []Page) ([]Page, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	pages, err := ParsePages(v)
	if err != nil {
		return nil, err
	}
	return pages, nil
}

// ParsePages parses a "file=Category,file=Category" list in order.
func ParsePages(v string) ([]Page, error) {
	parts := strings.Split(v, ",")
	pages := make([]Page, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		file, category, ok := strings.Cut(p, "=")
		file, category = strings.TrimSpace(file), strings.TrimSpace(category)
		if !ok || file == "" || category == "" {
			return nil, fmt.Errorf("config: malformed page entry %q (want file=Category)", p)
		}
		pages = append(pages, Page{URL: file, Category: category})
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("config: empty page list")
	}
	return pages, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
