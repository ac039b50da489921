// Package scraper is the browser harness: it owns one Chromium instance and
// one tab, and exposes Navigate / Evaluate over it. Pages are visited
// strictly one at a time.
package scraper

import (
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/use-agent/tiercards/config"
	"github.com/use-agent/tiercards/models"
)

// Scraper manages the browser lifecycle and the single tab used for a run.
// Calls are serialized; the harness is not meant for parallel page loads.
type Scraper struct {
	mu         sync.Mutex
	launcher   *launcher.Launcher
	browser    *rod.Browser
	page       *rod.Page
	router     *rod.HijackRouter
	browserCfg config.BrowserConfig
	scraperCfg config.ScraperConfig
}

// NewScraper launches a headless browser. The tab is opened lazily on the
// first navigation.
func NewScraper(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig) (*Scraper, error) {
	l := launcher.New().
		Headless(browserCfg.Headless).
		NoSandbox(browserCfg.NoSandbox)

	if browserCfg.BrowserBin != "" {
		l = l.Bin(browserCfg.BrowserBin)
	}
	if browserCfg.DefaultProxy != "" {
		l = l.Proxy(browserCfg.DefaultProxy)
	}

	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}

	return &Scraper{
		launcher:   l,
		browser:    browser,
		browserCfg: browserCfg,
		scraperCfg: scraperCfg,
	}, nil
}

// tab returns the run's page, creating it on first use. Stealth and
// resource blocking are installed before any navigation happens.
func (s *Scraper) tab() (*rod.Page, error) {
	if s.page != nil {
		return s.page, nil
	}
	page, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to open tab",
			err,
		)
	}

	if s.browserCfg.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"error", evalErr,
			)
		}
	}

	s.router = setupHijack(page, s.scraperCfg.BlockedResourceTypes)
	s.page = page
	return page, nil
}

// Close stops the hijack router, closes the tab and kills the browser.
func (s *Scraper) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.router != nil {
		_ = s.router.Stop()
	}
	if s.page != nil {
		_ = s.page.Close()
	}
	if err := s.browser.Close(); err != nil {
		slog.Warn("browser close failed", "error", err)
	}
	s.launcher.Cleanup()
	slog.Info("scraper shutdown complete")
}
