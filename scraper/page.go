package scraper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ysmood/gson"

	"github.com/use-agent/tiercards/engine"
	"github.com/use-agent/tiercards/models"
)

// DocumentScript serializes the loaded document. Its result is what the
// extractor parses.
const DocumentScript = `() => document.documentElement.outerHTML`

const statusScript = `() => {
	try {
		const entries = performance.getEntriesByType("navigation");
		if (entries.length > 0) return entries[0].responseStatus || 0;
	} catch (e) {}
	return 0;
}`

// Navigate loads url in the run's tab and waits for the load event plus a
// settled DOM. Any navigation or load failure is returned as a ScrapeError.
func (s *Scraper) Navigate(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	page, err := s.tab()
	if err != nil {
		return err
	}

	if s.scraperCfg.NavigationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.scraperCfg.NavigationTimeout)
		defer cancel()
	}
	p := page.Context(ctx)

	if err := p.Navigate(url); err != nil {
		return categorizeError(err, "navigation to "+url+" failed")
	}
	if err := p.WaitLoad(); err != nil {
		return categorizeError(err, "waiting for load of "+url+" failed")
	}
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM",
			"url", url, "error", err,
		)
	}
	return nil
}

// Evaluate runs a read-only script against the currently loaded document
// and returns its JSON result. script must be a JS function expression;
// args are passed to it.
func (s *Scraper) Evaluate(ctx context.Context, script string, args ...any) (gson.JSON, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page == nil {
		return gson.JSON{}, models.NewScrapeError(models.ErrCodeNavigation, "evaluate called before navigate", nil)
	}
	res, err := s.page.Context(ctx).Eval(script, args...)
	if err != nil {
		return gson.JSON{}, categorizeError(err, "script evaluation failed")
	}
	return res.Value, nil
}

// HTML returns the serialized document of the loaded page.
func (s *Scraper) HTML(ctx context.Context) (string, error) {
	v, err := s.Evaluate(ctx, DocumentScript)
	if err != nil {
		return "", err
	}
	return v.Str(), nil
}

// Fetch navigates to req.URL and returns the rendered document. It is the
// callback behind engine.RodEngine.
func (s *Scraper) Fetch(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	if err := s.Navigate(ctx, req.URL); err != nil {
		return nil, err
	}
	html, err := s.HTML(ctx)
	if err != nil {
		return nil, err
	}

	result := &engine.FetchResult{HTML: html, FinalURL: req.URL}
	if v, err := s.Evaluate(ctx, statusScript); err == nil {
		result.StatusCode = v.Int()
	}
	if v, err := s.Evaluate(ctx, `() => document.title`); err == nil {
		result.Title = v.Str()
	}
	if v, err := s.Evaluate(ctx, `() => window.location.href`); err == nil && v.Str() != "" {
		result.FinalURL = v.Str()
	}
	return result, nil
}

// categorizeError wraps raw errors into typed ScrapeErrors so the CLI and
// pipeline can report a stable error code.
func categorizeError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "run canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
