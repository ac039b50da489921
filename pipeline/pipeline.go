// Package pipeline runs the scrape stage: visit every configured page in
// order, extract its cards, aggregate and sort them.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/use-agent/tiercards/config"
	"github.com/use-agent/tiercards/engine"
	"github.com/use-agent/tiercards/extract"
	"github.com/use-agent/tiercards/models"
)

// Fetcher returns the rendered document for one page. engine.Dispatcher,
// any single engine.Engine and the browser harness all satisfy it.
type Fetcher interface {
	Fetch(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error)
}

// PageStats is the per-page outcome reported after a run.
type PageStats struct {
	Category string
	URL      string
	Engine   string
	Duration time.Duration
	extract.Stats
}

// Pipeline wires a Fetcher to an Extractor.
type Pipeline struct {
	fetcher   Fetcher
	extractor *extract.Extractor
	timeout   time.Duration
	stats     []PageStats
}

// New creates a Pipeline. timeout bounds each page fetch; zero means no
// bound beyond ctx.
func New(fetcher Fetcher, extractor *extract.Extractor, timeout time.Duration) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		extractor: extractor,
		timeout:   timeout,
	}
}

// Run visits pages strictly one after another and returns the sorted
// records. Any page failure aborts the whole run: no partial result is
// returned, so nothing downstream gets written.
func (p *Pipeline) Run(ctx context.Context, pages []config.Page) ([]models.CardRecord, error) {
	agg := NewAggregator()
	p.stats = p.stats[:0]

	for _, page := range pages {
		start := time.Now()
		res, err := p.fetcher.Fetch(ctx, &engine.FetchRequest{
			URL:     page.URL,
			Timeout: p.timeout,
		})
		if err != nil {
			slog.Error("page fetch failed",
				"category", page.Category,
				"url", page.URL,
				"error", err,
			)
			return nil, classify(err, "failed to load "+page.URL)
		}

		records, st, err := p.extractor.Extract(res.HTML, page.Category)
		if err != nil {
			return nil, models.NewScrapeError(models.ErrCodeInternal, "extraction failed for "+page.URL, err)
		}
		agg.Add(records)
		if st.Candidates == 0 {
			slog.Warn("no card elements found on page",
				"category", page.Category,
				"url", page.URL,
				"engine", res.EngineName,
			)
		}

		ps := PageStats{
			Category: page.Category,
			URL:      page.URL,
			Engine:   res.EngineName,
			Duration: time.Since(start),
			Stats:    st,
		}
		p.stats = append(p.stats, ps)

		slog.Info("page extracted",
			"category", page.Category,
			"url", page.URL,
			"engine", res.EngineName,
			"cards", st.Extracted,
			"dropped", st.Dropped,
			"unknown_tier", st.UnknownTier,
			"duration_ms", ps.Duration.Milliseconds(),
		)
	}

	return Sort(agg.Records()), nil
}

// Stats returns per-page statistics of the most recent Run.
func (p *Pipeline) Stats() []PageStats {
	out := make([]PageStats, len(p.stats))
	copy(out, p.stats)
	return out
}

// classify maps a fetch failure onto a ScrapeError, keeping any code the
// harness already assigned.
func classify(err error, msg string) *models.ScrapeError {
	var se *models.ScrapeError
	if errors.As(err, &se) {
		return se
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
