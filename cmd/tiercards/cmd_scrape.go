package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/use-agent/tiercards/config"
	"github.com/use-agent/tiercards/engine"
	"github.com/use-agent/tiercards/extract"
	"github.com/use-agent/tiercards/pipeline"
	"github.com/use-agent/tiercards/report"
	"github.com/use-agent/tiercards/scraper"
	"github.com/use-agent/tiercards/snapshot"
	"github.com/use-agent/tiercards/webhook"
)

var scrapeFlags struct {
	fetchMode string
	baseURL   string
	pages     string
	stealth   bool
	noReport  bool
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Visit every page, extract the cards and overwrite the snapshot",
	RunE:  runScrape,
}

func init() {
	f := scrapeCmd.Flags()
	f.StringVar(&scrapeFlags.fetchMode, "fetch-mode", "", "browser, http or auto (env TIER_FETCH_MODE)")
	f.StringVar(&scrapeFlags.baseURL, "base-url", "", "Base URL prefixed to page files (env TIER_BASE_URL)")
	f.StringVar(&scrapeFlags.pages, "pages", "", "Ordered page list file=Category,... (env TIER_PAGES)")
	f.BoolVar(&scrapeFlags.stealth, "stealth", false, "Inject stealth evasions into the browser (env TIER_STEALTH)")
	f.BoolVar(&scrapeFlags.noReport, "no-report", false, "Skip the summary tables")
}

func runScrape(cmd *cobra.Command, _ []string) error {
	if scrapeFlags.fetchMode != "" {
		cfg.Scraper.FetchMode = scrapeFlags.fetchMode
	}
	if scrapeFlags.baseURL != "" {
		cfg.Scraper.BaseURL = scrapeFlags.baseURL
	}
	if scrapeFlags.pages != "" {
		pages, err := config.ParsePages(scrapeFlags.pages)
		if err != nil {
			return err
		}
		cfg.Scraper.SetPages(pages)
	}
	if scrapeFlags.stealth {
		cfg.Browser.Stealth = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ex, err := extract.New(cfg.Extract)
	if err != nil {
		return err
	}

	fetcher, closeFetcher, err := newFetcher(cfg, ex)
	if err != nil {
		return err
	}
	defer closeFetcher()

	start := time.Now()
	slog.Info("scrape starting",
		"pages", len(cfg.Scraper.Pages),
		"fetch_mode", cfg.Scraper.FetchMode,
		"snapshot", cfg.Output.SnapshotPath,
	)

	p := pipeline.New(fetcher, ex, cfg.Scraper.NavigationTimeout)
	records, err := p.Run(ctx, cfg.Scraper.PageURLs())
	if err != nil {
		return fmt.Errorf("scrape aborted, snapshot left untouched: %w", err)
	}

	if err := snapshot.Write(cfg.Output.SnapshotPath, records); err != nil {
		return err
	}
	slog.Info("snapshot written",
		"path", cfg.Output.SnapshotPath,
		"cards", len(records),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if cfg.Webhook.URL != "" {
		webhook.Notify(ctx, cfg.Webhook.URL, cfg.Webhook.Secret,
			webhook.SnapshotWritten(cfg.Output.SnapshotPath, records))
	}

	if scrapeFlags.noReport {
		return nil
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Extracted %d cards → %s\n\n", len(records), cfg.Output.SnapshotPath)
	return report.Render(out, report.Summarize(records, cfg.Output.TopN), report.ASCII)
}

// newFetcher builds the engine chain for cfg.Scraper.FetchMode. The browser
// is only launched when the chain contains the rod engine.
func newFetcher(cfg *config.Config, ex *extract.Extractor) (pipeline.Fetcher, func(), error) {
	var engines []engine.Engine
	closeFn := func() {}

	mode := cfg.Scraper.FetchMode
	if mode == "http" || mode == "auto" {
		engines = append(engines, engine.NewHTTPEngine(cfg.Browser.DefaultProxy))
	}
	if mode == "browser" || mode == "auto" {
		sc, err := scraper.NewScraper(cfg.Browser, cfg.Scraper)
		if err != nil {
			return nil, nil, err
		}
		closeFn = sc.Close
		engines = append(engines, engine.NewRodEngine(sc.Fetch))
	}

	accept := func(r *engine.FetchResult) bool { return ex.HasCandidates(r.HTML) }
	return engine.NewDispatcher(engines, accept, nil), closeFn, nil
}
