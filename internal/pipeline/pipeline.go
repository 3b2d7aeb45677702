// Package pipeline orchestrates one ingestion run: extract candidates from
// every configured source, normalize, filter by recency, dedup into the
// store, then persist the bounded result. Feeds run before pages because
// they carry reliable structured dates; no single source failure may abort
// the run.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"ainews/internal/article"
	"ainews/internal/config"
	"ainews/internal/content"
	"ainews/internal/feed"
	"ainews/internal/fetch"
	"ainews/internal/metrics"
	"ainews/internal/ratelimit"
	"ainews/internal/retry"
	"ainews/internal/scrape"
	"ainews/internal/source"
	"ainews/internal/store"
	"ainews/internal/translate"
)

// Extractor is the common shape of all source extraction strategies.
type Extractor interface {
	Extract(ctx context.Context, src source.Source) ([]article.Candidate, error)
}

// Report summarizes one run. Articles carries the finalized collection so
// the caller still has the result when persistence fails.
type Report struct {
	TotalStored   int
	NewlyAdded    int
	SourcesFailed int
	Elapsed       time.Duration
	Articles      []article.Article
}

type Pipeline struct {
	cfg     *config.Config
	sources *source.Config
	store   *store.Store

	feeds    Extractor
	pages    Extractor
	launches Extractor
	enricher *content.Extractor

	log *slog.Logger
	met *metrics.Metrics
}

// New wires the extractors from configuration. The logger is an explicit
// capability, not a package global.
func New(cfg *config.Config, sources *source.Config, st *store.Store, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	client := fetch.New(cfg.RequestTimeout)
	limiter := ratelimit.New(cfg.ScrapeDelayMin, cfg.ScrapeDelayMax)

	p := &Pipeline{
		cfg:      cfg,
		sources:  sources,
		store:    st,
		feeds:    feed.NewExtractor(client, cfg.FeedItemLimit, log),
		pages:    scrape.NewExtractor(client, limiter, cfg.PageItemLimit, log),
		launches: feed.NewProductHuntExtractor(client, log),
		log:      log,
		met:      metrics.Global,
	}
	if cfg.EnrichContent {
		p.enricher = content.NewExtractor(client)
	}
	return p
}

// Run executes one bounded batch. Cancelling ctx stops remaining source
// fetches but whatever was accepted up to that point is still finalized
// and persisted. The returned error is fatal only for the store itself.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	now := start

	if err := p.store.Load(); err != nil {
		p.met.SetError(err.Error())
		return nil, err
	}
	report := &Report{}
	enrichBudget := p.cfg.EnrichMaxPerRun

	// Phase 1: feeds. Most reliable dates first.
	p.runPhase(ctx, p.feeds, p.sources.Feeds, now, report, &enrichBudget)

	// Phase 2: pages.
	p.runPhase(ctx, p.pages, p.sources.Pages, now, report, &enrichBudget)

	// Phase 3: special sources.
	p.runPhase(ctx, p.launches, p.sources.ProductHunt, now, report, nil)
	if p.sources.Influencers && ctx.Err() == nil {
		influencer := source.Source{Name: "AI Influencers", Category: "trending", Kind: source.KindInfluencer}
		report.NewlyAdded += p.ingest(ctx, feed.InfluencerCandidates(), influencer, now, nil)
	}

	articles := p.store.Finalize(p.cfg.MaxArticles)
	report.Articles = articles
	report.TotalStored = len(articles)
	report.Elapsed = time.Since(start)

	saveErr := retry.Do(ctx, retry.Config{MaxAttempts: 3, Delay: 2 * time.Second, Backoff: true}, p.store.Save)
	if saveErr != nil {
		p.met.SetError(saveErr.Error())
		p.log.Error("store persistence failed", "error", saveErr)
		return report, saveErr
	}

	if p.cfg.TranslateEnabled {
		p.translatePass(ctx, articles)
	}

	p.met.RecordRun(report.Elapsed)
	p.log.Info("run complete",
		"total", report.TotalStored,
		"new", report.NewlyAdded,
		"failed_sources", report.SourcesFailed,
		"elapsed", report.Elapsed)
	return report, nil
}

// runPhase walks one group of sources sequentially, tolerating per-source
// failures.
func (p *Pipeline) runPhase(ctx context.Context, ex Extractor, sources []source.Source, now time.Time, report *Report, enrichBudget *int) {
	for _, src := range sources {
		if ctx.Err() != nil {
			p.log.Warn("run cancelled, persisting partial progress")
			return
		}

		candidates, err := ex.Extract(ctx, src)
		if err != nil {
			report.SourcesFailed++
			p.met.IncrementSourcesFailed()
			p.log.Warn("source unavailable", "source", src.URL, "error", err)
			continue
		}
		report.NewlyAdded += p.ingest(ctx, candidates, src, now, enrichBudget)
	}
}

// ingest feeds candidates through normalize -> recency gate -> store
// accept, returning how many were newly admitted.
func (p *Pipeline) ingest(ctx context.Context, candidates []article.Candidate, src source.Source, now time.Time, enrichBudget *int) int {
	p.met.AddExtracted(len(candidates))
	maxAge := time.Duration(p.cfg.MaxAgeHours) * time.Hour

	added := 0
	for _, c := range candidates {
		if p.cfg.RecencyFilter {
			// Strict policy: a candidate whose date never parsed is
			// rejected here, not silently treated as fresh.
			if !c.HasKnownDate() || !article.Recent(*c.Published, now, maxAge) {
				p.met.IncrementStale()
				continue
			}
		}

		if p.enricher != nil && enrichBudget != nil && *enrichBudget > 0 &&
			len(c.Summary) < p.cfg.EnrichMinSummary {
			if full, err := p.enricher.Extract(ctx, c.Link); err == nil && full != "" {
				c.Summary = full
				*enrichBudget--
			}
		}

		a := article.Normalize(c, src, now)
		if p.store.Accept(a) {
			p.met.IncrementAccepted()
			added++
			p.log.Debug("accepted", "title", a.Title, "source", a.Source)
		} else {
			p.met.IncrementDuplicates()
		}
	}
	return added
}

// translatePass warms the translation cache for the rendering side. Purely
// best-effort; articles themselves are never mutated.
func (p *Pipeline) translatePass(ctx context.Context, articles []article.Article) {
	tr := translate.New(p.cfg.TranslateCachePath)
	if err := tr.LoadCache(); err != nil {
		p.log.Warn("translation cache unreadable, starting fresh", "error", err)
	}
	for _, a := range articles {
		if ctx.Err() != nil {
			break
		}
		tr.Translate(ctx, a.Description, "en", p.cfg.TranslateTarget)
	}
	if err := tr.SaveCache(); err != nil {
		p.log.Warn("translation cache not saved", "error", err)
	}
}
