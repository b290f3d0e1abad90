// Package pipeline orchestrates a scrape run: walk each site's listing
// pages, pick out article links, extract and rewrite fresh articles, and
// upsert them. One failed page or article never stops the run; failures
// are logged, counted, and skipped.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/raynirmalya/mokshiri-scraper/internal/classifier"
	"github.com/raynirmalya/mokshiri-scraper/internal/config"
	"github.com/raynirmalya/mokshiri-scraper/internal/extract"
	"github.com/raynirmalya/mokshiri-scraper/internal/fetcher"
	"github.com/raynirmalya/mokshiri-scraper/internal/listing"
	"github.com/raynirmalya/mokshiri-scraper/internal/rewrite"
	"github.com/raynirmalya/mokshiri-scraper/internal/store"
	"github.com/raynirmalya/mokshiri-scraper/internal/types"
)

// ArticleUpserter is the slice of the repository the runner needs.
type ArticleUpserter interface {
	Upsert(ctx context.Context, a *types.Article) (store.UpsertOutcome, error)
}

// Snapshotter mirrors a run's articles to disk.
type Snapshotter interface {
	Merge(site string, articles []types.Article) error
}

// Runner executes one scrape run over the configured sites.
type Runner struct {
	cfg      *config.Config
	http     fetcher.Fetcher
	browser  fetcher.Fetcher // nil unless some site needs rendering
	repo     ArticleUpserter
	rewriter rewrite.Rewriter
	snapshot Snapshotter
	limiter  *rate.Limiter
	loc      *time.Location
	logger   *slog.Logger

	// DryRun extracts and logs but skips upserts and snapshots.
	DryRun bool
}

// NewRunner wires a scrape runner. browser may be nil when no site uses
// browser listings.
func NewRunner(
	cfg *config.Config,
	http, browser fetcher.Fetcher,
	repo ArticleUpserter,
	rewriter rewrite.Rewriter,
	snapshot Snapshotter,
	loc *time.Location,
	logger *slog.Logger,
) *Runner {
	delay := cfg.Scrape.PolitenessDelay
	if delay <= 0 {
		delay = time.Second
	}
	return &Runner{
		cfg:      cfg,
		http:     http,
		browser:  browser,
		repo:     repo,
		rewriter: rewriter,
		snapshot: snapshot,
		limiter:  rate.NewLimiter(rate.Every(delay), 1),
		loc:      loc,
		logger:   logger.With("component", "runner"),
	}
}

// Run scrapes every configured site and returns aggregate stats.
func (r *Runner) Run(ctx context.Context) (*Stats, error) {
	stats := &Stats{Started: time.Now()}

	for i := range r.cfg.Scrape.Sites {
		site := &r.cfg.Scrape.Sites[i]
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		r.runSite(ctx, site, stats)
	}

	stats.Finished = time.Now()
	r.logger.Info("scrape run finished", stats.LogArgs()...)
	return stats, nil
}

func (r *Runner) runSite(ctx context.Context, site *config.SiteConfig, stats *Stats) {
	log := r.logger.With("site", site.Name)
	extractor := extract.New(site, r.loc, r.logger)
	seen := make(map[string]bool)
	var collected []types.Article

	for listingURL, category := range site.Listings {
		if ctx.Err() != nil {
			return
		}
		r.runCategory(ctx, site, extractor, listingURL, category, seen, &collected, stats)
	}

	if r.DryRun || len(collected) == 0 {
		return
	}
	if err := r.snapshot.Merge(site.Name, collected); err != nil {
		log.Error("snapshot write failed", "error", err)
		stats.Errors++
	}
}

// runCategory paginates one category listing. Pagination errors end the
// category, not the site.
func (r *Runner) runCategory(
	ctx context.Context,
	site *config.SiteConfig,
	extractor *extract.Extractor,
	listingURL, category string,
	seen map[string]bool,
	collected *[]types.Article,
	stats *Stats,
) {
	log := r.logger.With("site", site.Name, "listing", listingURL, "category", category)
	pageURL := listingURL

	for page := 1; page <= site.MaxPages; page++ {
		resp, err := r.fetchListing(ctx, site, pageURL)
		if err != nil {
			log.Warn("listing fetch failed, ending category", "page", page, "error", err)
			stats.Errors++
			return
		}
		stats.PagesFetched++

		if site.ListingType == "feed" {
			r.processFeed(ctx, site, extractor, resp, category, seen, collected, stats, log)
			return // feeds carry everything on one "page"
		}

		base, err := url.Parse(resp.FinalURL)
		if err != nil {
			base = resp.Request.URL
		}
		doc, err := resp.Document()
		if err != nil {
			log.Warn("listing parse failed, ending category", "error", err)
			stats.Errors++
			return
		}

		candidates := classifier.Candidates(doc, base, site)
		if len(candidates) == 0 {
			candidates = classifier.FallbackCandidates(resp.Body, base, site)
		}
		if len(candidates) == 0 {
			if path, err := listing.WriteDebugHTML(r.cfg.Scrape.DebugDir, pageURL, resp.Body); err == nil {
				log.Warn("no article links found, debug HTML saved", "path", path)
			} else {
				log.Warn("no article links found", "debug_error", err)
			}
			return
		}
		stats.CandidatesFound += len(candidates)

		for _, c := range candidates {
			if ctx.Err() != nil {
				return
			}
			if seen[c.URL] {
				continue
			}
			seen[c.URL] = true
			r.processArticle(ctx, site, extractor, c, category, collected, stats, log)
		}

		next, err := listing.NextPage(doc, base, site, page)
		if err != nil {
			if !errors.Is(err, types.ErrNoNextPage) {
				log.Warn("next page resolution failed", "error", err)
			}
			return
		}
		pageURL = next
	}
}

func (r *Runner) processFeed(
	ctx context.Context,
	site *config.SiteConfig,
	extractor *extract.Extractor,
	resp *types.Response,
	category string,
	seen map[string]bool,
	collected *[]types.Article,
	stats *Stats,
	log *slog.Logger,
) {
	items, err := listing.FeedCandidates(resp.Body)
	if err != nil {
		log.Warn("feed parse failed", "error", err)
		stats.Errors++
		return
	}
	stats.CandidatesFound += len(items)

	now := time.Now()
	for _, item := range items {
		if ctx.Err() != nil {
			return
		}
		if seen[item.URL] {
			continue
		}
		seen[item.URL] = true

		// The feed already tells us the publish time; skip stale
		// entries before spending a fetch on them.
		if item.Published != nil && !extract.Fresh(*item.Published, r.loc, now) {
			stats.SkippedStale++
			continue
		}
		r.processArticle(ctx, site, extractor, item.Candidate, category, collected, stats, log)
	}
}

// processArticle fetches, extracts, gates, rewrites and stores one
// article. All failures are counted and swallowed.
func (r *Runner) processArticle(
	ctx context.Context,
	site *config.SiteConfig,
	extractor *extract.Extractor,
	c classifier.Candidate,
	category string,
	collected *[]types.Article,
	stats *Stats,
	log *slog.Logger,
) {
	if err := r.limiter.Wait(ctx); err != nil {
		return
	}

	req, err := types.NewRequest(c.URL)
	if err != nil {
		stats.Errors++
		return
	}
	req.Tag = "article"

	resp, err := r.http.Fetch(ctx, req)
	if err != nil {
		log.Warn("article fetch failed", "url", c.URL, "error", err)
		stats.Errors++
		return
	}
	if !resp.IsSuccess() {
		log.Warn("article fetch non-2xx", "url", c.URL, "status", resp.StatusCode)
		stats.Errors++
		return
	}

	if site.KeywordCategories {
		category = classifier.KeywordCategory(c.AnchorText, category)
	}

	article, err := extractor.Extract(resp, category, c.AnchorText)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrBodyTooShort):
			stats.SkippedShort++
		case errors.Is(err, types.ErrNoPublishDate):
			stats.SkippedNoDate++
		default:
			log.Warn("extraction failed", "url", c.URL, "error", err)
			stats.Errors++
		}
		return
	}
	stats.Extracted++

	if !extract.Fresh(article.Published, r.loc, time.Now()) {
		stats.SkippedStale++
		return
	}

	result := r.rewriter.Rewrite(ctx, article.Title, article.Summary)
	article.Title = result.Title
	article.Summary = result.Summary
	article.Clamp()
	if result.Rewritten {
		stats.Rewritten++
	}

	if r.DryRun {
		log.Info("dry run, not storing", "url", c.URL, "title", article.Title)
		return
	}

	outcome, err := r.repo.Upsert(ctx, article)
	if err != nil {
		log.Error("upsert failed", "url", c.URL, "error", err)
		stats.Errors++
		return
	}
	if outcome.Inserted {
		stats.Inserted++
	} else {
		stats.Updated++
	}
	*collected = append(*collected, *article)

	log.Info("article stored",
		"url", c.URL, "category", article.Category,
		"inserted", outcome.Inserted, "rewritten", result.Rewritten)
}

// fetchListing picks the right fetcher for the site's listing type.
func (r *Runner) fetchListing(ctx context.Context, site *config.SiteConfig, pageURL string) (*types.Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := types.NewRequest(pageURL)
	if err != nil {
		return nil, err
	}
	req.Tag = "listing"

	f := r.http
	if site.ListingType == "browser" && r.browser != nil {
		f = r.browser
		req.FetcherType = "browser"
	}

	resp, err := f.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &types.FetchError{URL: pageURL, StatusCode: resp.StatusCode,
			Err: errors.New("listing fetch non-2xx")}
	}
	return resp, nil
}
