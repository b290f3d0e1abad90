package affiliate

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/raynirmalya/mokshiri-scraper/internal/config"
)

// Stats summarizes one offers run.
type Stats struct {
	Fetched  int
	Kept     int
	Deeplink int
}

// Deeplinker converts a merchant URL into a tracking link, passing the
// original through on failure.
type Deeplinker interface {
	Deeplink(ctx context.Context, target string) string
}

// Job fetches current offers, keeps the ones relevant to the site's
// keywords and time window, attaches tracking deeplinks, and writes
// JSON and CSV artifacts under outDir.
type Job struct {
	client *CuelinksClient
	links  Deeplinker
	cfg    *config.AffiliateConfig
	outDir string
	logger *slog.Logger
}

// NewJob wires the affiliate offers job. A nil links falls back to the
// Cuelinks client itself.
func NewJob(client *CuelinksClient, links Deeplinker, cfg *config.AffiliateConfig, outDir string, logger *slog.Logger) *Job {
	if links == nil {
		links = client
	}
	return &Job{
		client: client,
		links:  links,
		cfg:    cfg,
		outDir: outDir,
		logger: logger.With("component", "affiliate_job"),
	}
}

// Run fetches, filters, deeplinks, and writes artifacts.
func (j *Job) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	offers, err := j.client.Offers(ctx)
	if err != nil {
		return stats, err
	}
	stats.Fetched = len(offers)

	now := time.Now()
	kept := filterOffers(offers, j.cfg.Keywords, now, j.cfg.WindowDays)
	stats.Kept = len(kept)

	for i := range kept {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		link := j.links.Deeplink(ctx, kept[i].URL)
		if link != kept[i].URL {
			stats.Deeplink++
		}
		kept[i].Deeplink = link
	}

	if err := j.writeArtifacts(kept, now); err != nil {
		return stats, err
	}

	j.logger.Info("offers run finished",
		"fetched", stats.Fetched, "kept", stats.Kept, "deeplinked", stats.Deeplink)
	return stats, nil
}

// filterOffers keeps offers matching any keyword (title, description or
// merchant) that are active inside the window: already started, and not
// ending more than windowDays out or already over.
func filterOffers(offers []Offer, keywords []string, now time.Time, windowDays int) []Offer {
	windowEnd := now.AddDate(0, 0, windowDays)

	var out []Offer
	for _, o := range offers {
		if !o.StartsAt.IsZero() && o.StartsAt.After(now) {
			continue
		}
		if !o.EndsAt.IsZero() && (o.EndsAt.Before(now) || o.EndsAt.After(windowEnd)) {
			continue
		}
		if len(keywords) > 0 && !matchesKeyword(o, keywords) {
			continue
		}
		out = append(out, o)
	}
	return out
}

func matchesKeyword(o Offer, keywords []string) bool {
	haystack := strings.ToLower(o.Title + " " + o.Description + " " + o.Merchant)
	for _, kw := range keywords {
		if strings.Contains(haystack, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func (j *Job) writeArtifacts(offers []Offer, now time.Time) error {
	if err := os.MkdirAll(j.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	stamp := now.Format("2006-01-02")

	jsonPath := filepath.Join(j.outDir, "offers_"+stamp+".json")
	data, err := json.MarshalIndent(offers, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal offers: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return fmt.Errorf("write offers json: %w", err)
	}

	csvPath := filepath.Join(j.outDir, "offers_"+stamp+".csv")
	f, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("create offers csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "merchant", "title", "coupon_code", "ends_at", "deeplink"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, o := range offers {
		ends := ""
		if !o.EndsAt.IsZero() {
			ends = o.EndsAt.Format("2006-01-02")
		}
		row := []string{fmt.Sprint(o.ID), o.Merchant, o.Title, o.CouponCode, ends, o.Deeplink}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	j.logger.Info("artifacts written", "json", jsonPath, "csv", csvPath, "offers", len(offers))
	return nil
}
