// Package affiliate pulls shopping offers from affiliate networks,
// filters them for the site's audience, and writes link artifacts for
// the content team.
package affiliate

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/raynirmalya/mokshiri-scraper/internal/config"
)

// Offer is one campaign offer from the network.
type Offer struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Merchant    string    `json:"merchant"`
	URL         string    `json:"url"`
	CouponCode  string    `json:"coupon_code,omitempty"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Deeplink    string    `json:"deeplink,omitempty"`
}

// CuelinksClient talks to the Cuelinks offers and deeplink APIs.
type CuelinksClient struct {
	http   *resty.Client
	cfg    *config.AffiliateConfig
	logger *slog.Logger
}

// NewCuelinksClient creates a client from configuration.
func NewCuelinksClient(cfg *config.AffiliateConfig, logger *slog.Logger) *CuelinksClient {
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(30 * time.Second).
		SetHeader("Authorization", "Token token="+cfg.APIToken)

	return &CuelinksClient{
		http:   http,
		cfg:    cfg,
		logger: logger.With("component", "cuelinks"),
	}
}

type offersResponse struct {
	Offers []struct {
		ID          int64  `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Merchant    string `json:"merchant_name"`
		URL         string `json:"url"`
		CouponCode  string `json:"coupon_code"`
		StartDate   string `json:"start_date"`
		EndDate     string `json:"end_date"`
	} `json:"offers"`
}

// Offers pages through the offers API until a page comes back empty or
// cfg.MaxPages is hit.
func (c *CuelinksClient) Offers(ctx context.Context) ([]Offer, error) {
	var all []Offer

	for page := 1; page <= c.cfg.MaxPages; page++ {
		var parsed offersResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"page":     fmt.Sprint(page),
				"per_page": fmt.Sprint(c.cfg.PerPage),
			}).
			SetQueryParamsFromValues(c.filterParams()).
			SetResult(&parsed).
			Get("/api/v2/offers.json")
		if err != nil {
			return nil, fmt.Errorf("offers page %d: %w", page, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("offers page %d: HTTP %d", page, resp.StatusCode())
		}
		if len(parsed.Offers) == 0 {
			break
		}

		for _, o := range parsed.Offers {
			all = append(all, Offer{
				ID:          o.ID,
				Title:       o.Title,
				Description: o.Description,
				Merchant:    o.Merchant,
				URL:         o.URL,
				CouponCode:  o.CouponCode,
				StartsAt:    parseOfferDate(o.StartDate),
				EndsAt:      parseOfferDate(o.EndDate),
			})
		}
		c.logger.Debug("offers page fetched", "page", page, "count", len(parsed.Offers))
	}

	return all, nil
}

func (c *CuelinksClient) filterParams() url.Values {
	v := url.Values{}
	if c.cfg.Categories != "" {
		v.Set("category_ids", c.cfg.Categories)
	}
	if c.cfg.Campaigns != "" {
		v.Set("campaign_ids", c.cfg.Campaigns)
	}
	if c.cfg.OfferTypes != "" {
		v.Set("offer_types", c.cfg.OfferTypes)
	}
	return v
}

type deeplinkResponse struct {
	Link string `json:"link"`
	URL  string `json:"url"`
}

// Deeplink converts a merchant URL into a tracking link. On any API
// failure the original URL is returned, so a broken deeplink service
// degrades to untracked links rather than missing ones.
func (c *CuelinksClient) Deeplink(ctx context.Context, target string) string {
	var parsed deeplinkResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("url", target).
		SetQueryParam("channel_id", c.cfg.PublisherID).
		SetResult(&parsed).
		Get("/api/v2/deeplink.json")
	if err != nil || resp.IsError() {
		c.logger.Warn("deeplink failed, passing original URL through", "url", target)
		return target
	}

	if parsed.Link != "" {
		return parsed.Link
	}
	if parsed.URL != "" {
		return parsed.URL
	}
	return target
}

// parseOfferDate tolerates the couple of date shapes the offers API
// emits; zero time on failure.
func parseOfferDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
