package affiliate

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/raynirmalya/mokshiri-scraper/internal/config"
)

// AdmitadAuth exchanges client credentials for a bearer token and caches
// it until shortly before expiry.
type AdmitadAuth struct {
	http   *resty.Client
	cfg    *config.AffiliateConfig
	logger *slog.Logger

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewAdmitadAuth creates a token source for the Admitad API.
func NewAdmitadAuth(cfg *config.AffiliateConfig, logger *slog.Logger) *AdmitadAuth {
	return &AdmitadAuth{
		http:   resty.New().SetTimeout(30 * time.Second),
		cfg:    cfg,
		logger: logger.With("component", "admitad_auth"),
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	Error       string `json:"error_description"`
}

// Token returns a valid bearer token, refreshing when the cached one has
// less than a minute left.
func (a *AdmitadAuth) Token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && time.Until(a.expires) > time.Minute {
		return a.token, nil
	}

	basic := base64.StdEncoding.EncodeToString(
		[]byte(a.cfg.ClientID + ":" + a.cfg.ClientSecret))

	var parsed tokenResponse
	resp, err := a.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Basic "+basic).
		SetFormData(map[string]string{
			"grant_type": "client_credentials",
			"client_id":  a.cfg.ClientID,
			"scope":      "deeplink_generator",
		}).
		SetResult(&parsed).
		Post(a.cfg.OAuthTokenURL)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	if resp.IsError() || parsed.AccessToken == "" {
		return "", fmt.Errorf("token request: HTTP %d: %s", resp.StatusCode(), parsed.Error)
	}

	a.token = parsed.AccessToken
	a.expires = time.Now().Add(time.Duration(parsed.ExpiresIn) * time.Second)
	a.logger.Debug("admitad token refreshed", "expires_in", parsed.ExpiresIn)
	return a.token, nil
}

// AdmitadClient generates tracking deeplinks through the Admitad API
// using a bearer token from AdmitadAuth.
type AdmitadClient struct {
	auth   *AdmitadAuth
	http   *resty.Client
	cfg    *config.AffiliateConfig
	logger *slog.Logger
}

// NewAdmitadClient creates a deeplink client from configuration.
func NewAdmitadClient(cfg *config.AffiliateConfig, logger *slog.Logger) *AdmitadClient {
	return &AdmitadClient{
		auth:   NewAdmitadAuth(cfg, logger),
		http:   resty.New().SetBaseURL(cfg.OAuthAPIBase).SetTimeout(30 * time.Second),
		cfg:    cfg,
		logger: logger.With("component", "admitad"),
	}
}

// Deeplink converts a merchant URL into a tracking link. The API returns
// a JSON array of generated links; the first one wins. Any failure,
// token refresh included, passes the original URL through.
func (c *AdmitadClient) Deeplink(ctx context.Context, target string) string {
	token, err := c.auth.Token(ctx)
	if err != nil {
		c.logger.Warn("token unavailable, passing original URL through", "error", err)
		return target
	}

	var links []string
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParam("ulp", target).
		SetResult(&links).
		Get(fmt.Sprintf("/deeplink/%s/advcampaign/%s/", c.cfg.WebsiteID, c.cfg.CampaignID))
	if err != nil || resp.IsError() || len(links) == 0 || links[0] == "" {
		c.logger.Warn("deeplink failed, passing original URL through", "url", target)
		return target
	}
	return links[0]
}
