// Package translate turns stored English articles into per-language
// variant rows through a machine translation API.
package translate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/raynirmalya/mokshiri-scraper/internal/config"
)

// Client calls a Lecto-style translation endpoint.
type Client struct {
	http   *resty.Client
	cfg    *config.TranslateConfig
	logger *slog.Logger
}

// NewClient creates a translation API client.
func NewClient(cfg *config.TranslateConfig, logger *slog.Logger) *Client {
	http := resty.New().
		SetTimeout(60 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-API-Key", cfg.APIKey)

	return &Client{
		http:   http,
		cfg:    cfg,
		logger: logger.With("component", "translate_client"),
	}
}

type apiRequest struct {
	Texts []string `json:"texts"`
	To    []string `json:"to"`
	From  string   `json:"from"`
}

// apiResponse tolerates the two response shapes seen in the wild: the
// documented {"translations": [...]} and the older {"data": [...]},
// with per-language texts under either "translated" or "texts".
type apiResponse struct {
	Translations []apiTranslation `json:"translations"`
	Data         []apiTranslation `json:"data"`
}

type apiTranslation struct {
	To         string   `json:"to"`
	Translated []string `json:"translated"`
	Texts      []string `json:"texts"`
}

func (t apiTranslation) texts() []string {
	if len(t.Translated) > 0 {
		return t.Translated
	}
	return t.Texts
}

// Translate sends texts for translation into targets. The result maps a
// language code to the translated texts in input order.
func (c *Client) Translate(ctx context.Context, texts, targets []string) (map[string][]string, error) {
	var parsed apiResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(apiRequest{Texts: texts, To: targets, From: "en"}).
		SetResult(&parsed).
		Post(c.cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("translate request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("translate API: HTTP %d", resp.StatusCode())
	}

	entries := parsed.Translations
	if len(entries) == 0 {
		entries = parsed.Data
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("translate API: empty response")
	}

	out := make(map[string][]string, len(entries))
	for _, e := range entries {
		got := e.texts()
		if e.To == "" || len(got) != len(texts) {
			c.logger.Warn("skipping malformed translation entry",
				"to", e.To, "want", len(texts), "got", len(got))
			continue
		}
		out[e.To] = got
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("translate API: no usable translations")
	}
	return out, nil
}
