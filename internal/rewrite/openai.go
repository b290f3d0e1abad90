package rewrite

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/raynirmalya/mokshiri-scraper/internal/config"
)

const systemPrompt = "You rewrite entertainment news for a Korea-focused " +
	"lifestyle site. Rephrase the given headline and article into fresh, " +
	"engaging English without changing facts. Respond with a JSON object " +
	`{"title": "...", "summary": "..."} and nothing else.`

// OpenAI rewrites text through an OpenAI-compatible chat completions API.
type OpenAI struct {
	client *resty.Client
	cfg    *config.RewriteConfig
	logger *slog.Logger
}

// NewOpenAI creates a rewriter against cfg.Endpoint.
func NewOpenAI(cfg *config.RewriteConfig, logger *slog.Logger) *OpenAI {
	client := resty.New().
		SetBaseURL(cfg.Endpoint).
		SetAuthToken(cfg.APIKey).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	return &OpenAI{
		client: client,
		cfg:    cfg,
		logger: logger.With("component", "rewriter"),
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Rewrite sends the article for rephrasing. Any failure (transport,
// API error, unparseable reply) returns the original text.
func (o *OpenAI) Rewrite(ctx context.Context, title, body string) Result {
	identity := Result{Title: title, Summary: body}

	req := chatRequest{
		Model: o.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Headline: %s\n\nArticle:\n%s", title, body)},
		},
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: o.cfg.Temperature,
	}

	var parsed chatResponse
	resp, err := o.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&parsed).
		Post("/chat/completions")
	if err != nil {
		o.logger.Warn("rewrite request failed, keeping original", "error", err)
		return identity
	}
	if resp.IsError() {
		o.logger.Warn("rewrite API error, keeping original",
			"status", resp.StatusCode(), "body", truncate(resp.String(), 200))
		return identity
	}
	if parsed.Error != nil {
		o.logger.Warn("rewrite API error, keeping original", "message", parsed.Error.Message)
		return identity
	}
	if len(parsed.Choices) == 0 {
		o.logger.Warn("rewrite returned no choices, keeping original")
		return identity
	}

	newTitle, newSummary, ok := extractJSON(parsed.Choices[0].Message.Content)
	if !ok || newTitle == "" || newSummary == "" {
		o.logger.Warn("rewrite reply not parseable, keeping original")
		return identity
	}

	return Result{Title: newTitle, Summary: newSummary, Rewritten: true}
}

// extractJSON pulls the {"title","summary"} object out of the model
// reply, tolerating code fences and prose around it.
func extractJSON(content string) (title, summary string, ok bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return "", "", false
	}

	var out struct {
		Title   string `json:"title"`
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &out); err != nil {
		return "", "", false
	}
	return strings.TrimSpace(out.Title), strings.TrimSpace(out.Summary), true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
