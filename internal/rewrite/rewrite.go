// Package rewrite rephrases scraped headlines and bodies through an LLM
// provider. Rewriting is best-effort: any provider failure falls back to
// the original text so the pipeline never loses an article to it.
package rewrite

import (
	"context"
	"log/slog"

	"github.com/raynirmalya/mokshiri-scraper/internal/config"
)

// Result is the outcome of a rewrite attempt. Rewritten is false when
// the original text passed through unchanged.
type Result struct {
	Title     string
	Summary   string
	Rewritten bool
}

// Rewriter rephrases an article. Implementations must not fail the
// caller: on error they return the input unchanged.
type Rewriter interface {
	Rewrite(ctx context.Context, title, body string) Result
}

// Identity passes text through untouched. Used when no provider is
// configured.
type Identity struct{}

func (Identity) Rewrite(_ context.Context, title, body string) Result {
	return Result{Title: title, Summary: body}
}

// FromConfig builds the Rewriter selected by configuration.
func FromConfig(cfg *config.RewriteConfig, logger *slog.Logger) Rewriter {
	switch cfg.Provider {
	case "openai":
		return NewOpenAI(cfg, logger)
	default:
		return Identity{}
	}
}
