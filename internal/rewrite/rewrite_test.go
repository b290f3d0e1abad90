package rewrite

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/raynirmalya/mokshiri-scraper/internal/config"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func testCfg(endpoint string) *config.RewriteConfig {
	return &config.RewriteConfig{
		Provider: "openai",
		Endpoint: endpoint,
		Model:    "test-model",
		APIKey:   "test-key",
		Timeout:  5 * time.Second,
	}
}

func chatHandler(content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"choices":[{"message":{"content":%q}}]}`, content)
	}
}

func TestOpenAIRewrite(t *testing.T) {
	srv := httptest.NewServer(chatHandler(`{"title": "Fresh Title", "summary": "Fresh summary text."}`))
	defer srv.Close()

	r := NewOpenAI(testCfg(srv.URL), testLogger)
	got := r.Rewrite(context.Background(), "Old Title", "Old body.")

	if !got.Rewritten {
		t.Fatal("expected Rewritten=true")
	}
	if got.Title != "Fresh Title" || got.Summary != "Fresh summary text." {
		t.Errorf("got %+v", got)
	}
}

func TestOpenAIRewriteFencedJSON(t *testing.T) {
	fenced := "Here you go:\n```json\n{\"title\": \"Fenced\", \"summary\": \"Still parsed.\"}\n```"
	srv := httptest.NewServer(chatHandler(fenced))
	defer srv.Close()

	r := NewOpenAI(testCfg(srv.URL), testLogger)
	got := r.Rewrite(context.Background(), "Old", "Body")

	if !got.Rewritten || got.Title != "Fenced" {
		t.Errorf("got %+v", got)
	}
}

func TestOpenAIRewriteFallsBackOnGarbage(t *testing.T) {
	srv := httptest.NewServer(chatHandler("I cannot help with that."))
	defer srv.Close()

	r := NewOpenAI(testCfg(srv.URL), testLogger)
	got := r.Rewrite(context.Background(), "Keep Me", "And me.")

	if got.Rewritten {
		t.Fatal("expected fallback to original")
	}
	if got.Title != "Keep Me" || got.Summary != "And me." {
		t.Errorf("got %+v", got)
	}
}

func TestOpenAIRewriteFallsBackOnHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	r := NewOpenAI(testCfg(srv.URL), testLogger)
	got := r.Rewrite(context.Background(), "Keep Me", "And me.")

	if got.Rewritten || got.Title != "Keep Me" {
		t.Errorf("got %+v", got)
	}
}

func TestFromConfig(t *testing.T) {
	if _, ok := FromConfig(&config.RewriteConfig{Provider: "none"}, testLogger).(Identity); !ok {
		t.Error("provider none should yield Identity")
	}
	if _, ok := FromConfig(&config.RewriteConfig{Provider: "openai"}, testLogger).(*OpenAI); !ok {
		t.Error("provider openai should yield OpenAI")
	}
}
