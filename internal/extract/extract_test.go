package extract

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/raynirmalya/mokshiri-scraper/internal/config"
	"github.com/raynirmalya/mokshiri-scraper/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const articleHTML = `<!DOCTYPE html>
<html>
<head>
  <title>IU Announces World Tour - TestSite</title>
  <meta property="og:title" content="IU Announces 2026 World Tour">
  <meta property="og:image" content="https://cdn.testsite.com/iu-tour.jpg">
  <meta property="article:published_time" content="%s">
  <meta name="author" content="Ji-woo Park">
</head>
<body>
  <article>
    <h1 class="entry-title">IU Announces 2026 World Tour</h1>
    <div class="entry-content">
      <p>Singer IU has announced the dates for her 2026 world tour, covering fifteen cities across Asia, Europe and North America.</p>
      <p>Ticket sales open next Friday through the usual vendors, with fan club presales starting two days earlier.</p>
      <p>ad</p>
    </div>
  </article>
</body>
</html>`

func makeResp(t *testing.T, rawURL, body string) *types.Response {
	t.Helper()
	req, err := types.NewRequest(rawURL)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	return &types.Response{
		Request:    req,
		StatusCode: 200,
		Body:       []byte(body),
	}
}

func testExtractor() *Extractor {
	site := &config.SiteConfig{Name: "testsite"}
	site.SiteDefaults()
	return New(site, time.UTC, testLogger)
}

func TestExtractFields(t *testing.T) {
	published := time.Now().UTC().Format(time.RFC3339)
	html := fmt.Sprintf(articleHTML, published)
	resp := makeResp(t, "https://testsite.com/news/iu-world-tour/", html)

	article, err := testExtractor().Extract(resp, "kpop", "IU tour anchor")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if article.Title != "IU Announces 2026 World Tour" {
		t.Errorf("title = %q", article.Title)
	}
	if article.ImageURL != "https://cdn.testsite.com/iu-tour.jpg" {
		t.Errorf("image_url = %q", article.ImageURL)
	}
	if article.Author != "Ji-woo Park" {
		t.Errorf("author = %q", article.Author)
	}
	if article.Category != "kpop" {
		t.Errorf("category = %q", article.Category)
	}
	if article.Lang != "en" {
		t.Errorf("lang = %q", article.Lang)
	}
	if article.Published.IsZero() {
		t.Error("published date not parsed")
	}
	// The two-character "ad" paragraph must not leak into the body.
	if len(article.Summary) < 100 {
		t.Errorf("summary too short: %q", article.Summary)
	}
}

func TestExtractShortBodySkipped(t *testing.T) {
	html := `<html><head><meta property="article:published_time" content="2026-08-29T10:00:00Z"></head>
<body><h1>Short</h1><article><p>Too short to keep around honestly.</p></article></body></html>`
	resp := makeResp(t, "https://testsite.com/news/short/", html)

	_, err := testExtractor().Extract(resp, "news", "")
	if !errors.Is(err, types.ErrBodyTooShort) {
		t.Fatalf("expected ErrBodyTooShort, got %v", err)
	}
}

func TestExtractNoDateSkipped(t *testing.T) {
	html := `<html><body><h1>Dated Nothing</h1><article>
<p>This article body is comfortably long enough to pass the minimum body length gate applied to every page.</p>
</article></body></html>`
	resp := makeResp(t, "https://testsite.com/news/undated/", html)

	_, err := testExtractor().Extract(resp, "news", "")
	if !errors.Is(err, types.ErrNoPublishDate) {
		t.Fatalf("expected ErrNoPublishDate, got %v", err)
	}
}

func TestExtractNaiveDateTreatedAsUTC(t *testing.T) {
	html := `<html><head><meta property="article:published_time" content="2026-08-29 23:30:00"></head>
<body><h1>Late Post</h1><article>
<p>This article body is comfortably long enough to pass the minimum body length gate applied to every page.</p>
</article></body></html>`
	resp := makeResp(t, "https://testsite.com/news/late/", html)

	article, err := testExtractor().Extract(resp, "news", "")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := time.Date(2026, 8, 29, 23, 30, 0, 0, time.UTC)
	if !article.Published.Equal(want) {
		t.Errorf("published = %v, want %v", article.Published, want)
	}
}

func TestFresh(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	now := time.Date(2026, 8, 29, 1, 0, 0, 0, kolkata)

	if !Fresh(now.Add(-30*time.Minute), kolkata, now) {
		t.Error("same local date should be fresh")
	}
	if Fresh(now.Add(-2*time.Hour), kolkata, now) {
		t.Error("yesterday local date should be stale")
	}
	// 20:00 UTC Aug 28 is 01:30 Aug 29 in Kolkata.
	utcEvening := time.Date(2026, 8, 28, 20, 0, 0, 0, time.UTC)
	if !Fresh(utcEvening, kolkata, now) {
		t.Error("UTC timestamp on today's local date should be fresh")
	}
}

func TestXPathDateFallback(t *testing.T) {
	html := `<html><body><h1>Micro</h1>
<span itemprop="datePublished" content="2026-08-29T08:00:00Z"></span>
<article><p>This article body is comfortably long enough to pass the minimum body length gate applied to every page.</p></article>
</body></html>`
	resp := makeResp(t, "https://testsite.com/news/microdata/", html)

	article, err := testExtractor().Extract(resp, "news", "")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if article.Published.Day() != 29 {
		t.Errorf("published = %v", article.Published)
	}
}
