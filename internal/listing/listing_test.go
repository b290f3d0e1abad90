package listing

import (
	"bytes"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/raynirmalya/mokshiri-scraper/internal/config"
	"github.com/raynirmalya/mokshiri-scraper/internal/types"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(html)))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestNextPageRelNext(t *testing.T) {
	doc := parseDoc(t, `<html><head><link rel="next" href="/kpop/page/2/"></head><body></body></html>`)
	base, _ := url.Parse("https://testsite.com/kpop/")

	next, err := NextPage(doc, base, &config.SiteConfig{}, 1)
	if err != nil {
		t.Fatalf("next page: %v", err)
	}
	if next != "https://testsite.com/kpop/page/2/" {
		t.Errorf("next = %q", next)
	}
}

func TestNextPageAnchorText(t *testing.T) {
	doc := parseDoc(t, `<html><body>
<a href="/kpop/">Current</a>
<a href="/kpop/page/2/">Older posts</a>
</body></html>`)
	base, _ := url.Parse("https://testsite.com/kpop/")

	next, err := NextPage(doc, base, &config.SiteConfig{}, 1)
	if err != nil {
		t.Fatalf("next page: %v", err)
	}
	if next != "https://testsite.com/kpop/page/2/" {
		t.Errorf("next = %q", next)
	}
}

func TestNextPagePattern(t *testing.T) {
	doc := parseDoc(t, `<html><body><p>no pagination markup</p></body></html>`)
	base, _ := url.Parse("https://testsite.com/kpop/")
	site := &config.SiteConfig{PagePattern: "%s/page/%d/"}

	next, err := NextPage(doc, base, site, 1)
	if err != nil {
		t.Fatalf("next page: %v", err)
	}
	if next != "https://testsite.com/kpop/page/2/" {
		t.Errorf("next = %q", next)
	}
}

func TestNextPageExhausted(t *testing.T) {
	doc := parseDoc(t, `<html><body><p>nothing here</p></body></html>`)
	base, _ := url.Parse("https://testsite.com/kpop/")

	_, err := NextPage(doc, base, &config.SiteConfig{}, 1)
	if !errors.Is(err, types.ErrNoNextPage) {
		t.Fatalf("expected ErrNoNextPage, got %v", err)
	}
}

func TestWriteDebugHTML(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteDebugHTML(dir, "https://testsite.com/kpop/?page=1", []byte("<html></html>"))
	if err != nil {
		t.Fatalf("write debug: %v", err)
	}

	name := filepath.Base(path)
	if !strings.HasPrefix(name, "listing_debug_") || !strings.HasSuffix(name, ".html") {
		t.Errorf("unexpected debug file name %q", name)
	}
	if strings.ContainsAny(name, ":/?=") {
		t.Errorf("unsafe characters in %q", name)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "<html></html>" {
		t.Errorf("content mismatch: %q", data)
	}
}

func TestFeedCandidates(t *testing.T) {
	feed := `<?xml version="1.0"?>
<rss version="2.0"><channel>
<title>TestSite</title>
<item>
  <title>First story</title>
  <link>https://testsite.com/news/first-story/</link>
  <pubDate>Sat, 29 Aug 2026 09:00:00 GMT</pubDate>
</item>
<item>
  <title>Duplicate of first</title>
  <link>https://testsite.com/news/first-story/</link>
</item>
<item>
  <title>Second story</title>
  <link>https://testsite.com/news/second-story/</link>
</item>
</channel></rss>`

	items, err := FeedCandidates([]byte(feed))
	if err != nil {
		t.Fatalf("feed parse: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items after dedupe, got %d", len(items))
	}
	if items[0].AnchorText != "First story" {
		t.Errorf("anchor = %q", items[0].AnchorText)
	}
	if items[0].Published == nil {
		t.Error("expected parsed pubDate on first item")
	}
	if items[1].Published != nil {
		t.Error("second item has no pubDate, expected nil")
	}
}
