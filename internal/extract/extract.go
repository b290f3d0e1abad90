// Package extract pulls article fields out of fetched pages. Each field
// runs through an ordered list of strategies; the first non-empty result
// wins. Site-configured CSS selectors always run before the generic
// strategies.
package extract

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/raynirmalya/mokshiri-scraper/internal/config"
	"github.com/raynirmalya/mokshiri-scraper/internal/types"
)

// Extractor builds Articles from responses for one site.
type Extractor struct {
	site   *config.SiteConfig
	loc    *time.Location
	logger *slog.Logger
}

// New creates an Extractor for the given site. loc is the timezone used
// for the freshness check.
func New(site *config.SiteConfig, loc *time.Location, logger *slog.Logger) *Extractor {
	return &Extractor{
		site:   site,
		loc:    loc,
		logger: logger.With("component", "extractor", "site", site.Name),
	}
}

// Extract parses an article page into an Article. The anchor text from
// the listing serves as a title fallback. Returns ErrBodyTooShort or
// ErrNoPublishDate (wrapped) when the page fails the quality gates.
func (e *Extractor) Extract(resp *types.Response, category, anchorText string) (*types.Article, error) {
	link := resp.Request.URLString()

	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ExtractError{URL: link, Field: "document", Err: err}
	}

	title := firstMatch(doc, e.site.TitleSelectors, titleStrategies)
	if title == "" {
		title = anchorText
	}
	if title == "" {
		return nil, &types.ExtractError{URL: link, Field: "title", Err: fmt.Errorf("no title found")}
	}

	body := firstMatch(doc, e.site.BodySelectors, bodyStrategies)
	if utf8.RuneCountInString(body) < e.site.MinBodyLen {
		return nil, &types.ExtractError{URL: link, Field: "body", Err: types.ErrBodyTooShort}
	}

	published, err := e.publishDate(doc, resp.Body)
	if err != nil {
		return nil, &types.ExtractError{URL: link, Field: "date", Err: err}
	}

	article := types.NewArticle(category, link)
	article.Title = collapseSpace(title)
	article.Summary = body
	article.ImageURL = firstMatch(doc, e.site.ImageSelectors, imageStrategies)
	article.Author = collapseSpace(firstMatch(doc, e.site.AuthorSelectors, authorStrategies))
	article.Published = published
	article.Clamp()

	return article, nil
}

// Fresh reports whether published falls on today's calendar date in loc.
func Fresh(published time.Time, loc *time.Location, now time.Time) bool {
	py, pm, pd := published.In(loc).Date()
	ny, nm, nd := now.In(loc).Date()
	return py == ny && pm == nm && pd == nd
}

// firstMatch runs the configured selectors, then the generic strategies,
// returning the first non-empty value.
func firstMatch(doc *goquery.Document, selectors []string, generic []strategy) string {
	for _, sel := range selectors {
		if v := selectorValue(doc, sel); v != "" {
			return v
		}
	}
	for _, s := range generic {
		if v := s(doc); v != "" {
			return v
		}
	}
	return ""
}

// selectorValue evaluates one CSS selector, picking the natural value for
// the matched element: content for meta, datetime for time, src for img,
// trimmed text otherwise.
func selectorValue(doc *goquery.Document, selector string) string {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return ""
	}
	switch goquery.NodeName(sel) {
	case "meta":
		v, _ := sel.Attr("content")
		return strings.TrimSpace(v)
	case "time":
		if v, ok := sel.Attr("datetime"); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return strings.TrimSpace(sel.Text())
	case "img":
		v, _ := sel.Attr("src")
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(sel.Text())
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
