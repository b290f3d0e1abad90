package extract

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/araddon/dateparse"

	"github.com/raynirmalya/mokshiri-scraper/internal/types"
)

// xpathDateExprs are the microdata locations checked when neither the
// configured selectors nor the generic CSS strategies find a date.
var xpathDateExprs = []string{
	"//*[@itemprop='datePublished']/@content",
	"//*[@itemprop='datePublished']/@datetime",
	"//abbr[contains(@class,'published')]/@title",
}

// publishDate finds and parses the article publish date. Values without
// timezone information are interpreted as UTC.
func (e *Extractor) publishDate(doc *goquery.Document, raw []byte) (time.Time, error) {
	value := firstMatch(doc, e.site.DateSelectors, dateStrategies)
	if value == "" {
		value = xpathDate(raw)
	}
	if value == "" {
		return time.Time{}, types.ErrNoPublishDate
	}

	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		e.logger.Debug("unparseable date", "value", value, "error", err)
		return time.Time{}, fmt.Errorf("%w: unparseable %q", types.ErrNoPublishDate, value)
	}
	return t, nil
}

func xpathDate(raw []byte) string {
	node, err := htmlquery.Parse(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	for _, expr := range xpathDateExprs {
		n, err := htmlquery.Query(node, expr)
		if err != nil || n == nil {
			continue
		}
		if v := strings.TrimSpace(htmlquery.InnerText(n)); v != "" {
			return v
		}
	}
	return ""
}
