package classifier

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/raynirmalya/mokshiri-scraper/internal/config"
)

// Candidate is one article link found on a listing page.
type Candidate struct {
	URL        string
	AnchorText string
}

// hrefRe pulls href values out of raw HTML when DOM parsing finds nothing,
// e.g. markup mangled enough that anchors don't survive parsing.
var hrefRe = regexp.MustCompile(`href=["']([^"']+)["']`)

// Candidates collects article-link candidates from a parsed listing page.
// Links are resolved against base, filtered through the site's link rule,
// required to stay on the listing's host, and de-duplicated keeping the
// first (usually most prominent) anchor text.
func Candidates(doc *goquery.Document, base *url.URL, site *config.SiteConfig) []Candidate {
	rule := NewLinkRule(site.Link)
	seen := make(map[string]int)
	var out []Candidate

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		text := strings.TrimSpace(sel.Text())
		c, ok := normalize(href, text, base, rule, site.MinAnchorText)
		if !ok {
			return
		}
		if idx, dup := seen[c.URL]; dup {
			// Keep the longer anchor text for the same URL.
			if len(c.AnchorText) > len(out[idx].AnchorText) {
				out[idx].AnchorText = c.AnchorText
			}
			return
		}
		seen[c.URL] = len(out)
		out = append(out, c)
	})

	return out
}

// FallbackCandidates scans raw HTML with a regex when the DOM pass yielded
// nothing. Anchor text is unavailable on this path, so the minimum anchor
// length check is skipped.
func FallbackCandidates(html []byte, base *url.URL, site *config.SiteConfig) []Candidate {
	rule := NewLinkRule(site.Link)
	seen := make(map[string]bool)
	var out []Candidate

	for _, m := range hrefRe.FindAllSubmatch(html, -1) {
		c, ok := normalize(string(m[1]), "", base, rule, 0)
		if !ok || seen[c.URL] {
			continue
		}
		seen[c.URL] = true
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out
}

func normalize(href, text string, base *url.URL, rule *LinkRule, minAnchor int) (Candidate, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return Candidate{}, false
	}

	u, err := url.Parse(href)
	if err != nil {
		return Candidate{}, false
	}
	abs := base.ResolveReference(u)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return Candidate{}, false
	}
	if abs.Hostname() != base.Hostname() {
		return Candidate{}, false
	}
	abs.Fragment = ""

	if !rule.Match(abs) {
		return Candidate{}, false
	}
	if minAnchor > 0 && len([]rune(text)) < minAnchor {
		return Candidate{}, false
	}

	return Candidate{URL: abs.String(), AnchorText: text}, true
}
