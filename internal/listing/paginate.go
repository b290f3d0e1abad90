// Package listing walks category listing pages and hands article link
// candidates to the pipeline.
package listing

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/raynirmalya/mokshiri-scraper/internal/config"
	"github.com/raynirmalya/mokshiri-scraper/internal/types"
)

// nextLinkWords are anchor texts that usually point at the next (older)
// listing page.
var nextLinkWords = []string{"next", "older", "more", "다음", "이전"}

// NextPage resolves the URL of page pageNum+1 for a listing. Resolution
// order: a rel=next link, a recognizable next/older anchor, then the
// site's configured page pattern. Returns ErrNoNextPage when none apply.
func NextPage(doc *goquery.Document, base *url.URL, site *config.SiteConfig, pageNum int) (string, error) {
	if href, ok := doc.Find("link[rel='next'], a[rel='next']").First().Attr("href"); ok {
		if u := resolve(base, href); u != "" {
			return u, nil
		}
	}

	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.ToLower(strings.TrimSpace(sel.Text()))
		if text == "" || len(text) > 20 {
			return true
		}
		for _, w := range nextLinkWords {
			if strings.Contains(text, w) {
				if href, ok := sel.Attr("href"); ok {
					if u := resolve(base, href); u != "" {
						found = u
						return false
					}
				}
			}
		}
		return true
	})
	if found != "" {
		return found, nil
	}

	if site.PagePattern != "" {
		trimmed := strings.TrimRight(base.String(), "/")
		return fmt.Sprintf(site.PagePattern, trimmed, pageNum+1), nil
	}

	return "", types.ErrNoNextPage
}

func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(u)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	if abs.String() == base.String() {
		return ""
	}
	return abs.String()
}
