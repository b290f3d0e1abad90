package publish

import (
	"strings"
	"unicode/utf8"

	"github.com/raynirmalya/mokshiri-scraper/internal/config"
	"github.com/raynirmalya/mokshiri-scraper/internal/types"
)

// BuildCaption assembles an Instagram caption: headline, a trimmed
// summary teaser, the article URL on the site, and the configured
// hashtags.
func BuildCaption(a *types.Article, cfg *config.InstagramConfig, maxSummaryChars int) string {
	var b strings.Builder

	b.WriteString(a.Title)
	b.WriteString("\n\n")

	if teaser := trimToWord(a.Summary, maxSummaryChars); teaser != "" {
		b.WriteString(teaser)
		b.WriteString("…\n\n")
	}

	if cfg.SiteBase != "" {
		b.WriteString("Read more: ")
		b.WriteString(strings.TrimRight(cfg.SiteBase, "/"))
		b.WriteString("/article/")
		b.WriteString(a.UUID.String())
		b.WriteString("\n\n")
	}

	if len(cfg.Hashtags) > 0 {
		b.WriteString(strings.Join(cfg.Hashtags, " "))
	}

	return strings.TrimSpace(b.String())
}

// trimToWord cuts s to at most max runes, backing up to the previous
// word boundary so the teaser never ends mid-word.
func trimToWord(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}

	runes := []rune(s)
	cut := string(runes[:max])
	if i := strings.LastIndexAny(cut, " \t\n"); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}
