// Package classifier decides which anchors on a listing page point to
// articles, and which category an article belongs to.
package classifier

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/raynirmalya/mokshiri-scraper/internal/config"
)

var yearPathRe = regexp.MustCompile(`/20\d{2}/`)

// LinkRule holds the compiled per-site article-link heuristics.
type LinkRule struct {
	articlePaths []string
	reject       []string
	minSlugLen   int
	allowYear    bool
	allowQueryID bool
}

// NewLinkRule compiles a rule from site configuration.
func NewLinkRule(cfg config.LinkRuleConfig) *LinkRule {
	return &LinkRule{
		articlePaths: cfg.ArticlePaths,
		reject:       cfg.Reject,
		minSlugLen:   cfg.MinSlugLen,
		allowYear:    cfg.AllowYear,
		allowQueryID: cfg.AllowQueryID,
	}
}

// Match reports whether u looks like an article URL for this site.
// An anchor qualifies when any positive signal fires and no reject
// pattern matches:
//   - its path contains a configured article path segment
//   - its path contains a /YYYY/ year segment (when enabled)
//   - its last path segment is a hyphenated slug of minimum length
//   - its query string carries a numeric id parameter (when enabled)
func (r *LinkRule) Match(u *url.URL) bool {
	if u == nil || u.Path == "" || u.Path == "/" {
		return false
	}

	lower := strings.ToLower(u.Path)
	for _, rej := range r.reject {
		if strings.Contains(lower, strings.ToLower(rej)) {
			return false
		}
	}

	for _, p := range r.articlePaths {
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}

	if r.allowYear && yearPathRe.MatchString(u.Path) {
		return true
	}

	if slug := lastSegment(u.Path); strings.Contains(slug, "-") && len(slug) >= r.minSlugLen {
		return true
	}

	if r.allowQueryID && hasNumericID(u.Query()) {
		return true
	}

	return false
}

func lastSegment(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return ""
	}
	parts := strings.Split(trimmed, "/")
	return parts[len(parts)-1]
}

// hasNumericID reports whether any common id-style query parameter holds
// a purely numeric value.
func hasNumericID(q url.Values) bool {
	for _, key := range []string{"id", "no", "idx", "aid", "seq", "num"} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		numeric := true
		for _, c := range v {
			if c < '0' || c > '9' {
				numeric = false
				break
			}
		}
		if numeric {
			return true
		}
	}
	return false
}
