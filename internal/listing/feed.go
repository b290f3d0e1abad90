package listing

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/raynirmalya/mokshiri-scraper/internal/classifier"
)

// FeedItem is one entry discovered through an RSS or Atom feed.
type FeedItem struct {
	classifier.Candidate
	Published *time.Time
}

// FeedCandidates parses an RSS/Atom feed body into link candidates. The
// feed's own publish timestamps are carried along so the freshness check
// can skip stale entries before their pages are fetched.
func FeedCandidates(body []byte) ([]FeedItem, error) {
	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	seen := make(map[string]bool)
	items := make([]FeedItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		link := strings.TrimSpace(it.Link)
		if link == "" || seen[link] {
			continue
		}
		seen[link] = true
		items = append(items, FeedItem{
			Candidate: classifier.Candidate{
				URL:        link,
				AnchorText: strings.TrimSpace(it.Title),
			},
			Published: it.PublishedParsed,
		})
	}
	return items, nil
}
