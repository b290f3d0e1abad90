package types

import (
	"time"

	"github.com/google/uuid"
)

// Column width limits enforced before upsert, matching the articles schema.
const (
	MaxCategoryLen = 50
	MaxTitleLen    = 500
	MaxLinkLen     = 1000
	MaxImageURLLen = 1000
	MaxAuthorLen   = 255
)

// Article is the single persistent entity of the system. One row per
// (link, lang); the English original is created by a scraper and the
// translated variants are inserted later by the translation batch job.
type Article struct {
	ID        int64     `json:"id,omitempty"`
	Category  string    `json:"category"`
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Summary   string    `json:"summary"`
	ImageURL  string    `json:"image_url"`
	ImageName string    `json:"image_name,omitempty"`
	Author    string    `json:"author"`
	Published time.Time `json:"published"`

	// Lang is an ISO 639-1 code; scrapers always produce "en".
	Lang        string `json:"lang"`
	IsPublished bool   `json:"is_published"`

	// Engagement metadata, defaulted on insert and never computed here.
	Views             int        `json:"views"`
	IsFeatured        bool       `json:"is_featured"`
	FeaturedRank      *int       `json:"featured_rank,omitempty"`
	TrendScore        float64    `json:"trend_score"`
	LastMetricsUpdate *time.Time `json:"last_metrics_update,omitempty"`

	// PostedAt is set once the article has gone out on social media.
	PostedAt *time.Time `json:"posted_at,omitempty"`

	UUID uuid.UUID `json:"uuid"`
}

// NewArticle creates an English-language article with a fresh UUID and
// engagement fields at their insert defaults.
func NewArticle(category, link string) *Article {
	return &Article{
		Category: category,
		Link:     link,
		Lang:     "en",
		UUID:     uuid.New(),
	}
}

// Clamp truncates fields that exceed their column widths. The summary
// column is TEXT and is left alone.
func (a *Article) Clamp() {
	a.Category = truncate(a.Category, MaxCategoryLen)
	a.Title = truncate(a.Title, MaxTitleLen)
	a.Link = truncate(a.Link, MaxLinkLen)
	a.ImageURL = truncate(a.ImageURL, MaxImageURLLen)
	a.Author = truncate(a.Author, MaxAuthorLen)
}

// TranslatedCopy returns a variant row for lang carrying the translated
// title and summary. It shares the original's link and image_name but gets
// its own UUID and starts unpublished.
func (a *Article) TranslatedCopy(lang, title, summary string) *Article {
	cp := *a
	cp.ID = 0
	cp.Lang = lang
	cp.Title = title
	cp.Summary = summary
	cp.IsPublished = false
	cp.UUID = uuid.New()
	return &cp
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// Cut on a rune boundary so multibyte titles stay valid UTF-8.
	for n > 0 && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}
