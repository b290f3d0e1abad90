package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// strategy extracts one field value from a document, returning "" on miss.
type strategy func(doc *goquery.Document) string

var titleStrategies = []strategy{
	meta("og:title"),
	meta("twitter:title"),
	text("h1.entry-title"),
	text("h1.post-title"),
	text("article h1"),
	text("h1"),
	func(doc *goquery.Document) string {
		t := strings.TrimSpace(doc.Find("title").First().Text())
		// Strip the site name from "Headline - Site" patterns.
		for _, sep := range []string{" | ", " - ", " – "} {
			if i := strings.LastIndex(t, sep); i > 0 {
				return strings.TrimSpace(t[:i])
			}
		}
		return t
	},
}

var bodyStrategies = []strategy{
	paragraphs("article .entry-content"),
	paragraphs(".entry-content"),
	paragraphs(".post-content"),
	paragraphs(".article-body"),
	paragraphs("article"),
	paragraphs("#content"),
	paragraphs("main"),
	paragraphs("body"),
}

var imageStrategies = []strategy{
	meta("og:image"),
	meta("twitter:image"),
	attr("article img", "src"),
	attr(".entry-content img", "src"),
	attr("link[rel='image_src']", "href"),
}

var authorStrategies = []strategy{
	metaName("author"),
	text("[rel='author']"),
	text(".author-name"),
	text(".byline"),
	text("a[href*='/author/']"),
}

var dateStrategies = []strategy{
	meta("article:published_time"),
	metaName("date"),
	metaName("pubdate"),
	attr("time[datetime]", "datetime"),
	text("time"),
	text(".entry-date"),
	text(".post-date"),
	text(".published"),
}

func meta(property string) strategy {
	return func(doc *goquery.Document) string {
		v, _ := doc.Find("meta[property='" + property + "']").First().Attr("content")
		return strings.TrimSpace(v)
	}
}

func metaName(name string) strategy {
	return func(doc *goquery.Document) string {
		v, _ := doc.Find("meta[name='" + name + "']").First().Attr("content")
		return strings.TrimSpace(v)
	}
}

func text(selector string) strategy {
	return func(doc *goquery.Document) string {
		return strings.TrimSpace(doc.Find(selector).First().Text())
	}
}

func attr(selector, name string) strategy {
	return func(doc *goquery.Document) string {
		v, _ := doc.Find(selector).First().Attr(name)
		return strings.TrimSpace(v)
	}
}

// paragraphs joins the <p> children under root, skipping boilerplate-short
// fragments.
func paragraphs(root string) strategy {
	return func(doc *goquery.Document) string {
		var parts []string
		doc.Find(root + " p").Each(func(_ int, sel *goquery.Selection) {
			t := strings.TrimSpace(sel.Text())
			if len([]rune(t)) >= 20 {
				parts = append(parts, t)
			}
		})
		return strings.Join(parts, "\n\n")
	}
}
