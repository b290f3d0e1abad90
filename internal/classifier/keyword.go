package classifier

import "strings"

// categoryKeywords maps a category to the title keywords that signal it.
// Order matters: earlier categories win when keywords from several match.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"kdrama", []string{"drama", "kdrama", "k-drama", "netflix", "series", "episode", "actor", "actress"}},
	{"kpop", []string{"kpop", "k-pop", "idol", "comeback", "album", "mv", "bts", "blackpink", "concert", "debut"}},
	{"fashion", []string{"fashion", "style", "outfit", "wear", "look", "trend", "collection"}},
	{"beauty", []string{"beauty", "skincare", "makeup", "glass skin", "cosmetic", "serum"}},
	{"food", []string{"food", "recipe", "dish", "restaurant", "snack", "cuisine", "ramyeon", "kimchi"}},
	{"travel", []string{"travel", "seoul", "busan", "jeju", "itinerary", "visa", "trip"}},
	{"webtoon", []string{"webtoon", "manhwa", "comic"}},
}

// KeywordCategory guesses a category from the article title. Returns
// fallback when no keyword matches.
func KeywordCategory(title, fallback string) string {
	lower := strings.ToLower(title)
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.category
			}
		}
	}
	return fallback
}
