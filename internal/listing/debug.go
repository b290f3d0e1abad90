package listing

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteDebugHTML saves a listing page's HTML under dir so selector
// misses can be diagnosed offline. The listing URL is flattened into a
// filesystem-safe name. Returns the written path.
func WriteDebugHTML(dir, listingURL string, body []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create debug dir: %w", err)
	}
	name := fmt.Sprintf("listing_debug_%s.html", safeName(listingURL))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("write debug html: %w", err)
	}
	return path, nil
}

// safeName replaces every character outside [a-zA-Z0-9._-] with '_'.
func safeName(s string) string {
	var b strings.Builder
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '.', c == '_', c == '-':
			b.WriteRune(c)
		default:
			b.WriteByte('_')
		}
	}
	const maxLen = 150
	out := b.String()
	if len(out) > maxLen {
		out = out[:maxLen]
	}
	return out
}
