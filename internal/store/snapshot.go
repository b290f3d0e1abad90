package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/raynirmalya/mokshiri-scraper/internal/types"
)

// Snapshot mirrors scraped articles into a JSON file per site, so a run
// can be inspected without a database connection. New articles are
// merged into the existing file keyed by (link, lang).
type Snapshot struct {
	dir    string
	logger *slog.Logger
}

// NewSnapshot creates a snapshot writer rooted at dir.
func NewSnapshot(dir string, logger *slog.Logger) *Snapshot {
	return &Snapshot{dir: dir, logger: logger.With("component", "snapshot")}
}

// Merge loads the site's snapshot file, overlays articles on top of the
// existing entries, and writes the result back. A snapshot that fails to
// parse is moved aside as <name>.broken.<timestamp> and replaced, never
// silently overwritten.
func (s *Snapshot) Merge(site string, articles []types.Article) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(s.dir, site+".json")

	existing := s.load(path)

	merged := make(map[string]types.Article, len(existing)+len(articles))
	var order []string
	add := func(a types.Article) {
		key := a.Link + "|" + a.Lang
		if _, ok := merged[key]; !ok {
			order = append(order, key)
		}
		merged[key] = a
	}
	for _, a := range existing {
		add(a)
	}
	for _, a := range articles {
		add(a)
	}

	out := make([]types.Article, 0, len(order))
	for _, key := range order {
		out = append(out, merged[key])
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}

	s.logger.Info("snapshot merged", "site", site, "total", len(out), "added", len(articles))
	return nil
}

// load reads the existing snapshot. A corrupted file is renamed aside
// and treated as empty.
func (s *Snapshot) load(path string) []types.Article {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var articles []types.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		backup := fmt.Sprintf("%s.broken.%d", path, time.Now().Unix())
		if renameErr := os.Rename(path, backup); renameErr != nil {
			s.logger.Warn("could not move corrupted snapshot aside", "path", path, "error", renameErr)
		} else {
			s.logger.Warn("corrupted snapshot moved aside", "path", path, "backup", backup)
		}
		return nil
	}
	return articles
}
