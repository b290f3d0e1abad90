package translate

import (
	"context"
	"log/slog"
	"time"

	"github.com/raynirmalya/mokshiri-scraper/internal/config"
	"github.com/raynirmalya/mokshiri-scraper/internal/store"
)

// batchFetchLimit caps how many English originals one run picks up.
const batchFetchLimit = 100

// Stats summarizes one translation run.
type Stats struct {
	Articles   int
	Variants   int
	FailedLang int
}

// Job translates unpublished English articles into the configured target
// languages and inserts the variants as their own rows.
type Job struct {
	repo   *store.ArticleRepo
	client *Client
	cfg    *config.TranslateConfig
	logger *slog.Logger
}

// NewJob wires the translation batch job.
func NewJob(repo *store.ArticleRepo, client *Client, cfg *config.TranslateConfig, logger *slog.Logger) *Job {
	return &Job{
		repo:   repo,
		client: client,
		cfg:    cfg,
		logger: logger.With("component", "translate_job"),
	}
}

// Run processes pending articles. Target languages go out in batches of
// cfg.BatchSize; a failed batch skips those languages for the article but
// the rest still go through. The English row is marked published once at
// least one variant landed, so a fully failed article is retried next run.
func (j *Job) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	articles, err := j.repo.UnpublishedEnglish(ctx, batchFetchLimit)
	if err != nil {
		return stats, err
	}
	j.logger.Info("translation run starting", "pending", len(articles), "langs", j.cfg.TargetLangs)

	for i := range articles {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		a := &articles[i]
		inserted := 0

		for _, langs := range batches(j.cfg.TargetLangs, j.cfg.BatchSize) {
			got, err := j.client.Translate(ctx, []string{a.Title, a.Summary}, langs)
			if err != nil {
				stats.FailedLang += len(langs)
				j.logger.Warn("translation batch failed, skipping languages",
					"link", a.Link, "langs", langs, "error", err)
				continue
			}

			for _, lang := range langs {
				texts, ok := got[lang]
				if !ok {
					stats.FailedLang++
					continue
				}
				variant := a.TranslatedCopy(lang, texts[0], texts[1])
				if _, err := j.repo.Upsert(ctx, variant); err != nil {
					j.logger.Error("variant upsert failed", "link", a.Link, "lang", lang, "error", err)
					continue
				}
				inserted++
			}

			if j.cfg.BatchDelay > 0 {
				select {
				case <-time.After(j.cfg.BatchDelay):
				case <-ctx.Done():
					return stats, ctx.Err()
				}
			}
		}

		if inserted > 0 {
			if err := j.repo.MarkPublished(ctx, a.ID); err != nil {
				j.logger.Error("mark published failed", "link", a.Link, "error", err)
				continue
			}
			stats.Articles++
			stats.Variants += inserted
		}
	}

	j.logger.Info("translation run finished",
		"articles", stats.Articles, "variants", stats.Variants, "failed_langs", stats.FailedLang)
	return stats, nil
}

// batches splits langs into chunks of size n.
func batches(langs []string, n int) [][]string {
	if n <= 0 {
		n = len(langs)
	}
	var out [][]string
	for len(langs) > 0 {
		if len(langs) <= n {
			out = append(out, langs)
			break
		}
		out = append(out, langs[:n])
		langs = langs[n:]
	}
	return out
}
