package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/raynirmalya/mokshiri-scraper/internal/types"
)

// UpsertOutcome reports what an upsert did.
type UpsertOutcome struct {
	ID       int64
	Inserted bool // false means an existing (link, lang) row was refreshed
}

// ArticleRepo is the repository for the articles table.
type ArticleRepo struct {
	pool   DBPool
	logger *slog.Logger
}

// NewArticleRepo creates an article repository on top of pool.
func NewArticleRepo(pool DBPool, logger *slog.Logger) *ArticleRepo {
	return &ArticleRepo{
		pool:   pool,
		logger: logger.With("component", "article_repo"),
	}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS articles (
	id                  BIGSERIAL PRIMARY KEY,
	category            VARCHAR(50)  NOT NULL,
	title               VARCHAR(500) NOT NULL,
	link                VARCHAR(1000) NOT NULL,
	summary             TEXT NOT NULL DEFAULT '',
	image_url           VARCHAR(1000) NOT NULL DEFAULT '',
	image_name          VARCHAR(255) NOT NULL DEFAULT '',
	author              VARCHAR(255) NOT NULL DEFAULT '',
	published_date      TIMESTAMPTZ NOT NULL,
	lang                VARCHAR(8) NOT NULL DEFAULT 'en',
	is_published        BOOLEAN NOT NULL DEFAULT FALSE,
	views               INTEGER NOT NULL DEFAULT 0,
	is_featured         BOOLEAN NOT NULL DEFAULT FALSE,
	featured_rank       INTEGER,
	trend_score         DOUBLE PRECISION NOT NULL DEFAULT 0,
	last_metrics_update TIMESTAMPTZ,
	posted_at           TIMESTAMPTZ,
	uuid                BYTEA NOT NULL,
	UNIQUE (link, lang)
)`

// EnsureSchema creates the articles table if it does not exist.
func (r *ArticleRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return &types.StorageError{Op: "ensure_schema", Err: err}
	}
	return nil
}

const upsertSQL = `
INSERT INTO articles (
	category, title, link, summary, image_url, image_name, author,
	published_date, lang, is_published, views, is_featured, featured_rank,
	trend_score, last_metrics_update, uuid
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
ON CONFLICT (link, lang) DO UPDATE SET
	category       = EXCLUDED.category,
	title          = EXCLUDED.title,
	summary        = EXCLUDED.summary,
	image_url      = EXCLUDED.image_url,
	author         = EXCLUDED.author,
	published_date = EXCLUDED.published_date
RETURNING id, (xmax = 0) AS inserted`

// Upsert inserts the article or refreshes the existing (link, lang) row.
// One statement either way; the returned outcome says which happened.
// Re-running a scrape over the same pages must not create duplicates.
func (r *ArticleRepo) Upsert(ctx context.Context, a *types.Article) (UpsertOutcome, error) {
	a.Clamp()

	var out UpsertOutcome
	err := r.pool.QueryRow(ctx, upsertSQL,
		a.Category, a.Title, a.Link, a.Summary, a.ImageURL, a.ImageName,
		a.Author, a.Published, a.Lang, a.IsPublished, a.Views, a.IsFeatured,
		a.FeaturedRank, a.TrendScore, a.LastMetricsUpdate, a.UUID[:],
	).Scan(&out.ID, &out.Inserted)
	if err != nil {
		return UpsertOutcome{}, &types.StorageError{Op: "upsert", Link: a.Link, Err: err}
	}

	a.ID = out.ID
	return out, nil
}

const selectColumns = `
	id, category, title, link, summary, image_url, image_name, author,
	published_date, lang, is_published, views, is_featured, featured_rank,
	trend_score, last_metrics_update, posted_at, uuid`

// PendingImages returns articles that have a source image URL but no
// processed image yet, oldest first.
func (r *ArticleRepo) PendingImages(ctx context.Context, limit int) ([]types.Article, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+selectColumns+`
		FROM articles
		WHERE image_url <> '' AND image_name = ''
		ORDER BY id
		LIMIT $1`, limit)
	if err != nil {
		return nil, &types.StorageError{Op: "pending_images", Err: err}
	}
	return scanArticles(rows)
}

// SetImageName records the processed image filename for every row sharing
// the article's link, so translated variants pick it up too.
func (r *ArticleRepo) SetImageName(ctx context.Context, link, imageName string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE articles SET image_name = $1 WHERE link = $2`, imageName, link)
	if err != nil {
		return &types.StorageError{Op: "set_image_name", Link: link, Err: err}
	}
	return nil
}

// UnpublishedEnglish returns English originals awaiting translation.
func (r *ArticleRepo) UnpublishedEnglish(ctx context.Context, limit int) ([]types.Article, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+selectColumns+`
		FROM articles
		WHERE lang = 'en' AND NOT is_published
		ORDER BY id
		LIMIT $1`, limit)
	if err != nil {
		return nil, &types.StorageError{Op: "unpublished_english", Err: err}
	}
	return scanArticles(rows)
}

// MarkPublished flips is_published for one row.
func (r *ArticleRepo) MarkPublished(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE articles SET is_published = TRUE WHERE id = $1`, id)
	if err != nil {
		return &types.StorageError{Op: "mark_published", Err: err}
	}
	return nil
}

// PostCandidates returns published English articles with a processed
// image that have not been posted to social media yet.
func (r *ArticleRepo) PostCandidates(ctx context.Context, limit int) ([]types.Article, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+selectColumns+`
		FROM articles
		WHERE lang = 'en' AND is_published AND image_name <> '' AND posted_at IS NULL
		ORDER BY id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, &types.StorageError{Op: "post_candidates", Err: err}
	}
	return scanArticles(rows)
}

// MarkPosted stamps posted_at for one row.
func (r *ArticleRepo) MarkPosted(ctx context.Context, id int64, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE articles SET posted_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return &types.StorageError{Op: "mark_posted", Err: err}
	}
	return nil
}

// TodayCount returns how many English rows were stored with a publish
// date inside [dayStart, dayEnd). Used for the run summary.
func (r *ArticleRepo) TodayCount(ctx context.Context, dayStart, dayEnd time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM articles
		WHERE lang = 'en' AND published_date >= $1 AND published_date < $2`,
		dayStart, dayEnd).Scan(&n)
	if err != nil {
		return 0, &types.StorageError{Op: "today_count", Err: err}
	}
	return n, nil
}

func scanArticles(rows pgx.Rows) ([]types.Article, error) {
	defer rows.Close()

	var out []types.Article
	for rows.Next() {
		var a types.Article
		var uuidBytes []byte
		err := rows.Scan(
			&a.ID, &a.Category, &a.Title, &a.Link, &a.Summary, &a.ImageURL,
			&a.ImageName, &a.Author, &a.Published, &a.Lang, &a.IsPublished,
			&a.Views, &a.IsFeatured, &a.FeaturedRank, &a.TrendScore,
			&a.LastMetricsUpdate, &a.PostedAt, &uuidBytes,
		)
		if err != nil {
			return nil, &types.StorageError{Op: "scan", Err: err}
		}
		if len(uuidBytes) == 16 {
			copy(a.UUID[:], uuidBytes)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.StorageError{Op: "scan", Err: fmt.Errorf("rows: %w", err)}
	}
	return out, nil
}
