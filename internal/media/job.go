package media

import (
	"context"
	"log/slog"

	"github.com/raynirmalya/mokshiri-scraper/internal/config"
	"github.com/raynirmalya/mokshiri-scraper/internal/objstore"
	"github.com/raynirmalya/mokshiri-scraper/internal/store"
	"github.com/raynirmalya/mokshiri-scraper/internal/types"
)

// State tracks how far along the media pipeline one article's image got.
type State int

const (
	StatePending State = iota
	StateDownloaded
	StateWatermarked
	StateUploaded
	StateDBUpdated
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateDownloaded:
		return "downloaded"
	case StateWatermarked:
		return "watermarked"
	case StateUploaded:
		return "uploaded"
	case StateDBUpdated:
		return "db_updated"
	default:
		return "unknown"
	}
}

// Stats summarizes one media run.
type Stats struct {
	Processed int
	Completed int
	Failed    int
}

// Job runs the image pipeline over articles that have a source image URL
// but no processed image yet. Each article walks pending → downloaded →
// watermarked → uploaded → db_updated; only the download step retries,
// the rest fail the article outright.
type Job struct {
	repo       *store.ArticleRepo
	downloader *Downloader
	objects    objstore.Store
	cfg        *config.MediaConfig
	logger     *slog.Logger
}

// NewJob wires the media batch job.
func NewJob(repo *store.ArticleRepo, dl *Downloader, objects objstore.Store, cfg *config.MediaConfig, logger *slog.Logger) *Job {
	return &Job{
		repo:       repo,
		downloader: dl,
		objects:    objects,
		cfg:        cfg,
		logger:     logger.With("component", "media_job"),
	}
}

// Run processes one batch. Per-article failures are logged and counted,
// never fatal to the batch.
func (j *Job) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	articles, err := j.repo.PendingImages(ctx, j.cfg.BatchLimit)
	if err != nil {
		return stats, err
	}
	j.logger.Info("media run starting", "pending", len(articles))

	for i := range articles {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		stats.Processed++

		if err := j.processOne(ctx, &articles[i]); err != nil {
			stats.Failed++
			continue
		}
		stats.Completed++
	}

	j.logger.Info("media run finished",
		"processed", stats.Processed, "completed", stats.Completed, "failed", stats.Failed)
	return stats, nil
}

func (j *Job) processOne(ctx context.Context, a *types.Article) error {
	state := StatePending
	log := j.logger.With("link", a.Link, "image_url", a.ImageURL)

	fail := func(err error) error {
		log.Warn("image pipeline stopped", "state", state.String(), "error", err)
		return err
	}

	img, err := j.downloader.Download(ctx, a.ImageURL)
	if err != nil {
		return fail(err)
	}
	state = StateDownloaded

	img = ScaleDown(img, j.cfg.MaxImageWidth)
	marked, err := Watermark(img, j.cfg.WatermarkText)
	if err != nil {
		return fail(err)
	}
	state = StateWatermarked

	data, err := EncodeJPEG(marked, j.cfg.JPEGQuality)
	if err != nil {
		return fail(err)
	}

	key := a.UUID.String() + ".jpg"
	if _, err := j.objects.Put(ctx, key, data, "image/jpeg"); err != nil {
		return fail(err)
	}
	state = StateUploaded

	if err := j.repo.SetImageName(ctx, a.Link, key); err != nil {
		// Remove the orphaned upload so a retry starts clean.
		if delErr := j.objects.Delete(ctx, key); delErr != nil {
			log.Warn("orphan cleanup failed", "key", key, "error", delErr)
		}
		return fail(err)
	}
	state = StateDBUpdated

	log.Info("image processed", "image_name", key, "state", state.String(), "bytes", len(data))
	return nil
}
