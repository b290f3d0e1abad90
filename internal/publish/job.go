package publish

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"time"

	"github.com/raynirmalya/mokshiri-scraper/internal/config"
	"github.com/raynirmalya/mokshiri-scraper/internal/media"
	"github.com/raynirmalya/mokshiri-scraper/internal/objstore"
	"github.com/raynirmalya/mokshiri-scraper/internal/types"
)

// articleStore is the slice of the repository the job needs.
type articleStore interface {
	PostCandidates(ctx context.Context, limit int) ([]types.Article, error)
	MarkPosted(ctx context.Context, id int64, at time.Time) error
}

// imageFetcher retrieves the stored watermarked image so the title band
// can be composited onto a copy before posting.
type imageFetcher interface {
	Download(ctx context.Context, imageURL string) (image.Image, error)
}

// Stats summarizes one publish run.
type Stats struct {
	Posted    int
	PagePosts int
	Failed    int
	Cleaned   int
}

// Job posts pending articles to Instagram (and the Facebook page when
// configured), marking each row posted on success.
type Job struct {
	repo        articleStore
	publisher   Publisher
	objects     objstore.Store
	cfg         *config.InstagramConfig
	maxChars    int
	fetchImage  imageFetcher
	jpegQuality int
	logger      *slog.Logger
}

// NewJob wires the publish batch job.
func NewJob(repo articleStore, p Publisher, objects objstore.Store, cfg *config.InstagramConfig, captionMaxChars int, logger *slog.Logger) *Job {
	return &Job{
		repo:      repo,
		publisher: p,
		objects:   objects,
		cfg:       cfg,
		maxChars:  captionMaxChars,
		logger:    logger.With("component", "publish_job"),
	}
}

// WithCaptionOverlay makes Run post a temporary copy of each image with the
// article title drawn across the top, instead of the bare watermarked file.
// The copy is removed once the publish attempt is over.
func (j *Job) WithCaptionOverlay(f imageFetcher, jpegQuality int) *Job {
	j.fetchImage = f
	j.jpegQuality = jpegQuality
	return j
}

// Run posts one batch. When the publish phase fails after the container
// was created the uploaded image is deleted from object storage, so a
// rerun regenerates it from the source instead of pointing Instagram at
// a half-published object.
func (j *Job) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	articles, err := j.repo.PostCandidates(ctx, j.cfg.BatchLimit)
	if err != nil {
		return stats, err
	}
	j.logger.Info("publish run starting", "pending", len(articles))

	for i := range articles {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		a := &articles[i]
		log := j.logger.With("link", a.Link, "image_name", a.ImageName)

		imageURL := j.objects.PublicURL(a.ImageName)
		caption := BuildCaption(a, j.cfg, j.maxChars)

		tempKey := ""
		if j.fetchImage != nil {
			key, err := j.preparePostImage(ctx, a)
			if err != nil {
				log.Warn("caption overlay failed, posting stored image", "error", err)
			} else {
				tempKey = key
				imageURL = j.objects.PublicURL(key)
			}
		}

		mediaID, err := j.publisher.PublishImage(ctx, imageURL, caption)
		if tempKey != "" {
			if delErr := j.objects.Delete(ctx, tempKey); delErr != nil {
				log.Warn("temporary post image not removed", "key", tempKey, "error", delErr)
			}
		}
		if err != nil {
			stats.Failed++

			var pubErr *types.PublishError
			if errors.As(err, &pubErr) && pubErr.Phase == "publish" {
				if delErr := j.objects.Delete(ctx, a.ImageName); delErr != nil {
					log.Warn("cleanup after failed publish failed", "error", delErr)
				} else {
					stats.Cleaned++
				}
			}
			log.Error("instagram publish failed", "error", err)
			continue
		}

		if err := j.repo.MarkPosted(ctx, a.ID, time.Now()); err != nil {
			log.Error("mark posted failed", "media_id", mediaID, "error", err)
			stats.Failed++
			continue
		}
		stats.Posted++

		if j.cfg.PageID != "" {
			if _, err := j.publisher.PostToPage(ctx, caption, a.Link); err != nil {
				log.Warn("facebook page post failed", "error", err)
			} else {
				stats.PagePosts++
			}
		}
	}

	j.logger.Info("publish run finished",
		"posted", stats.Posted, "page_posts", stats.PagePosts,
		"failed", stats.Failed, "cleaned", stats.Cleaned)
	return stats, nil
}

// preparePostImage composites the title band onto the stored image and
// uploads the result under a post_ key.
func (j *Job) preparePostImage(ctx context.Context, a *types.Article) (string, error) {
	img, err := j.fetchImage.Download(ctx, j.objects.PublicURL(a.ImageName))
	if err != nil {
		return "", err
	}
	composed, err := media.CaptionOverlay(img, a.Title)
	if err != nil {
		return "", err
	}
	data, err := media.EncodeJPEG(composed, j.jpegQuality)
	if err != nil {
		return "", err
	}

	key := "post_" + a.ImageName
	if _, err := j.objects.Put(ctx, key, data, "image/jpeg"); err != nil {
		return "", err
	}
	return key, nil
}
