// Package media downloads article images, watermarks them, and pushes
// them to object storage.
package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"time"

	"github.com/raynirmalya/mokshiri-scraper/internal/config"
	"github.com/raynirmalya/mokshiri-scraper/internal/fetcher"
	"github.com/raynirmalya/mokshiri-scraper/internal/types"
)

// Downloader fetches source images with bounded retries.
type Downloader struct {
	fetcher fetcher.Fetcher
	cfg     *config.MediaConfig
	logger  *slog.Logger
}

// NewDownloader creates an image downloader on top of f.
func NewDownloader(f fetcher.Fetcher, cfg *config.MediaConfig, logger *slog.Logger) *Downloader {
	return &Downloader{
		fetcher: f,
		cfg:     cfg,
		logger:  logger.With("component", "image_downloader"),
	}
}

// Download fetches imageURL and decodes it to verify it is a real image.
// Retries up to cfg.DownloadRetries times; a body smaller than
// cfg.MinImageBytes counts as a failure (tracking pixels, error pages).
func (d *Downloader) Download(ctx context.Context, imageURL string) (image.Image, error) {
	req, err := types.NewRequest(imageURL)
	if err != nil {
		return nil, err
	}
	req.Tag = "image"
	req.Timeout = d.cfg.DownloadTimeout

	var lastErr error
	attempts := d.cfg.DownloadRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(d.cfg.RetryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		img, err := d.tryOnce(ctx, req)
		if err == nil {
			return img, nil
		}
		lastErr = err
		d.logger.Warn("image download failed",
			"url", imageURL, "attempt", attempt, "error", err)
	}
	return nil, fmt.Errorf("download %s: %w", imageURL, lastErr)
}

func (d *Downloader) tryOnce(ctx context.Context, req *types.Request) (image.Image, error) {
	resp, err := d.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if len(resp.Body) < d.cfg.MinImageBytes {
		return nil, fmt.Errorf("body too small (%d bytes)", len(resp.Body))
	}

	img, _, err := image.Decode(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
