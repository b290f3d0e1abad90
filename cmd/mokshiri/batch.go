package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raynirmalya/mokshiri-scraper/internal/config"
	"github.com/raynirmalya/mokshiri-scraper/internal/fetcher"
	"github.com/raynirmalya/mokshiri-scraper/internal/media"
	"github.com/raynirmalya/mokshiri-scraper/internal/objstore"
	"github.com/raynirmalya/mokshiri-scraper/internal/publish"
	"github.com/raynirmalya/mokshiri-scraper/internal/store"
	"github.com/raynirmalya/mokshiri-scraper/internal/translate"
)

// watermarkCmd creates the "watermark" subcommand.
func watermarkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watermark",
		Short: "Download, watermark and upload pending article images",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger()

			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.RequireDB(); err != nil {
				return err
			}
			if err := cfg.RequireStorage(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pool, err := store.NewPool(ctx, &cfg.DB)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer pool.Close()
			repo := store.NewArticleRepo(pool, logger)

			httpFetcher, err := fetcher.NewHTTPFetcher(cfg, logger)
			if err != nil {
				return fmt.Errorf("create fetcher: %w", err)
			}
			defer httpFetcher.Close()

			objects, err := objstore.New(ctx, &cfg.Storage, logger)
			if err != nil {
				return fmt.Errorf("create object store: %w", err)
			}

			dl := media.NewDownloader(httpFetcher, &cfg.Media, logger)
			job := media.NewJob(repo, dl, objects, &cfg.Media, logger)

			stats, err := job.Run(ctx)
			if err != nil {
				return fmt.Errorf("media run: %w", err)
			}
			fmt.Printf("Images: %d processed, %d completed, %d failed\n",
				stats.Processed, stats.Completed, stats.Failed)
			return nil
		},
	}
}

// translateCmd creates the "translate" subcommand.
func translateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "translate",
		Short: "Create translated variants for unpublished English articles",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger()

			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.RequireDB(); err != nil {
				return err
			}
			if err := cfg.RequireTranslate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pool, err := store.NewPool(ctx, &cfg.DB)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer pool.Close()
			repo := store.NewArticleRepo(pool, logger)

			client := translate.NewClient(&cfg.Translate, logger)
			job := translate.NewJob(repo, client, &cfg.Translate, logger)

			stats, err := job.Run(ctx)
			if err != nil {
				return fmt.Errorf("translate run: %w", err)
			}
			fmt.Printf("Translated: %d articles, %d variants, %d language failures\n",
				stats.Articles, stats.Variants, stats.FailedLang)
			return nil
		},
	}
}

// publishCmd creates the "publish" subcommand.
func publishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Post processed articles to Instagram and Facebook",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger()

			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.RequireDB(); err != nil {
				return err
			}
			if err := cfg.RequireInstagram(); err != nil {
				return err
			}
			if err := cfg.RequireStorage(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pool, err := store.NewPool(ctx, &cfg.DB)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer pool.Close()
			repo := store.NewArticleRepo(pool, logger)

			objects, err := objstore.New(ctx, &cfg.Storage, logger)
			if err != nil {
				return fmt.Errorf("create object store: %w", err)
			}

			graph := publish.NewGraphClient(&cfg.Instagram, logger)
			job := publish.NewJob(repo, graph, objects, &cfg.Instagram, cfg.Media.CaptionMaxChars, logger)

			if cfg.Instagram.OverlayTitle {
				httpFetcher, err := fetcher.NewHTTPFetcher(cfg, logger)
				if err != nil {
					return fmt.Errorf("create fetcher: %w", err)
				}
				defer httpFetcher.Close()
				job = job.WithCaptionOverlay(media.NewDownloader(httpFetcher, &cfg.Media, logger), cfg.Media.JPEGQuality)
			}

			stats, err := job.Run(ctx)
			if err != nil {
				return fmt.Errorf("publish run: %w", err)
			}
			fmt.Printf("Published: %d posts, %d page shares, %d failed\n",
				stats.Posted, stats.PagePosts, stats.Failed)
			return nil
		},
	}
}
