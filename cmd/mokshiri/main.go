package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/raynirmalya/mokshiri-scraper/internal/config"
	"github.com/raynirmalya/mokshiri-scraper/internal/fetcher"
	"github.com/raynirmalya/mokshiri-scraper/internal/pipeline"
	"github.com/raynirmalya/mokshiri-scraper/internal/rewrite"
	"github.com/raynirmalya/mokshiri-scraper/internal/store"
)

var (
	cfgFile    string
	verbose    bool
	dryRun     bool
	siteFilter string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mokshiri",
		Short: "Korea-focused entertainment news pipeline",
		Long: `mokshiri scrapes Korean entertainment and lifestyle news sites,
rewrites fresh articles, stores them, and pushes them out:

  scrape     fetch today's articles from the configured sites
  watermark  download, watermark and upload article images
  translate  create translated article variants
  publish    post processed articles to Instagram/Facebook
  shop       pull affiliate offers and build tracking links`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(watermarkCmd())
	rootCmd.AddCommand(translateCmd())
	rootCmd.AddCommand(publishCmd())
	rootCmd.AddCommand(shopCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// scrapeCmd creates the "scrape" subcommand.
func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape today's articles from the configured sites",
		RunE:  runScrape,
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "extract and log but do not store anything")
	cmd.Flags().StringVar(&siteFilter, "site", "", "scrape only the named site")
	return cmd
}

func runScrape(cmd *cobra.Command, args []string) error {
	logger := setupLogger()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if siteFilter != "" {
		var kept []config.SiteConfig
		for _, s := range cfg.Scrape.Sites {
			if s.Name == siteFilter {
				kept = append(kept, s)
			}
		}
		if len(kept) == 0 {
			return fmt.Errorf("unknown site %q", siteFilter)
		}
		cfg.Scrape.Sites = kept
	}
	if err := cfg.RequireScrape(); err != nil {
		return err
	}
	if err := cfg.RequireRewrite(); err != nil {
		return err
	}
	if !dryRun {
		if err := cfg.RequireDB(); err != nil {
			return err
		}
	}

	loc, err := time.LoadLocation(cfg.Scrape.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Scrape.Timezone, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpFetcher, err := fetcher.NewHTTPFetcher(cfg, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer httpFetcher.Close()

	var browserFetcher fetcher.Fetcher
	if needsBrowser(cfg) {
		bf, err := fetcher.NewBrowserFetcher(cfg, logger)
		if err != nil {
			return fmt.Errorf("create browser fetcher: %w", err)
		}
		defer bf.Close()
		browserFetcher = bf
	}

	var repo pipeline.ArticleUpserter
	var todayCount func() (int, error)
	if !dryRun {
		pool, err := store.NewPool(ctx, &cfg.DB)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()

		articleRepo := store.NewArticleRepo(pool, logger)
		if err := articleRepo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		repo = articleRepo
		todayCount = func() (int, error) {
			start := startOfDay(time.Now(), loc)
			return articleRepo.TodayCount(ctx, start, start.AddDate(0, 0, 1))
		}
	}

	runner := pipeline.NewRunner(
		cfg,
		httpFetcher,
		browserFetcher,
		repo,
		rewrite.FromConfig(&cfg.Rewrite, logger),
		store.NewSnapshot(cfg.Scrape.OutputDir, logger),
		loc,
		logger,
	)
	runner.DryRun = dryRun

	logger.Info("starting scrape",
		"sites", len(cfg.Scrape.Sites),
		"timezone", cfg.Scrape.Timezone,
		"rewrite", cfg.Rewrite.Provider,
		"dry_run", dryRun,
	)

	stats, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("scrape run: %w", err)
	}

	elapsed := stats.Finished.Sub(stats.Started)
	fmt.Printf("\nScrape complete in %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("   Pages:     %d fetched\n", stats.PagesFetched)
	fmt.Printf("   Articles:  %d extracted, %d inserted, %d updated\n",
		stats.Extracted, stats.Inserted, stats.Updated)
	fmt.Printf("   Skipped:   %d stale, %d short, %d undated\n",
		stats.SkippedStale, stats.SkippedShort, stats.SkippedNoDate)
	fmt.Printf("   Errors:    %d\n", stats.Errors)

	if todayCount != nil {
		if n, err := todayCount(); err == nil {
			fmt.Printf("   In store:  %d articles dated today\n", n)
		}
	}
	return nil
}

func needsBrowser(cfg *config.Config) bool {
	for _, s := range cfg.Scrape.Sites {
		if s.ListingType == "browser" {
			return true
		}
	}
	return false
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("mokshiri %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Scrape:\n")
			fmt.Printf("  Sites:             %d configured\n", len(cfg.Scrape.Sites))
			for _, s := range cfg.Scrape.Sites {
				fmt.Printf("    %-16s %d listings, type=%s, max_pages=%d\n",
					s.Name, len(s.Listings), s.ListingType, s.MaxPages)
			}
			fmt.Printf("  Timezone:          %s\n", cfg.Scrape.Timezone)
			fmt.Printf("  Politeness Delay:  %s\n", cfg.Scrape.PolitenessDelay)
			fmt.Printf("  Output Dir:        %s\n", cfg.Scrape.OutputDir)
			fmt.Printf("\nDatabase:\n")
			fmt.Printf("  DSN set:           %v\n", cfg.DB.DSN != "")
			fmt.Printf("  Pool Size:         %d\n", cfg.DB.PoolSize)
			fmt.Printf("\nRewrite:\n")
			fmt.Printf("  Provider:          %s\n", cfg.Rewrite.Provider)
			fmt.Printf("  Model:             %s\n", cfg.Rewrite.Model)
			fmt.Printf("\nTranslate:\n")
			fmt.Printf("  Target Langs:      %v\n", cfg.Translate.TargetLangs)
			fmt.Printf("  Batch Size:        %d\n", cfg.Translate.BatchSize)
			fmt.Printf("\nMedia:\n")
			fmt.Printf("  Watermark:         %q\n", cfg.Media.WatermarkText)
			fmt.Printf("  JPEG Quality:      %d\n", cfg.Media.JPEGQuality)
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  Endpoint set:      %v\n", cfg.Storage.Endpoint != "")
			fmt.Printf("  Bucket:            %s\n", cfg.Storage.Bucket)
			fmt.Printf("\nInstagram:\n")
			fmt.Printf("  Configured:        %v\n", cfg.Instagram.UserID != "" && cfg.Instagram.AccessToken != "")
			fmt.Printf("  Batch Limit:       %d\n", cfg.Instagram.BatchLimit)
			return nil
		},
	}
}

// setupLogger creates a structured logger.
func setupLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
