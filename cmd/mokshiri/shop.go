package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raynirmalya/mokshiri-scraper/internal/affiliate"
	"github.com/raynirmalya/mokshiri-scraper/internal/config"
)

// shopCmd creates the "shop" subcommand.
func shopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shop",
		Short: "Pull affiliate offers and write link artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger()

			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.RequireAffiliate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client := affiliate.NewCuelinksClient(&cfg.Affiliate, logger)

			// Deeplinks go through Admitad when OAuth credentials are
			// configured; Cuelinks handles them otherwise.
			var links affiliate.Deeplinker = client
			if cfg.Affiliate.ClientID != "" && cfg.Affiliate.ClientSecret != "" {
				links = affiliate.NewAdmitadClient(&cfg.Affiliate, logger)
			}

			job := affiliate.NewJob(client, links, &cfg.Affiliate, cfg.Scrape.OutputDir, logger)

			stats, err := job.Run(ctx)
			if err != nil {
				return fmt.Errorf("offers run: %w", err)
			}
			fmt.Printf("Offers: %d fetched, %d kept, %d deeplinked\n",
				stats.Fetched, stats.Kept, stats.Deeplink)
			return nil
		},
	}
}
