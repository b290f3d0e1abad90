package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file and environment.
// Priority (highest to lowest): env vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	// Environment variable support: MOKSHIRI_DB_DSN, MOKSHIRI_REWRITE_API_KEY, ...
	v.SetEnvPrefix("MOKSHIRI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("mokshiri")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".mokshiri"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for i := range cfg.Scrape.Sites {
		cfg.Scrape.Sites[i].SiteDefaults()
	}

	return cfg, nil
}

// setDefaults registers default values in viper so env vars bind even for
// keys absent from the config file.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("db.dsn", cfg.DB.DSN)
	v.SetDefault("db.pool_size", cfg.DB.PoolSize)
	v.SetDefault("db.table", cfg.DB.Table)

	v.SetDefault("fetcher.request_timeout", cfg.Fetcher.RequestTimeout)
	v.SetDefault("fetcher.follow_redirects", cfg.Fetcher.FollowRedirects)
	v.SetDefault("fetcher.max_redirects", cfg.Fetcher.MaxRedirects)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.idle_conn_timeout", cfg.Fetcher.IdleConnTimeout)
	v.SetDefault("fetcher.max_idle_conns", cfg.Fetcher.MaxIdleConns)
	v.SetDefault("fetcher.user_agents", cfg.Fetcher.UserAgents)
	v.SetDefault("fetcher.browser_stealth", cfg.Fetcher.BrowserStealth)
	v.SetDefault("fetcher.render_wait", cfg.Fetcher.RenderWait)

	v.SetDefault("scrape.timezone", cfg.Scrape.Timezone)
	v.SetDefault("scrape.politeness_delay", cfg.Scrape.PolitenessDelay)
	v.SetDefault("scrape.output_dir", cfg.Scrape.OutputDir)
	v.SetDefault("scrape.debug_dir", cfg.Scrape.DebugDir)

	v.SetDefault("rewrite.provider", cfg.Rewrite.Provider)
	v.SetDefault("rewrite.endpoint", cfg.Rewrite.Endpoint)
	v.SetDefault("rewrite.model", cfg.Rewrite.Model)
	v.SetDefault("rewrite.api_key", cfg.Rewrite.APIKey)
	v.SetDefault("rewrite.max_tokens", cfg.Rewrite.MaxTokens)
	v.SetDefault("rewrite.temperature", cfg.Rewrite.Temperature)
	v.SetDefault("rewrite.timeout", cfg.Rewrite.Timeout)

	v.SetDefault("translate.endpoint", cfg.Translate.Endpoint)
	v.SetDefault("translate.api_key", cfg.Translate.APIKey)
	v.SetDefault("translate.target_langs", cfg.Translate.TargetLangs)
	v.SetDefault("translate.batch_size", cfg.Translate.BatchSize)
	v.SetDefault("translate.batch_delay", cfg.Translate.BatchDelay)

	v.SetDefault("storage.endpoint", cfg.Storage.Endpoint)
	v.SetDefault("storage.access_key", cfg.Storage.AccessKey)
	v.SetDefault("storage.secret_key", cfg.Storage.SecretKey)
	v.SetDefault("storage.bucket", cfg.Storage.Bucket)
	v.SetDefault("storage.public_base", cfg.Storage.PublicBase)
	v.SetDefault("storage.folder", cfg.Storage.Folder)

	v.SetDefault("media.batch_limit", cfg.Media.BatchLimit)
	v.SetDefault("media.download_retries", cfg.Media.DownloadRetries)
	v.SetDefault("media.retry_delay", cfg.Media.RetryDelay)
	v.SetDefault("media.download_timeout", cfg.Media.DownloadTimeout)
	v.SetDefault("media.min_image_bytes", cfg.Media.MinImageBytes)
	v.SetDefault("media.watermark_text", cfg.Media.WatermarkText)
	v.SetDefault("media.max_image_width", cfg.Media.MaxImageWidth)
	v.SetDefault("media.jpeg_quality", cfg.Media.JPEGQuality)
	v.SetDefault("media.caption_max_chars", cfg.Media.CaptionMaxChars)

	v.SetDefault("instagram.graph_base", cfg.Instagram.GraphBase)
	v.SetDefault("instagram.api_version", cfg.Instagram.APIVersion)
	v.SetDefault("instagram.user_id", cfg.Instagram.UserID)
	v.SetDefault("instagram.access_token", cfg.Instagram.AccessToken)
	v.SetDefault("instagram.page_id", cfg.Instagram.PageID)
	v.SetDefault("instagram.site_base", cfg.Instagram.SiteBase)
	v.SetDefault("instagram.batch_limit", cfg.Instagram.BatchLimit)
	v.SetDefault("instagram.overlay_title", cfg.Instagram.OverlayTitle)
	v.SetDefault("instagram.hashtags", cfg.Instagram.Hashtags)

	v.SetDefault("affiliate.base_url", cfg.Affiliate.BaseURL)
	v.SetDefault("affiliate.api_token", cfg.Affiliate.APIToken)
	v.SetDefault("affiliate.publisher_id", cfg.Affiliate.PublisherID)
	v.SetDefault("affiliate.categories", cfg.Affiliate.Categories)
	v.SetDefault("affiliate.campaigns", cfg.Affiliate.Campaigns)
	v.SetDefault("affiliate.offer_types", cfg.Affiliate.OfferTypes)
	v.SetDefault("affiliate.per_page", cfg.Affiliate.PerPage)
	v.SetDefault("affiliate.max_pages", cfg.Affiliate.MaxPages)
	v.SetDefault("affiliate.keywords", cfg.Affiliate.Keywords)
	v.SetDefault("affiliate.window_days", cfg.Affiliate.WindowDays)
	v.SetDefault("affiliate.oauth_token_url", cfg.Affiliate.OAuthTokenURL)
	v.SetDefault("affiliate.oauth_api_base", cfg.Affiliate.OAuthAPIBase)
	v.SetDefault("affiliate.client_id", cfg.Affiliate.ClientID)
	v.SetDefault("affiliate.client_secret", cfg.Affiliate.ClientSecret)
	v.SetDefault("affiliate.website_id", cfg.Affiliate.WebsiteID)
	v.SetDefault("affiliate.campaign_id", cfg.Affiliate.CampaignID)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}
