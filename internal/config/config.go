package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for all mokshiri commands.
type Config struct {
	DB        DBConfig        `mapstructure:"db"        yaml:"db"`
	Fetcher   FetcherConfig   `mapstructure:"fetcher"   yaml:"fetcher"`
	Scrape    ScrapeConfig    `mapstructure:"scrape"    yaml:"scrape"`
	Rewrite   RewriteConfig   `mapstructure:"rewrite"   yaml:"rewrite"`
	Translate TranslateConfig `mapstructure:"translate" yaml:"translate"`
	Storage   StorageConfig   `mapstructure:"storage"   yaml:"storage"`
	Media     MediaConfig     `mapstructure:"media"     yaml:"media"`
	Instagram InstagramConfig `mapstructure:"instagram" yaml:"instagram"`
	Affiliate AffiliateConfig `mapstructure:"affiliate" yaml:"affiliate"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// DBConfig holds the Postgres connection settings.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"       yaml:"dsn"`
	PoolSize int    `mapstructure:"pool_size" yaml:"pool_size"`
	Table    string `mapstructure:"table"     yaml:"table"`
}

// FetcherConfig controls both the HTTP and the browser fetcher.
type FetcherConfig struct {
	RequestTimeout  time.Duration `mapstructure:"request_timeout"   yaml:"request_timeout"`
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
	UserAgents      []string      `mapstructure:"user_agents"       yaml:"user_agents"`
	BrowserStealth  bool          `mapstructure:"browser_stealth"   yaml:"browser_stealth"`
	RenderWait      time.Duration `mapstructure:"render_wait"       yaml:"render_wait"`
}

// ScrapeConfig controls the scraping pipeline shared across sites.
type ScrapeConfig struct {
	Timezone        string        `mapstructure:"timezone"         yaml:"timezone"`
	PolitenessDelay time.Duration `mapstructure:"politeness_delay" yaml:"politeness_delay"`
	OutputDir       string        `mapstructure:"output_dir"       yaml:"output_dir"`
	DebugDir        string        `mapstructure:"debug_dir"        yaml:"debug_dir"`
	Sites           []SiteConfig  `mapstructure:"sites"            yaml:"sites"`
}

// SiteConfig describes one source site: where its listings live, how to
// recognize its article links, and how to pull fields out of its pages.
type SiteConfig struct {
	Name string `mapstructure:"name" yaml:"name"`

	// Listings maps a category listing URL to the category stored on
	// every article found through it.
	Listings map[string]string `mapstructure:"listings" yaml:"listings"`

	// ListingType selects how listing pages are obtained: "http",
	// "browser" (headless render), or "feed" (RSS/Atom).
	ListingType string `mapstructure:"listing_type" yaml:"listing_type"`

	// PagePattern, when set, constructs page N URLs from the listing URL,
	// e.g. "%s/page/%d/". Used when no next link is found in the markup.
	PagePattern string `mapstructure:"page_pattern" yaml:"page_pattern"`

	MaxPages      int `mapstructure:"max_pages"       yaml:"max_pages"`
	MinBodyLen    int `mapstructure:"min_body_len"    yaml:"min_body_len"`
	MinAnchorText int `mapstructure:"min_anchor_text" yaml:"min_anchor_text"`

	Link LinkRuleConfig `mapstructure:"link" yaml:"link"`

	// Selector overrides per field. Empty slices fall back to the
	// generic extraction strategies.
	TitleSelectors  []string `mapstructure:"title_selectors"  yaml:"title_selectors"`
	BodySelectors   []string `mapstructure:"body_selectors"   yaml:"body_selectors"`
	ImageSelectors  []string `mapstructure:"image_selectors"  yaml:"image_selectors"`
	AuthorSelectors []string `mapstructure:"author_selectors" yaml:"author_selectors"`
	DateSelectors   []string `mapstructure:"date_selectors"   yaml:"date_selectors"`

	// KeywordCategories enables the keyword classifier fallback when a
	// listing has no fixed category mapping.
	KeywordCategories bool `mapstructure:"keyword_categories" yaml:"keyword_categories"`
}

// LinkRuleConfig holds the per-site article-link heuristics.
type LinkRuleConfig struct {
	ArticlePaths []string `mapstructure:"article_paths" yaml:"article_paths"`
	Reject       []string `mapstructure:"reject"        yaml:"reject"`
	MinSlugLen   int      `mapstructure:"min_slug_len"  yaml:"min_slug_len"`
	AllowYear    bool     `mapstructure:"allow_year"    yaml:"allow_year"`
	AllowQueryID bool     `mapstructure:"allow_query_id" yaml:"allow_query_id"`
}

// RewriteConfig controls the LLM rewriting step.
type RewriteConfig struct {
	Provider    string        `mapstructure:"provider"    yaml:"provider"` // none, openai
	Endpoint    string        `mapstructure:"endpoint"    yaml:"endpoint"`
	Model       string        `mapstructure:"model"       yaml:"model"`
	APIKey      string        `mapstructure:"api_key"     yaml:"api_key"`
	MaxTokens   int           `mapstructure:"max_tokens"  yaml:"max_tokens"`
	Temperature float64       `mapstructure:"temperature" yaml:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"     yaml:"timeout"`
}

// TranslateConfig controls the translation batch job.
type TranslateConfig struct {
	Endpoint    string        `mapstructure:"endpoint"     yaml:"endpoint"`
	APIKey      string        `mapstructure:"api_key"      yaml:"api_key"`
	TargetLangs []string      `mapstructure:"target_langs" yaml:"target_langs"`
	BatchSize   int           `mapstructure:"batch_size"   yaml:"batch_size"`
	BatchDelay  time.Duration `mapstructure:"batch_delay"  yaml:"batch_delay"`
}

// StorageConfig holds the S3-compatible object storage settings.
type StorageConfig struct {
	Endpoint   string `mapstructure:"endpoint"    yaml:"endpoint"`
	AccessKey  string `mapstructure:"access_key"  yaml:"access_key"`
	SecretKey  string `mapstructure:"secret_key"  yaml:"secret_key"`
	Bucket     string `mapstructure:"bucket"      yaml:"bucket"`
	PublicBase string `mapstructure:"public_base" yaml:"public_base"`
	Folder     string `mapstructure:"folder"      yaml:"folder"`
}

// MediaConfig controls the image batch job.
type MediaConfig struct {
	BatchLimit       int           `mapstructure:"batch_limit"       yaml:"batch_limit"`
	DownloadRetries  int           `mapstructure:"download_retries"  yaml:"download_retries"`
	RetryDelay       time.Duration `mapstructure:"retry_delay"       yaml:"retry_delay"`
	DownloadTimeout  time.Duration `mapstructure:"download_timeout"  yaml:"download_timeout"`
	MinImageBytes    int           `mapstructure:"min_image_bytes"   yaml:"min_image_bytes"`
	WatermarkText    string        `mapstructure:"watermark_text"    yaml:"watermark_text"`
	MaxImageWidth    int           `mapstructure:"max_image_width"   yaml:"max_image_width"`
	JPEGQuality      int           `mapstructure:"jpeg_quality"      yaml:"jpeg_quality"`
	CaptionMaxChars  int           `mapstructure:"caption_max_chars" yaml:"caption_max_chars"`
}

// InstagramConfig holds the Graph API publish settings.
type InstagramConfig struct {
	GraphBase    string   `mapstructure:"graph_base"    yaml:"graph_base"`
	APIVersion   string   `mapstructure:"api_version"   yaml:"api_version"`
	UserID       string   `mapstructure:"user_id"       yaml:"user_id"`
	AccessToken  string   `mapstructure:"access_token"  yaml:"access_token"`
	PageID       string   `mapstructure:"page_id"       yaml:"page_id"`
	SiteBase     string   `mapstructure:"site_base"     yaml:"site_base"`
	BatchLimit   int      `mapstructure:"batch_limit"   yaml:"batch_limit"`
	OverlayTitle bool     `mapstructure:"overlay_title" yaml:"overlay_title"`
	Hashtags     []string `mapstructure:"hashtags"      yaml:"hashtags"`
}

// AffiliateConfig holds the affiliate network settings.
type AffiliateConfig struct {
	BaseURL     string   `mapstructure:"base_url"     yaml:"base_url"`
	APIToken    string   `mapstructure:"api_token"    yaml:"api_token"`
	PublisherID string   `mapstructure:"publisher_id" yaml:"publisher_id"`
	Categories  string   `mapstructure:"categories"   yaml:"categories"`
	Campaigns   string   `mapstructure:"campaigns"    yaml:"campaigns"`
	OfferTypes  string   `mapstructure:"offer_types"  yaml:"offer_types"`
	PerPage     int      `mapstructure:"per_page"     yaml:"per_page"`
	MaxPages    int      `mapstructure:"max_pages"    yaml:"max_pages"`
	Keywords    []string `mapstructure:"keywords"     yaml:"keywords"`
	WindowDays  int      `mapstructure:"window_days"  yaml:"window_days"`

	// OAuth settings for networks that issue bearer tokens instead of
	// static API tokens (Admitad-style). When client credentials are
	// present, deeplinks go through this network instead of Cuelinks.
	OAuthTokenURL string `mapstructure:"oauth_token_url" yaml:"oauth_token_url"`
	OAuthAPIBase  string `mapstructure:"oauth_api_base"  yaml:"oauth_api_base"`
	ClientID      string `mapstructure:"client_id"       yaml:"client_id"`
	ClientSecret  string `mapstructure:"client_secret"   yaml:"client_secret"`
	WebsiteID     string `mapstructure:"website_id"      yaml:"website_id"`
	CampaignID    string `mapstructure:"campaign_id"     yaml:"campaign_id"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DB: DBConfig{
			PoolSize: 4,
			Table:    "articles",
		},
		Fetcher: FetcherConfig{
			RequestTimeout:  30 * time.Second,
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    100,
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			},
			BrowserStealth: true,
			RenderWait:     time.Second,
		},
		Scrape: ScrapeConfig{
			Timezone:        "Asia/Kolkata",
			PolitenessDelay: time.Second,
			OutputDir:       "./output",
			DebugDir:        "./output/debug",
		},
		Rewrite: RewriteConfig{
			Provider:    "none",
			Endpoint:    "https://api.openai.com/v1",
			Model:       "gpt-4.1-mini",
			MaxTokens:   800,
			Temperature: 0.9,
			Timeout:     2 * time.Minute,
		},
		Translate: TranslateConfig{
			Endpoint:    "https://api.lecto.ai/v1/translate/text",
			TargetLangs: []string{"ko", "ja", "es", "id", "vi"},
			BatchSize:   2,
			BatchDelay:  2 * time.Second,
		},
		Media: MediaConfig{
			BatchLimit:      500,
			DownloadRetries: 2,
			RetryDelay:      2 * time.Second,
			DownloadTimeout: 15 * time.Second,
			MinImageBytes:   1000,
			WatermarkText:   "mokshiri.com",
			MaxImageWidth:   1600,
			JPEGQuality:     90,
			CaptionMaxChars: 200,
		},
		Instagram: InstagramConfig{
			GraphBase:    "https://graph.facebook.com",
			APIVersion:   "v17.0",
			BatchLimit:   5,
			OverlayTitle: true,
			Hashtags:     []string{"#mokshiri", "#koreanstyle"},
		},
		Affiliate: AffiliateConfig{
			BaseURL:       "https://www.cuelinks.com",
			PerPage:       50,
			MaxPages:      5,
			WindowDays:    30,
			OAuthTokenURL: "https://api.admitad.com/token/",
			OAuthAPIBase:  "https://api.admitad.com",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// SiteDefaults fills zero-valued per-site knobs from their defaults.
func (s *SiteConfig) SiteDefaults() {
	if s.ListingType == "" {
		s.ListingType = "http"
	}
	if s.MaxPages <= 0 {
		s.MaxPages = 2
	}
	if s.MinBodyLen <= 0 {
		s.MinBodyLen = 50
	}
	if s.MinAnchorText <= 0 {
		s.MinAnchorText = 6
	}
	if s.Link.MinSlugLen <= 0 {
		s.Link.MinSlugLen = 5
	}
}
