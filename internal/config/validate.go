package config

import (
	"fmt"

	"github.com/raynirmalya/mokshiri-scraper/internal/types"
)

// Missing configuration is the one fatal startup error class; each command
// validates only the sections it touches.

// RequireDB verifies database settings are present.
func (c *Config) RequireDB() error {
	if c.DB.DSN == "" {
		return fmt.Errorf("%w: db.dsn (MOKSHIRI_DB_DSN)", types.ErrMissingConfig)
	}
	if c.DB.PoolSize <= 0 {
		return fmt.Errorf("%w: db.pool_size must be positive", types.ErrMissingConfig)
	}
	return nil
}

// RequireScrape verifies the scrape pipeline settings.
func (c *Config) RequireScrape() error {
	if len(c.Scrape.Sites) == 0 {
		return fmt.Errorf("%w: scrape.sites is empty", types.ErrMissingConfig)
	}
	for _, s := range c.Scrape.Sites {
		if s.Name == "" {
			return fmt.Errorf("%w: site with empty name", types.ErrMissingConfig)
		}
		if len(s.Listings) == 0 {
			return fmt.Errorf("%w: site %q has no listings", types.ErrMissingConfig, s.Name)
		}
		switch s.ListingType {
		case "http", "browser", "feed":
		default:
			return fmt.Errorf("%w: site %q has unknown listing_type %q", types.ErrMissingConfig, s.Name, s.ListingType)
		}
	}
	return nil
}

// RequireRewrite verifies rewrite settings when a real provider is selected.
func (c *Config) RequireRewrite() error {
	switch c.Rewrite.Provider {
	case "", "none":
		return nil
	case "openai":
		if c.Rewrite.APIKey == "" {
			return fmt.Errorf("%w: rewrite.api_key (MOKSHIRI_REWRITE_API_KEY)", types.ErrMissingConfig)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown rewrite.provider %q", types.ErrMissingConfig, c.Rewrite.Provider)
	}
}

// RequireTranslate verifies translation job settings.
func (c *Config) RequireTranslate() error {
	if c.Translate.APIKey == "" {
		return fmt.Errorf("%w: translate.api_key (MOKSHIRI_TRANSLATE_API_KEY)", types.ErrMissingConfig)
	}
	if len(c.Translate.TargetLangs) == 0 {
		return fmt.Errorf("%w: translate.target_langs is empty", types.ErrMissingConfig)
	}
	return nil
}

// RequireStorage verifies object storage settings.
func (c *Config) RequireStorage() error {
	if c.Storage.Endpoint == "" || c.Storage.AccessKey == "" || c.Storage.SecretKey == "" || c.Storage.Bucket == "" {
		return fmt.Errorf("%w: storage.endpoint, storage.access_key, storage.secret_key and storage.bucket", types.ErrMissingConfig)
	}
	return nil
}

// RequireInstagram verifies Graph API publish settings.
func (c *Config) RequireInstagram() error {
	if c.Instagram.UserID == "" || c.Instagram.AccessToken == "" {
		return fmt.Errorf("%w: instagram.user_id and instagram.access_token", types.ErrMissingConfig)
	}
	return nil
}

// RequireAffiliate verifies affiliate network settings.
func (c *Config) RequireAffiliate() error {
	if c.Affiliate.APIToken == "" && (c.Affiliate.ClientID == "" || c.Affiliate.ClientSecret == "") {
		return fmt.Errorf("%w: affiliate.api_token or affiliate.client_id+client_secret", types.ErrMissingConfig)
	}
	return nil
}
