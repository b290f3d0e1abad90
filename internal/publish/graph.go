// Package publish posts processed articles to Instagram and Facebook
// through the Graph API.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/raynirmalya/mokshiri-scraper/internal/config"
	"github.com/raynirmalya/mokshiri-scraper/internal/types"
)

// Publisher is the social publishing surface the batch job needs.
type Publisher interface {
	// PublishImage runs the two-phase Instagram flow: create a media
	// container for imageURL, then publish it. Returns the media id.
	PublishImage(ctx context.Context, imageURL, caption string) (string, error)

	// PostToPage shares a link post on the Facebook page. Returns the
	// post id.
	PostToPage(ctx context.Context, message, link string) (string, error)
}

// GraphClient implements Publisher against the Facebook Graph API.
type GraphClient struct {
	http   *resty.Client
	cfg    *config.InstagramConfig
	logger *slog.Logger
}

// NewGraphClient creates a Graph API client.
func NewGraphClient(cfg *config.InstagramConfig, logger *slog.Logger) *GraphClient {
	http := resty.New().
		SetBaseURL(cfg.GraphBase + "/" + cfg.APIVersion).
		SetTimeout(60 * time.Second)

	return &GraphClient{
		http:   http,
		cfg:    cfg,
		logger: logger.With("component", "graph_client"),
	}
}

type graphResult struct {
	ID    string `json:"id"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// PublishImage creates an image container and publishes it. The
// container create and the publish are separate Graph calls; the
// returned error's Phase tells which one failed.
func (g *GraphClient) PublishImage(ctx context.Context, imageURL, caption string) (string, error) {
	containerID, err := g.call(ctx, "/"+g.cfg.UserID+"/media", map[string]string{
		"image_url": imageURL,
		"caption":   caption,
	})
	if err != nil {
		return "", &types.PublishError{Phase: "container", Err: err}
	}

	mediaID, err := g.call(ctx, "/"+g.cfg.UserID+"/media_publish", map[string]string{
		"creation_id": containerID,
	})
	if err != nil {
		return "", &types.PublishError{Phase: "publish", Err: err}
	}

	g.logger.Info("instagram post published", "media_id", mediaID)
	return mediaID, nil
}

// PostToPage shares a link on the configured Facebook page.
func (g *GraphClient) PostToPage(ctx context.Context, message, link string) (string, error) {
	if g.cfg.PageID == "" {
		return "", &types.PublishError{Phase: "page", Err: fmt.Errorf("no page configured")}
	}
	postID, err := g.call(ctx, "/"+g.cfg.PageID+"/feed", map[string]string{
		"message": message,
		"link":    link,
	})
	if err != nil {
		return "", &types.PublishError{Phase: "page", Err: err}
	}
	g.logger.Info("facebook post published", "post_id", postID)
	return postID, nil
}

func (g *GraphClient) call(ctx context.Context, path string, params map[string]string) (string, error) {
	var parsed graphResult
	resp, err := g.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("access_token", g.cfg.AccessToken).
		SetResult(&parsed).
		SetError(&parsed).
		Post(path)
	if err != nil {
		return "", err
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("graph API error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if resp.IsError() {
		return "", fmt.Errorf("graph API: HTTP %d", resp.StatusCode())
	}
	if parsed.ID == "" {
		return "", fmt.Errorf("graph API: empty id in response")
	}
	return parsed.ID, nil
}
