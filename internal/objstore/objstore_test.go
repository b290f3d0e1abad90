package objstore

import (
	"testing"

	"github.com/raynirmalya/mokshiri-scraper/internal/config"
)

func TestPublicURLUsesPublicBase(t *testing.T) {
	s := &S3Store{cfg: &config.StorageConfig{
		Endpoint:   "https://acct.r2.cloudflarestorage.com",
		Bucket:     "mokshiri-media",
		PublicBase: "https://cdn.mokshiri.com/",
		Folder:     "articles",
	}}

	got := s.PublicURL("abc.jpg")
	if got != "https://cdn.mokshiri.com/articles/abc.jpg" {
		t.Errorf("url = %q", got)
	}
}

func TestPublicURLFallsBackToEndpointAndBucket(t *testing.T) {
	s := &S3Store{cfg: &config.StorageConfig{
		Endpoint: "https://acct.r2.cloudflarestorage.com/",
		Bucket:   "mokshiri-media",
		Folder:   "articles",
	}}

	got := s.PublicURL("abc.jpg")
	if got != "https://acct.r2.cloudflarestorage.com/mokshiri-media/articles/abc.jpg" {
		t.Errorf("url = %q", got)
	}
}

func TestPublicURLNoFolder(t *testing.T) {
	s := &S3Store{cfg: &config.StorageConfig{
		Endpoint: "https://acct.r2.cloudflarestorage.com",
		Bucket:   "mokshiri-media",
	}}

	if got := s.PublicURL("abc.jpg"); got != "https://acct.r2.cloudflarestorage.com/mokshiri-media/abc.jpg" {
		t.Errorf("url = %q", got)
	}
}
