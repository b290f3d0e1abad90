package affiliate

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/raynirmalya/mokshiri-scraper/internal/config"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestFilterOffers(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	offers := []Offer{
		{ID: 1, Title: "K-beauty serum sale", EndsAt: now.AddDate(0, 0, 7)},
		{ID: 2, Title: "Korean fashion haul", EndsAt: now.AddDate(0, 0, 60)}, // beyond window
		{ID: 3, Title: "Expired beauty deal", EndsAt: now.AddDate(0, 0, -1)},
		{ID: 4, Title: "Power tools discount", EndsAt: now.AddDate(0, 0, 7)}, // no keyword
		{ID: 5, Title: "Not started yet beauty", StartsAt: now.AddDate(0, 0, 2), EndsAt: now.AddDate(0, 0, 9)},
		{ID: 6, Merchant: "Seoul Beauty Shop", EndsAt: now.AddDate(0, 0, 3)}, // keyword in merchant
	}

	kept := filterOffers(offers, []string{"beauty", "fashion"}, now, 30)
	ids := make([]int64, 0, len(kept))
	for _, o := range kept {
		ids = append(ids, o.ID)
	}

	if len(ids) != 2 || ids[0] != 1 || ids[1] != 6 {
		t.Errorf("kept ids = %v, want [1 6]", ids)
	}
}

func TestFilterOffersNoKeywordsKeepsAll(t *testing.T) {
	now := time.Now()
	offers := []Offer{
		{ID: 1, Title: "Anything", EndsAt: now.AddDate(0, 0, 5)},
	}
	if kept := filterOffers(offers, nil, now, 30); len(kept) != 1 {
		t.Errorf("kept = %v", kept)
	}
}

func TestDeeplinkPassthroughOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewCuelinksClient(&config.AffiliateConfig{BaseURL: srv.URL, APIToken: "t"}, testLogger)
	target := "https://merchant.example.com/product/1"
	if got := c.Deeplink(context.Background(), target); got != target {
		t.Errorf("deeplink = %q, want passthrough %q", got, target)
	}
}

func TestDeeplinkUsesAPILink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"link":"https://linkredirect.example.com/x?aff=1"}`))
	}))
	defer srv.Close()

	c := NewCuelinksClient(&config.AffiliateConfig{BaseURL: srv.URL, APIToken: "t"}, testLogger)
	got := c.Deeplink(context.Background(), "https://merchant.example.com/product/1")
	if got != "https://linkredirect.example.com/x?aff=1" {
		t.Errorf("deeplink = %q", got)
	}
}

// fakeDeeplinker tags URLs so tests can see which provider ran.
type fakeDeeplinker struct {
	calls int
}

func (f *fakeDeeplinker) Deeplink(_ context.Context, target string) string {
	f.calls++
	return target + "?aff=fake"
}

func TestJobRunUsesInjectedDeeplinker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "1" {
			_, _ = w.Write([]byte(`{"offers":[{"id":1,"title":"Beauty sale","merchant_name":"Shop","url":"https://s.example.com/1"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"offers":[]}`))
	}))
	defer srv.Close()

	cfg := &config.AffiliateConfig{
		BaseURL: srv.URL, APIToken: "t", PerPage: 50, MaxPages: 5, WindowDays: 30,
	}
	client := NewCuelinksClient(cfg, testLogger)
	links := &fakeDeeplinker{}
	job := NewJob(client, links, cfg, t.TempDir(), testLogger)

	stats, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats.Fetched != 1 || stats.Kept != 1 || stats.Deeplink != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if links.calls != 1 {
		t.Errorf("injected deeplinker called %d times, want 1", links.calls)
	}
}

// newAdmitadServer serves the token and deeplink endpoints, counting
// token requests.
func newAdmitadServer(t *testing.T, tokenCalls *int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token/", func(w http.ResponseWriter, r *http.Request) {
		*tokenCalls++
		if r.Header.Get("Authorization") == "" {
			http.Error(w, "no auth", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","expires_in":3600}`))
	})
	mux.HandleFunc("/deeplink/w1/advcampaign/c1/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			http.Error(w, "bad token", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`["https://ad.example.com/g/abc?ulp=x"]`))
	})
	return httptest.NewServer(mux)
}

func admitadConfig(base string) *config.AffiliateConfig {
	return &config.AffiliateConfig{
		OAuthTokenURL: base + "/token/",
		OAuthAPIBase:  base,
		ClientID:      "id",
		ClientSecret:  "secret",
		WebsiteID:     "w1",
		CampaignID:    "c1",
	}
}

func TestAdmitadDeeplinkUsesBearerToken(t *testing.T) {
	tokenCalls := 0
	srv := newAdmitadServer(t, &tokenCalls)
	defer srv.Close()

	c := NewAdmitadClient(admitadConfig(srv.URL), testLogger)

	got := c.Deeplink(context.Background(), "https://merchant.example.com/product/1")
	if got != "https://ad.example.com/g/abc?ulp=x" {
		t.Errorf("deeplink = %q", got)
	}
}

func TestAdmitadTokenCachedAcrossDeeplinks(t *testing.T) {
	tokenCalls := 0
	srv := newAdmitadServer(t, &tokenCalls)
	defer srv.Close()

	c := NewAdmitadClient(admitadConfig(srv.URL), testLogger)
	ctx := context.Background()

	c.Deeplink(ctx, "https://merchant.example.com/product/1")
	c.Deeplink(ctx, "https://merchant.example.com/product/2")

	if tokenCalls != 1 {
		t.Errorf("token requested %d times, want 1", tokenCalls)
	}
}

func TestAdmitadDeeplinkPassthroughWhenTokenFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewAdmitadClient(admitadConfig(srv.URL), testLogger)
	target := "https://merchant.example.com/product/1"
	if got := c.Deeplink(context.Background(), target); got != target {
		t.Errorf("deeplink = %q, want passthrough %q", got, target)
	}
}

func TestParseOfferDate(t *testing.T) {
	cases := map[string]bool{
		"2026-08-29T10:00:00Z":  true,
		"2026-08-29 10:00:00":   true,
		"2026-08-29":            true,
		"not a date":            false,
		"":                      false,
	}
	for input, want := range cases {
		got := parseOfferDate(input)
		if got.IsZero() == want {
			t.Errorf("parseOfferDate(%q).IsZero() = %v", input, got.IsZero())
		}
	}
}

func TestOffersPagination(t *testing.T) {
	page := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page++
		w.Header().Set("Content-Type", "application/json")
		if page == 1 {
			_, _ = w.Write([]byte(`{"offers":[{"id":1,"title":"Offer one","merchant_name":"Shop","url":"https://s.example.com/1"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"offers":[]}`))
	}))
	defer srv.Close()

	c := NewCuelinksClient(&config.AffiliateConfig{
		BaseURL: srv.URL, APIToken: "t", PerPage: 50, MaxPages: 5,
	}, testLogger)

	offers, err := c.Offers(context.Background())
	if err != nil {
		t.Fatalf("offers: %v", err)
	}
	if len(offers) != 1 || offers[0].Merchant != "Shop" {
		t.Errorf("offers = %+v", offers)
	}
	if page != 2 {
		t.Errorf("expected pagination to stop after the empty page, made %d requests", page)
	}
}
