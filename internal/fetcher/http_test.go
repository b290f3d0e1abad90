package fetcher

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/raynirmalya/mokshiri-scraper/internal/config"
	"github.com/raynirmalya/mokshiri-scraper/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func newTestFetcher(t *testing.T) *HTTPFetcher {
	t.Helper()
	f, err := NewHTTPFetcher(config.DefaultConfig(), testLogger)
	if err != nil {
		t.Fatalf("new fetcher: %v", err)
	}
	return f
}

func TestFetchPlain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a User-Agent header")
		}
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	defer f.Close()

	req, _ := types.NewRequest(srv.URL)
	resp, err := f.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !resp.IsSuccess() || string(resp.Body) != "<html>ok</html>" {
		t.Errorf("resp = %d %q", resp.StatusCode, resp.Body)
	}
}

func TestFetchGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte("compressed body"))
		_ = gz.Close()
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	defer f.Close()

	req, _ := types.NewRequest(srv.URL)
	resp, err := f.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(resp.Body) != "compressed body" {
		t.Errorf("body = %q", resp.Body)
	}
}

func TestFetchRequestTimeoutOverridesClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		_, _ = w.Write([]byte("too late"))
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	defer f.Close()

	req, _ := types.NewRequest(srv.URL)
	req.Timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := f.Fetch(context.Background(), req)
	if err == nil {
		t.Fatal("expected the per-request timeout to cancel the fetch")
	}
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Errorf("fetch took %v, per-request timeout not applied", elapsed)
	}

	// Without the override the same request goes through fine.
	req2, _ := types.NewRequest(srv.URL)
	if _, err := f.Fetch(context.Background(), req2); err != nil {
		t.Errorf("fetch without override: %v", err)
	}
}

func TestFetch429IsRetryableWithRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	defer f.Close()

	req, _ := types.NewRequest(srv.URL)
	_, err := f.Fetch(context.Background(), req)

	var fetchErr *types.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if !fetchErr.Retryable || fetchErr.RetryAfter != 7*time.Second {
		t.Errorf("retryable=%v retry_after=%s", fetchErr.Retryable, fetchErr.RetryAfter)
	}
}

func TestFetch500IsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	defer f.Close()

	req, _ := types.NewRequest(srv.URL)
	_, err := f.Fetch(context.Background(), req)

	var fetchErr *types.FetchError
	if !errors.As(err, &fetchErr) || !fetchErr.Retryable {
		t.Errorf("expected retryable FetchError, got %v", err)
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d := parseRetryAfter("30"); d != 30*time.Second {
		t.Errorf("seconds form = %s", d)
	}
	if d := parseRetryAfter("999"); d != 120*time.Second {
		t.Errorf("cap = %s", d)
	}
	if d := parseRetryAfter(""); d != 5*time.Second {
		t.Errorf("default = %s", d)
	}
	if d := parseRetryAfter("garbage"); d != 5*time.Second {
		t.Errorf("garbage = %s", d)
	}
}

func TestIsRetryableError(t *testing.T) {
	if isRetryableError(context.Canceled) {
		t.Error("context cancellation must not be retryable")
	}
	if !isRetryableError(io.ErrUnexpectedEOF) {
		t.Error("unexpected EOF should be retryable")
	}
	if isRetryableError(nil) {
		t.Error("nil is not retryable")
	}
	reset := &net.OpError{Op: "read", Err: syscall.ECONNRESET}
	if !isRetryableError(reset) {
		t.Error("ECONNRESET should be retryable")
	}
	refused := &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}
	if !isRetryableError(refused) {
		t.Error("ECONNREFUSED should be retryable")
	}
}

func TestUserAgentRotation(t *testing.T) {
	f := newTestFetcher(t)
	defer f.Close()

	first := f.nextUserAgent()
	second := f.nextUserAgent()
	if first == second {
		t.Errorf("expected rotation, got %q twice", first)
	}
}

func TestDecompressPassthrough(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	r, err := decompressReader(resp, bytes.NewReader([]byte("plain")))
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	body, _ := io.ReadAll(r)
	if string(body) != "plain" {
		t.Errorf("body = %q", body)
	}
}
