package infra

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCacheGetSet(t *testing.T) {
	c := NewCache(time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}

	c.Set("k", 42)
	v, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if v.(int) != 42 {
		t.Errorf("got %v, want 42", v)
	}

	c.Invalidate("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after Invalidate")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(10 * time.Millisecond)
	c.Set("k", "v")
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestRateLimiterAllowsBurst(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := rl.Wait(ctx); err != nil {
			t.Fatalf("Wait %d: %v", i, err)
		}
	}
}

func TestRateLimiterHonorsContext(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	ctx := context.Background()
	if err := rl.Wait(ctx); err != nil {
		t.Fatalf("first Wait: %v", err)
	}

	// Bucket drained; second Wait must unblock via cancellation.
	cctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	err := rl.Wait(cctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestDoGetSetsHeaders(t *testing.T) {
	var gotUA, gotCustom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCustom = r.Header.Get("Accept")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c, err := NewHTTPClient(5*time.Second, "")
	if err != nil {
		t.Fatal(err)
	}
	data, err := c.GetBytes(context.Background(), srv.URL, map[string]string{"Accept": "application/json"})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "ok" {
		t.Errorf("body = %q", data)
	}
	if gotUA != DefaultUserAgent {
		t.Errorf("user agent = %q", gotUA)
	}
	if gotCustom != "application/json" {
		t.Errorf("accept override = %q", gotCustom)
	}
}

func TestDoGetErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	c, err := NewHTTPClient(5*time.Second, "")
	if err != nil {
		t.Fatal(err)
	}
	_, status, err := c.DoGet(context.Background(), srv.URL, nil)
	if err == nil {
		t.Fatal("expected error for 403")
	}
	var httpErr *ErrHTTP
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *ErrHTTP, got %T", err)
	}
	if status != http.StatusForbidden || httpErr.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d / %d", status, httpErr.StatusCode)
	}
}

func TestParseProxyURL(t *testing.T) {
	u, err := parseProxyURL("user:pass@proxy.example.com:8080")
	if err != nil {
		t.Fatal(err)
	}
	if u.Scheme != "http" || u.Host != "proxy.example.com:8080" {
		t.Errorf("parsed %q / %q", u.Scheme, u.Host)
	}

	u, err = parseProxyURL("https://proxy.example.com:9000")
	if err != nil {
		t.Fatal(err)
	}
	if u.Scheme != "https" {
		t.Errorf("scheme = %q", u.Scheme)
	}
}
