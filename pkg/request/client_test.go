package request

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adityahase/search/pkg/tracker"
)

func testConfig() ClientConfig {
	return ClientConfig{
		Retries:   3,
		Timeout:   5 * time.Second,
		BaseDelay: time.Millisecond,
		MaxDelay:  5 * time.Millisecond,
	}
}

func TestGetSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Error("expected User-Agent header to be set")
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	tr := tracker.New()
	c := New(tr, testConfig())

	body, err := c.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("unexpected body: %s", body)
	}

	stats := tr.Snapshot()
	host := stats[serverHost(t, server)]
	if host.APISuccess != 1 {
		t.Errorf("expected 1 APISuccess, got %d", host.APISuccess)
	}
}

func TestGetRetriesOn500(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	c := New(tracker.New(), testConfig())

	body, err := c.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("unexpected body: %s", body)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("expected 3 attempts, got %d", n)
	}
}

func TestGetExhaustsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	tr := tracker.New()
	c := New(tr, testConfig())

	_, err := c.Get(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}

	if f := tr.Snapshot()[serverHost(t, server)].APIFailures; f != 1 {
		t.Errorf("expected 1 APIFailure, got %d", f)
	}
}

func TestGetClientErrorNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := New(tracker.New(), testConfig())

	_, err := c.Get(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected 1 attempt for 4xx, got %d", n)
	}
}

func TestGetContextCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer server.Close()

	c := New(tracker.New(), testConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.Get(ctx, server.URL)
	if err == nil {
		t.Fatal("expected context error")
	}
}

func TestNormalizeProvider(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"www.wikidata.org", "wikidata"},
		{"query.wikidata.org", "wikidata"},
		{"wikidata.org", "wikidata"},
		{"example.com", "example.com"},
	}

	for _, tt := range tests {
		if got := normalizeProvider(tt.host); got != tt.want {
			t.Errorf("normalizeProvider(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}

// serverHost extracts the provider key a httptest server's requests are
// tracked under (the raw host:port, since it is not a wikidata domain).
func serverHost(t *testing.T, server *httptest.Server) string {
	t.Helper()
	return server.Listener.Addr().String()
}
