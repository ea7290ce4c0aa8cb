package player

import (
	"compress/flate"
	"compress/gzip"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/andybalholm/brotli"
)

func TestFetcherWatchPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Error("request carries no User-Agent")
		}
		_, _ = w.Write([]byte("<html>watch page</html>"))
	}))
	defer server.Close()

	f := NewFetcher(server.Client())
	page, err := f.WatchPage(server.URL)
	if err != nil {
		t.Fatalf("WatchPage error: %v", err)
	}
	if page != "<html>watch page</html>" {
		t.Errorf("page = %q", page)
	}
}

func TestFetcherDecodesGzip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte("gzipped body"))
		_ = gz.Close()
	}))
	defer server.Close()

	f := NewFetcher(server.Client())
	page, err := f.WatchPage(server.URL)
	if err != nil {
		t.Fatalf("WatchPage error: %v", err)
	}
	if page != "gzipped body" {
		t.Errorf("page = %q, want %q", page, "gzipped body")
	}
}

func TestFetcherDecodesBrotli(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "br")
		bw := brotli.NewWriter(w)
		_, _ = bw.Write([]byte("brotli body"))
		_ = bw.Close()
	}))
	defer server.Close()

	f := NewFetcher(server.Client())
	page, err := f.WatchPage(server.URL)
	if err != nil {
		t.Fatalf("WatchPage error: %v", err)
	}
	if page != "brotli body" {
		t.Errorf("page = %q, want %q", page, "brotli body")
	}
}

func TestFetcherDecodesDeflate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "deflate")
		fw, err := flate.NewWriter(w, flate.DefaultCompression)
		if err != nil {
			t.Errorf("flate writer: %v", err)
			return
		}
		_, _ = fw.Write([]byte("deflated body"))
		_ = fw.Close()
	}))
	defer server.Close()

	f := NewFetcher(server.Client())
	page, err := f.WatchPage(server.URL)
	if err != nil {
		t.Fatalf("WatchPage error: %v", err)
	}
	if page != "deflated body" {
		t.Errorf("page = %q, want %q", page, "deflated body")
	}
}

func TestFetcherScriptCache(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		_, _ = w.Write([]byte("var player=1;"))
	}))
	defer server.Close()

	f := NewFetcher(server.Client())
	for i := 0; i < 3; i++ {
		body, err := f.Script(server.URL)
		if err != nil {
			t.Fatalf("Script error: %v", err)
		}
		if body != "var player=1;" {
			t.Errorf("body = %q", body)
		}
	}
	if got := atomic.LoadInt64(&hits); got != 1 {
		t.Errorf("server hit %d times, want 1", got)
	}
}

func TestFetcherInvalidateScripts(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		_, _ = w.Write([]byte("var player=1;"))
	}))
	defer server.Close()

	f := NewFetcher(server.Client())
	if _, err := f.Script(server.URL); err != nil {
		t.Fatalf("Script error: %v", err)
	}
	f.InvalidateScripts()
	if _, err := f.Script(server.URL); err != nil {
		t.Fatalf("Script error after invalidation: %v", err)
	}
	if got := atomic.LoadInt64(&hits); got != 2 {
		t.Errorf("server hit %d times, want 2", got)
	}
}

func TestFetcherNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	f := NewFetcher(server.Client())
	if _, err := f.WatchPage(server.URL); err == nil {
		t.Fatal("expected error for 403")
	}
}
