package player

import (
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/ytget/streamget/internal/logger"
)

const (
	userAgentValue = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36"

	// One player-script revision serves a watch page for a while; refetching
	// it per stream would be pure waste.
	scriptTTL = 10 * time.Minute
)

var log = logger.WithComponent(logger.ComponentPlayer)

// Fetcher retrieves watch pages and player scripts over HTTP, with a TTL
// cache for scripts shared by all streams of a page fetch.
type Fetcher struct {
	HTTPClient *http.Client
	UserAgent  string

	mu      sync.Mutex
	scripts map[string]scriptEntry
}

type scriptEntry struct {
	body  string
	expAt time.Time
}

// NewFetcher creates a Fetcher. A nil client uses http.DefaultClient.
func NewFetcher(httpClient *http.Client) *Fetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Fetcher{
		HTTPClient: httpClient,
		UserAgent:  userAgentValue,
		scripts:    make(map[string]scriptEntry),
	}
}

// WatchPage fetches the watch-page document for a video URL.
func (f *Fetcher) WatchPage(videoURL string) (string, error) {
	body, err := f.get(videoURL)
	if err != nil {
		return "", fmt.Errorf("fetch watch page: %w", err)
	}
	return string(body), nil
}

// Script fetches the player script at scriptURL, serving repeats from the TTL
// cache.
func (f *Fetcher) Script(scriptURL string) (string, error) {
	f.mu.Lock()
	if e, ok := f.scripts[scriptURL]; ok && time.Now().Before(e.expAt) {
		f.mu.Unlock()
		return e.body, nil
	}
	f.mu.Unlock()

	body, err := f.get(scriptURL)
	if err != nil {
		return "", fmt.Errorf("fetch player script: %w", err)
	}
	log.Debug("fetched player script", map[string]any{"url": scriptURL, "bytes": len(body)})

	f.mu.Lock()
	f.scripts[scriptURL] = scriptEntry{body: string(body), expAt: time.Now().Add(scriptTTL)}
	f.mu.Unlock()
	return string(body), nil
}

// InvalidateScripts drops all cached scripts so the next Script call hits the
// network. Used before retrying a failed resolution, which must run against a
// freshly fetched script rather than the cached one.
func (f *Fetcher) InvalidateScripts() {
	f.mu.Lock()
	f.scripts = make(map[string]scriptEntry)
	f.mu.Unlock()
}

func (f *Fetcher) get(url string) ([]byte, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	ua := f.UserAgent
	if ua == "" {
		ua = userAgentValue
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return decodeBody(resp)
}

// decodeBody reads the response body, undoing any content encoding the server
// chose.
func decodeBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer func() { _ = gz.Close() }()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		// The platform sends raw DEFLATE, not zlib-wrapped.
		fr := flate.NewReader(resp.Body)
		defer func() { _ = fr.Close() }()
		reader = fr
	}
	return io.ReadAll(reader)
}
