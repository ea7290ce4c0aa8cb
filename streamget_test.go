package streamget

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ytget/streamget/errs"
	"github.com/ytget/streamget/types"
	"github.com/ytget/streamget/youtube/player"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
		wantErr  bool
	}{
		{
			name:     "watch url",
			url:      "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			expected: "dQw4w9WgXcQ",
		},
		{
			name:     "watch url without www",
			url:      "https://youtube.com/watch?v=dQw4w9WgXcQ",
			expected: "dQw4w9WgXcQ",
		},
		{
			name:     "mobile url",
			url:      "https://m.youtube.com/watch?v=dQw4w9WgXcQ",
			expected: "dQw4w9WgXcQ",
		},
		{
			name:     "short url",
			url:      "https://youtu.be/dQw4w9WgXcQ",
			expected: "dQw4w9WgXcQ",
		},
		{
			name:     "shorts url",
			url:      "https://www.youtube.com/shorts/abc123DEF45",
			expected: "abc123DEF45",
		},
		{
			name:     "embed url",
			url:      "https://www.youtube.com/embed/abc123DEF45",
			expected: "abc123DEF45",
		},
		{
			name:    "watch without v param",
			url:     "https://www.youtube.com/watch",
			wantErr: true,
		},
		{
			name:    "empty short url",
			url:     "https://youtu.be/",
			wantErr: true,
		},
		{
			name:    "unrelated host",
			url:     "https://example.com/watch?v=dQw4w9WgXcQ",
			wantErr: true,
		},
		{
			name:    "not a url",
			url:     "://bad",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractVideoID(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("extractVideoID(%q) = %q, want %q", tt.url, got, tt.expected)
			}
		})
	}
}

func playabilityResp(status, reason string) *player.Response {
	resp := &player.Response{}
	resp.PlayabilityStatus.Status = status
	resp.PlayabilityStatus.Reason = reason
	return resp
}

func TestMapPlayability(t *testing.T) {
	tests := []struct {
		name   string
		status string
		reason string
		want   error
	}{
		{name: "ok", status: "OK", want: nil},
		{name: "empty status passes", status: "", want: nil},
		{name: "error generic", status: "ERROR", reason: "Video unavailable", want: errs.ErrVideoUnavailable},
		{name: "error geo", status: "ERROR", reason: "The uploader has not made this video available in your country", want: errs.ErrGeoBlocked},
		{name: "error rate limit", status: "ERROR", reason: "Rate limit exceeded", want: errs.ErrRateLimited},
		{name: "login required", status: "LOGIN_REQUIRED", reason: "Sign in to confirm your age", want: errs.ErrAgeRestricted},
		{name: "unplayable private", status: "UNPLAYABLE", reason: "This video is private", want: errs.ErrPrivate},
		{name: "unplayable other", status: "UNPLAYABLE", reason: "Something else", want: errs.ErrVideoUnavailable},
		{name: "unknown status", status: "WEIRD", want: errs.ErrVideoUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapPlayability(playabilityResp(tt.status, tt.reason))
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("mapPlayability = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNeedsScript(t *testing.T) {
	tests := []struct {
		name     string
		format   types.Format
		expected bool
	}{
		{
			name:     "ciphered",
			format:   types.Format{SignatureCipher: "s=x&url=y"},
			expected: true,
		},
		{
			name:     "direct without n",
			format:   types.Format{URL: "https://host/videoplayback?itag=22"},
			expected: false,
		},
		{
			name:     "direct with n",
			format:   types.Format{URL: "https://host/videoplayback?itag=22&n=abc"},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := needsScript(tt.format); got != tt.expected {
				t.Errorf("needsScript = %v, want %v", got, tt.expected)
			}
		})
	}
}

const scrapedWatchPage = `<html><script>var ytInitialPlayerResponse = {"playabilityStatus":{"status":"OK"},"videoDetails":{"videoId":"dQw4w9WgXcQ","title":"clip","author":"someone","lengthSeconds":"10"},"streamingData":{"formats":[{"itag":18,"mimeType":"video/mp4","signatureCipher":"s=abcdef&sp=sig&url=https%3A%2F%2Fhost%2Fvideoplayback%3Fexpire%3D1700000000"}],"adaptiveFormats":[]}};</script>
<script>ytcfg={"jsUrl":"/s/player/0004de42/base.js"};</script></html>`

const scrapedPlayerScript = `var Ak={pJ:function(a){a.reverse()},vN:function(a,b){a.splice(0,b)},u2:function(a,b){var c=a[0];a[0]=a[b%a.length];a[b%a.length]=c}};
var hD=function(a){a=a.split("");Ak.vN(a,2);Ak.u2(a,3);Ak.pJ(a);return a.join("")};`

// Entry function calls into a helper object the script never defines, so both
// structural extraction and the VM fallback fail.
const brokenPlayerScript = `var hD=function(a){a=a.split("");Zz.pJ(a);return a.join("")};`

// scrapeTransport serves a watch page for /watch requests and player scripts
// for base.js requests, counting hits. Successive script requests walk the
// scripts slice, sticking on the last entry.
type scrapeTransport struct {
	page    string
	scripts []string

	pageHits   int64
	scriptHits int64
}

func (rt *scrapeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body string
	status := http.StatusOK
	switch {
	case strings.HasPrefix(req.URL.Path, "/watch"):
		atomic.AddInt64(&rt.pageHits, 1)
		body = rt.page
	case strings.HasSuffix(req.URL.Path, "base.js"):
		n := atomic.AddInt64(&rt.scriptHits, 1)
		i := int(n) - 1
		if i >= len(rt.scripts) {
			i = len(rt.scripts) - 1
		}
		body = rt.scripts[i]
	default:
		status = http.StatusNotFound
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func TestResolveReusesCachedScript(t *testing.T) {
	rt := &scrapeTransport{page: scrapedWatchPage, scripts: []string{scrapedPlayerScript}}
	d := New().WithHTTPClient(&http.Client{Transport: rt})

	for i := 0; i < 2; i++ {
		mediaURL, info, err := d.ResolveURL(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
		if err != nil {
			t.Fatalf("ResolveURL call %d error: %v", i+1, err)
		}
		if info.ID != "dQw4w9WgXcQ" || info.Title != "clip" {
			t.Errorf("info = %+v", info)
		}
		if !strings.Contains(mediaURL, "sig=cedf") {
			t.Errorf("media url not descrambled: %q", mediaURL)
		}
	}

	if got := atomic.LoadInt64(&rt.pageHits); got != 2 {
		t.Errorf("watch page fetched %d times, want 2", got)
	}
	if got := atomic.LoadInt64(&rt.scriptHits); got != 1 {
		t.Errorf("player script fetched %d times, want once across calls", got)
	}
}

func TestResolveRetriesWithFreshScript(t *testing.T) {
	rt := &scrapeTransport{page: scrapedWatchPage, scripts: []string{brokenPlayerScript, scrapedPlayerScript}}
	d := New().WithHTTPClient(&http.Client{Transport: rt})

	mediaURL, _, err := d.ResolveURL(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("ResolveURL error: %v", err)
	}
	if !strings.Contains(mediaURL, "sig=cedf") {
		t.Errorf("media url not descrambled after retry: %q", mediaURL)
	}
	// The retry must not resolve against the script that just failed.
	if got := atomic.LoadInt64(&rt.scriptHits); got != 2 {
		t.Errorf("player script fetched %d times, want a fresh fetch on retry", got)
	}
}

func TestChainableSetters(t *testing.T) {
	d := New().
		WithFormat("itag=22", ".MP4").
		WithOutputPath("/tmp/out").
		WithRateLimit(-5).
		WithChunkSize(1 << 16).
		WithMaxRetries(5)

	if d.options.FormatSelector != "itag=22" {
		t.Errorf("FormatSelector = %q", d.options.FormatSelector)
	}
	if d.options.DesiredExt != "mp4" {
		t.Errorf("DesiredExt = %q, want normalized", d.options.DesiredExt)
	}
	if d.options.OutputPath != "/tmp/out" {
		t.Errorf("OutputPath = %q", d.options.OutputPath)
	}
	if d.options.RateLimitBps != 0 {
		t.Errorf("negative rate limit should clamp to 0, got %d", d.options.RateLimitBps)
	}
	if d.options.ChunkSize != 1<<16 || d.options.MaxRetries != 5 {
		t.Errorf("chunk/retries = %d/%d", d.options.ChunkSize, d.options.MaxRetries)
	}
}
