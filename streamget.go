// Package streamget provides a high-level API for resolving and downloading
// videos from the platform: watch-page scraping, player-response parsing,
// signature descrambling, and a chunked resumable download engine.
package streamget

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/ytget/streamget/client"
	"github.com/ytget/streamget/downloader"
	"github.com/ytget/streamget/errs"
	"github.com/ytget/streamget/internal/logger"
	"github.com/ytget/streamget/internal/mimeext"
	"github.com/ytget/streamget/internal/sanitize"
	"github.com/ytget/streamget/types"
	"github.com/ytget/streamget/youtube/cipher"
	"github.com/ytget/streamget/youtube/formats"
	"github.com/ytget/streamget/youtube/player"
)

var log = logger.WithComponent(logger.ComponentApp)

// VideoInfo contains basic video metadata and the full list of available
// formats.
type VideoInfo = types.VideoInfo

// Format describes an available media format.
type Format = types.Format

// Progress describes current progress of an ongoing download.
type Progress struct {
	TotalSize      int64
	DownloadedSize int64
	Percent        float64
}

// DownloadOptions contains configuration for a single download invocation.
//
// Use chainable setters on Downloader to populate these options.
type DownloadOptions struct {
	FormatSelector string
	DesiredExt     string
	OutputPath     string
	HTTPClient     *http.Client
	ProgressFunc   func(Progress)
	RateLimitBps   int64
	ChunkSize      int64
	MaxRetries     int
}

// Downloader provides a high-level API for retrieving metadata and
// downloading videos. The cipher cache and the fetched player script persist
// across calls, so repeated downloads against the same player release skip
// both the script download and re-extraction.
type Downloader struct {
	options DownloadOptions
	cache   *cipher.Cache
	fetcher *player.Fetcher
}

// startPprofServer starts a pprof server for debugging
func startPprofServer() {
	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

		log.Info("starting pprof server", map[string]any{"addr": ":6060"})
		if err := http.ListenAndServe(":6060", mux); err != nil {
			log.Warn("pprof server stopped", map[string]any{"err": err.Error()})
		}
	}()
}

// New creates a new Downloader instance with default options.
func New() *Downloader {
	if os.Getenv("STREAMGET_PPROF") == "1" {
		startPprofServer()
	}
	return &Downloader{cache: cipher.NewCache(), fetcher: player.NewFetcher(nil)}
}

// WithFormat sets a format selector and optional desired extension.
// Examples: "itag=22", "best", "height<=480". Extension is case-insensitive.
func (d *Downloader) WithFormat(quality, ext string) *Downloader {
	d.options.FormatSelector = quality
	d.options.DesiredExt = strings.TrimPrefix(strings.ToLower(ext), ".")
	return d
}

// WithHTTPClient sets a custom HTTP client to be used for all network calls.
func (d *Downloader) WithHTTPClient(client *http.Client) *Downloader {
	d.options.HTTPClient = client
	return d
}

// WithProgress registers a callback that receives progress updates.
func (d *Downloader) WithProgress(f func(Progress)) *Downloader {
	d.options.ProgressFunc = f
	return d
}

// WithOutputPath sets the output file path. If empty, a safe filename is
// derived from the video title and mime extension. If a directory path is
// provided, a safe filename is derived and placed inside that directory.
func (d *Downloader) WithOutputPath(path string) *Downloader {
	d.options.OutputPath = path
	return d
}

// WithRateLimit sets a download rate limit in bytes per second. Zero disables
// limiting.
func (d *Downloader) WithRateLimit(bytesPerSecond int64) *Downloader {
	if bytesPerSecond < 0 {
		bytesPerSecond = 0
	}
	d.options.RateLimitBps = bytesPerSecond
	return d
}

// WithChunkSize overrides the download chunk size in bytes. Values below 1
// are ignored.
func (d *Downloader) WithChunkSize(n int64) *Downloader {
	d.options.ChunkSize = n
	return d
}

// WithMaxRetries overrides the per-chunk retry budget.
func (d *Downloader) WithMaxRetries(n int) *Downloader {
	d.options.MaxRetries = n
	return d
}

// resolved is the outcome of one resolution attempt.
type resolved struct {
	media  *formats.ResolvedURL
	format types.Format
	info   *VideoInfo
}

// ResolveURL performs the metadata fetch and URL resolution, returning the
// final media URL and basic info.
func (d *Downloader) ResolveURL(ctx context.Context, videoURL string) (string, *VideoInfo, error) {
	res, err := d.resolve(ctx, videoURL)
	if err != nil {
		return "", nil, err
	}
	return res.media.URL, res.info, nil
}

// resolve runs the scrape-parse-select-resolve pipeline. A resolution failure
// is retried once against a fresh page fetch, which can carry a newer player
// script; the cached script is dropped first so the retry never runs against
// the script that just failed.
func (d *Downloader) resolve(ctx context.Context, videoURL string) (*resolved, error) {
	videoID, err := extractVideoID(videoURL)
	if err != nil {
		return nil, fmt.Errorf("extract video id: %w", err)
	}
	log.Debug("resolving video", map[string]any{"id": videoID})

	httpClient := d.options.HTTPClient
	if httpClient == nil {
		httpClient = client.New().HTTPClient
	}
	d.fetcher.HTTPClient = httpClient

	res, err := d.resolveOnce(ctx, videoURL, videoID)
	var resErr *errs.ResolutionError
	if err != nil && errors.As(err, &resErr) {
		log.Warn("resolution failed, retrying with fresh page", map[string]any{
			"id": videoID, "reason": string(resErr.Reason),
		})
		d.fetcher.InvalidateScripts()
		return d.resolveOnce(ctx, videoURL, videoID)
	}
	return res, err
}

func (d *Downloader) resolveOnce(ctx context.Context, videoURL, videoID string) (*resolved, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := d.fetcher.WatchPage(videoURL)
	if err != nil {
		return nil, err
	}
	raw, err := player.ExtractResponse(page)
	if err != nil {
		return nil, err
	}
	resp, err := player.Parse(raw)
	if err != nil {
		return nil, err
	}
	if err := mapPlayability(resp); err != nil {
		return nil, err
	}

	available, err := formats.Parse(resp)
	if err != nil {
		return nil, err
	}
	selected := formats.Select(available, d.options.FormatSelector, d.options.DesiredExt)
	if selected == nil {
		return nil, fmt.Errorf("%w: no format matches %q", errs.ErrUnsupportedStream, d.options.FormatSelector)
	}

	var script string
	if needsScript(*selected) {
		scriptURL, err := player.ExtractScriptURL(page)
		if err != nil {
			return nil, errs.NewResolutionError(errs.ReasonCipherExtraction, selected.Itag, err)
		}
		script, err = d.fetcher.Script(scriptURL)
		if err != nil {
			return nil, errs.NewResolutionError(errs.ReasonCipherExtraction, selected.Itag, err)
		}
	}

	resolver := formats.NewResolver(script, d.cache)
	media, err := resolver.Resolve(*selected)
	if err != nil {
		return nil, err
	}

	details := resp.Details()
	info := &VideoInfo{
		ID:       videoID,
		Title:    details.Title,
		Author:   details.Author,
		Duration: details.Duration,
		Formats:  available,
	}
	return &resolved{media: media, format: *selected, info: info}, nil
}

// needsScript reports whether resolving f requires the player script: either
// the URL is ciphered, or a direct URL carries a throttle-defeat parameter.
func needsScript(f types.Format) bool {
	if !f.HasDirectURL() {
		return true
	}
	u, err := url.Parse(f.URL)
	if err != nil {
		return true
	}
	return u.Query().Get("n") != ""
}

// mapPlayability converts the platform's playability verdict into sentinel
// errors. An OK status passes through.
func mapPlayability(resp *player.Response) error {
	status := strings.ToUpper(resp.PlayabilityStatus.Status)
	reason := strings.ToLower(resp.PlayabilityStatus.Reason)
	switch status {
	case "", "OK":
		return nil
	case "ERROR":
		if strings.Contains(reason, "geograph") || strings.Contains(reason, "available in your country") {
			return errs.ErrGeoBlocked
		}
		if strings.Contains(reason, "rate limit") || strings.Contains(reason, "quota") {
			return errs.ErrRateLimited
		}
		return errs.ErrVideoUnavailable
	case "LOGIN_REQUIRED":
		return errs.ErrAgeRestricted
	case "UNPLAYABLE":
		if strings.Contains(reason, "private") {
			return errs.ErrPrivate
		}
		return errs.ErrVideoUnavailable
	default:
		return errs.ErrVideoUnavailable
	}
}

// Download retrieves video metadata, resolves the media URL, and downloads to
// disk. Interrupted downloads resume from the persisted marker on the next
// invocation with the same output path.
func (d *Downloader) Download(ctx context.Context, videoURL string) (*VideoInfo, error) {
	res, err := d.resolve(ctx, videoURL)
	if err != nil {
		return nil, err
	}
	log.Info("starting download", map[string]any{"id": res.info.ID, "itag": res.format.Itag})

	dl := downloader.New(d.options.HTTPClient, func(p downloader.Progress) {
		if d.options.ProgressFunc != nil {
			d.options.ProgressFunc(Progress{
				TotalSize:      p.TotalSize,
				DownloadedSize: p.DownloadedSize,
				Percent:        p.Percent,
			})
		}
	}, d.options.RateLimitBps)
	if d.options.ChunkSize > 0 {
		dl.WithChunkSize(d.options.ChunkSize)
	}
	if d.options.MaxRetries > 0 {
		dl.WithMaxRetries(d.options.MaxRetries)
	}

	outputPath, err := d.outputPathFor(res)
	if err != nil {
		return nil, err
	}

	if _, err := dl.Download(ctx, downloader.Request{
		URL:        res.media.URL,
		OutputPath: outputPath,
		VideoID:    res.info.ID,
		Itag:       res.format.Itag,
		TotalSize:  res.format.Size,
	}); err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	return res.info, nil
}

// outputPathFor applies the output path rules: explicit file path as-is,
// directory gets a derived safe filename, empty derives one in the working
// directory.
func (d *Downloader) outputPathFor(res *resolved) (string, error) {
	name := sanitize.ToSafeFilename(res.info.Title, mimeext.ExtFromMime(res.format.MimeType))
	path := d.options.OutputPath
	if path == "" {
		return name, nil
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return filepath.Join(path, name), nil
	}
	return path, nil
}

func extractVideoID(videoURL string) (string, error) {
	u, err := url.Parse(videoURL)
	if err != nil {
		return "", err
	}
	if u.Host == "youtu.be" {
		id := strings.TrimPrefix(u.Path, "/")
		if id == "" {
			return "", fmt.Errorf("invalid video url %q", videoURL)
		}
		return id, nil
	}
	host := strings.TrimPrefix(u.Host, "www.")
	if host == "youtube.com" || host == "m.youtube.com" {
		switch {
		case strings.HasPrefix(u.Path, "/watch"):
			if v := u.Query().Get("v"); v != "" {
				return v, nil
			}
		case strings.HasPrefix(u.Path, "/shorts/"), strings.HasPrefix(u.Path, "/embed/"):
			parts := strings.Split(strings.Trim(u.Path, "/"), "/")
			if len(parts) == 2 && parts[1] != "" {
				return parts[1], nil
			}
		}
	}
	return "", fmt.Errorf("invalid video url %q", videoURL)
}
