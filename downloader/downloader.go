// Package downloader transfers resolved media URLs to a byte sink in fixed
// chunks, with bounded retry, strict append order, and resumable progress.
package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ytget/streamget/internal/logger"
)

const (
	defaultChunkSizeBytes  = 1 << 20 // 1MB
	defaultMaxRetries      = 3       // retries per chunk beyond the first attempt
	temporaryFileSuffix    = ".tmp"
	initialBackoffDuration = 200 * time.Millisecond
	maxBackoffDuration     = 3 * time.Second

	userAgentValue = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36"
)

var log = logger.WithComponent(logger.ComponentDownloader)

// Downloader issues one ranged request per chunk and writes chunks to the
// sink strictly in offset order. The only concurrency is prefetching the next
// chunk while the previous one is being written; chunks are never fetched out
// of order.
type Downloader struct {
	Client       *http.Client
	ProgressFunc func(Progress)

	chunkSize    int64
	maxRetries   int
	rateLimitBps int64
	userAgent    string
}

// New creates a downloader with sane defaults. A nil client uses a default
// http.Client; rateLimitBps zero disables limiting.
func New(client *http.Client, progressFunc func(Progress), rateLimitBps int64) *Downloader {
	if client == nil {
		client = &http.Client{}
	}
	return &Downloader{
		Client:       client,
		ProgressFunc: progressFunc,
		chunkSize:    defaultChunkSizeBytes,
		maxRetries:   defaultMaxRetries,
		rateLimitBps: rateLimitBps,
		userAgent:    userAgentValue,
	}
}

// WithChunkSize overrides the chunk window. Values below 1 are ignored.
func (d *Downloader) WithChunkSize(n int64) *Downloader {
	if n > 0 {
		d.chunkSize = n
	}
	return d
}

// WithMaxRetries overrides the per-chunk retry budget.
func (d *Downloader) WithMaxRetries(n int) *Downloader {
	if n >= 0 {
		d.maxRetries = n
	}
	return d
}

// Request describes one download: the resolved URL, where the bytes go, and
// the identity recorded in the resume marker.
type Request struct {
	URL        string
	OutputPath string
	VideoID    string
	Itag       int
	TotalSize  int64 // 0 when unknown ahead of download
}

// Error is the terminal failure of a download, carrying how far the transfer
// got so the caller can decide between resume and restart.
type Error struct {
	Err          error
	BytesWritten int64
}

func (e *Error) Error() string {
	return fmt.Sprintf("download failed after %d bytes: %v", e.BytesWritten, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Download transfers req.URL into req.OutputPath via a temporary file,
// resuming from an existing resume marker when one is present and consistent.
// The returned session reflects the terminal (or cancelled) state even when
// err is non-nil.
func (d *Downloader) Download(ctx context.Context, req Request) (*Session, error) {
	tmpPath := req.OutputPath + temporaryFileSuffix
	mPath := markerPath(tmpPath)
	ses := NewSession(req.VideoID, req.Itag, req.TotalSize)

	marker, found, err := loadMarker(mPath)
	if !found || err != nil {
		// No usable marker: any stale partial file is garbage.
		_ = os.Remove(tmpPath)
	}

	sink, err := OpenFileSink(tmpPath)
	if err != nil {
		return ses, err
	}
	defer func() { _ = sink.Close() }()

	if found {
		if err := validateResume(marker, ses, sink.Size()); err != nil {
			ses.fail(err)
			return ses, err
		}
		ses.restoreOffset(marker.NextOffset)
		if marker.TotalSize > 0 {
			ses.setTotalSize(marker.TotalSize)
		}
		log.Info("resuming download", map[string]any{"video": req.VideoID, "offset": marker.NextOffset})
	}

	if err := d.Run(ctx, ses, req.URL, sink, mPath); err != nil {
		return ses, err
	}

	removeMarker(mPath)
	if err := os.Rename(tmpPath, req.OutputPath); err != nil {
		return ses, err
	}
	return ses, nil
}

type chunkResult struct {
	data  []byte
	total int64 // from Content-Range, 0 when the server did not say
	err   error
}

type pendingChunk struct {
	start int64
	ch    chan chunkResult
}

// Run executes the engine against a borrowed sink. Invoking it on a session
// already in StateCompleted is a no-op that performs zero requests. markerPath
// may be empty to disable resume persistence.
func (d *Downloader) Run(ctx context.Context, ses *Session, urlStr string, sink Sink, markerPath string) error {
	if ses.State() == StateCompleted {
		return nil
	}
	ses.setState(StateIdle)

	var pending *pendingChunk
	for {
		if err := ctx.Err(); err != nil {
			// Cancelled between chunks: the written prefix stays valid and
			// the marker already points at the next chunk boundary.
			ses.setState(StateIdle)
			return err
		}

		start := ses.nextChunkStart()
		total, known := ses.totalSizeKnown()
		if known && start >= total {
			ses.setState(StateCompleted)
			return nil
		}
		end := start + d.chunkSize - 1
		if known && end > total-1 {
			end = total - 1
		}
		window := end - start + 1

		var res chunkResult
		if pending != nil && pending.start == start {
			res = <-pending.ch
		} else {
			res = d.fetchChunk(ctx, ses, urlStr, start, end, false)
		}
		pending = nil

		if res.err != nil {
			ses.fail(res.err)
			d.report(ses)
			return &Error{Err: res.err, BytesWritten: ses.BytesWritten()}
		}
		if res.total > 0 && !known {
			ses.setTotalSize(res.total)
			total, known = res.total, true
		}

		// Prefetch the next chunk's request while this one is written out.
		gotFull := int64(len(res.data)) >= window
		if gotFull && (!known || end+1 < total) {
			nStart := end + 1
			nEnd := nStart + d.chunkSize - 1
			if known && nEnd > total-1 {
				nEnd = total - 1
			}
			pending = &pendingChunk{start: nStart, ch: make(chan chunkResult, 1)}
			go func(p *pendingChunk, s, e int64) {
				p.ch <- d.fetchChunk(ctx, ses, urlStr, s, e, true)
			}(pending, nStart, nEnd)
		}

		ses.setState(StateWriting)
		if len(res.data) > 0 {
			if _, err := sink.Write(res.data); err != nil {
				werr := fmt.Errorf("write chunk at %d: %w", start, err)
				ses.fail(werr)
				d.report(ses)
				return &Error{Err: werr, BytesWritten: ses.BytesWritten()}
			}
			ses.advance(int64(len(res.data)))
		}
		if markerPath != "" {
			m := Marker{VideoID: ses.VideoID, Itag: ses.Itag, NextOffset: ses.BytesWritten()}
			if t, ok := ses.totalSizeKnown(); ok {
				m.TotalSize = t
			}
			if err := writeMarker(markerPath, m); err != nil {
				log.Warn("resume marker not written", map[string]any{"err": err.Error()})
			}
		}
		d.report(ses)
		d.sleepForRate(int64(len(res.data)))

		written := ses.BytesWritten()
		if known && written >= total {
			ses.setState(StateCompleted)
			d.report(ses)
			return nil
		}
		// Unknown size: a response shorter than the requested window means
		// the server ran out of bytes.
		if !known && !gotFull {
			ses.setState(StateCompleted)
			d.report(ses)
			return nil
		}
	}
}

// fetchChunk requests one byte range, retrying transient failures with
// bounded exponential backoff. The returned error is terminal for the
// session. A background (prefetch) fetch runs concurrently with the main
// goroutine's write, so it records retries but leaves the session state to
// the chunk being written.
func (d *Downloader) fetchChunk(ctx context.Context, ses *Session, urlStr string, start, end int64, background bool) chunkResult {
	backoff := initialBackoffDuration
	var lastErr error
	for attempt := 0; attempt <= d.maxRetries; attempt++ {
		if attempt > 0 {
			if !background {
				ses.setState(StateRetrying)
			}
			ses.recordRetry(start)
			log.Debug("retrying chunk", map[string]any{"start": start, "attempt": attempt, "err": lastErr.Error()})
			select {
			case <-ctx.Done():
				return chunkResult{err: ctx.Err()}
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoffDuration {
				backoff = maxBackoffDuration
			}
		}
		if !background {
			ses.setState(StateRequesting)
		}

		res, transient, err := d.doRange(ctx, urlStr, start, end)
		if err == nil {
			return res
		}
		lastErr = err
		if !transient || ctx.Err() != nil {
			return chunkResult{err: lastErr}
		}
	}
	return chunkResult{err: fmt.Errorf("chunk %d-%d: retry budget exhausted: %w", start, end, lastErr)}
}

// doRange performs a single ranged request. transient reports whether the
// failure is worth retrying.
func (d *Downloader) doRange(ctx context.Context, urlStr string, start, end int64) (chunkResult, bool, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", urlStr, nil)
	if err != nil {
		return chunkResult{}, false, err
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Encoding", "identity")
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", start, end))

	resp, err := d.Client.Do(req)
	if err != nil {
		return chunkResult{}, true, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK && start > 0:
		// The server ignored the Range header; writing its full body at this
		// offset would corrupt the sink.
		_, _ = io.Copy(io.Discard, resp.Body)
		return chunkResult{}, true, fmt.Errorf("server ignored range request at offset %d", start)
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusPartialContent:
		// fine
	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable:
		// Past the end of the resource: an empty chunk, which the engine
		// reads as completion.
		return chunkResult{}, false, nil
	case isTransientStatus(resp.StatusCode):
		_, _ = io.Copy(io.Discard, resp.Body)
		return chunkResult{}, true, fmt.Errorf("HTTP status %d", resp.StatusCode)
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return chunkResult{}, false, fmt.Errorf("HTTP status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return chunkResult{}, true, fmt.Errorf("read chunk body: %w", err)
	}
	return chunkResult{data: data, total: totalFromContentRange(resp.Header.Get("Content-Range"))}, false, nil
}

// isTransientStatus classifies statuses worth retrying: server-side failures
// and rate limiting. Other 4xx codes mean the URL itself is bad or expired.
func isTransientStatus(code int) bool {
	return code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
}

// totalFromContentRange parses the total length out of "bytes 0-99/12345".
func totalFromContentRange(cr string) int64 {
	if cr == "" {
		return 0
	}
	parts := strings.Split(cr, "/")
	if len(parts) != 2 {
		return 0
	}
	v, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func (d *Downloader) report(ses *Session) {
	if d.ProgressFunc != nil {
		d.ProgressFunc(ses.Snapshot())
	}
}

// sleepForRate enforces a simple rate limit based on bytes just written.
func (d *Downloader) sleepForRate(written int64) {
	if d.rateLimitBps <= 0 || written <= 0 {
		return
	}
	dur := time.Duration(int64(time.Second) * written / d.rateLimitBps)
	if dur > 0 {
		time.Sleep(dur)
	}
}
