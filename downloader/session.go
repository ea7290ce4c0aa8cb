package downloader

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/ytget/streamget/errs"
)

// Progress is a read-only snapshot of an ongoing download.
type Progress struct {
	TotalSize      int64
	DownloadedSize int64
	Percent        float64
	State          State
}

// Session tracks one download: identity, cursor, state, and per-chunk retry
// counts. The engine owns the session exclusively for the duration of the
// transfer; observers get snapshots only.
type Session struct {
	VideoID string
	Itag    int

	mu         sync.Mutex
	totalSize  int64 // 0 while unknown
	nextOffset int64
	state      State
	retries    map[int64]int // chunk start offset -> retries spent
	lastErr    error
}

// NewSession creates a session at offset zero. totalSize may be zero when the
// content length is not known ahead of the download.
func NewSession(videoID string, itag int, totalSize int64) *Session {
	return &Session{
		VideoID:   videoID,
		Itag:      itag,
		totalSize: totalSize,
		state:     StateIdle,
		retries:   make(map[int64]int),
	}
}

// Snapshot returns the current progress.
func (s *Session) Snapshot() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := Progress{
		TotalSize:      s.totalSize,
		DownloadedSize: s.nextOffset,
		State:          s.state,
	}
	if s.totalSize > 0 {
		p.Percent = float64(s.nextOffset) / float64(s.totalSize) * 100
	}
	return p
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// BytesWritten returns the number of bytes flushed to the sink so far.
func (s *Session) BytesWritten() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextOffset
}

// RetryCount reports how many retries were spent on the chunk starting at
// offset.
func (s *Session) RetryCount(offset int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retries[offset]
}

// Err returns the error that moved the session to StateFailed, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Session) setTotalSize(n int64) {
	s.mu.Lock()
	s.totalSize = n
	s.mu.Unlock()
}

func (s *Session) totalSizeKnown() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalSize, s.totalSize > 0
}

func (s *Session) nextChunkStart() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextOffset
}

func (s *Session) advance(n int64) {
	s.mu.Lock()
	s.nextOffset += n
	s.mu.Unlock()
}

func (s *Session) recordRetry(offset int64) {
	s.mu.Lock()
	s.retries[offset]++
	s.mu.Unlock()
}

func (s *Session) fail(err error) {
	s.mu.Lock()
	s.state = StateFailed
	s.lastErr = err
	s.mu.Unlock()
}

// restoreOffset seeds the cursor from a resume marker.
func (s *Session) restoreOffset(offset int64) {
	s.mu.Lock()
	s.nextOffset = offset
	s.mu.Unlock()
}

// Marker is the persisted resume state, written as a JSON sidecar next to the
// partial file after every flushed chunk.
type Marker struct {
	VideoID    string `json:"video_id"`
	Itag       int    `json:"itag"`
	NextOffset int64  `json:"next_offset"`
	TotalSize  int64  `json:"total_size,omitempty"`
}

func markerPath(outputPath string) string {
	return outputPath + ".resume"
}

func writeMarker(path string, m Marker) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func loadMarker(path string) (Marker, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Marker{}, false, nil
	}
	if err != nil {
		return Marker{}, false, err
	}
	var m Marker
	if err := json.Unmarshal(data, &m); err != nil {
		return Marker{}, false, err
	}
	return m, true, nil
}

func removeMarker(path string) {
	_ = os.Remove(path)
}

// validateResume checks a loaded marker against the session identity and the
// sink's current length. A disagreement means the partial file does not match
// what the marker promises, and resuming would corrupt the output.
func validateResume(m Marker, s *Session, sinkSize int64) error {
	if m.VideoID != s.VideoID || m.Itag != s.Itag {
		return fmt.Errorf("%w: marker is for %s/itag %d, session is %s/itag %d",
			errs.ErrResumeMismatch, m.VideoID, m.Itag, s.VideoID, s.Itag)
	}
	if m.NextOffset != sinkSize {
		return fmt.Errorf("%w: marker offset %d, sink length %d", errs.ErrResumeMismatch, m.NextOffset, sinkSize)
	}
	return nil
}
