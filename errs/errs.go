package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrVideoUnavailable indicates that the requested video cannot be accessed.
	ErrVideoUnavailable = errors.New("video unavailable")
	// ErrPrivate indicates that the video is private and cannot be downloaded.
	ErrPrivate = errors.New("video is private")
	// ErrAgeRestricted indicates that the video has an age restriction.
	ErrAgeRestricted = errors.New("age restricted")
	// ErrGeoBlocked indicates the video is not available in the current region.
	ErrGeoBlocked = errors.New("geo blocked")
	// ErrRateLimited indicates throttling or rate limiting by the remote service.
	ErrRateLimited = errors.New("rate limited")

	// ErrMalformedResponse indicates the player response is missing the
	// expected stream-list fields. The page fetch must be redone.
	ErrMalformedResponse = errors.New("malformed player response")
	// ErrUnsupportedStream indicates a single stream entry carries neither a
	// direct URL nor a signature cipher. Per-entry, skip-and-continue.
	ErrUnsupportedStream = errors.New("unsupported stream entry")
	// ErrCipherExtraction indicates the transform program could not be
	// recovered from the player script. Not retryable within the same page.
	ErrCipherExtraction = errors.New("cipher extraction failed")
	// ErrResumeMismatch indicates the sink length disagrees with the resume
	// marker. The download must be restarted from scratch.
	ErrResumeMismatch = errors.New("resume offset mismatch")
)

// ResolutionReason classifies why URL resolution failed.
type ResolutionReason string

const (
	ReasonCipherExtraction ResolutionReason = "cipher_extraction"
	ReasonMissingBaseURL   ResolutionReason = "missing_base_url"
	ReasonMalformedQuery   ResolutionReason = "malformed_query"
	ReasonThrottleParam    ResolutionReason = "throttle_param"
)

// ResolutionError reports a failed URL resolution with its reason. Callers may
// retry resolution once against a fresh page fetch, never against the same
// player script.
type ResolutionError struct {
	Reason ResolutionReason
	Itag   int
	Err    error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resolution failed (%s) for itag %d: %v", e.Reason, e.Itag, e.Err)
	}
	return fmt.Sprintf("resolution failed (%s) for itag %d", e.Reason, e.Itag)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// NewResolutionError builds a ResolutionError wrapping err.
func NewResolutionError(reason ResolutionReason, itag int, err error) *ResolutionError {
	return &ResolutionError{Reason: reason, Itag: itag, Err: err}
}
