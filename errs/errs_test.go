package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorConstants(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "ErrVideoUnavailable",
			err:      ErrVideoUnavailable,
			expected: "video unavailable",
		},
		{
			name:     "ErrPrivate",
			err:      ErrPrivate,
			expected: "video is private",
		},
		{
			name:     "ErrAgeRestricted",
			err:      ErrAgeRestricted,
			expected: "age restricted",
		},
		{
			name:     "ErrGeoBlocked",
			err:      ErrGeoBlocked,
			expected: "geo blocked",
		},
		{
			name:     "ErrRateLimited",
			err:      ErrRateLimited,
			expected: "rate limited",
		},
		{
			name:     "ErrMalformedResponse",
			err:      ErrMalformedResponse,
			expected: "malformed player response",
		},
		{
			name:     "ErrUnsupportedStream",
			err:      ErrUnsupportedStream,
			expected: "unsupported stream entry",
		},
		{
			name:     "ErrCipherExtraction",
			err:      ErrCipherExtraction,
			expected: "cipher extraction failed",
		},
		{
			name:     "ErrResumeMismatch",
			err:      ErrResumeMismatch,
			expected: "resume offset mismatch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expected {
				t.Errorf("Expected error message '%s', got '%s'", tt.expected, tt.err.Error())
			}
		})
	}
}

func TestErrorUniqueness(t *testing.T) {
	errorList := []error{
		ErrVideoUnavailable,
		ErrPrivate,
		ErrAgeRestricted,
		ErrGeoBlocked,
		ErrRateLimited,
		ErrMalformedResponse,
		ErrUnsupportedStream,
		ErrCipherExtraction,
		ErrResumeMismatch,
	}

	for i, err1 := range errorList {
		for j, err2 := range errorList {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Error %d and %d should not be equal", i, j)
			}
		}
	}
}

func TestResolutionError(t *testing.T) {
	inner := errors.New("no s field")
	err := NewResolutionError(ReasonMalformedQuery, 137, inner)

	want := "resolution failed (malformed_query) for itag 137: no s field"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, inner) {
		t.Error("ResolutionError should unwrap to the inner error")
	}

	var resErr *ResolutionError
	wrapped := fmt.Errorf("resolve: %w", err)
	if !errors.As(wrapped, &resErr) {
		t.Fatal("errors.As failed through wrapping")
	}
	if resErr.Reason != ReasonMalformedQuery || resErr.Itag != 137 {
		t.Errorf("fields lost through wrapping: %+v", resErr)
	}
}

func TestResolutionErrorWithoutInner(t *testing.T) {
	err := &ResolutionError{Reason: ReasonThrottleParam, Itag: 22}
	want := "resolution failed (throttle_param) for itag 22"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if err.Unwrap() != nil {
		t.Error("Unwrap of empty inner should be nil")
	}
}
