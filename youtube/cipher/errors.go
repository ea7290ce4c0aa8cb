package cipher

import (
	"fmt"

	"github.com/ytget/streamget/errs"
)

// Error codes
const (
	ErrCodeExtractionFailed = "CIPHER_EXTRACTION_FAILED"
	ErrCodeVMFailed         = "JS_EXECUTION_FAILED"
	ErrCodeThrottleDecode   = "THROTTLE_DECODE_FAILED"
	ErrCodeScriptNotFound   = "PLAYER_JS_NOT_FOUND"
)

// Error is a structured cipher error with a stable code. Extraction errors
// signal platform-format drift and are logged prominently by callers; they are
// never retryable against the same script.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap maps extraction-class codes onto the package-level sentinel so that
// errors.Is(err, errs.ErrCipherExtraction) works across package boundaries.
func (e *Error) Unwrap() error {
	switch e.Code {
	case ErrCodeExtractionFailed, ErrCodeVMFailed, ErrCodeThrottleDecode:
		return errs.ErrCipherExtraction
	}
	return nil
}

// NewError creates a new Error with the given code and message.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// IsExtractionFailed reports whether err is a structural-extraction failure.
func IsExtractionFailed(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Code == ErrCodeExtractionFailed
}
