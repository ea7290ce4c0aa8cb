// Package mimeext maps media MIME types to file extensions.
package mimeext

import (
	"strings"
)

const (
	// DefaultExt is the extension used when the MIME type is unknown or empty.
	DefaultExt = "mp4"
)

// Extensions for the container types the platform serves. Audio-only MP4
// streams get m4a so players pick them up as audio.
var extByMime = map[string]string{
	"video/mp4":  "mp4",
	"audio/mp4":  "m4a",
	"video/webm": "webm",
	"audio/webm": "webm",
	"video/3gpp": "3gp",
}

// ExtFromMime returns the file extension (without dot) for the given MIME
// type, ignoring any codec parameters. Unknown types fall back to the MIME
// subtype, then to mp4.
func ExtFromMime(mime string) string {
	base := mime
	if i := strings.Index(mime, ";"); i >= 0 {
		base = mime[:i]
	}
	base = strings.TrimSpace(base)
	if ext, ok := extByMime[base]; ok {
		return ext
	}
	if _, sub, ok := strings.Cut(base, "/"); ok && sub != "" {
		return sub
	}
	return DefaultExt
}
