// Package sanitize derives cross-platform safe filenames from video titles.
package sanitize

import (
	"path/filepath"
	"regexp"
	"strings"
)

const (
	// MaxFilenameLength is the maximum allowed length of the name part in
	// bytes, before the extension.
	MaxFilenameLength = 120
	// DefaultExt is used when no extension is provided.
	DefaultExt = "mp4"
	// DefaultName replaces an empty or fully-stripped title.
	DefaultName = "video"
)

// Characters rejected by at least one of the common filesystems, plus
// control characters. Runs collapse into a single underscore.
var unsafeChars = regexp.MustCompile(`[\\/:*?"<>|\x00-\x1f]+`)

// ToSafeFilename builds a safe filename from a title and an extension
// (without dot). The name part is truncated on a rune boundary; trailing
// dots and spaces are stripped because Windows rejects them.
func ToSafeFilename(title, ext string) string {
	name := unsafeChars.ReplaceAllString(strings.TrimSpace(title), "_")
	name = truncateRunes(name, MaxFilenameLength)
	name = strings.TrimRight(name, ". ")
	if name == "" {
		name = DefaultName
	}
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	if ext == "" {
		ext = DefaultExt
	}
	return filepath.Clean(name + "." + ext)
}

// truncateRunes cuts s to at most max bytes without splitting a rune.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
