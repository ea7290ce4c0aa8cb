package formats

import (
	"strings"

	"github.com/ytget/streamget/types"
)

// mimeSubtypeEquals checks that the MIME subtype (mp4, webm, ...) equals
// desiredExt. The extension is case-insensitive and may start with a dot; an
// empty extension matches everything.
func mimeSubtypeEquals(format types.Format, desiredExt string) bool {
	desired := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(desiredExt)), ".")
	if desired == "" {
		return true
	}
	return getSubtype(format.MimeType) == desired
}

// itagEquals checks that the format's itag matches. Zero or negative itags
// never match.
func itagEquals(format types.Format, itag int) bool {
	return itag > 0 && format.Itag == itag
}

// withinHeight checks whether the quality-label height sits within
// [minHeight, maxHeight]. A zero bound is ignored.
func withinHeight(format types.Format, minHeight, maxHeight int) bool {
	if minHeight <= 0 && maxHeight <= 0 {
		return true
	}
	h := parseHeight(format.Quality)
	if minHeight > 0 && h < minHeight {
		return false
	}
	if maxHeight > 0 && h > maxHeight {
		return false
	}
	return true
}

// betterByHeightThenBitrate reports whether candidate beats current, by height
// first and bitrate as the tiebreaker. Backs the "best"/"worst" selectors.
func betterByHeightThenBitrate(candidate, current types.Format) bool {
	ch, cu := parseHeight(candidate.Quality), parseHeight(current.Quality)
	if ch != cu {
		return ch > cu
	}
	return candidate.Bitrate > current.Bitrate
}
