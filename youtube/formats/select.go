package formats

import (
	"strconv"
	"strings"

	"github.com/ytget/streamget/types"
)

// Select chooses a format according to a selector string. Selection policy is
// a caller concern; this helper implements the common cases so callers do not
// have to reinvent them:
//
//   - "itag=NN": specific format by itag (e.g., "itag=22")
//   - "best" / "worst": by height, then bitrate
//   - "height<=NNN" / "height>=NNN": bounded height
//
// ext filters by container extension ("mp4", "webm") before selection. With
// no selector, or when nothing matches, the heuristic prefers itag 22, then
// itag 18, then progressive avc1 mp4, then any format with a direct URL.
// Returns nil when formats is empty.
func Select(formats []types.Format, selector, ext string) *types.Format {
	if len(formats) == 0 {
		return nil
	}

	filtered := make([]types.Format, 0, len(formats))
	for i := range formats {
		if mimeSubtypeEquals(formats[i], ext) {
			filtered = append(filtered, formats[i])
		}
	}
	if len(filtered) == 0 {
		filtered = append(filtered, formats...)
	}

	q := strings.TrimSpace(strings.ToLower(selector))
	if strings.HasPrefix(q, "itag=") {
		if it, err := strconv.Atoi(strings.TrimPrefix(q, "itag=")); err == nil {
			for i := range filtered {
				if itagEquals(filtered[i], it) {
					return &filtered[i]
				}
			}
		}
	}

	var minH, maxH int
	if strings.HasPrefix(q, "height<=") {
		if v, err := strconv.Atoi(strings.TrimPrefix(q, "height<=")); err == nil {
			maxH = v
		}
	}
	if strings.HasPrefix(q, "height>=") {
		if v, err := strconv.Atoi(strings.TrimPrefix(q, "height>=")); err == nil {
			minH = v
		}
	}
	if minH > 0 || maxH > 0 {
		tmp := make([]types.Format, 0, len(filtered))
		for i := range filtered {
			if withinHeight(filtered[i], minH, maxH) {
				tmp = append(tmp, filtered[i])
			}
		}
		if len(tmp) > 0 {
			filtered = tmp
		}
	}

	if q == "best" || q == "worst" {
		pick := filtered[0]
		for _, f := range filtered[1:] {
			better := betterByHeightThenBitrate(f, pick)
			if (q == "best" && better) || (q == "worst" && !better && betterByHeightThenBitrate(pick, f)) {
				pick = f
			}
		}
		return &pick
	}

	for _, it := range []int{22, 18} {
		for i := range filtered {
			if filtered[i].Itag == it {
				return &filtered[i]
			}
		}
	}
	for i := range filtered {
		if strings.Contains(filtered[i].MimeType, "video/mp4") && strings.Contains(filtered[i].MimeType, "avc1") {
			return &filtered[i]
		}
	}
	for i := range filtered {
		if filtered[i].HasDirectURL() {
			return &filtered[i]
		}
	}
	return &filtered[0]
}
