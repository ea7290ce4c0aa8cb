// Package formats turns the player response into stream descriptors, offers
// selection helpers over them, and resolves descriptors into final media URLs.
package formats

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ytget/streamget/internal/logger"
	"github.com/ytget/streamget/types"
	"github.com/ytget/streamget/youtube/player"
)

var log = logger.WithComponent(logger.ComponentFormat)

var heightRe = regexp.MustCompile(`([0-9]{3,4})p`)

func getSubtype(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	parts := strings.Split(mime, "/")
	if len(parts) == 2 {
		return parts[1]
	}
	return ""
}

func parseHeight(label string) int {
	m := heightRe.FindStringSubmatch(label)
	if len(m) >= 2 {
		if v, err := strconv.Atoi(m[1]); err == nil {
			return v
		}
	}
	return 0
}

// Parse extracts the available formats from a player response, progressive
// first, preserving platform order. Entries that carry neither a direct URL
// nor a signature cipher cannot be fetched by any means and are skipped, not
// fatal; duplicated itags keep the first occurrence.
func Parse(resp *player.Response) ([]types.Format, error) {
	all := append(append([]any{}, resp.StreamingData.Formats...), resp.StreamingData.AdaptiveFormats...)

	var formats []types.Format
	seen := make(map[int]bool)
	skipped := 0
	for _, raw := range all {
		f, ok := raw.(map[string]any)
		if !ok {
			skipped++
			continue
		}

		var format types.Format
		if v, ok := f["itag"].(float64); ok {
			format.Itag = int(v)
		}
		if v, ok := f["bitrate"].(float64); ok {
			format.Bitrate = int(v)
		}
		if v, ok := f["contentLength"].(string); ok {
			if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
				format.Size = parsed
			}
		}
		format.MimeType, _ = f["mimeType"].(string)
		format.Quality, _ = f["qualityLabel"].(string)

		if urlVal, ok := f["url"].(string); ok && urlVal != "" {
			format.URL = urlVal
		} else if sc, ok := f["signatureCipher"].(string); ok && sc != "" {
			format.SignatureCipher = sc
		} else {
			skipped++
			continue
		}
		if seen[format.Itag] {
			continue
		}
		seen[format.Itag] = true
		formats = append(formats, format)
	}
	if skipped > 0 {
		log.Warn("skipped unsupported stream entries", map[string]any{"count": skipped})
	}
	return formats, nil
}
