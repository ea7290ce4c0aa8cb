// Package player parses the platform's player-response payload and scrapes
// the watch page for the two inputs the descrambling engine needs: the
// player-response JSON blob and the player script.
package player

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ytget/streamget/errs"
	"github.com/ytget/streamget/types"
)

// Response is the player-response payload. Stream entries are kept as raw
// maps: the platform adds and removes fields per client and release, and the
// formats parser picks out what it understands entry by entry.
type Response struct {
	StreamingData struct {
		ExpiresInSeconds string `json:"expiresInSeconds"`
		Formats          []any  `json:"formats"`
		AdaptiveFormats  []any  `json:"adaptiveFormats"`
	} `json:"streamingData"`
	VideoDetails struct {
		VideoID       string   `json:"videoId"`
		Title         string   `json:"title"`
		Author        string   `json:"author"`
		ChannelID     string   `json:"channelId"`
		LengthSeconds string   `json:"lengthSeconds"`
		ViewCount     string   `json:"viewCount"`
		IsLiveContent bool     `json:"isLiveContent"`
		Keywords      []string `json:"keywords"`
		Thumbnail     struct {
			Thumbnails []struct {
				URL    string `json:"url"`
				Width  int    `json:"width"`
				Height int    `json:"height"`
			} `json:"thumbnails"`
		} `json:"thumbnail"`
	} `json:"videoDetails"`
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

// Parse decodes a raw player-response blob. It fails with
// errs.ErrMalformedResponse when the payload is not JSON or carries no
// stream lists at all; per-entry problems are left to the formats parser.
func Parse(raw []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrMalformedResponse, err)
	}
	if resp.StreamingData.Formats == nil && resp.StreamingData.AdaptiveFormats == nil {
		return nil, fmt.Errorf("%w: no streamingData format lists", errs.ErrMalformedResponse)
	}
	return &resp, nil
}

// Details converts the embedded metadata into the shared VideoDetails type.
// Numeric fields arrive as JSON strings; unparsable values are left zero.
func (r *Response) Details() types.VideoDetails {
	d := types.VideoDetails{
		ID:            r.VideoDetails.VideoID,
		Title:         r.VideoDetails.Title,
		Author:        r.VideoDetails.Author,
		ChannelID:     r.VideoDetails.ChannelID,
		IsLiveContent: r.VideoDetails.IsLiveContent,
		Keywords:      r.VideoDetails.Keywords,
	}
	if v, err := strconv.Atoi(r.VideoDetails.LengthSeconds); err == nil {
		d.Duration = v
	}
	if v, err := strconv.ParseInt(r.VideoDetails.ViewCount, 10, 64); err == nil {
		d.ViewCount = v
	}
	for _, t := range r.VideoDetails.Thumbnail.Thumbnails {
		d.Thumbnails = append(d.Thumbnails, types.Thumbnail{URL: t.URL, Width: t.Width, Height: t.Height})
	}
	return d
}
