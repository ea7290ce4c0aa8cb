package types

// Format describes one downloadable representation of a video. The parser
// guarantees exactly one of URL and SignatureCipher is populated.
type Format struct {
	Itag            int
	URL             string
	Quality         string
	MimeType        string
	Bitrate         int
	Size            int64
	SignatureCipher string
}

// HasDirectURL reports whether the format carries a ready-to-fetch URL.
func (f Format) HasDirectURL() bool {
	return f.URL != ""
}

// Thumbnail is a single preview image variant.
type Thumbnail struct {
	URL    string
	Width  int
	Height int
}

// VideoDetails holds descriptive metadata from the player response.
type VideoDetails struct {
	ID            string
	Title         string
	Author        string
	ChannelID     string
	Duration      int
	ViewCount     int64
	IsLiveContent bool
	Thumbnails    []Thumbnail
	Keywords      []string
}

// VideoInfo bundles video metadata with the available formats.
type VideoInfo struct {
	ID          string
	Title       string
	Author      string
	Duration    int
	Formats     []Format
	Description string
}
