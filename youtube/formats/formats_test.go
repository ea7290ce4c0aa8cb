package formats

import (
	"testing"

	"github.com/ytget/streamget/types"
	"github.com/ytget/streamget/youtube/player"
)

func mustParse(t *testing.T, raw string) []types.Format {
	t.Helper()
	resp, err := player.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("player.Parse error: %v", err)
	}
	fmts, err := Parse(resp)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	return fmts
}

func TestParse(t *testing.T) {
	raw := `{
		"streamingData": {
			"formats": [
				{"itag": 22, "url": "https://host/direct?itag=22", "mimeType": "video/mp4; codecs=\"avc1\"", "qualityLabel": "720p", "bitrate": 800000, "contentLength": "1000"}
			],
			"adaptiveFormats": [
				{"itag": 137, "signatureCipher": "s=abc&sp=sig&url=https%3A%2F%2Fhost%2Fa", "mimeType": "video/mp4; codecs=\"avc1\"", "qualityLabel": "1080p", "bitrate": 2000000},
				{"itag": 140, "mimeType": "audio/mp4"},
				{"itag": 22, "url": "https://host/duplicate"}
			]
		}
	}`

	fmts := mustParse(t, raw)
	if len(fmts) != 2 {
		t.Fatalf("got %d formats, want 2: %+v", len(fmts), fmts)
	}

	// Progressive entry first, platform order preserved.
	if fmts[0].Itag != 22 || fmts[0].URL != "https://host/direct?itag=22" {
		t.Errorf("first format wrong: %+v", fmts[0])
	}
	if fmts[0].Size != 1000 {
		t.Errorf("contentLength not parsed: %d", fmts[0].Size)
	}
	if fmts[1].Itag != 137 || fmts[1].SignatureCipher == "" || fmts[1].URL != "" {
		t.Errorf("second format wrong: %+v", fmts[1])
	}
}

func TestParseSkipsUnfetchable(t *testing.T) {
	// One fetchable entry between two that carry neither url nor cipher.
	raw := `{
		"streamingData": {
			"formats": [
				{"itag": 100, "mimeType": "video/mp4"},
				{"itag": 18, "url": "https://host/ok"},
				{"itag": 101, "mimeType": "video/webm"}
			],
			"adaptiveFormats": []
		}
	}`

	fmts := mustParse(t, raw)
	if len(fmts) != 1 {
		t.Fatalf("got %d formats, want 1: %+v", len(fmts), fmts)
	}
	if fmts[0].Itag != 18 {
		t.Errorf("kept format = %+v, want itag 18", fmts[0])
	}
}

func TestParseDuplicateItagKeepsFirst(t *testing.T) {
	raw := `{
		"streamingData": {
			"formats": [
				{"itag": 18, "url": "https://host/first"},
				{"itag": 18, "url": "https://host/second"}
			],
			"adaptiveFormats": []
		}
	}`

	fmts := mustParse(t, raw)
	if len(fmts) != 1 {
		t.Fatalf("got %d formats, want 1", len(fmts))
	}
	if fmts[0].URL != "https://host/first" {
		t.Errorf("kept %q, want the first occurrence", fmts[0].URL)
	}
}

func TestGetSubtype(t *testing.T) {
	cases := map[string]string{
		`video/mp4; codecs="avc1.64001F"`: "mp4",
		"audio/webm":                      "webm",
		"VIDEO/MP4":                       "mp4",
		"":                                "",
		"garbage":                         "",
	}
	for in, want := range cases {
		if got := getSubtype(in); got != want {
			t.Errorf("getSubtype(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseHeight(t *testing.T) {
	cases := map[string]int{
		"720p":    720,
		"1080p60": 1080,
		"144p":    144,
		"hd":      0,
		"":        0,
	}
	for in, want := range cases {
		if got := parseHeight(in); got != want {
			t.Errorf("parseHeight(%q) = %d, want %d", in, got, want)
		}
	}
}
