package player

import (
	"errors"
	"testing"

	"github.com/ytget/streamget/errs"
)

func TestParse(t *testing.T) {
	raw := `{
		"streamingData": {
			"expiresInSeconds": "21540",
			"formats": [{"itag": 18, "url": "https://host/v"}],
			"adaptiveFormats": []
		},
		"videoDetails": {
			"videoId": "dQw4w9WgXcQ",
			"title": "Test Video",
			"author": "Test Channel",
			"channelId": "UC123",
			"lengthSeconds": "212",
			"viewCount": "1000000",
			"isLiveContent": false,
			"keywords": ["a", "b"],
			"thumbnail": {"thumbnails": [{"url": "https://img/1.jpg", "width": 120, "height": 90}]}
		},
		"playabilityStatus": {"status": "OK"}
	}`

	resp, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(resp.StreamingData.Formats) != 1 {
		t.Errorf("got %d formats, want 1", len(resp.StreamingData.Formats))
	}
	if resp.PlayabilityStatus.Status != "OK" {
		t.Errorf("status = %q", resp.PlayabilityStatus.Status)
	}

	d := resp.Details()
	if d.ID != "dQw4w9WgXcQ" || d.Title != "Test Video" || d.Author != "Test Channel" {
		t.Errorf("details wrong: %+v", d)
	}
	if d.Duration != 212 {
		t.Errorf("Duration = %d, want 212", d.Duration)
	}
	if d.ViewCount != 1000000 {
		t.Errorf("ViewCount = %d, want 1000000", d.ViewCount)
	}
	if len(d.Thumbnails) != 1 || d.Thumbnails[0].Width != 120 {
		t.Errorf("thumbnails wrong: %+v", d.Thumbnails)
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: `{invalid`},
		{name: "empty object", raw: `{}`},
		{name: "no stream lists", raw: `{"videoDetails": {"videoId": "x"}}`},
		{name: "streamingData without lists", raw: `{"streamingData": {"expiresInSeconds": "1"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errs.ErrMalformedResponse) {
				t.Errorf("error is not ErrMalformedResponse: %v", err)
			}
		})
	}
}

func TestParseOneListSuffices(t *testing.T) {
	raw := `{"streamingData": {"adaptiveFormats": []}}`
	if _, err := Parse([]byte(raw)); err != nil {
		t.Fatalf("a single present list should parse: %v", err)
	}
}

func TestDetailsUnparsableNumbers(t *testing.T) {
	raw := `{
		"streamingData": {"formats": []},
		"videoDetails": {"videoId": "x", "lengthSeconds": "abc", "viewCount": ""}
	}`
	resp, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	d := resp.Details()
	if d.Duration != 0 || d.ViewCount != 0 {
		t.Errorf("unparsable numerics should stay zero: %+v", d)
	}
}
