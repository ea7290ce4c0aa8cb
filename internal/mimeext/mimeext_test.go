package mimeext

import "testing"

func TestExtFromMime(t *testing.T) {
	cases := map[string]string{
		"video/mp4":                  "mp4",
		"audio/mp4":                  "m4a",
		"video/webm":                 "webm",
		"audio/webm":                 "webm",
		"video/3gpp":                 "3gp",
		"video/unknown":              "unknown",
		"":                           "mp4",
		"garbage":                    "mp4",
		"video/mp4; codecs=\"avc1\"": "mp4",
		"audio/webm;codecs=opus":     "webm",
	}
	for in, want := range cases {
		if got := ExtFromMime(in); got != want {
			t.Errorf("ExtFromMime(%q) = %q, want %q", in, got, want)
		}
	}
}
