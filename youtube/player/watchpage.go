package player

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ytget/streamget/errs"
)

const scriptBase = "https://www.youtube.com"

var (
	initialResponseRes = []*regexp.Regexp{
		regexp.MustCompile(`var ytInitialPlayerResponse\s*=\s*\{`),
		regexp.MustCompile(`ytInitialPlayerResponse\s*=\s*\{`),
		regexp.MustCompile(`window\["ytInitialPlayerResponse"\]\s*=\s*\{`),
	}
	jsURLRe = regexp.MustCompile(`"(?:jsUrl|PLAYER_JS_URL)":"([^"]+)"`)
)

// ExtractResponse locates the embedded ytInitialPlayerResponse object in the
// watch-page document and returns the raw JSON blob.
func ExtractResponse(page string) ([]byte, error) {
	for _, re := range initialResponseRes {
		loc := re.FindStringIndex(page)
		if loc == nil {
			continue
		}
		start := loc[1] - 1 // opening brace
		end, ok := matchBrace(page, start)
		if !ok {
			continue
		}
		return []byte(page[start : end+1]), nil
	}
	return nil, fmt.Errorf("%w: ytInitialPlayerResponse not found in page", errs.ErrMalformedResponse)
}

// ExtractScriptURL finds the player-script URL referenced by the watch page
// and makes it absolute.
func ExtractScriptURL(page string) (string, error) {
	m := jsURLRe.FindStringSubmatch(page)
	if len(m) < 2 || m[1] == "" {
		return "", fmt.Errorf("player script url not found in page")
	}
	u := strings.ReplaceAll(m[1], `\/`, `/`)
	if strings.HasPrefix(u, "/") {
		u = scriptBase + u
	}
	return u, nil
}

// matchBrace returns the index of the brace matching the one at start,
// skipping JSON string literals.
func matchBrace(s string, start int) (int, bool) {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		case '"':
			for i++; i < len(s); i++ {
				if s[i] == '\\' {
					i++
				} else if s[i] == '"' {
					break
				}
			}
		}
	}
	return 0, false
}
