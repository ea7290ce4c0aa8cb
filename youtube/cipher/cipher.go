package cipher

import (
	"time"

	"github.com/ytget/streamget/internal/logger"
)

var log = logger.WithComponent(logger.ComponentCipher)

// Decipher descrambles a signature using the transform program for script,
// memoized in cache. When structural extraction fails the whole script is run
// in a JS VM instead; when both fail, the extraction error is returned so the
// caller sees the drift, not the fallback noise.
func Decipher(cache *Cache, script, signature string) (string, error) {
	start := time.Now()
	defer func() { recordDecipher(time.Since(start)) }()

	if cache == nil {
		cache = NewCache()
	}
	program, extractErr := cache.Program(script)
	if extractErr == nil {
		return program.Apply(signature), nil
	}
	log.Warn("structural extraction failed, trying VM fallback", map[string]any{"err": extractErr.Error()})
	recordVMFallback()

	entry, err := findEntryFunc(script)
	if err != nil {
		return "", extractErr
	}
	out, err := vmDecipher(script, entry.name, signature)
	if err != nil {
		log.Error("VM fallback failed", map[string]any{"err": err.Error()})
		return "", extractErr
	}
	return out, nil
}

// DecipherN decodes the throttle-defeat n parameter using the decoder
// extracted from script. Absence of a decoder in the script is an error here;
// the resolver only calls this when the URL actually carries an n value.
func DecipherN(cache *Cache, script, nval string) (string, error) {
	start := time.Now()
	defer func() { recordDecipher(time.Since(start)) }()

	if cache == nil {
		cache = NewCache()
	}
	fn, err := cache.NsigFunc(script)
	if err != nil {
		return "", err
	}
	return fn.Apply(nval)
}
