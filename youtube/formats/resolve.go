package formats

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/ytget/streamget/errs"
	"github.com/ytget/streamget/types"
	"github.com/ytget/streamget/youtube/cipher"
)

// ResolvedURL is a fetchable media URL with an expiry hint from the
// platform's expire parameter. It is never mutated after construction.
type ResolvedURL struct {
	URL       string
	ExpiresAt time.Time
}

// Resolver turns stream descriptors into final URLs. It holds the player
// script of one page fetch and a cipher cache shared by all streams of that
// page; concurrent Resolve calls are safe.
//
// A failed resolution may be retried once against a fresh page fetch (which
// can bring a new, working script), never against the same script.
type Resolver struct {
	Script string
	Cache  *cipher.Cache
}

// NewResolver builds a Resolver over one page fetch's player script.
func NewResolver(script string, cache *cipher.Cache) *Resolver {
	if cache == nil {
		cache = cipher.NewCache()
	}
	return &Resolver{Script: script, Cache: cache}
}

// Resolve produces the final URL for a descriptor. Direct URLs are validated
// and passed through; ciphered sources are descrambled and substituted under
// the platform's signature parameter name. A throttle-defeat (n) parameter,
// when present, must decode successfully on either path: a half-resolved URL
// downloads at punitive speed, so partial resolution is a hard failure.
func (r *Resolver) Resolve(f types.Format) (*ResolvedURL, error) {
	if f.HasDirectURL() {
		return r.resolveDirect(f)
	}
	if f.SignatureCipher == "" {
		return nil, errs.NewResolutionError(errs.ReasonMissingBaseURL, f.Itag, errors.New("descriptor has neither url nor signature cipher"))
	}
	return r.resolveCiphered(f)
}

func (r *Resolver) resolveDirect(f types.Format) (*ResolvedURL, error) {
	u, err := url.Parse(f.URL)
	if err != nil {
		return nil, errs.NewResolutionError(errs.ReasonMalformedQuery, f.Itag, err)
	}
	q := u.Query()
	if err := r.decodeThrottleParam(q); err != nil {
		return nil, errs.NewResolutionError(errs.ReasonThrottleParam, f.Itag, err)
	}
	ensureBypassParams(q)
	u.RawQuery = q.Encode()
	return newResolvedURL(u), nil
}

func (r *Resolver) resolveCiphered(f types.Format) (*ResolvedURL, error) {
	parsed, err := url.ParseQuery(f.SignatureCipher)
	if err != nil {
		return nil, errs.NewResolutionError(errs.ReasonMalformedQuery, f.Itag, fmt.Errorf("parse signatureCipher: %w", err))
	}
	sig := parsed.Get("s")
	sp := parsed.Get("sp")
	if sp == "" {
		sp = "signature"
	}
	baseURL := parsed.Get("url")
	if baseURL == "" {
		return nil, errs.NewResolutionError(errs.ReasonMissingBaseURL, f.Itag, errors.New("signatureCipher has no url field"))
	}
	if sig == "" {
		return nil, errs.NewResolutionError(errs.ReasonMalformedQuery, f.Itag, errors.New("signatureCipher has no s field"))
	}

	descrambled, err := cipher.Decipher(r.Cache, r.Script, sig)
	if err != nil {
		return nil, errs.NewResolutionError(errs.ReasonCipherExtraction, f.Itag, err)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errs.NewResolutionError(errs.ReasonMalformedQuery, f.Itag, fmt.Errorf("parse cipher url: %w", err))
	}
	q := u.Query()
	q.Set(sp, descrambled)
	if err := r.decodeThrottleParam(q); err != nil {
		return nil, errs.NewResolutionError(errs.ReasonThrottleParam, f.Itag, err)
	}
	ensureBypassParams(q)
	u.RawQuery = q.Encode()
	return newResolvedURL(u), nil
}

// decodeThrottleParam rewrites the n query parameter in place. Absence of n
// is fine; a present value that fails to decode is not.
func (r *Resolver) decodeThrottleParam(q url.Values) error {
	nval := q.Get("n")
	if nval == "" {
		return nil
	}
	decoded, err := cipher.DecipherN(r.Cache, r.Script, nval)
	if err != nil {
		return err
	}
	q.Set("n", decoded)
	return nil
}

func ensureBypassParams(q url.Values) {
	if q.Get("ratebypass") == "" {
		q.Set("ratebypass", "yes")
	}
	if q.Get("alr") == "" {
		q.Set("alr", "yes")
	}
}

func newResolvedURL(u *url.URL) *ResolvedURL {
	res := &ResolvedURL{URL: u.String()}
	if exp := u.Query().Get("expire"); exp != "" {
		if v, err := strconv.ParseInt(exp, 10, 64); err == nil {
			res.ExpiresAt = time.Unix(v, 0)
		}
	}
	return res
}
