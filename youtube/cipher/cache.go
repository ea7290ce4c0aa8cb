package cipher

import (
	"sync"
)

// Cache memoizes extracted programs and throttle-decoder sources by script
// revision. One Cache is scoped to one page fetch and injected into every
// resolver working that page; it is deliberately not a process-wide singleton.
//
// Extraction for a given Ref is serialized: the first resolver to ask for a
// program extracts it while holding the lock, concurrent resolvers for the
// same ref wait for that result. Extraction failures are cached too, so a
// drifted script is parsed at most once per page fetch.
type Cache struct {
	mu       sync.Mutex
	programs map[Ref]programEntry
	nsig     map[Ref]nsigEntry
}

type programEntry struct {
	program Program
	err     error
}

type nsigEntry struct {
	fn  *nsigFunc
	err error
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		programs: make(map[Ref]programEntry),
		nsig:     make(map[Ref]nsigEntry),
	}
}

// Program returns the transform program for script, extracting it on first
// use. Concurrent callers with the same script receive the same result.
func (c *Cache) Program(script string) (Program, error) {
	ref := RefOf(script)
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.programs[ref]; ok {
		recordCacheHit()
		return e.program, e.err
	}
	recordCacheMiss()
	p, err := Extract(script)
	c.programs[ref] = programEntry{program: p, err: err}
	return p, err
}

// NsigFunc returns the compiled throttle-defeat decoder for script, extracting
// and compiling it on first use.
func (c *Cache) NsigFunc(script string) (*nsigFunc, error) {
	ref := RefOf(script)
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.nsig[ref]; ok {
		recordCacheHit()
		return e.fn, e.err
	}
	recordCacheMiss()
	fn, err := extractNsigFunc(script)
	c.nsig[ref] = nsigEntry{fn: fn, err: err}
	return fn, err
}

// Len reports how many program entries the cache holds.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.programs)
}
