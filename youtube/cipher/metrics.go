package cipher

import (
	"sync"
	"time"
)

// metrics tracks cheap counters for cache behavior and decipher latency.
var metrics = struct {
	totalRequests     int64
	cacheHits         int64
	cacheMisses       int64
	vmFallbacks       int64
	totalDecipherTime time.Duration
	mu                sync.Mutex
}{}

func recordCacheHit() {
	metrics.mu.Lock()
	metrics.cacheHits++
	metrics.mu.Unlock()
}

func recordCacheMiss() {
	metrics.mu.Lock()
	metrics.cacheMisses++
	metrics.mu.Unlock()
}

func recordVMFallback() {
	metrics.mu.Lock()
	metrics.vmFallbacks++
	metrics.mu.Unlock()
}

func recordDecipher(d time.Duration) {
	metrics.mu.Lock()
	metrics.totalRequests++
	metrics.totalDecipherTime += d
	metrics.mu.Unlock()
}

// MetricsSnapshot is a read-only copy of the package counters.
type MetricsSnapshot struct {
	TotalRequests     int64
	CacheHits         int64
	CacheMisses       int64
	VMFallbacks       int64
	AvgDecipherTime   time.Duration
	TotalDecipherTime time.Duration
}

// Metrics returns a snapshot of the current counters.
func Metrics() MetricsSnapshot {
	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	s := MetricsSnapshot{
		TotalRequests:     metrics.totalRequests,
		CacheHits:         metrics.cacheHits,
		CacheMisses:       metrics.cacheMisses,
		VMFallbacks:       metrics.vmFallbacks,
		TotalDecipherTime: metrics.totalDecipherTime,
	}
	if s.TotalRequests > 0 {
		s.AvgDecipherTime = s.TotalDecipherTime / time.Duration(s.TotalRequests)
	}
	return s
}
