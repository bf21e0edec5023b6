package main

import (
	"sync"
	"time"
)

// analysisCacheTTL bounds how long a cached analysis may be served.
const analysisCacheTTL = time.Hour

type cacheEntry struct {
	analysis          SavingsAnalysis
	lastTransactionID int
	timestamp         time.Time
}

// AnalysisCache memoizes the most recent analysis, keyed by the id of the
// newest transaction in the dataset. A single slot: at most one analysis is
// cached at a time, shared across users. Per-user keying is an open product
// question; until then any authenticated caller sees the same slot.
//
// Concurrent writers race and the last write wins, which is acceptable:
// analyses are idempotent and re-derivable from the transactions.
type AnalysisCache struct {
	mu     sync.Mutex
	entry  *cacheEntry
	maxAge time.Duration
	now    func() time.Time
}

func NewAnalysisCache() *AnalysisCache {
	return &AnalysisCache{maxAge: analysisCacheTTL, now: time.Now}
}

// Get returns the cached analysis if the stored transaction id matches
// currentTransactionID and the entry is within its TTL. Any mismatch or
// expiry clears the slot.
func (c *AnalysisCache) Get(currentTransactionID int) (SavingsAnalysis, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entry == nil {
		return SavingsAnalysis{}, false
	}
	if c.entry.lastTransactionID != currentTransactionID {
		c.entry = nil
		return SavingsAnalysis{}, false
	}
	if c.now().Sub(c.entry.timestamp) > c.maxAge {
		c.entry = nil
		return SavingsAnalysis{}, false
	}
	return c.entry.analysis, true
}

// GetStale returns the cached analysis regardless of the transaction-id
// check. Used on the degraded path when a live analysis cannot be produced:
// a stale result beats a hard error. Expired entries are still refused.
func (c *AnalysisCache) GetStale() (SavingsAnalysis, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entry == nil {
		return SavingsAnalysis{}, false
	}
	if c.now().Sub(c.entry.timestamp) > c.maxAge {
		c.entry = nil
		return SavingsAnalysis{}, false
	}
	return c.entry.analysis, true
}

// Set replaces the slot with a fresh entry timestamped now.
func (c *AnalysisCache) Set(analysis SavingsAnalysis, lastTransactionID int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entry = &cacheEntry{
		analysis:          analysis,
		lastTransactionID: lastTransactionID,
		timestamp:         c.now(),
	}
}

// Invalidate clears the slot. Called after transaction mutations.
func (c *AnalysisCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = nil
}
