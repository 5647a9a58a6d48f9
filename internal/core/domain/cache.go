package domain

import "time"

// Summary cache limits.
const (
	CacheKeyPrefix       = "ai_summary_"
	CacheTTL             = 3_600_000 * time.Millisecond
	CacheMaxEntries      = 100
	CacheCleanupInterval = 300_000 * time.Millisecond
	CacheQueryKeyLength  = 16
	CacheHashLength      = 16
	CacheFingerprintSize = 5
	CachePreviewLength   = 100
)

// CacheEntry is a summary persisted under a cache key.
type CacheEntry struct {
	Key         string  `json:"key"`
	Value       Summary `json:"value"`
	Timestamp   int64   `json:"timestamp"`
	Query       string  `json:"query"`
	ResultsHash string  `json:"resultsHash"`
}

// Age returns how old the entry is at now.
func (e CacheEntry) Age(now time.Time) time.Duration {
	return time.Duration(now.UnixMilli()-e.Timestamp) * time.Millisecond
}

// Expired reports whether the entry is older than ttl at now.
func (e CacheEntry) Expired(now time.Time, ttl time.Duration) bool {
	return now.UnixMilli()-e.Timestamp > ttl.Milliseconds()
}
