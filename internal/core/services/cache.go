package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driven"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driving"
	"github.com/searchbox/searchbox-cli/internal/logger"
)

// Ensure SummaryCache implements the interface.
var _ driving.CacheService = (*SummaryCache)(nil)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// storedSummary is the persisted form of a cache entry: the summary's own
// fields plus the hash of the results it was generated from.
type storedSummary struct {
	domain.Summary
	ResultsHash string `json:"resultsHash"`
}

// fingerprint is the per-result data that identifies a result set.
type fingerprint struct {
	ID             string `json:"id"`
	Filename       string `json:"filename"`
	ContentPreview string `json:"contentPreview"`
}

// SummaryCache persists generated summaries keyed by query and results.
// A nil store disables caching; every operation becomes a silent no-op.
type SummaryCache struct {
	store      driven.KVStore
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewSummaryCache creates a summary cache over store.
func NewSummaryCache(store driven.KVStore, settings domain.CacheSettings) *SummaryCache {
	ttl := settings.TTL
	if ttl <= 0 {
		ttl = domain.CacheTTL
	}
	maxEntries := settings.MaxEntries
	if maxEntries <= 0 {
		maxEntries = domain.CacheMaxEntries
	}
	return &SummaryCache{
		store:      store,
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// CacheKey returns the storage key for a query and its results.
func CacheKey(query string, results []domain.Record) string {
	return domain.CacheKeyPrefix + safeQueryKey(query) + "_" + ResultsHash(results)
}

func safeQueryKey(query string) string {
	safe := []rune(nonAlphanumeric.ReplaceAllString(query, "_"))
	if len(safe) > domain.CacheQueryKeyLength {
		safe = safe[:domain.CacheQueryKeyLength]
	}
	return string(safe)
}

// ResultsHash fingerprints the top results. Text outside Latin-1 cannot be
// encoded, so such result sets are identified by their IDs instead.
func ResultsHash(results []domain.Record) string {
	n := min(len(results), domain.CacheFingerprintSize)
	prints := make([]fingerprint, 0, n)
	latin1 := true
	for _, rec := range results[:n] {
		preview := []rune(rec.Content)
		if len(preview) > domain.CachePreviewLength {
			preview = preview[:domain.CachePreviewLength]
		}
		fp := fingerprint{ID: rec.ID, Filename: rec.Filename, ContentPreview: string(preview)}
		latin1 = latin1 && isLatin1(fp.ID) && isLatin1(fp.Filename) && isLatin1(fp.ContentPreview)
		prints = append(prints, fp)
	}

	if latin1 {
		if encoded, err := encodeFingerprints(prints); err == nil {
			return truncate(encoded, domain.CacheHashLength)
		}
	}

	ids := make([]string, 0, len(prints))
	for _, fp := range prints {
		ids = append(ids, fp.ID)
	}
	return nonAlphanumeric.ReplaceAllString(truncate(strings.Join(ids, "_"), domain.CacheHashLength), "_")
}

func encodeFingerprints(prints []fingerprint) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(prints); err != nil {
		return "", err
	}
	text := strings.TrimSuffix(buf.String(), "\n")

	// One byte per code point, as the text is known to be Latin-1.
	raw := make([]byte, 0, len(text))
	for _, r := range text {
		raw = append(raw, byte(r))
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func isLatin1(s string) bool {
	for _, r := range s {
		if r > 0xFF {
			return false
		}
	}
	return true
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}

// Load returns a live cached summary. Expired entries are deleted.
func (c *SummaryCache) Load(ctx context.Context, query string, results []domain.Record) (*domain.Summary, bool) {
	if c == nil || c.store == nil {
		return nil, false
	}
	key := CacheKey(query, results)

	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		logger.Warn("summary cache: load %s: %v", key, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var entry storedSummary
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		logger.Warn("summary cache: corrupt entry %s: %v", key, err)
		return nil, false
	}

	if c.expired(entry.Timestamp) {
		if err := c.store.Delete(ctx, key); err != nil {
			logger.Warn("summary cache: delete %s: %v", key, err)
		}
		logger.Debug("summary cache: expired %s", key)
		return nil, false
	}

	logger.Debug("summary cache: hit %s (age %s)", key, c.now().Sub(time.UnixMilli(entry.Timestamp)).Round(time.Second))
	summary := entry.Summary
	return &summary, true
}

// Save persists a summary for the query and results. Failures are logged
// and otherwise ignored. When the cache is full and cleanup frees nothing
// the summary is not stored.
func (c *SummaryCache) Save(ctx context.Context, query string, results []domain.Record, summary domain.Summary) {
	if c == nil || c.store == nil {
		return
	}
	key := CacheKey(query, results)

	entry := storedSummary{Summary: summary, ResultsHash: ResultsHash(results)}
	entry.Timestamp = c.now().UnixMilli()
	entry.Query = query

	data, err := json.Marshal(entry)
	if err != nil {
		logger.Warn("summary cache: encode %s: %v", key, err)
		return
	}

	if !c.hasRoom(ctx, key) {
		logger.Warn("summary cache: full (%d entries), not saving %s", c.maxEntries, key)
		return
	}

	if err := c.store.Set(ctx, key, string(data)); err != nil {
		logger.Warn("summary cache: save %s: %v", key, err)
		return
	}
	logger.Debug("summary cache: saved %s", key)

	if _, err := c.Cleanup(ctx); err != nil {
		logger.Warn("summary cache: cleanup: %v", err)
	}
}

// hasRoom reports whether key may be written without exceeding the limit.
// Overwriting an existing key always fits.
func (c *SummaryCache) hasRoom(ctx context.Context, key string) bool {
	keys, err := c.store.Keys(ctx, domain.CacheKeyPrefix)
	if err != nil {
		return true
	}
	if len(keys) < c.maxEntries || containsKey(keys, key) {
		return true
	}
	if _, err := c.Cleanup(ctx); err != nil {
		return false
	}
	keys, err = c.store.Keys(ctx, domain.CacheKeyPrefix)
	return err == nil && len(keys) < c.maxEntries
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func (c *SummaryCache) expired(timestampMs int64) bool {
	return c.now().UnixMilli()-timestampMs > c.ttl.Milliseconds()
}

// Entries returns every live entry, newest first.
func (c *SummaryCache) Entries(ctx context.Context) ([]domain.CacheEntry, error) {
	if c == nil || c.store == nil {
		return nil, nil
	}
	keys, err := c.store.Keys(ctx, domain.CacheKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("listing cache keys: %w", err)
	}

	var entries []domain.CacheEntry
	for _, key := range keys {
		raw, ok, err := c.store.Get(ctx, key)
		if err != nil || !ok {
			continue
		}
		var stored storedSummary
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			continue
		}
		if c.expired(stored.Timestamp) {
			continue
		}
		entries = append(entries, domain.CacheEntry{
			Key:         key,
			Value:       stored.Summary,
			Timestamp:   stored.Timestamp,
			Query:       stored.Query,
			ResultsHash: stored.ResultsHash,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
	return entries, nil
}

// Cleanup removes expired and unreadable entries.
func (c *SummaryCache) Cleanup(ctx context.Context) (int, error) {
	if c == nil || c.store == nil {
		return 0, nil
	}
	keys, err := c.store.Keys(ctx, domain.CacheKeyPrefix)
	if err != nil {
		return 0, fmt.Errorf("listing cache keys: %w", err)
	}

	removed := 0
	for _, key := range keys {
		raw, ok, err := c.store.Get(ctx, key)
		if err != nil || !ok {
			continue
		}
		var stored storedSummary
		if err := json.Unmarshal([]byte(raw), &stored); err == nil && !c.expired(stored.Timestamp) {
			continue
		}
		if err := c.store.Delete(ctx, key); err != nil {
			return removed, fmt.Errorf("deleting cache entry %s: %w", key, err)
		}
		removed++
	}

	if removed > 0 {
		logger.Debug("summary cache: cleaned up %d expired entries", removed)
	}
	return removed, nil
}

// ClearAll removes every summary entry.
func (c *SummaryCache) ClearAll(ctx context.Context) (int, error) {
	if c == nil || c.store == nil {
		return 0, nil
	}
	keys, err := c.store.Keys(ctx, domain.CacheKeyPrefix)
	if err != nil {
		return 0, fmt.Errorf("listing cache keys: %w", err)
	}
	for i, key := range keys {
		if err := c.store.Delete(ctx, key); err != nil {
			return i, fmt.Errorf("deleting cache entry %s: %w", key, err)
		}
	}
	return len(keys), nil
}

// Clear removes the entry for a query and its results.
func (c *SummaryCache) Clear(ctx context.Context, query string, results []domain.Record) error {
	if c == nil || c.store == nil {
		return nil
	}
	key := CacheKey(query, results)
	if err := c.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("deleting cache entry %s: %w", key, err)
	}
	logger.Debug("summary cache: cleared %s", key)
	return nil
}
