// Package domain holds the SearchBox types shared by every layer:
//
//   - Query: the parsed form of a user search string (simple, advanced, image)
//   - SearchRequest: the Meilisearch request compiled from a Query
//   - Record / Result: raw index hits and their typed display variants
//   - Summary: the AI summary display model with its citations
//   - CacheEntry: a persisted summary keyed by query and result fingerprint
//   - BackgroundTask / TaskRun: scheduler state and its run log
//
// It imports only the standard library.
package domain
