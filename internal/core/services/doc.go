// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The query pipeline runs parse, validate, compile, search, render:
//
//   - ParseQuery turns raw input into a simple, advanced or image Query
//   - ValidateQuery reports syntax diagnostics without blocking input
//   - CompileQuery produces the Meilisearch request
//   - SearchController runs the request and owns the current page
//   - BuildCards and CollectGallery project hits into view models
//
// Summaries are produced by SummaryEngine, which streams NDJSON from the
// backend, cleans partial JSON as it arrives and caches final results in
// SummaryCache.
//
// Services are pure Go with no CGO.
package services
