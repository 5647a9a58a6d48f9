// Package driven holds the interfaces the core uses to reach the SearchBox
// backend, Meilisearch and local storage. Adapters under
// internal/adapters/driven implement them.
//
// SearchIndex and ConfigStore are required. Everything else may be nil:
//
//   - SummaryAPI / StatusAPI: AI summaries. Without them the summary pane stays hidden.
//   - RecommendationsAPI: Suggested searches. Without it no chips are shown.
//   - HistoryAPI: Backend history sync. Without it history lives in memory only.
//   - KVStore: Durable summary cache. Without it every summary is regenerated.
//   - PINPrompter: Vault unlock. Without it 401 answers are returned unchanged.
//   - MarkdownRenderer: Without it summaries render as escaped text with <br>.
//   - Navigator: URL state. Without it locations are computed but not recorded.
//   - TaskStore: Background task state. Without it the scheduler does not run.
//
// Only the domain package may be imported here.
package driven
