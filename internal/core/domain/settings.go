package domain

import "time"

// BackendSettings locates the SearchBox backend.
type BackendSettings struct {
	// URL is the base URL of the backend REST API.
	URL string

	// CSRFToken is sent as X-CSRFToken when set.
	CSRFToken string

	// RequestsPerSecond throttles background calls (status checks, recommendations).
	RequestsPerSecond float64
}

// IsConfigured returns true if a backend URL is set.
func (b BackendSettings) IsConfigured() bool {
	return b.URL != ""
}

// MeilisearchSettings locates the search index.
type MeilisearchSettings struct {
	URL    string
	APIKey string
	Index  string
}

// IsConfigured returns true if the index can be queried.
func (m MeilisearchSettings) IsConfigured() bool {
	return m.URL != "" && m.Index != ""
}

// SearchSettings holds search behaviour configuration.
type SearchSettings struct {
	PageSize        int
	ImagePageSize   int
	ExplorePageSize int
	Sort            SortOrder
}

// SummarySettings holds AI summary behaviour.
type SummarySettings struct {
	// Enabled turns summary generation on for new searches.
	Enabled bool

	// Delay postpones summary generation so results show first.
	Delay time.Duration

	// Streaming selects the NDJSON endpoint over the one-shot endpoint.
	Streaming bool
}

// CacheSettings bounds the summary cache.
type CacheSettings struct {
	Path            string
	TTL             time.Duration
	MaxEntries      int
	CleanupInterval time.Duration
}

// ViewerSettings configures document viewers.
type ViewerSettings struct {
	Timeout time.Duration
}

// WebSettings configures the local viewer server.
type WebSettings struct {
	Addr string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Backend            BackendSettings
	Meilisearch        MeilisearchSettings
	Search             SearchSettings
	Summary            SummarySettings
	Cache              CacheSettings
	RecommendationsTTL time.Duration
	Viewer             ViewerSettings
	Web                WebSettings
}

// DefaultAppSettings returns settings with sensible defaults for a
// backend and Meilisearch running on the local machine.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Backend: BackendSettings{
			URL:               "http://localhost:5000",
			RequestsPerSecond: 2,
		},
		Meilisearch: MeilisearchSettings{
			URL:   "http://localhost:7700",
			Index: DefaultIndexName,
		},
		Search: SearchSettings{
			PageSize:        DefaultPageSize,
			ImagePageSize:   ImagePageSize,
			ExplorePageSize: ExplorePageSize,
			Sort:            SortRecent,
		},
		Summary: SummarySettings{
			Enabled:   true,
			Delay:     500 * time.Millisecond,
			Streaming: true,
		},
		Cache: CacheSettings{
			TTL:             CacheTTL,
			MaxEntries:      CacheMaxEntries,
			CleanupInterval: CacheCleanupInterval,
		},
		RecommendationsTTL: RecommendationsTTL,
		Viewer: ViewerSettings{
			Timeout: ViewerLoadTimeout,
		},
		Web: WebSettings{
			Addr: "127.0.0.1:5080",
		},
	}
}

// SettingValue is one configuration key as shown by `config list`.
type SettingValue struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`

	// Source is "default", "config" or "env".
	Source string `json:"source" yaml:"source"`
}
