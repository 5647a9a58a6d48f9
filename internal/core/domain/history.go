package domain

// MaxHistoryEntries bounds the search history.
const MaxHistoryEntries = 5

// HistoryResponse is the backend's search-history payload.
type HistoryResponse struct {
	History []string `json:"history"`
}

// EnhancementSetting is the AI history enhancement preference.
type EnhancementSetting struct {
	Enabled bool `json:"enabled"`
}

// HistoryState is the payload attached to a pushed location.
type HistoryState struct {
	Query string `json:"query"`
	Page  int    `json:"page"`
}
