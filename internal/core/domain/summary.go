package domain

// Confidence is the model's self-reported certainty.
type Confidence string

// Confidence levels.
const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Normalize returns c, or medium when c is unrecognised.
func (c Confidence) Normalize() Confidence {
	switch c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return c
	default:
		return ConfidenceMedium
	}
}

// Citation binds a numbered [N] marker to a result document.
type Citation struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	FileType string `json:"file_type"`
	FileSize string `json:"file_size"`
}

// Summary is the AI summary display model.
// It is also the value persisted in the summary cache.
type Summary struct {
	Success            bool       `json:"success"`
	Summary            string     `json:"summary,omitempty"`
	Overview           string     `json:"overview,omitempty"`
	DetailedAnalysis   string     `json:"detailed_analysis,omitempty"`
	KeyFindings        []string   `json:"key_findings,omitempty"`
	ContextConnections string     `json:"context_connections,omitempty"`
	SpecificDetails    []string   `json:"specific_details,omitempty"`
	KeyPoints          []string   `json:"key_points,omitempty"`
	Confidence         Confidence `json:"confidence,omitempty"`
	Citations          []Citation `json:"citations,omitempty"`
	Query              string     `json:"query,omitempty"`
	SourcesUsed        int        `json:"sources_used,omitempty"`
	ModelUsed          string     `json:"model_used,omitempty"`
	GenerationTime     float64    `json:"generation_time,omitempty"`
	Error              string     `json:"error,omitempty"`

	// Timestamp is the creation time in Unix milliseconds.
	Timestamp int64 `json:"timestamp,omitempty"`
}

// IsStructured reports whether the summary carries sectioned fields
// rather than a single free-form body.
func (s Summary) IsStructured() bool {
	return s.Overview != "" || s.DetailedAnalysis != "" || len(s.KeyFindings) > 0
}

// StreamEvent is one line of the NDJSON summary stream.
type StreamEvent struct {
	Response string `json:"response,omitempty"`
	Done     bool   `json:"done,omitempty"`
	Error    string `json:"error,omitempty"`
}

// SummaryRequest is the body posted to both summary endpoints.
type SummaryRequest struct {
	Query   string   `json:"query"`
	Results []Record `json:"results"`
}

// RankedSource is a citation with the number of times the summary cites it.
type RankedSource struct {
	Citation
	Count int `json:"count"`
}

// SummaryPhase is the lifecycle position of the summary pane.
type SummaryPhase string

// Summary pane phases.
const (
	SummaryHidden    SummaryPhase = "hidden"
	SummaryLoading   SummaryPhase = "loading"
	SummaryStreaming SummaryPhase = "streaming"
	SummaryComplete  SummaryPhase = "complete"
	SummaryFailed    SummaryPhase = "error"
)

// SummaryView is what the summary pane shows at a point in time.
type SummaryView struct {
	Phase SummaryPhase `json:"phase"`

	// Markdown is the cleaned text shown so far.
	Markdown string `json:"markdown"`

	// HTML is Markdown rendered, with citation links once complete.
	HTML string `json:"html"`

	// Cursor is true while the stream is still arriving.
	Cursor bool `json:"cursor"`

	// FromCache is true when the final model came from the summary cache.
	FromCache bool `json:"from_cache"`

	Summary    *Summary       `json:"summary,omitempty"`
	Citations  []Citation     `json:"citations,omitempty"`
	TopSources []RankedSource `json:"top_sources,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// LLMStatus is the backend's report on the Ollama integration.
type LLMStatus struct {
	Enabled   bool `json:"enabled"`
	Connected bool `json:"connected"`
}

// Available reports whether summaries may be generated.
func (s LLMStatus) Available() bool {
	return s.Enabled && s.Connected
}
