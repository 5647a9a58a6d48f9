package domain

import "time"

// RecommendationsTTL is how long fetched recommendations stay fresh.
const RecommendationsTTL = 5 * time.Minute

// Recommendation is one suggested search.
type Recommendation struct {
	Query    string `json:"query"`
	Reason   string `json:"reason"`
	Category string `json:"category"`
}

// Recommendations is the backend's recommendations payload.
type Recommendations struct {
	Success         bool             `json:"success"`
	Recommendations []Recommendation `json:"recommendations"`
	Enhanced        bool             `json:"enhanced,omitempty"`
	Message         string           `json:"message,omitempty"`
}
