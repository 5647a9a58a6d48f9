package domain

// ResultPage is everything the result view shows for one search.
type ResultPage struct {
	// Query is the raw text the user searched for.
	Query string `json:"query"`

	// RequestID identifies the search that produced the page.
	RequestID string `json:"request_id"`

	// Location is the URL state of the page.
	Location string `json:"location"`

	Request          SearchRequest  `json:"request"`
	State            PageState      `json:"state"`
	ProcessingTimeMs int            `json:"processing_time_ms"`
	Stats            string         `json:"stats"`
	Results          []Result       `json:"-"`
	Records          []Record       `json:"-"`
	Cards            []ResultCard   `json:"cards"`
	Gallery          []GalleryImage `json:"gallery,omitempty"`
	Pagination       *PageBar       `json:"pagination,omitempty"`
}

// IsEmpty reports whether the search found nothing.
func (p *ResultPage) IsEmpty() bool {
	return p == nil || len(p.Records) == 0
}

// ImagePage is the image gallery view for one search.
type ImagePage struct {
	Query      string         `json:"query"`
	Location   string         `json:"location"`
	State      PageState      `json:"state"`
	Images     []GalleryImage `json:"images"`
	Pagination *PageBar       `json:"pagination,omitempty"`
}

// ExploreFilter is a type pill on the explore page.
type ExploreFilter string

// ExploreAll shows every document.
const ExploreAll ExploreFilter = "all"

// ExplorePage is one batch of the document browser.
type ExplorePage struct {
	Filter    ExploreFilter `json:"filter"`
	Sort      SortOrder     `json:"sort"`
	Offset    int           `json:"offset"`
	Total     int           `json:"total"`
	AllLoaded bool          `json:"all_loaded"`
	Cards     []ResultCard  `json:"cards"`
}
