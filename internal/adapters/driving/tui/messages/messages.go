// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewHome shows suggestions, recent searches and the menu.
	ViewHome ViewType = iota
	// ViewSearch is the search input, results and summary pane.
	ViewSearch
	// ViewExplore browses the index without a query.
	ViewExplore
	// ViewDocument shows one document.
	ViewDocument
	// ViewSettings lists and edits settings.
	ViewSettings
	// ViewHelp lists keybindings.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewHome:
		return "home"
	case ViewSearch:
		return "search"
	case ViewExplore:
		return "explore"
	case ViewDocument:
		return "document"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// SearchRequested asks the search view to run a query.
type SearchRequested struct {
	Query string
	Page  int
	// Force skips the syntax check.
	Force bool
}

// SearchCompleted carries a result page back to the model.
type SearchCompleted struct {
	Query string
	Page  *domain.ResultPage
	Err   error
}

// ImagesCompleted carries an image gallery page.
type ImagesCompleted struct {
	Page *domain.ImagePage
	Err  error
}

// SummaryUpdated carries a summary pane snapshot.
type SummaryUpdated struct {
	View domain.SummaryView
}

// SummaryFinished is sent when an explicit summary request ends.
type SummaryFinished struct {
	View domain.SummaryView
	Err  error
}

// ValidationPrompt asks the user whether to search despite syntax problems.
type ValidationPrompt struct {
	Query      string
	Validation domain.Validation
}

// ValidationAnswered carries the user's answer to a ValidationPrompt.
type ValidationAnswered struct {
	Query  string
	Choice domain.ValidationChoice
}

// RecommendationsLoaded carries suggested searches.
type RecommendationsLoaded struct {
	Recommendations []domain.Recommendation
	Err             error
}

// HistoryLoaded carries the recent searches.
type HistoryLoaded struct {
	History []string
}

// ExploreLoaded carries one batch of the document browser.
type ExploreLoaded struct {
	Page *domain.ExplorePage
	// Append is true when the batch extends the current list.
	Append bool
	Err    error
}

// DocumentRequested asks for a document to be opened in the viewer.
type DocumentRequested struct {
	ID string
}

// DocumentLoaded carries a fetched document and its prepared body.
type DocumentLoaded struct {
	Document *domain.Document
	Kind     domain.ViewerKind
	Body     string
	Err      error
}

// PINRequested opens the vault PIN modal. Reply receives the PIN, or ""
// when the user cancels.
type PINRequested struct {
	Reply chan<- string
}

// SettingsLoaded carries every setting with its effective value.
type SettingsLoaded struct {
	Values []domain.SettingValue
	Err    error
}

// SettingSaved signals a setting was changed.
type SettingSaved struct {
	Key string
	Err error
}

// Toast is a transient notification for the status bar.
type Toast struct {
	Level   domain.ToastLevel
	Title   string
	Message string
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
