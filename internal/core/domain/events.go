package domain

// EventKind names a notification emitted by core services.
type EventKind string

// Event kinds.
const (
	EventToast           EventKind = "toast"
	EventNavigate        EventKind = "navigate"
	EventSummaryUpdate   EventKind = "summary_update"
	EventResultsRendered EventKind = "results_rendered"
	EventRecommendations EventKind = "recommendations"
	EventHistoryChanged  EventKind = "history_changed"
)

// ToastLevel is the severity of a toast.
type ToastLevel string

// Toast levels.
const (
	ToastInfo    ToastLevel = "info"
	ToastWarning ToastLevel = "warning"
	ToastError   ToastLevel = "error"
	ToastSuccess ToastLevel = "success"
)

// Event is a notification delivered to subscribers.
type Event struct {
	Kind    EventKind
	Level   ToastLevel
	Title   string
	Message string

	// Payload carries the kind-specific value, e.g. a SummaryView.
	Payload any
}
