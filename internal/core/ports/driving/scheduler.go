package driving

import "context"

// Scheduler runs summary cache cleanup and recommendation refresh in the
// background while the TUI or the web viewer is up.
type Scheduler interface {
	// Start blocks until ctx is done or Stop is called.
	Start(ctx context.Context) error

	// Stop ends Start and waits for in-flight tasks.
	Stop() error
}
