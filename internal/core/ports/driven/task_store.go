package driven

import (
	"context"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

// TaskStore keeps background task state across restarts, so a cleanup
// that ran just before exit is not repeated on the next launch.
type TaskStore interface {
	// Task returns the stored task, or nil when id has never been saved.
	Task(ctx context.Context, id string) (*domain.BackgroundTask, error)

	// Tasks returns every stored task.
	Tasks(ctx context.Context) ([]domain.BackgroundTask, error)

	// PutTask inserts or replaces a task.
	PutTask(ctx context.Context, task *domain.BackgroundTask) error

	// AppendRun records a run and trims that task's log to the newest keep
	// entries.
	AppendRun(ctx context.Context, run *domain.TaskRun, keep int) error

	// Runs returns up to limit runs of a task, newest first.
	Runs(ctx context.Context, id string, limit int) ([]domain.TaskRun, error)
}
