package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driven"
)

const taskColumns = `id, name, every_ms, enabled, last_run_ms, next_run_ms, last_ok_ms, last_error`

// taskStore implements driven.TaskStore on the background_tasks and
// task_runs tables.
type taskStore struct {
	db *sql.DB
}

var _ driven.TaskStore = (*taskStore)(nil)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *taskStore) Task(ctx context.Context, id string) (*domain.BackgroundTask, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM background_tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading task %s: %w", id, err)
	}
	return task, nil
}

func (s *taskStore) Tasks(ctx context.Context) ([]domain.BackgroundTask, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM background_tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.BackgroundTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (s *taskStore) PutTask(ctx context.Context, task *domain.BackgroundTask) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO background_tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.Name, task.Every.Milliseconds(), task.Enabled,
		toMillis(task.LastRun), toMillis(task.NextRun), toMillis(task.LastOK),
		task.LastError)
	if err != nil {
		return fmt.Errorf("saving task %s: %w", task.ID, err)
	}
	return nil
}

// AppendRun inserts the run and trims the log in one transaction so a crash
// never leaves the log over its bound.
func (s *taskStore) AppendRun(ctx context.Context, run *domain.TaskRun, keep int) error {
	if run == nil || run.TaskID == "" {
		return domain.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting run log transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO task_runs (task_id, started_ms, finished_ms, err, handled)
		VALUES (?, ?, ?, ?, ?)`,
		run.TaskID, toMillis(run.Started), toMillis(run.Finished), run.Err, run.Handled); err != nil {
		return fmt.Errorf("recording run of %s: %w", run.TaskID, err)
	}

	if keep > 0 {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM task_runs
			WHERE task_id = ? AND seq NOT IN (
				SELECT seq FROM task_runs WHERE task_id = ? ORDER BY seq DESC LIMIT ?
			)`, run.TaskID, run.TaskID, keep); err != nil {
			return fmt.Errorf("trimming runs of %s: %w", run.TaskID, err)
		}
	}

	return tx.Commit()
}

func (s *taskStore) Runs(ctx context.Context, id string, limit int) ([]domain.TaskRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT task_id, started_ms, finished_ms, err, handled
		FROM task_runs WHERE task_id = ?
		ORDER BY seq DESC LIMIT ?`, id, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs of %s: %w", id, err)
	}
	defer rows.Close()

	var runs []domain.TaskRun
	for rows.Next() {
		var (
			run               domain.TaskRun
			started, finished int64
		)
		if err := rows.Scan(&run.TaskID, &started, &finished, &run.Err, &run.Handled); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.Started, run.Finished = fromMillis(started), fromMillis(finished)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanTask(row rowScanner) (*domain.BackgroundTask, error) {
	var (
		task                    domain.BackgroundTask
		everyMS                 int64
		lastRun, nextRun, okRun int64
	)
	if err := row.Scan(&task.ID, &task.Name, &everyMS, &task.Enabled,
		&lastRun, &nextRun, &okRun, &task.LastError); err != nil {
		return nil, err
	}
	task.Every = time.Duration(everyMS) * time.Millisecond
	task.LastRun = fromMillis(lastRun)
	task.NextRun = fromMillis(nextRun)
	task.LastOK = fromMillis(okRun)
	return &task, nil
}

// toMillis stores the zero time as 0.
func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
