package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driven"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driving"
	"github.com/searchbox/searchbox-cli/internal/logger"
)

var _ driving.Scheduler = (*Scheduler)(nil)

// runLogSize is how many runs are kept per task.
const runLogSize = 50

// TaskFunc runs one execution of a background task and reports how many
// entries it handled.
type TaskFunc func(ctx context.Context) (int, error)

// CacheCleanupTask evicts expired summaries.
func CacheCleanupTask(cache *SummaryCache) TaskFunc {
	return cache.Cleanup
}

// RecommendationsRefreshTask refetches suggestions so the home view stays
// current. An unavailable LLM is not a failure.
func RecommendationsRefreshTask(r *Recommender) TaskFunc {
	return func(ctx context.Context) (int, error) {
		recs, err := r.Refresh(ctx)
		if errors.Is(err, domain.ErrLLMUnavailable) {
			return 0, nil
		}
		return len(recs), err
	}
}

// Scheduler runs the client's background tasks on their intervals. Task
// state lives in the task store so intervals carry over between launches.
type Scheduler struct {
	config domain.SchedulerConfig
	store  driven.TaskStore
	now    func() time.Time

	mu       sync.Mutex
	funcs    map[string]TaskFunc
	inflight map[string]bool
	stop     chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler creates a scheduler. Tasks are added with Register.
func NewScheduler(config domain.SchedulerConfig, store driven.TaskStore) *Scheduler {
	return &Scheduler{
		config:   config,
		store:    store,
		now:      time.Now,
		funcs:    make(map[string]TaskFunc),
		inflight: make(map[string]bool),
	}
}

// Register binds a task ID to the function that runs it.
func (s *Scheduler) Register(id string, fn TaskFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.funcs[id] = fn
}

// Start syncs the registered tasks with the store and runs due tasks on
// every tick. It blocks until ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.stop != nil {
		s.mu.Unlock()
		return nil
	}
	stop := make(chan struct{})
	s.stop = stop
	s.mu.Unlock()

	if !s.config.Enabled {
		logger.Debug("scheduler: disabled")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		}
	}

	if err := s.sync(ctx); err != nil {
		logger.Warn("scheduler: syncing tasks: %v", err)
	}
	s.tick(ctx)

	period := s.config.Tick
	if period <= 0 {
		period = time.Minute
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// Stop ends the loop and waits for running tasks to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if s.stop == nil {
		s.mu.Unlock()
		return nil
	}
	close(s.stop)
	s.stop = nil
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// sync writes the configured interval of every registered task to the
// store. A changed interval reschedules the task from now; a task with no
// interval is disabled.
func (s *Scheduler) sync(ctx context.Context) error {
	s.mu.Lock()
	ids := make([]string, 0, len(s.funcs))
	for id := range s.funcs {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		every := s.config.Interval(id)

		task, err := s.store.Task(ctx, id)
		if err != nil {
			return err
		}
		if task == nil {
			name := domain.TaskNames[id]
			if name == "" {
				name = id
			}
			task = &domain.BackgroundTask{ID: id, Name: name}
		}
		if task.Every != every {
			task.Every = every
			task.NextRun = s.now().Add(every)
		}
		task.Enabled = every > 0

		if err := s.store.PutTask(ctx, task); err != nil {
			return err
		}
	}
	return nil
}

// tick starts every due task that is not already running.
func (s *Scheduler) tick(ctx context.Context) {
	tasks, err := s.store.Tasks(ctx)
	if err != nil {
		logger.Warn("scheduler: listing tasks: %v", err)
		return
	}

	now := s.now()
	for i := range tasks {
		if tasks[i].Due(now) {
			s.launch(ctx, tasks[i])
		}
	}
}

// launch runs task in its own goroutine and records the outcome.
func (s *Scheduler) launch(ctx context.Context, task domain.BackgroundTask) {
	s.mu.Lock()
	fn := s.funcs[task.ID]
	if fn == nil || s.inflight[task.ID] {
		s.mu.Unlock()
		if fn == nil {
			logger.Debug("scheduler: nothing registered for %s", task.ID)
		}
		return
	}
	s.inflight[task.ID] = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.inflight, task.ID)
			s.mu.Unlock()
		}()

		run := domain.TaskRun{TaskID: task.ID, Started: s.now()}
		handled, err := fn(ctx)
		run.Finished, run.Handled = s.now(), handled
		if err != nil {
			run.Err = err.Error()
			logger.Warn("scheduler: %s failed: %v", task.ID, err)
		} else {
			logger.Debug("scheduler: %s handled %d in %s", task.ID, handled, run.Took())
		}

		task.Finish(run)
		if err := s.store.PutTask(ctx, &task); err != nil {
			logger.Warn("scheduler: saving %s: %v", task.ID, err)
		}
		if err := s.store.AppendRun(ctx, &run, runLogSize); err != nil {
			logger.Warn("scheduler: logging run of %s: %v", task.ID, err)
		}
	}()
}
