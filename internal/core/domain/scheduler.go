package domain

import "time"

// Built-in background tasks.
const (
	TaskIDCacheCleanup           = "summary-cache-cleanup"
	TaskIDRecommendationsRefresh = "recommendations-refresh"
)

// TaskNames maps built-in task IDs to display names.
var TaskNames = map[string]string{
	TaskIDCacheCleanup:           "Summary Cache Cleanup",
	TaskIDRecommendationsRefresh: "Recommendations Refresh",
}

// BackgroundTask is the persisted state of one recurring client job.
type BackgroundTask struct {
	ID      string
	Name    string
	Every   time.Duration
	Enabled bool

	LastRun   time.Time
	NextRun   time.Time
	LastOK    time.Time
	LastError string
}

// Due reports whether the task should run at now. A task that has never
// been scheduled is always due.
func (t *BackgroundTask) Due(now time.Time) bool {
	if !t.Enabled {
		return false
	}
	return t.NextRun.IsZero() || !t.NextRun.After(now)
}

// Finish folds a completed run into the task and schedules the next one.
func (t *BackgroundTask) Finish(run TaskRun) {
	t.LastRun = run.Started
	t.NextRun = run.Finished.Add(t.Every)
	t.LastError = run.Err
	if run.OK() {
		t.LastOK = run.Finished
	}
}

// TaskRun is one execution of a background task.
type TaskRun struct {
	TaskID   string
	Started  time.Time
	Finished time.Time
	Err      string

	// Handled counts the entries the run touched: summaries evicted or
	// recommendations fetched.
	Handled int
}

// OK reports whether the run completed without error.
func (r TaskRun) OK() bool { return r.Err == "" }

// Took is the wall time of the run.
func (r TaskRun) Took() time.Duration { return r.Finished.Sub(r.Started) }

// SchedulerConfig holds the background cadence.
type SchedulerConfig struct {
	Enabled bool

	// Tick is how often due tasks are checked.
	Tick time.Duration

	// Intervals maps task IDs to their period. A task without a positive
	// interval does not run.
	Intervals map[string]time.Duration
}

// Interval returns the period for id, or zero when it is not scheduled.
func (c SchedulerConfig) Interval(id string) time.Duration {
	return c.Intervals[id]
}

// DefaultSchedulerConfig returns the background cadence of the client:
// summary cache cleanup and recommendation refresh every five minutes.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled: true,
		Tick:    30 * time.Second,
		Intervals: map[string]time.Duration{
			TaskIDCacheCleanup:           CacheCleanupInterval,
			TaskIDRecommendationsRefresh: RecommendationsTTL,
		},
	}
}

// SchedulerConfigFor derives task intervals from application settings.
func SchedulerConfigFor(settings AppSettings) SchedulerConfig {
	config := DefaultSchedulerConfig()
	if settings.Cache.CleanupInterval > 0 {
		config.Intervals[TaskIDCacheCleanup] = settings.Cache.CleanupInterval
	}
	if settings.RecommendationsTTL > 0 {
		config.Intervals[TaskIDRecommendationsRefresh] = settings.RecommendationsTTL
	}
	return config
}
