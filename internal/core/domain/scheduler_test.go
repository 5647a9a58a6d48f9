package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSchedulerConfig(t *testing.T) {
	config := DefaultSchedulerConfig()

	assert.True(t, config.Enabled)
	assert.Equal(t, 30*time.Second, config.Tick)
	assert.Equal(t, map[string]time.Duration{
		TaskIDCacheCleanup:           5 * time.Minute,
		TaskIDRecommendationsRefresh: 5 * time.Minute,
	}, config.Intervals)
}

func TestSchedulerConfigFor(t *testing.T) {
	settings := DefaultAppSettings()
	settings.Cache.CleanupInterval = time.Minute
	settings.RecommendationsTTL = 0

	config := SchedulerConfigFor(settings)

	assert.Equal(t, time.Minute, config.Interval(TaskIDCacheCleanup))
	assert.Equal(t, RecommendationsTTL, config.Interval(TaskIDRecommendationsRefresh))
	assert.Zero(t, config.Interval("unknown-task"))
}

func TestSchedulerConfig_IntervalNilMap(t *testing.T) {
	assert.Zero(t, SchedulerConfig{Enabled: true}.Interval(TaskIDCacheCleanup))
}

func TestBackgroundTask_Due(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		task BackgroundTask
		want bool
	}{
		{"never scheduled", BackgroundTask{Enabled: true}, true},
		{"overdue", BackgroundTask{Enabled: true, NextRun: now.Add(-time.Second)}, true},
		{"exactly now", BackgroundTask{Enabled: true, NextRun: now}, true},
		{"later", BackgroundTask{Enabled: true, NextRun: now.Add(time.Minute)}, false},
		{"disabled", BackgroundTask{NextRun: now.Add(-time.Hour)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.Due(now))
		})
	}
}

func TestBackgroundTask_Finish(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	task := BackgroundTask{ID: TaskIDCacheCleanup, Every: 5 * time.Minute, Enabled: true}

	task.Finish(TaskRun{Started: start, Finished: start.Add(2 * time.Second), Handled: 4})

	assert.Equal(t, start, task.LastRun)
	assert.Equal(t, start.Add(5*time.Minute+2*time.Second), task.NextRun)
	assert.Equal(t, start.Add(2*time.Second), task.LastOK)
	assert.Empty(t, task.LastError)

	later := start.Add(10 * time.Minute)
	task.Finish(TaskRun{Started: later, Finished: later, Err: "backend offline"})

	assert.Equal(t, "backend offline", task.LastError)
	assert.Equal(t, start.Add(2*time.Second), task.LastOK, "failed run keeps the last success")
}

func TestTaskRun(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	run := TaskRun{Started: start, Finished: start.Add(1500 * time.Millisecond)}

	assert.True(t, run.OK())
	assert.Equal(t, 1500*time.Millisecond, run.Took())

	run.Err = "timeout"
	assert.False(t, run.OK())
}
