// Command searchbox is the terminal client for a SearchBox backend.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/searchbox/searchbox-cli/internal/adapters/driven/backend"
	"github.com/searchbox/searchbox-cli/internal/adapters/driven/config/file"
	"github.com/searchbox/searchbox-cli/internal/adapters/driven/markdown"
	"github.com/searchbox/searchbox-cli/internal/adapters/driven/meilisearch"
	"github.com/searchbox/searchbox-cli/internal/adapters/driven/navigation"
	"github.com/searchbox/searchbox-cli/internal/adapters/driven/storage/memory"
	"github.com/searchbox/searchbox-cli/internal/adapters/driven/storage/sqlite"
	"github.com/searchbox/searchbox-cli/internal/adapters/driving/cli"
	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driven"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driving"
	"github.com/searchbox/searchbox-cli/internal/core/services"
	"github.com/searchbox/searchbox-cli/internal/logger"
)

// version is set at build time through -ldflags.
var version = "dev"

func main() {
	// A missing .env is normal; the environment and config file still apply.
	_ = godotenv.Load()

	cleanup, err := wire()
	if err != nil {
		fmt.Fprintf(os.Stderr, "searchbox: %v\n", err)
		os.Exit(1)
	}

	cli.SetVersion(version)
	err = cli.Execute()
	cleanup()
	if err != nil {
		os.Exit(1)
	}
}

// wire builds the adapters and services and hands them to the command tree.
// The returned func releases the durable store.
func wire() (func(), error) {
	configStore, err := openConfigStore()
	if err != nil {
		return nil, err
	}

	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		logger.Warn("reading settings, using defaults: %v", err)
		defaults := settingsService.GetDefaults()
		settings = &defaults
	}

	kv, taskStore, closeStore := openStore(settings.Cache)

	session := memory.NewSessionStore()
	client := backend.NewClient(backend.Config{
		BaseURL:           settings.Backend.URL,
		CSRFToken:         settings.Backend.CSRFToken,
		RequestsPerSecond: settings.Backend.RequestsPerSecond,
	}, session)
	client.SetPINPrompter(file.NewTerminalPrompter(os.Stdin, os.Stderr))

	index := meilisearch.NewClient(meilisearch.Config{
		URL:    settings.Meilisearch.URL,
		APIKey: settings.Meilisearch.APIKey,
		Index:  settings.Meilisearch.Index,
	})

	events := services.NewEmitter()
	nav := navigation.NewHistory()
	nav.OnNavigate(func(location string) {
		logger.Debug("navigate: %s", location)
	})

	history := services.NewHistoryTracker(client, events)
	recommender := services.NewRecommender(client, client, history, events, settings.RecommendationsTTL)

	cache := services.NewSummaryCache(kv, settings.Cache)
	summaries := services.NewSummaryEngine(client, client, cache, markdown.NewRenderer(), events, settings.Summary)

	controller := services.NewSearchController(index, nav, events, settings.Search)
	controller.SetHistoryService(history)
	controller.SetResultsViewObserver(recommender)

	var scheduler driving.Scheduler
	if taskStore != nil {
		s := services.NewScheduler(domain.SchedulerConfigFor(*settings), taskStore)
		s.Register(domain.TaskIDCacheCleanup, services.CacheCleanupTask(cache))
		s.Register(domain.TaskIDRecommendationsRefresh, services.RecommendationsRefreshTask(recommender))
		scheduler = s
	}

	cli.SetServices(&cli.Services{
		Search:           controller,
		Summary:          summaries,
		Cache:            cache,
		History:          history,
		Recommendations:  recommender,
		Viewer:           services.NewDocumentViewer(client),
		ResultActions:    services.NewResultActionService("http://" + settings.Web.Addr),
		Settings:         settingsService,
		Status:           services.NewStatusReporter(client, settings.Backend.URL),
		Scheduler:        scheduler,
		SchedulerEnabled: scheduler != nil,
		EnableAutoSummary: func() {
			controller.SetSummaryService(summaries, settings.Summary)
		},
		Subscribe:      events.Subscribe,
		SetPINPrompter: client.SetPINPrompter,
		WatchConfig: func(ctx context.Context, onChange func()) error {
			return configStore.Watch(ctx, onChange)
		},
		WebAddr:    settings.Web.Addr,
		BackendURL: settings.Backend.URL,
	})

	return closeStore, nil
}

func openConfigStore() (*file.ConfigStore, error) {
	dir, err := file.DefaultDir()
	if err != nil {
		return nil, fmt.Errorf("locating config directory: %w", err)
	}
	store, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	return store, nil
}

// openStore opens the sqlite cache. When it cannot be opened summaries are
// cached in memory for the process lifetime and the scheduler is disabled.
func openStore(cfg domain.CacheSettings) (driven.KVStore, driven.TaskStore, func()) {
	var (
		store *sqlite.Store
		err   error
	)
	if cfg.Path != "" {
		if err = os.MkdirAll(filepath.Dir(cfg.Path), 0700); err == nil {
			store, err = sqlite.Open(cfg.Path)
		}
	} else {
		store, err = sqlite.NewStore("")
	}
	if err != nil {
		logger.Warn("summary cache unavailable, using memory: %v", err)
		return memory.NewKVStore(), nil, func() {}
	}

	return store.KVStore(), store.TaskStore(), func() {
		if err := store.Close(); err != nil {
			logger.Debug("closing store: %v", err)
		}
	}
}
