package services

import (
	"context"
	"sync"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driven"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driving"
	"github.com/searchbox/searchbox-cli/internal/logger"
)

// Ensure StatusReporter implements the interface.
var _ driving.StatusService = (*StatusReporter)(nil)

// StatusReporter checks the backend subsystems in parallel.
type StatusReporter struct {
	api     driven.StatusAPI
	backend string
}

// NewStatusReporter creates a reporter for the backend at backendURL.
func NewStatusReporter(api driven.StatusAPI, backendURL string) *StatusReporter {
	return &StatusReporter{api: api, backend: backendURL}
}

// Status runs every check and collects the answers.
func (r *StatusReporter) Status(ctx context.Context) domain.SystemStatus {
	status := domain.SystemStatus{Backend: r.backend}
	if r.api == nil {
		status.LLM.Error = "backend not configured"
		status.Meilisearch.Error = status.LLM.Error
		status.Vault.Error = status.LLM.Error
		return status
	}

	logger.Section("Status")
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		status.LLM = check(ctx, "llm", r.api.LLMStatus)
	}()
	go func() {
		defer wg.Done()
		status.Meilisearch = check(ctx, "meilisearch", r.api.MeilisearchStatus)
	}()
	go func() {
		defer wg.Done()
		status.Vault = check(ctx, "vault", r.api.VaultStatus)
	}()
	wg.Wait()
	return status
}

func check[T any](ctx context.Context, name string, fn func(context.Context) (T, error)) domain.CheckResult[T] {
	v, err := fn(ctx)
	if err != nil {
		logger.Debug("status: %s check failed: %v", name, err)
		return domain.CheckResult[T]{Value: v, Error: err.Error()}
	}
	return domain.CheckResult[T]{Value: v}
}
