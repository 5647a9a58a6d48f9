package backend

import (
	"context"
	"sync"

	"github.com/searchbox/searchbox-cli/internal/core/ports/driven"
)

// mockPrompter implements driven.PINPrompter with a scripted answer.
type mockPrompter struct {
	mu    sync.Mutex
	pin   string
	ok    bool
	err   error
	calls int
}

var _ driven.PINPrompter = (*mockPrompter)(nil)

func (m *mockPrompter) PromptPIN(_ context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.pin, m.ok, m.err
}

func (m *mockPrompter) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
