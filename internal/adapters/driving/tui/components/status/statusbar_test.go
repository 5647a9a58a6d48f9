package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/keymap"
	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/styles"
	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, 80, bar.Width())
	assert.Nil(t, bar.Init())
}

func TestNewBar_NilDependencies(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestBar_View_States(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		message string
		hits    int
		want    string
	}{
		{"ready", StateReady, "", 0, "Ready"},
		{"searching", StateSearching, "", 0, "Searching..."},
		{"summarising", StateSummarising, "", 1234, "Generating summary..."},
		{"error with message", StateError, "backend down", 0, "Error: backend down"},
		{"error", StateError, "", 0, "Error"},
		{"help", StateHelp, "", 0, "Help"},
		{"results", StateResults, "", 1234, "1,234 results"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(200)
			bar.SetState(tt.state)
			bar.SetPage(domain.PageState{Page: 1, PageSize: 10, TotalHits: tt.hits})
			if tt.message != "" {
				bar.SetMessage(tt.message)
			}

			assert.Contains(t, bar.View(), tt.want)
		})
	}
}

func TestBar_View_PageInfo(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(200)
	bar.SetState(StateResults)
	bar.SetPage(domain.PageState{Page: 2, PageSize: 10, TotalHits: 25})

	view := bar.View()

	assert.Contains(t, view, "page 2 of 3")
	assert.Contains(t, view, "next page")
}

func TestBar_SetToast(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(200)
	bar.SetToast(domain.ToastWarning, "Summary unavailable")

	assert.Equal(t, "Summary unavailable", bar.Message())
	assert.Contains(t, bar.View(), "Summary unavailable")
}

func TestBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("oops")
	bar.SetPage(domain.PageState{Page: 1, PageSize: 10, TotalHits: 5})

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Zero(t, bar.TotalHits())
}
