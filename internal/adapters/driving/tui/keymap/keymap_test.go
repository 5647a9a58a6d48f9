package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()
	require.NotNil(t, km)

	tests := []struct {
		name    string
		binding key.Binding
		keys    []string
	}{
		{"quit", km.Quit, []string{"q", "ctrl+c"}},
		{"help", km.Help, []string{"?"}},
		{"back", km.Back, []string{"esc"}},
		{"search", km.Search, []string{"enter"}},
		{"up", km.Up, []string{"up", "k"}},
		{"down", km.Down, []string{"down", "j"}},
		{"new search", km.NewSearch, []string{"/", "n"}},
		{"next page", km.NextPage, []string{"right", "l"}},
		{"prev page", km.PrevPage, []string{"left", "h"}},
		{"refresh", km.Refresh, []string{"r"}},
		{"summary", km.Summary, []string{"tab"}},
		{"images", km.Images, []string{"i"}},
		{"copy", km.Copy, []string{"c"}},
		{"browser", km.Browser, []string{"o"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range tt.keys {
				assert.Contains(t, tt.binding.Keys(), k)
			}
			assert.NotEmpty(t, tt.binding.Help().Desc)
		})
	}
}

func TestKeyMap_HelpGroups(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.ShortHelp(), 2)
	assert.Contains(t, km.ResultsHelp(), km.Refresh)

	full := km.FullHelp()
	require.Len(t, full, 4)
	assert.Contains(t, full[3], km.Quit)
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("k", km.Up))
	assert.True(t, Matches("r", km.Refresh))
	assert.False(t, Matches("x", km.Up))
}
