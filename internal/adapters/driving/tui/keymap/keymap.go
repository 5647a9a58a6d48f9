// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	Quit   key.Binding
	Help   key.Binding
	Back   key.Binding
	Search key.Binding
	Up     key.Binding
	Down   key.Binding
	Select key.Binding

	// NewSearch focuses the query box from the results.
	NewSearch key.Binding
	// NextPage and PrevPage move through result pages.
	NextPage key.Binding
	PrevPage key.Binding
	// Refresh regenerates the summary, bypassing the cache.
	Refresh key.Binding
	// Summary toggles focus between the results and the summary pane.
	Summary key.Binding
	// Images opens the image gallery for the current query.
	Images key.Binding
	// Open views the selected document.
	Open key.Binding
	// Copy copies the selected snippet.
	Copy key.Binding
	// Browser opens the selected document in the web viewer.
	Browser key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Search:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		NewSearch: key.NewBinding(key.WithKeys("/", "n"), key.WithHelp("/", "new search")),
		NextPage:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next page")),
		PrevPage:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev page")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh summary")),
		Summary:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "summary")),
		Images:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "images")),
		Open:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "view")),
		Copy:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy")),
		Browser:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open in browser")),
	}
}

// ShortHelp returns a short list of keybindings for the help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// ResultsHelp returns keybindings for the results view.
func (k *KeyMap) ResultsHelp() []key.Binding {
	return []key.Binding{k.NewSearch, k.Open, k.PrevPage, k.NextPage, k.Refresh, k.Back}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Search},
		{k.NewSearch, k.PrevPage, k.NextPage, k.Images},
		{k.Open, k.Copy, k.Browser, k.Summary, k.Refresh},
		{k.Back, k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
