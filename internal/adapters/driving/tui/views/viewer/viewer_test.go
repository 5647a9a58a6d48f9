package viewer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/messages"
	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driving"
)

type mockViewer struct {
	doc     *domain.Document
	kind    domain.ViewerKind
	openErr error
	article *domain.ZimArticle
}

var _ driving.ViewerService = (*mockViewer)(nil)

func (m *mockViewer) Open(_ context.Context, _ string) (*domain.Document, domain.ViewerKind, error) {
	return m.doc, m.kind, m.openErr
}

func (m *mockViewer) ZimArticle(_ context.Context, _ *domain.Document) (*domain.ZimArticle, error) {
	if m.article == nil {
		return nil, domain.ErrNotFound
	}
	return m.article, nil
}

func (m *mockViewer) RouteLink(_ string) domain.LinkAction {
	return domain.LinkAction{Kind: domain.LinkIgnore}
}

type mockActions struct {
	opened []string
	err    error
}

var _ driving.ResultActionService = (*mockActions)(nil)

func (m *mockActions) CopyToClipboard(_ context.Context, _ *domain.ResultCard) error { return nil }

func (m *mockActions) OpenDocument(_ context.Context, _ *domain.ResultCard) error { return nil }

func (m *mockActions) OpenURL(_ context.Context, location string) error {
	m.opened = append(m.opened, location)
	return m.err
}

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func load(t *testing.T, v *View, id string) {
	t.Helper()
	cmd := v.Open(id, "tax forms", 2, messages.ViewSearch)
	require.NotNil(t, cmd)
	assert.True(t, v.Loading())
	v.Update(cmd())
}

func TestView_Open_TextDocument(t *testing.T) {
	svc := &mockViewer{
		doc:  &domain.Document{Record: domain.Record{ID: "d1", Filename: "notes.txt", Content: "line one\nline two"}},
		kind: domain.ViewerText,
	}
	v := NewView(nil, svc, nil)
	v.SetDimensions(80, 30)

	load(t, v, "d1")

	require.NoError(t, v.Err())
	assert.False(t, v.Loading())
	assert.Equal(t, "line one\nline two", v.Content())
	out := v.View()
	assert.Contains(t, out, "notes.txt")
	assert.Contains(t, out, "line two")
	assert.Contains(t, out, "text viewer")
}

func TestView_Open_ZimArticle(t *testing.T) {
	svc := &mockViewer{
		doc:     &domain.Document{Record: domain.Record{ID: "z1", Filename: "Go", FilePath: "zim:///w.zim#A/Go"}},
		kind:    domain.ViewerZim,
		article: &domain.ZimArticle{HTML: "<html><body><h1>Go</h1><p>A language.</p></body></html>"},
	}
	v := NewView(nil, svc, nil)

	load(t, v, "z1")

	assert.Equal(t, "Go\nA language.", v.Content())
}

func TestView_Open_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"vault", fmt.Errorf("fetching: %w", domain.ErrAuthRequired), "Unlock it with your PIN"},
		{"missing", domain.ErrNotFound, "Document not found."},
		{"timeout", domain.ErrViewerTimeout, "took too long"},
		{"other", assert.AnError, "Error: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewView(nil, &mockViewer{openErr: tt.err}, nil)

			load(t, v, "d1")

			assert.Error(t, v.Err())
			assert.Contains(t, v.View(), tt.want)
		})
	}
}

func TestView_Open_NoService(t *testing.T) {
	v := NewView(nil, nil, nil)

	load(t, v, "d1")

	assert.ErrorIs(t, v.Err(), ErrNoViewerService)
}

func TestView_Scroll(t *testing.T) {
	lines := make([]string, 50)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i+1)
	}
	svc := &mockViewer{doc: &domain.Document{Record: domain.Record{ID: "d1", Content: strings.Join(lines, "\n")}}, kind: domain.ViewerText}
	v := NewView(nil, svc, nil)
	v.SetDimensions(80, 17)
	load(t, v, "d1")

	v.Update(key("down"))
	assert.Equal(t, 1, v.scrollOffset)

	v.Update(key("G"))
	assert.Equal(t, v.maxScrollOffset(), v.scrollOffset)
	assert.Contains(t, v.View(), "line 50")
	assert.Contains(t, v.View(), "[100%]")

	v.Update(key("g"))
	assert.Equal(t, 0, v.scrollOffset)

	v.Update(key("k"))
	assert.Equal(t, 0, v.scrollOffset)
}

func TestView_OpenInBrowser(t *testing.T) {
	actions := &mockActions{}
	svc := &mockViewer{doc: &domain.Document{Record: domain.Record{ID: "d1"}}, kind: domain.ViewerText}
	v := NewView(nil, svc, actions)
	load(t, v, "d1")

	v.Update(key("o"))

	assert.Equal(t, []string{"/view/d1?q=tax%20forms&page=2"}, actions.opened)
	assert.Contains(t, v.View(), "Opened /view/d1")
}

func TestView_OpenInBrowser_Unavailable(t *testing.T) {
	v := NewView(nil, &mockViewer{}, nil)

	v.Update(key("o"))

	assert.Contains(t, v.View(), "Open not available")
}

func TestView_EscReturnsToOrigin(t *testing.T) {
	v := NewView(nil, &mockViewer{doc: &domain.Document{}}, nil)
	v.Open("d1", "", 0, messages.ViewExplore)

	_, cmd := v.Update(key("esc"))

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewExplore}, cmd())
}
