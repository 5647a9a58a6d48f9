package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/keymap"
	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/messages"
	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/styles"
	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/views/explore"
	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/views/home"
	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/views/search"
	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/views/settings"
	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/views/viewer"
	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/logger"
)

// eventBuffer bounds the core events queued between service goroutines and
// the program loop. Events beyond it are dropped.
const eventBuffer = 128

// coreEvent wraps a domain event for the update loop.
type coreEvent struct {
	event domain.Event
}

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap
	help   help.Model

	homeView     *home.View
	searchView   *search.View
	exploreView  *explore.View
	viewerView   *viewer.View
	settingsView *settings.View

	// pin is the open PIN modal, if any.
	pin *pinModal
	// pinPrompter is attached to the program in Run.
	pinPrompter *PINPrompter

	// events receives core events from service goroutines.
	events      chan domain.Event
	unsubscribe func()

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	a := &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		keymap:       km,
		help:         help.New(),
		homeView:     home.NewView(s),
		searchView:   search.NewView(s, km, ports.Search, ports.Summary, ports.ResultAction),
		exploreView:  explore.NewView(s, ports.Search),
		viewerView:   viewer.NewView(s, ports.Viewer, ports.ResultAction),
		settingsView: settings.NewView(s, ports.Settings),
		events:       make(chan domain.Event, eventBuffer),
		currentView:  messages.ViewHome,
	}

	if ports.Subscribe != nil {
		a.unsubscribe = ports.Subscribe(a.enqueue)
	}

	return a, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	a.exploreView.WithContext(ctx)
	a.viewerView.WithContext(ctx)
	return a
}

// WithPINPrompter routes vault PIN prompts through this app once it runs.
func (a *App) WithPINPrompter(p *PINPrompter) *App {
	a.pinPrompter = p
	return a
}

// Close stops receiving core events.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

// enqueue is the core event subscriber. It never blocks the emitter.
func (a *App) enqueue(ev domain.Event) {
	select {
	case a.events <- ev:
	default:
		logger.Debug("tui: event queue full, dropping %s", ev.Kind)
	}
}

// listenEvents waits for the next core event.
func (a *App) listenEvents() tea.Cmd {
	if a.ports.Subscribe == nil {
		return nil
	}
	ctx := a.ctx
	events := a.events
	return func() tea.Msg {
		select {
		case ev := <-events:
			return coreEvent{event: ev}
		case <-ctx.Done():
			return nil
		}
	}
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("SearchBox"),
		a.loadHome(),
		a.listenEvents(),
	)
}

// loadHome fetches recent searches and suggestions for the home view.
func (a *App) loadHome() tea.Cmd {
	var cmds []tea.Cmd
	ctx := a.ctx

	if hist := a.ports.History; hist != nil {
		cmds = append(cmds, func() tea.Msg {
			hist.Load(ctx)
			return messages.HistoryLoaded{History: hist.List()}
		})
	}
	if recs := a.ports.Recommendations; recs != nil {
		cmds = append(cmds, func() tea.Msg {
			list, err := recs.Recommendations(ctx)
			return messages.RecommendationsLoaded{Recommendations: list, Err: err}
		})
	}

	return tea.Batch(cmds...)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocognit,gocyclo,funlen // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.pin != nil {
			done, cmd := a.pin.update(msg)
			if done {
				a.pin = nil
			}
			return a, cmd
		}
		return a, a.handleKey(msg)

	case coreEvent:
		return a, tea.Batch(a.handleEvent(msg.event), a.listenEvents())

	case messages.PINRequested:
		if a.pin != nil {
			// One prompt at a time; a second caller sees a cancel.
			select {
			case msg.Reply <- "":
			default:
			}
			return a, nil
		}
		a.pin = newPINModal(msg.Reply)
		return a, nil

	case messages.ViewChanged:
		return a, a.switchView(msg.View)

	case messages.SearchRequested:
		a.currentView = messages.ViewSearch
		a.searchView, cmd = a.searchView.Update(msg)
		return a, cmd

	case messages.SearchCompleted, messages.ImagesCompleted, messages.ValidationAnswered,
		messages.SummaryUpdated, messages.SummaryFinished, messages.Toast:
		a.searchView, cmd = a.searchView.Update(msg)
		return a, cmd

	case messages.DocumentRequested:
		back := a.currentView
		query, page := "", 0
		if back == messages.ViewSearch {
			if p := a.searchView.Page(); p != nil {
				query, page = p.Query, p.State.Page
			}
		}
		a.currentView = messages.ViewDocument
		return a, a.viewerView.Open(msg.ID, query, page, back)

	case messages.DocumentLoaded:
		a.viewerView, cmd = a.viewerView.Update(msg)
		return a, cmd

	case messages.ExploreLoaded:
		a.exploreView, cmd = a.exploreView.Update(msg)
		return a, cmd

	case messages.SettingsLoaded, messages.SettingSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.RecommendationsLoaded, messages.HistoryLoaded:
		a.homeView, cmd = a.homeView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		if a.currentView == messages.ViewSearch {
			a.searchView, cmd = a.searchView.Update(msg)
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages (cursor blink, viewport ticks) to the active view
	return a, a.forward(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch a.currentView {
	case messages.ViewHome:
		if msg.String() == "?" {
			a.currentView = messages.ViewHelp
			return nil
		}
	case messages.ViewHelp:
		if msg.Type == tea.KeyEsc || msg.String() == "?" || msg.String() == "q" {
			a.currentView = messages.ViewHome
		}
		return nil
	case messages.ViewSearch, messages.ViewExplore, messages.ViewDocument, messages.ViewSettings:
	}
	return a.forward(msg)
}

func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewHome:
		a.homeView, cmd = a.homeView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()
	case messages.ViewExplore:
		a.exploreView, cmd = a.exploreView.Update(msg)
	case messages.ViewDocument:
		a.viewerView, cmd = a.viewerView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
	}
	return cmd
}

func (a *App) switchView(view messages.ViewType) tea.Cmd {
	a.currentView = view
	switch view {
	case messages.ViewHome:
		return a.loadHome()
	case messages.ViewSearch:
		a.searchView.Reset()
		return a.searchView.Init()
	case messages.ViewExplore:
		return a.exploreView.Init()
	case messages.ViewSettings:
		a.settingsView.Reset()
		return a.settingsView.Init()
	case messages.ViewDocument, messages.ViewHelp:
	}
	return nil
}

// handleEvent turns a core event into view updates.
func (a *App) handleEvent(ev domain.Event) tea.Cmd {
	var cmd tea.Cmd

	switch ev.Kind {
	case domain.EventSummaryUpdate:
		if sv, ok := ev.Payload.(domain.SummaryView); ok {
			a.searchView, cmd = a.searchView.Update(messages.SummaryUpdated{View: sv})
		}
	case domain.EventToast:
		a.searchView, cmd = a.searchView.Update(messages.Toast{
			Level:   ev.Level,
			Title:   ev.Title,
			Message: ev.Message,
		})
	case domain.EventHistoryChanged:
		if history, ok := ev.Payload.([]string); ok {
			a.homeView.SetHistory(history)
		}
	case domain.EventRecommendations:
		if recs, ok := ev.Payload.([]domain.Recommendation); ok {
			a.homeView.SetRecommendations(recs)
		}
	case domain.EventNavigate, domain.EventResultsRendered:
	}

	return cmd
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	if a.pin != nil {
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, a.pin.view(a.styles))
	}

	switch a.currentView {
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewExplore:
		return a.exploreView.View()
	case messages.ViewDocument:
		return a.viewerView.View()
	case messages.ViewSettings:
		return a.settingsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	case messages.ViewHome:
	}
	return a.homeView.View()
}

// viewHelp renders the keybinding reference.
func (a *App) viewHelp() string {
	a.help.Width = a.width
	return a.styles.Title.Render("Help") + "\n\n" +
		a.help.FullHelpView(a.keymap.FullHelp()) + "\n\n" +
		"Query syntax:\n" +
		"  term::pdf          only PDF documents\n" +
		"  term::!zip         exclude a type\n" +
		"  a::pdf && b::docx  combine clauses\n" +
		"  cats::image        image gallery\n\n" +
		a.styles.Help.Render("[esc] back")
}

// Run starts the TUI application.
func (a *App) Run() error {
	defer a.Close()

	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	if a.pinPrompter != nil {
		a.pinPrompter.Attach(p)
		defer a.pinPrompter.Attach(nil)
	}

	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// PINPending reports whether the PIN modal is open.
func (a *App) PINPending() bool {
	return a.pin != nil
}

// SetDimensions sets the terminal dimensions on the app and every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.homeView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
	a.exploreView.SetDimensions(width, height)
	a.viewerView.SetDimensions(width, height)
	a.settingsView.SetDimensions(width, height)
}
