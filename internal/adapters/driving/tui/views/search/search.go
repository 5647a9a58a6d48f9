// Package search provides the main search view for the TUI: query box,
// result cards, AI summary pane and image gallery.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/components/input"
	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/components/list"
	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/components/status"
	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/keymap"
	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/messages"
	"github.com/searchbox/searchbox-cli/internal/adapters/driving/tui/styles"
	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driving"
)

// ErrNoSearchService is reported when the view has no search service.
var ErrNoSearchService = errors.New("search service is required")

// Focus is the part of the view receiving keys.
type Focus int

const (
	FocusInput Focus = iota
	FocusResults
	FocusSummary
)

// View represents the search view with input, results, summary pane and
// status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.SearchInput
	list      *list.ResultList
	statusbar *status.Bar
	summary   viewport.Model

	searchService  driving.SearchService
	summaryService driving.SummaryService
	actionService  driving.ResultActionService
	ctx            context.Context

	page        *domain.ResultPage
	images      *domain.ImagePage
	summaryView domain.SummaryView
	prompt      *Prompt
	actionMenu  *ActionMenu

	width  int
	height int
	ready  bool
	err    error
	focus  Focus
}

// NewView creates a new search view. summaryService and actionService may
// be nil.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	searchService driving.SearchService,
	summaryService driving.SummaryService,
	actionService driving.ResultActionService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	var validate input.Validator
	if searchService != nil {
		validate = searchService.Validate
	}

	return &View{
		styles:         s,
		keymap:         km,
		input:          input.NewSearchInput(s, validate),
		list:           list.NewResultList(s),
		statusbar:      status.NewBar(s, km),
		summary:        viewport.New(80, 8),
		searchService:  searchService,
		summaryService: summaryService,
		actionService:  actionService,
		ctx:            context.Background(),
		summaryView:    domain.SummaryView{Phase: domain.SummaryHidden},
		width:          80,
		height:         24,
		focus:          FocusInput,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchRequested:
		return v, v.Submit(msg.Query, msg.Page, msg.Force)

	case messages.SearchCompleted:
		return v, v.handleSearchCompleted(msg)

	case messages.ImagesCompleted:
		v.handleImagesCompleted(msg)
		return v, nil

	case messages.ValidationAnswered:
		return v, v.handleValidationAnswered(msg)

	case messages.SummaryUpdated:
		v.setSummary(msg.View)
		return v, nil

	case messages.SummaryFinished:
		v.handleSummaryFinished(msg)
		return v, nil

	case messages.Toast:
		v.statusbar.SetToast(msg.Level, toastText(msg))
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	if v.focus == FocusInput {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
	return v, nil
}

func toastText(t messages.Toast) string {
	if t.Title == "" {
		return t.Message
	}
	return t.Title + ": " + t.Message
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.prompt != nil {
		return v.handlePromptKey(msg)
	}
	if v.actionMenu != nil {
		return v.handleActionMenuKey(msg)
	}
	if v.images != nil {
		return v.handleImagesKey(msg)
	}

	switch v.focus {
	case FocusInput:
		return v.handleInputKey(msg)
	case FocusSummary:
		return v.handleSummaryKey(msg)
	default:
		return v.handleResultsKey(msg)
	}
}

func (v *View) handleInputKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEnter:
		return v, v.Submit(v.input.Value(), 1, false)
	case tea.KeyEsc:
		if v.page != nil {
			v.focusResults()
			return v, nil
		}
		return v, v.goHome()
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleResultsKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		return v, v.goHome()
	case msg.Type == tea.KeyEnter:
		if card := v.list.SelectedCard(); card != nil {
			v.actionMenu = newActionMenu(card)
		}
		return v, nil
	case msg.Type == tea.KeyTab:
		if v.summaryView.Phase != domain.SummaryHidden {
			v.focus = FocusSummary
		}
		return v, nil
	}

	switch msg.String() {
	case "up", "k":
		v.list.MoveUp()
	case "down", "j":
		v.list.MoveDown()
	case "/", "n":
		v.focus = FocusInput
		return v, v.input.Focus()
	case "right", "l":
		return v, v.goToPage(1)
	case "left", "h":
		return v, v.goToPage(-1)
	case "r":
		return v, v.refreshSummary()
	case "i":
		return v, v.searchImages(v.Query(), 1)
	case "c":
		v.copySelected()
	case "o":
		v.openSelected()
	}
	return v, nil
}

func (v *View) handleSummaryKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "tab", "esc":
		v.focus = FocusResults
		return v, nil
	case "r":
		return v, v.refreshSummary()
	}
	var cmd tea.Cmd
	v.summary, cmd = v.summary.Update(msg)
	return v, cmd
}

func (v *View) handleImagesKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc", "i":
		v.images = nil
		if v.page == nil {
			v.focus = FocusInput
			return v, v.input.Focus()
		}
		return v, nil
	case "right", "l":
		if v.images.Pagination != nil && !v.images.Pagination.NextDisabled {
			return v, v.searchImages(v.images.Query, v.images.State.Page+1)
		}
	case "left", "h":
		if v.images.Pagination != nil && !v.images.Pagination.PrevDisabled {
			return v, v.searchImages(v.images.Query, v.images.State.Page-1)
		}
	}
	return v, nil
}

// Submit runs query for page. Unless force is set, invalid syntax opens
// the validation prompt instead of searching.
func (v *View) Submit(query string, page int, force bool) tea.Cmd {
	if strings.TrimSpace(query) == "" {
		v.statusbar.SetToast(domain.ToastInfo, "Please enter a search term.")
		return nil
	}
	if v.input.Value() != query {
		v.input.SetValue(query)
	}
	v.images = nil
	v.err = nil
	v.statusbar.SetMessage("")
	v.statusbar.SetState(status.StateSearching)
	v.input.Blur()
	v.focus = FocusResults
	return v.performSearch(query, page, force)
}

func (v *View) performSearch(query string, page int, force bool) tea.Cmd {
	svc, ctx := v.searchService, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}
		result, err := svc.Search(ctx, query, page, force)
		return messages.SearchCompleted{Query: query, Page: result, Err: err}
	}
}

func (v *View) goToPage(delta int) tea.Cmd {
	if v.page == nil || v.page.Pagination == nil {
		return nil
	}
	if (delta < 0 && v.page.Pagination.PrevDisabled) || (delta > 0 && v.page.Pagination.NextDisabled) {
		return nil
	}
	target := v.page.State.Page + delta
	query := v.page.Query
	svc, ctx := v.searchService, v.ctx
	v.statusbar.SetState(status.StateSearching)
	return func() tea.Msg {
		result, err := svc.GoToPage(ctx, target)
		return messages.SearchCompleted{Query: query, Page: result, Err: err}
	}
}

func (v *View) searchImages(query string, page int) tea.Cmd {
	if strings.TrimSpace(query) == "" || v.searchService == nil {
		return nil
	}
	svc, ctx := v.searchService, v.ctx
	v.statusbar.SetState(status.StateSearching)
	return func() tea.Msg {
		result, err := svc.SearchImages(ctx, query, page)
		return messages.ImagesCompleted{Page: result, Err: err}
	}
}

func (v *View) refreshSummary() tea.Cmd {
	if v.page == nil || v.page.IsEmpty() {
		return nil
	}
	if v.summaryService == nil {
		v.statusbar.SetToast(domain.ToastWarning, "AI summaries are not available.")
		return nil
	}
	svc, ctx := v.summaryService, v.ctx
	query, records := v.page.Query, v.page.Records
	v.setSummary(domain.SummaryView{Phase: domain.SummaryLoading})
	return func() tea.Msg {
		view, err := svc.Generate(ctx, query, records, true, nil)
		return messages.SummaryFinished{View: view, Err: err}
	}
}

func (v *View) goHome() tea.Cmd {
	if v.searchService != nil {
		v.searchService.Home()
	}
	v.Reset()
	return func() tea.Msg {
		return messages.ViewChanged{View: messages.ViewHome}
	}
}

func (v *View) focusResults() {
	v.focus = FocusResults
	v.input.Blur()
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) tea.Cmd {
	if msg.Err != nil {
		var verr *domain.ValidationError
		var redirect *domain.RedirectError
		switch {
		case errors.Is(msg.Err, domain.ErrSuperseded):
			return nil
		case errors.As(msg.Err, &verr):
			v.statusbar.SetState(status.StateReady)
			v.openPrompt(msg.Query, domain.Validation{
				Status:      domain.StatusInvalid,
				Message:     domain.ValidationMessage(len(verr.Diagnostics)),
				Diagnostics: verr.Diagnostics,
			})
			return nil
		case errors.As(msg.Err, &redirect):
			return v.searchImages(msg.Query, 1)
		case errors.Is(msg.Err, domain.ErrEmptyQuery):
			v.statusbar.SetState(status.StateReady)
			v.statusbar.SetToast(domain.ToastInfo, "Please enter a search term.")
			v.focus = FocusInput
			return v.input.Focus()
		}
		v.setError(msg.Err)
		return nil
	}
	if msg.Page == nil {
		return nil
	}

	v.err = nil
	v.page = msg.Page
	v.list.SetCards(msg.Page.Cards, msg.Page.State.Offset())
	v.statusbar.SetPage(msg.Page.State)
	v.statusbar.SetState(status.StateResults)
	v.setSummary(domain.SummaryView{Phase: domain.SummaryHidden})
	v.focusResults()
	return nil
}

func (v *View) handleImagesCompleted(msg messages.ImagesCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	v.images = msg.Page
	if msg.Page != nil {
		v.statusbar.SetPage(msg.Page.State)
	}
	v.statusbar.SetState(status.StateResults)
	v.input.Blur()
}

func (v *View) handleValidationAnswered(msg messages.ValidationAnswered) tea.Cmd {
	v.prompt = nil
	if msg.Choice.Proceeds() {
		return v.Submit(msg.Query, 1, true)
	}
	v.focus = FocusInput
	return v.input.Focus()
}

func (v *View) handleSummaryFinished(msg messages.SummaryFinished) {
	if msg.Err != nil {
		if errors.Is(msg.Err, context.Canceled) {
			return
		}
		v.setSummary(domain.SummaryView{Phase: domain.SummaryFailed, Error: msg.Err.Error()})
		return
	}
	v.setSummary(msg.View)
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

func (v *View) copySelected() {
	card := v.list.SelectedCard()
	if card == nil {
		return
	}
	if v.actionService == nil {
		v.statusbar.SetMessage("Copy not available")
		return
	}
	if err := v.actionService.CopyToClipboard(v.ctx, card); err != nil {
		v.statusbar.SetToast(domain.ToastError, "Copy: "+err.Error())
		return
	}
	v.statusbar.SetToast(domain.ToastSuccess, "Copied to clipboard")
}

func (v *View) openSelected() {
	card := v.list.SelectedCard()
	if card == nil {
		return
	}
	if v.actionService == nil {
		v.statusbar.SetMessage("Open not available")
		return
	}
	if err := v.actionService.OpenDocument(v.ctx, card); err != nil {
		v.statusbar.SetToast(domain.ToastError, "Open: "+err.Error())
		return
	}
	v.statusbar.SetMessage("Opening document...")
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections, v.styles.Title.Render("SearchBox"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	switch {
	case v.prompt != nil:
		sections = append(sections, v.renderPrompt())
	case v.images != nil:
		sections = append(sections, v.renderImages())
	case v.page != nil:
		sections = append(sections, v.renderResults())
	}

	if v.actionMenu != nil {
		sections = append(sections, "", v.renderActionMenu())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderResults() string {
	if v.page.IsEmpty() {
		return v.styles.Muted.Render(fmt.Sprintf("No results found for %q.", v.page.Query))
	}

	parts := make([]string, 0, 6)
	if v.summaryView.Phase != domain.SummaryHidden {
		parts = append(parts, v.renderSummary(), "")
	}
	parts = append(parts, v.styles.Muted.Render(v.page.Stats), v.list.View())
	if n := len(v.page.Gallery); n > 0 {
		parts = append(parts, v.styles.Muted.Render(fmt.Sprintf("%d images in these results, press i for the gallery", n)))
	}
	if bar := v.styles.PageBar(v.page.Pagination); bar != "" {
		parts = append(parts, "", bar)
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (v *View) renderImages() string {
	if len(v.images.Images) == 0 {
		return v.styles.Muted.Render(fmt.Sprintf("No images found for %q.", v.images.Query))
	}
	lines := make([]string, 0, len(v.images.Images)+3)
	lines = append(lines, v.styles.Subtitle.Render(fmt.Sprintf("Images for %q", v.images.Query)))
	limit := max(v.height-12, 3)
	for i, img := range v.images.Images {
		if i >= limit {
			lines = append(lines, v.styles.Muted.Render(fmt.Sprintf("  … %d more", len(v.images.Images)-limit)))
			break
		}
		lines = append(lines, fmt.Sprintf("  %s %s %s",
			v.styles.Normal.Render(img.DocName),
			v.styles.Muted.Render(img.Label()),
			v.styles.Muted.Render(img.Original)))
	}
	if bar := v.styles.PageBar(v.images.Pagination); bar != "" {
		lines = append(lines, "", bar)
	}
	lines = append(lines, v.styles.Help.Render("[←/→] page  [esc] back to results"))
	return strings.Join(lines, "\n")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.summary.Width = max(width-4, 20)
	v.summary.Height = max(height/3, 4)
	v.list.SetDimensions(width, max(height-v.summary.Height-14, 3))
	v.statusbar.SetWidth(width)
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the current search query.
func (v *View) Query() string {
	if v.page != nil {
		return v.page.Query
	}
	return v.input.Value()
}

// SetQuery sets the search query.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Page returns the current result page.
func (v *View) Page() *domain.ResultPage {
	return v.page
}

// Images returns the image gallery being shown, or nil.
func (v *View) Images() *domain.ImagePage {
	return v.images
}

// Summary returns the summary pane state.
func (v *View) Summary() domain.SummaryView {
	return v.summaryView
}

// SelectedCard returns the currently selected card.
func (v *View) SelectedCard() *domain.ResultCard {
	return v.list.SelectedCard()
}

// Focus returns the part of the view receiving keys.
func (v *View) Focus() Focus {
	return v.focus
}

// Prompting reports whether the validation prompt is open.
func (v *View) Prompting() bool {
	return v.prompt != nil
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset resets the view to initial input mode.
func (v *View) Reset() {
	v.focus = FocusInput
	v.input.Focus()
	v.input.Reset()
	v.list.SetCards(nil, 0)
	v.page = nil
	v.images = nil
	v.prompt = nil
	v.actionMenu = nil
	v.err = nil
	v.setSummary(domain.SummaryView{Phase: domain.SummaryHidden})
	v.statusbar.Clear()
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focus == FocusInput
}
