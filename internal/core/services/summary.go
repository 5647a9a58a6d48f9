package services

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driven"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driving"
	"github.com/searchbox/searchbox-cli/internal/logger"
)

// Ensure SummaryEngine implements the interface.
var _ driving.SummaryService = (*SummaryEngine)(nil)

// Summary failure messages shown in the summary pane.
const (
	msgConnectFailed  = "Failed to connect to AI service"
	msgGenerateFailed = "Failed to generate AI summary"
)

// SummaryEngine produces AI summaries for a result page. It prefers the
// NDJSON streaming endpoint, falls back to the one-shot endpoint, and keeps
// finished summaries in the summary cache.
//
// Only the most recent Generate call is live: starting a new one cancels
// the previous run and silences its updates.
type SummaryEngine struct {
	api       driven.SummaryAPI
	status    driven.StatusAPI
	cache     *SummaryCache
	renderer  driven.MarkdownRenderer
	events    *Emitter
	streaming bool
	now       func() time.Time

	mu         sync.Mutex
	cancelPrev context.CancelFunc
}

// NewSummaryEngine creates a summary engine.
// cache, renderer and events may be nil.
func NewSummaryEngine(
	api driven.SummaryAPI,
	status driven.StatusAPI,
	cache *SummaryCache,
	renderer driven.MarkdownRenderer,
	events *Emitter,
	settings domain.SummarySettings,
) *SummaryEngine {
	return &SummaryEngine{
		api:       api,
		status:    status,
		cache:     cache,
		renderer:  renderer,
		events:    events,
		streaming: settings.Streaming,
		now:       time.Now,
	}
}

// Available reports whether the backend's LLM is enabled and connected.
func (e *SummaryEngine) Available(ctx context.Context) bool {
	if e.status == nil {
		return false
	}
	st, err := e.status.LLMStatus(ctx)
	if err != nil {
		logger.Debug("summary: LLM status check failed: %v", err)
		return false
	}
	return st.Available()
}

// Generate produces a summary for query and results. Intermediate views go
// to onUpdate and to EventSummaryUpdate subscribers.
func (e *SummaryEngine) Generate(
	ctx context.Context,
	query string,
	results []domain.Record,
	forceRefresh bool,
	onUpdate func(domain.SummaryView),
) (domain.SummaryView, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.mu.Lock()
	if e.cancelPrev != nil {
		e.cancelPrev()
	}
	e.cancelPrev = cancel
	e.mu.Unlock()

	update := func(v domain.SummaryView) {
		if ctx.Err() != nil {
			return
		}
		if onUpdate != nil {
			onUpdate(v)
		}
		e.events.Emit(domain.Event{Kind: domain.EventSummaryUpdate, Payload: v})
	}

	if len(results) == 0 {
		return domain.SummaryView{Phase: domain.SummaryHidden}, nil
	}

	logger.Section("AI Summary")
	if !forceRefresh {
		if cached, ok := e.cache.Load(ctx, query, results); ok {
			logger.Debug("summary: using cached summary for %q", query)
			view := e.finalView(*cached, query, results, true)
			update(view)
			return view, nil
		}
	}

	req := domain.SummaryRequest{Query: query, Results: results}

	if !e.streaming {
		update(domain.SummaryView{Phase: domain.SummaryLoading})
		return e.oneShot(ctx, req, update)
	}

	update(domain.SummaryView{Phase: domain.SummaryStreaming, Cursor: true})
	view, err := e.stream(ctx, req, update)
	if err == nil {
		return view, nil
	}
	if ctx.Err() != nil {
		return domain.SummaryView{}, fmt.Errorf("summary for %q: %w", query, ctx.Err())
	}

	logger.Warn("summary: streaming failed, falling back: %v", err)
	e.events.Toast(domain.ToastWarning, "AI Summary Fallback", "Streaming unavailable, generating the summary in one pass.")
	update(domain.SummaryView{Phase: domain.SummaryLoading})
	return e.oneShot(ctx, req, update)
}

// stream consumes the NDJSON summary stream. Malformed lines are skipped;
// an error entry, a transport failure or an empty stream fail the run.
func (e *SummaryEngine) stream(ctx context.Context, req domain.SummaryRequest, update func(domain.SummaryView)) (domain.SummaryView, error) {
	body, err := e.api.StreamSummary(ctx, req)
	if err != nil {
		return domain.SummaryView{}, fmt.Errorf("%w: %w", domain.ErrStreamFailed, err)
	}
	defer body.Close()

	reader := bufio.NewReader(body)
	var acc strings.Builder
	for {
		line, readErr := reader.ReadString('\n')
		if strings.TrimSpace(line) != "" {
			var ev domain.StreamEvent
			if err := json.Unmarshal([]byte(line), &ev); err != nil {
				logger.Warn("summary: skipping malformed stream line: %v", err)
			} else {
				if ev.Error != "" {
					return domain.SummaryView{}, fmt.Errorf("%w: %s", domain.ErrStreamFailed, ev.Error)
				}
				if ev.Response != "" {
					acc.WriteString(ev.Response)
					update(e.streamingView(acc.String()))
				}
				if ev.Done {
					s := SummaryFromStream(acc.String(), req.Query, len(req.Results), e.now().UnixMilli())
					e.cache.Save(ctx, req.Query, req.Results, s)
					view := e.finalView(s, req.Query, req.Results, false)
					update(view)
					return view, nil
				}
			}
		}

		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return domain.SummaryView{}, fmt.Errorf("%w: %w", domain.ErrStreamFailed, readErr)
		}
	}

	if acc.Len() == 0 {
		return domain.SummaryView{}, fmt.Errorf("%w: stream ended without content", domain.ErrStreamFailed)
	}

	// The stream ended without a done marker. Show what arrived but do not
	// cache a summary that may be truncated.
	logger.Debug("summary: stream ended without done marker after %d bytes", acc.Len())
	s := SummaryFromStream(acc.String(), req.Query, len(req.Results), e.now().UnixMilli())
	view := e.finalView(s, req.Query, req.Results, false)
	update(view)
	return view, nil
}

// oneShot calls the non-streaming endpoint.
func (e *SummaryEngine) oneShot(ctx context.Context, req domain.SummaryRequest, update func(domain.SummaryView)) (domain.SummaryView, error) {
	s, err := e.api.Summary(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return domain.SummaryView{}, fmt.Errorf("summary for %q: %w", req.Query, ctx.Err())
		}
		view := domain.SummaryView{Phase: domain.SummaryFailed, Error: msgConnectFailed}
		update(view)
		e.events.Toast(domain.ToastError, "AI Summary Failed", "Could not connect to AI service. Check Ollama settings.")
		return view, fmt.Errorf("%w: %w", domain.ErrSummaryFailed, err)
	}

	if !s.Success {
		msg := s.Error
		if msg == "" {
			msg = msgGenerateFailed
		}
		view := domain.SummaryView{Phase: domain.SummaryFailed, Error: msg}
		update(view)
		toast := s.Error
		if toast == "" {
			toast = "Could not generate summary for your search."
		}
		e.events.Toast(domain.ToastError, "AI Summary Failed", toast)
		return view, fmt.Errorf("%w: %s", domain.ErrSummaryFailed, msg)
	}

	if s.Timestamp == 0 {
		s.Timestamp = e.now().UnixMilli()
	}
	e.cache.Save(ctx, req.Query, req.Results, *s)
	view := e.finalView(*s, req.Query, req.Results, false)
	update(view)
	return view, nil
}

// streamingView renders the partial text with a typing cursor.
func (e *SummaryEngine) streamingView(accumulated string) domain.SummaryView {
	md := CleanStreamingText(accumulated)
	return domain.SummaryView{
		Phase:    domain.SummaryStreaming,
		Markdown: md,
		HTML:     e.render(md),
		Cursor:   true,
	}
}

// finalView builds the completed pane: rendered markdown with clickable
// citations and the most cited sources.
func (e *SummaryEngine) finalView(s domain.Summary, query string, results []domain.Record, fromCache bool) domain.SummaryView {
	md := s.Summary
	if s.IsStructured() {
		md = BuildComprehensiveSummary(s)
	}
	s.Confidence = s.Confidence.Normalize()

	citations := SelectCitations(s, results, query)
	body := AddClickableCitations(e.render(md), citations)

	return domain.SummaryView{
		Phase:      domain.SummaryComplete,
		Markdown:   md,
		HTML:       body,
		FromCache:  fromCache,
		Summary:    &s,
		Citations:  citations,
		TopSources: RankSources(body, citations),
	}
}

// render converts markdown to HTML. Without a renderer, or when it fails,
// the text is escaped and line breaks are kept.
func (e *SummaryEngine) render(md string) string {
	if e.renderer != nil {
		out, err := e.renderer.Render(md)
		if err == nil {
			return out
		}
		logger.Warn("summary: markdown render failed: %v", err)
	}
	return strings.ReplaceAll(html.EscapeString(md), "\n", "<br>")
}

// ModelLabel names the model that produced s.
func ModelLabel(s domain.Summary) string {
	if s.ModelUsed == "" {
		return "AI"
	}
	return s.ModelUsed
}
