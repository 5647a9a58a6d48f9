package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driven"
)

// Backend endpoints.
const (
	PathSummaryStream   = "/api/search/summary/stream"
	PathSummary         = "/api/search/summary"
	PathOllamaStatus    = "/api/ollama/status"
	PathRecommendations = "/api/ollama/recommendations"
	PathMeiliStatus     = "/api/meilisearch/status"
	PathVaultStatus     = "/api/vault/status"
	PathSearchHistory   = "/api/settings/search-history"
	PathAIEnhancement   = "/api/settings/ai-enhancement"
	PathDocument        = "/api/document/"
	PathZimArticle      = "/api/zim/article"
	PathZimImage        = "/api/zim/image"
)

// maxErrorBody bounds how much of an error body is read for the message.
const maxErrorBody = 4 << 10

// Ensure Client implements the interface.
var _ driven.Backend = (*Client)(nil)

// Client implements driven.Backend over HTTP.
type Client struct {
	transport *Transport
	limiter   *RateLimiter
	timeout   time.Duration
}

// NewClient creates a backend client. The session supplies the vault PIN.
func NewClient(cfg Config, session driven.SessionStore) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		transport: NewTransport(cfg, session),
		limiter:   NewRateLimiter(cfg.RequestsPerSecond),
		timeout:   cfg.Timeout,
	}
}

// Transport returns the underlying authenticated transport.
func (c *Client) Transport() *Transport {
	return c.transport
}

// SetPINPrompter sets the prompter used when the vault is locked.
func (c *Client) SetPINPrompter(p driven.PINPrompter) {
	c.transport.SetPINPrompter(p)
}

// ==================== Summary ====================

// StreamSummary posts req to the streaming endpoint and returns the NDJSON body.
func (c *Client) StreamSummary(ctx context.Context, req domain.SummaryRequest) (io.ReadCloser, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.transport.AuthFetch(ctx, Request{
		Method:      http.MethodPost,
		Path:        PathSummaryStream,
		Body:        body,
		ContentType: "application/json",
	})
	if err != nil {
		return nil, err
	}
	if !ok(resp) {
		defer resp.Body.Close()
		return nil, httpError(resp, PathSummaryStream)
	}
	return resp.Body, nil
}

// Summary posts req to the one-shot endpoint.
func (c *Client) Summary(ctx context.Context, req domain.SummaryRequest) (*domain.Summary, error) {
	var summary domain.Summary
	if err := c.sendJSON(ctx, http.MethodPost, PathSummary, req, &summary, false); err != nil {
		return nil, err
	}
	return &summary, nil
}

// ==================== Status ====================

// LLMStatus reports whether Ollama is enabled and reachable.
func (c *Client) LLMStatus(ctx context.Context) (domain.LLMStatus, error) {
	var status domain.LLMStatus
	err := c.getJSON(ctx, PathOllamaStatus, nil, &status, true)
	return status, err
}

// MeilisearchStatus reports the index engine state.
func (c *Client) MeilisearchStatus(ctx context.Context) (domain.MeilisearchStatus, error) {
	var status domain.MeilisearchStatus
	err := c.getJSON(ctx, PathMeiliStatus, nil, &status, true)
	return status, err
}

// VaultStatus reports whether a vault PIN has been configured.
func (c *Client) VaultStatus(ctx context.Context) (domain.VaultStatus, error) {
	var status domain.VaultStatus
	err := c.getJSON(ctx, PathVaultStatus, nil, &status, true)
	return status, err
}

// ==================== Recommendations ====================

// Recommendations fetches suggested searches. A nil history omits the
// history parameter; otherwise it is sent JSON-encoded.
func (c *Client) Recommendations(ctx context.Context, history []string) (*domain.Recommendations, error) {
	var query url.Values
	if history != nil {
		encoded, err := json.Marshal(history)
		if err != nil {
			return nil, fmt.Errorf("marshal history: %w", err)
		}
		query = url.Values{"history": {string(encoded)}}
	}

	var recs domain.Recommendations
	if err := c.getJSON(ctx, PathRecommendations, query, &recs, true); err != nil {
		return nil, err
	}
	return &recs, nil
}

// ==================== History ====================

// GetHistory returns the stored search history.
func (c *Client) GetHistory(ctx context.Context) ([]string, error) {
	var resp domain.HistoryResponse
	if err := c.getJSON(ctx, PathSearchHistory, nil, &resp, false); err != nil {
		return nil, err
	}
	return resp.History, nil
}

// AddHistory records query and returns the backend's resulting list.
func (c *Client) AddHistory(ctx context.Context, query string) ([]string, error) {
	var resp domain.HistoryResponse
	in := map[string]string{"query": query}
	if err := c.sendJSON(ctx, http.MethodPost, PathSearchHistory, in, &resp, true); err != nil {
		return nil, err
	}
	return resp.History, nil
}

// ClearHistory removes every stored query.
func (c *Client) ClearHistory(ctx context.Context) error {
	return c.sendJSON(ctx, http.MethodDelete, PathSearchHistory, nil, nil, true)
}

// GetEnhancement returns the AI history enhancement preference.
func (c *Client) GetEnhancement(ctx context.Context) (bool, error) {
	var setting domain.EnhancementSetting
	if err := c.getJSON(ctx, PathAIEnhancement, nil, &setting, false); err != nil {
		return false, err
	}
	return setting.Enabled, nil
}

// SetEnhancement stores the AI history enhancement preference.
func (c *Client) SetEnhancement(ctx context.Context, enabled bool) error {
	in := domain.EnhancementSetting{Enabled: enabled}
	return c.sendJSON(ctx, http.MethodPut, PathAIEnhancement, in, nil, true)
}

// ==================== Documents ====================

// Document fetches one record, prompting for the vault PIN if required.
func (c *Client) Document(ctx context.Context, id string) (*domain.Document, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	path := PathDocument + url.PathEscape(id)

	var doc domain.Document
	err := c.getJSON(ctx, path, nil, &doc, false, withPIN())
	if isStatus(err, http.StatusNotFound) {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ZimArticle fetches the raw article HTML.
func (c *Client) ZimArticle(ctx context.Context, loc domain.ZimLocation) (string, error) {
	if loc.IsZero() {
		return "", domain.ErrInvalidInput
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.transport.AuthFetch(ctx, Request{
		Path:  PathZimArticle,
		Query: url.Values{"path": {loc.Archive}, "url": {loc.ArticleURL}},
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if !ok(resp) {
		return "", httpError(resp, PathZimArticle)
	}
	html, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading article: %w", err)
	}
	return string(html), nil
}

// ZimImage fetches an article image and its content type.
// The caller closes the returned body.
func (c *Client) ZimImage(ctx context.Context, archive, img string) (io.ReadCloser, string, error) {
	if archive == "" || img == "" {
		return nil, "", domain.ErrInvalidInput
	}

	resp, err := c.transport.AuthFetch(ctx, Request{
		Path:  PathZimImage,
		Query: url.Values{"path": {archive}, "img": {img}},
	})
	if err != nil {
		return nil, "", err
	}
	if !ok(resp) {
		defer resp.Body.Close()
		return nil, "", httpError(resp, PathZimImage)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

// ==================== Helpers ====================

type callOptions struct {
	pin bool
}

type callOption func(*callOptions)

// withPIN routes the call through PINAuthFetch.
func withPIN() callOption {
	return func(o *callOptions) { o.pin = true }
}

// getJSON performs a GET and decodes the JSON answer into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any, throttled bool, opts ...callOption) error {
	return c.do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out, throttled, opts...)
}

// sendJSON encodes in as the body and decodes the answer into out.
// Mutations go through the PIN flow when pin is set.
func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any, pin bool) error {
	r := Request{Method: method, Path: path}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		r.Body = body
		r.ContentType = "application/json"
	}

	var opts []callOption
	if pin {
		opts = append(opts, withPIN())
	}
	return c.do(ctx, r, out, false, opts...)
}

func (c *Client) do(ctx context.Context, r Request, out any, throttled bool, opts ...callOption) error {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}

	if throttled {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	fetch := c.transport.AuthFetch
	if o.pin {
		fetch = c.transport.PINAuthFetch
	}

	resp, err := fetch(ctx, r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.limiter.Observe(resp)
	if !ok(resp) {
		return httpError(resp, r.Path)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", r.Path, err)
	}
	return nil
}

func ok(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// httpError builds a *domain.HTTPError from a non-2xx answer, taking the
// message from an {"error": ...} or {"message": ...} body when present.
func httpError(resp *http.Response, endpoint string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &domain.HTTPError{
		StatusCode: resp.StatusCode,
		Endpoint:   endpoint,
		Message:    errorMessage(raw),
	}
}

func errorMessage(raw []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	text := strings.TrimSpace(string(raw))
	if strings.HasPrefix(text, "<") {
		return ""
	}
	return text
}

// isStatus reports whether err is an HTTPError with the given status.
func isStatus(err error, status int) bool {
	var httpErr *domain.HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == status
}
