package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driven"
	"github.com/searchbox/searchbox-cli/internal/logger"
)

// Header names understood by the backend.
const (
	HeaderVaultPIN  = "X-Vault-PIN"
	HeaderCSRFToken = "X-CSRFToken"
	HeaderRequestID = "X-Request-ID"
)

// DefaultTimeout bounds non-streaming requests.
const DefaultTimeout = 60 * time.Second

// Config holds configuration for the backend adapter.
type Config struct {
	// BaseURL is the backend root, e.g. http://localhost:5000.
	BaseURL string

	// CSRFToken is sent as X-CSRFToken when non-empty.
	CSRFToken string

	// RequestsPerSecond throttles background calls.
	RequestsPerSecond float64

	// Timeout applies to non-streaming requests (default: 60s).
	Timeout time.Duration

	// HTTPClient overrides the client used for every request.
	HTTPClient *http.Client
}

// Request describes one backend call. Body is kept as bytes so the
// request can be replayed after a PIN prompt.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        []byte
	ContentType string
}

// Transport performs authenticated requests against the backend.
// Non-2xx answers are returned as responses, never as errors.
type Transport struct {
	client    *http.Client
	baseURL   string
	csrfToken string
	session   driven.SessionStore
	prompter  driven.PINPrompter
}

// NewTransport creates a transport bound to the given session.
func NewTransport(cfg Config, session driven.SessionStore) *Transport {
	client := cfg.HTTPClient
	if client == nil {
		// Streaming bodies must not be cut off by a client-wide timeout;
		// per-request deadlines come from the context instead.
		client = &http.Client{}
	}
	return &Transport{
		client:    client,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		csrfToken: cfg.CSRFToken,
		session:   session,
	}
}

// SetPINPrompter sets the prompter used by PINAuthFetch.
func (t *Transport) SetPINPrompter(p driven.PINPrompter) {
	t.prompter = p
}

// BaseURL returns the backend root without a trailing slash.
func (t *Transport) BaseURL() string {
	return t.baseURL
}

// AuthFetch sends r with the stored PIN and CSRF token. It never prompts.
func (t *Transport) AuthFetch(ctx context.Context, r Request) (*http.Response, error) {
	target := t.baseURL + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if r.ContentType != "" {
		req.Header.Set("Content-Type", r.ContentType)
	}
	req.Header.Set(HeaderRequestID, uuid.NewString())

	if t.session != nil {
		if pin, ok := t.session.PIN(); ok {
			req.Header.Set(HeaderVaultPIN, pin)
		}
	}
	if t.csrfToken != "" {
		req.Header.Set(HeaderCSRFToken, t.csrfToken)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", domain.ErrBackendUnavailable, method, r.Path, err)
	}
	return resp, nil
}

// PINAuthFetch behaves like AuthFetch, but on a 401 it asks the prompter
// for a PIN and retries once. Cancelling the prompt returns the original
// 401 response. A 401 on the retry clears the stored PIN. Without a
// session there is nowhere to keep the PIN, so the 401 is returned as is.
func (t *Transport) PINAuthFetch(ctx context.Context, r Request) (*http.Response, error) {
	resp, err := t.AuthFetch(ctx, r)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || t.prompter == nil || t.session == nil {
		return resp, nil
	}

	logger.Debug("backend: %s requires vault PIN", r.Path)
	pin, ok, err := t.prompter.PromptPIN(ctx)
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("prompting for PIN: %w", err)
	}
	if !ok {
		return resp, nil
	}
	drain(resp)

	t.session.SetPIN(pin)
	retry, err := t.AuthFetch(ctx, r)
	if err != nil {
		return nil, err
	}
	if retry.StatusCode == http.StatusUnauthorized {
		logger.Warn("backend: vault PIN rejected")
		t.session.ClearPIN()
	}
	return retry, nil
}

// drain discards and closes a response body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}
