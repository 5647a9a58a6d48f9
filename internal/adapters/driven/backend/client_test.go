package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchbox/searchbox-cli/internal/adapters/driven/storage/memory"
	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, RequestsPerSecond: 1000}, memory.NewSessionStore())
}

func TestClient_StreamSummary(t *testing.T) {
	var got domain.SummaryRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PathSummaryStream, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/x-ndjson")
		_, _ = io.WriteString(w, "{\"response\":\"Hel\"}\n{\"response\":\"lo\"}\n{\"done\":true}\n")
	})

	body, err := client.StreamSummary(context.Background(), domain.SummaryRequest{
		Query:   "kubernetes",
		Results: []domain.Record{{ID: "d1", Filename: "k8s.pdf"}},
	})
	require.NoError(t, err)
	defer body.Close()

	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `{"done":true}`)
	assert.Equal(t, "kubernetes", got.Query)
	require.Len(t, got.Results, 1)
	assert.Equal(t, "d1", got.Results[0].ID)
}

func TestClient_StreamSummary_HTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"success":false,"error":"AI Search is disabled"}`)
	})

	_, err := client.StreamSummary(context.Background(), domain.SummaryRequest{Query: "q"})
	require.Error(t, err)

	var httpErr *domain.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Equal(t, "AI Search is disabled", httpErr.Message)
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}

func TestClient_Summary(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathSummary, r.URL.Path)
		_, _ = io.WriteString(w, `{"success":true,"summary":"Pods run containers [1].","confidence":"high","sources_used":1}`)
	})

	summary, err := client.Summary(context.Background(), domain.SummaryRequest{Query: "pods"})
	require.NoError(t, err)
	assert.True(t, summary.Success)
	assert.Equal(t, "Pods run containers [1].", summary.Summary)
	assert.Equal(t, domain.ConfidenceHigh, summary.Confidence)
	assert.Equal(t, 1, summary.SourcesUsed)
}

func TestClient_Status(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PathOllamaStatus:
			_, _ = io.WriteString(w, `{"enabled":true,"connected":false,"configured_model":"llama2"}`)
		case PathMeiliStatus:
			_, _ = io.WriteString(w, `{"running":true,"version":"1.6.0","document_count":42}`)
		case PathVaultStatus:
			_, _ = io.WriteString(w, `{"pin_set":true}`)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	llm, err := client.LLMStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.LLMStatus{Enabled: true, Connected: false}, llm)
	assert.False(t, llm.Available())

	meili, err := client.MeilisearchStatus(ctx)
	require.NoError(t, err)
	assert.True(t, meili.Running)
	assert.Equal(t, "1.6.0", meili.Version)
	assert.Equal(t, 42, meili.DocumentCount)

	vault, err := client.VaultStatus(ctx)
	require.NoError(t, err)
	assert.True(t, vault.PINSet)
}

func TestClient_Recommendations(t *testing.T) {
	tests := []struct {
		name        string
		history     []string
		wantParam   string
		wantPresent bool
	}{
		{"without history", nil, "", false},
		{"with history", []string{"kubernetes", "tax forms"}, `["kubernetes","tax forms"]`, true},
		{"empty history is still sent", []string{}, `[]`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var param string
			var present bool
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, PathRecommendations, r.URL.Path)
				param = r.URL.Query().Get("history")
				_, present = r.URL.Query()["history"]
				_, _ = io.WriteString(w, `{"success":true,"recommendations":[{"query":"go","reason":"r","category":"technical"}],"enhanced":true}`)
			})

			recs, err := client.Recommendations(context.Background(), tt.history)
			require.NoError(t, err)
			assert.Equal(t, tt.wantParam, param)
			assert.Equal(t, tt.wantPresent, present)
			assert.True(t, recs.Success)
			require.Len(t, recs.Recommendations, 1)
			assert.Equal(t, "go", recs.Recommendations[0].Query)
		})
	}
}

func TestClient_History(t *testing.T) {
	stored := []string{"old"}
	var lastMethod string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathSearchHistory, r.URL.Path)
		lastMethod = r.Method
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(map[string]any{"history": stored})
		case http.MethodPost:
			var in struct {
				Query string `json:"query"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			stored = append([]string{in.Query}, stored...)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "history": stored})
		case http.MethodDelete:
			stored = nil
			_, _ = io.WriteString(w, `{"success":true}`)
		}
	})
	ctx := context.Background()

	history, err := client.GetHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, history)

	history, err = client.AddHistory(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "old"}, history)

	require.NoError(t, client.ClearHistory(ctx))
	assert.Equal(t, http.MethodDelete, lastMethod)
	assert.Nil(t, stored)
}

func TestClient_Enhancement(t *testing.T) {
	enabled := true
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathAIEnhancement, r.URL.Path)
		if r.Method == http.MethodPut {
			var in domain.EnhancementSetting
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			enabled = in.Enabled
		}
		_ = json.NewEncoder(w).Encode(domain.EnhancementSetting{Enabled: enabled})
	})
	ctx := context.Background()

	got, err := client.GetEnhancement(ctx)
	require.NoError(t, err)
	assert.True(t, got)

	require.NoError(t, client.SetEnhancement(ctx, false))
	got, err = client.GetEnhancement(ctx)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestClient_Document_PINFlow(t *testing.T) {
	ps := &pinServer{want: "1234"}
	client := newTestClient(t, ps.handler)
	prompter := &mockPrompter{pin: "1234", ok: true}
	client.SetPINPrompter(prompter)

	doc, err := client.Document(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", doc.ID)
	assert.Equal(t, domain.SourceVault, doc.Source)
	assert.Equal(t, 1, prompter.callCount())
}

func TestClient_Document_Errors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/document/a%2Fb", r.URL.EscapedPath())
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"Document not found"}`)
	})

	_, err := client.Document(context.Background(), "a/b")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = client.Document(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClient_Document_StillLocked(t *testing.T) {
	ps := &pinServer{want: "1234"}
	client := newTestClient(t, ps.handler)
	client.SetPINPrompter(&mockPrompter{ok: false})

	_, err := client.Document(context.Background(), "abc")
	assert.ErrorIs(t, err, domain.ErrAuthRequired)
}

func TestClient_ZimArticle(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathZimArticle, r.URL.Path)
		assert.Equal(t, "/data/wiki.zim", r.URL.Query().Get("path"))
		assert.Equal(t, "A/Go_(programming_language)", r.URL.Query().Get("url"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, "<h1>Go</h1>")
	})

	html, err := client.ZimArticle(context.Background(), domain.ZimLocation{
		Archive:    "/data/wiki.zim",
		ArticleURL: "A/Go_(programming_language)",
	})
	require.NoError(t, err)
	assert.Equal(t, "<h1>Go</h1>", html)

	_, err = client.ZimArticle(context.Background(), domain.ZimLocation{Archive: "/data/wiki.zim"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClient_ZimImage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathZimImage, r.URL.Path)
		if r.URL.Query().Get("img") == "missing.png" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"Image not found in ZIM"}`)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	})
	ctx := context.Background()

	body, contentType, err := client.ZimImage(ctx, "/data/wiki.zim", "I/logo.png")
	require.NoError(t, err)
	defer body.Close()
	raw, _ := io.ReadAll(body)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, raw)

	_, _, err = client.ZimImage(ctx, "/data/wiki.zim", "missing.png")
	var httpErr *domain.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "Image not found in ZIM", httpErr.Message)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond}, memory.NewSessionStore())
	_, err := client.GetHistory(context.Background())
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`{"error":"boom"}`, "boom"},
		{`{"message":"Failed to generate summary"}`, "Failed to generate summary"},
		{"  plain text  ", "plain text"},
		{"<html><body>Internal Server Error</body></html>", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, errorMessage([]byte(tt.raw)), tt.raw)
	}
}
