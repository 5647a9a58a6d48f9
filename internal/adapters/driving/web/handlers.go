package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/logger"
)

// statusFor maps core errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrAuthRequired):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrViewerTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrLLMUnavailable), errors.Is(err, domain.ErrSearchUnavailable),
		errors.Is(err, domain.ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) renderError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusUnauthorized {
		message = "This document is in the vault. Unlock it with your PIN from the terminal and reload."
	}
	c.HTML(status, "error", gin.H{"Status": status, "Message": message})
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// handleIndex restores the search the location points at, or shows home.
func (s *Server) handleIndex(c *gin.Context) {
	page, err := s.ports.Search.PopState(c.Request.Context(), nil, c.Request.URL.RequestURI())
	if err != nil {
		var redirect *domain.RedirectError
		if errors.As(err, &redirect) {
			c.Redirect(http.StatusFound, redirect.Location)
			return
		}
		s.renderError(c, err)
		return
	}
	if page == nil {
		c.HTML(http.StatusOK, "home", gin.H{})
		return
	}
	c.HTML(http.StatusOK, "results", gin.H{"Page": page})
}

func (s *Server) handleImages(c *gin.Context) {
	page, err := s.ports.Search.SearchImages(c.Request.Context(), c.Query("q"), pageParam(c))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, "images", gin.H{"Page": page})
}

// handleView shows a document. ZIM articles are shown in a sandboxed frame
// whose clicks and size the page script follows; other documents show their
// indexed text.
func (s *Server) handleView(c *gin.Context) {
	if s.ports.Viewer == nil {
		s.renderError(c, fmt.Errorf("%w: viewer not configured", domain.ErrNotFound))
		return
	}
	ctx := c.Request.Context()

	doc, kind, err := s.ports.Viewer.Open(ctx, c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return
	}

	if kind == domain.ViewerZim {
		article, err := s.ports.Viewer.ZimArticle(ctx, doc)
		if err != nil {
			s.renderError(c, err)
			return
		}
		nonce := uuid.NewString()
		c.Header("Content-Security-Policy", articlePagePolicy(nonce))
		c.HTML(http.StatusOK, "zim", gin.H{
			"Title":    article.Title,
			"Article":  article.HTML,
			"Fallback": article.Fallback,
			"Nonce":    nonce,
			"Back":     domain.SearchURL(c.Query("q"), pageParam(c)),
		})
		return
	}

	c.HTML(http.StatusOK, "document", gin.H{
		"Doc":   doc,
		"Kind":  kind,
		"Query": c.Query("q"),
		"Back":  domain.SearchURL(c.Query("q"), pageParam(c)),
	})
}

// articlePagePolicy lets only the page's own script run. The article frame
// inherits the policy.
func articlePagePolicy(nonce string) string {
	return "script-src 'nonce-" + nonce + "'; object-src 'none'; base-uri 'self'"
}

// handleLink follows a link clicked inside a ZIM article.
func (s *Server) handleLink(c *gin.Context) {
	var action domain.LinkAction
	if s.ports.Viewer != nil {
		action = s.ports.Viewer.RouteLink(c.Query("href"))
	}
	switch action.Kind {
	case domain.LinkExternal, domain.LinkSearch:
		c.Redirect(http.StatusFound, action.Target)
	default:
		c.Status(http.StatusNoContent)
	}
}

// handleZimImage proxies article images from the backend.
func (s *Server) handleZimImage(c *gin.Context) {
	if s.backend == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "backend not configured"})
		return
	}

	target := s.backend + "/api/zim/image?" + c.Request.URL.RawQuery
	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, target, nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if id, ok := c.Get("request_id"); ok {
		req.Header.Set(requestIDHeader, fmt.Sprint(id))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		logger.Warn("web: zim image proxy: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "image unavailable"})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		c.Status(resp.StatusCode)
		return
	}

	c.DataFromReader(http.StatusOK, resp.ContentLength, resp.Header.Get("Content-Type"), resp.Body, map[string]string{
		"Cache-Control": "public, max-age=86400",
	})
}

func (s *Server) summarize(c *gin.Context) (domain.SummaryView, *domain.ResultPage, error) {
	if s.ports.Summary == nil {
		return domain.SummaryView{}, nil, fmt.Errorf("%w: summary service not configured", domain.ErrLLMUnavailable)
	}
	ctx := c.Request.Context()

	page, err := s.ports.Search.Search(ctx, c.Query("q"), 1, true)
	if err != nil {
		return domain.SummaryView{}, nil, err
	}
	if page.IsEmpty() {
		return domain.SummaryView{Phase: domain.SummaryHidden}, page, nil
	}
	if !s.ports.Summary.Available(ctx) {
		return domain.SummaryView{}, page, domain.ErrLLMUnavailable
	}

	refresh := c.Query("refresh") == "1" || c.Query("refresh") == "true"
	view, err := s.ports.Summary.Generate(ctx, page.Query, page.Records, refresh, nil)
	return view, page, err
}

func (s *Server) handleSummary(c *gin.Context) {
	view, page, err := s.summarize(c)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, "summary", gin.H{"Page": page, "View": view})
}

func (s *Server) handleSummaryJSON(c *gin.Context) {
	view, _, err := s.summarize(c)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleSearchJSON(c *gin.Context) {
	force := c.Query("force") == "1" || c.Query("force") == "true"
	page, err := s.ports.Search.Search(c.Request.Context(), c.Query("q"), pageParam(c), force)
	if err != nil {
		var verr *domain.ValidationError
		var redirect *domain.RedirectError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "diagnostics": verr.Diagnostics})
		case errors.As(err, &redirect):
			c.JSON(http.StatusOK, gin.H{"redirect": redirect.Location})
		default:
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, page)
}
