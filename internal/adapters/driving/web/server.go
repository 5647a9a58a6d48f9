// Package web serves the local document viewer used by `searchbox serve`
// and by the "open in browser" actions. It renders result pages, ZIM
// article frames, proxied article images and summary HTML.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/searchbox/searchbox-cli/internal/core/ports/driving"
	"github.com/searchbox/searchbox-cli/internal/logger"
)

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("web: search service is required")

// requestIDHeader carries the per-request ID set by the server.
const requestIDHeader = "X-Request-ID"

// Ports aggregates the driving ports the viewer uses.
type Ports struct {
	Search  driving.SearchService
	Summary driving.SummaryService
	Viewer  driving.ViewerService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}

// Config configures the server.
type Config struct {
	// BackendURL is the origin ZIM images are proxied from.
	BackendURL string

	// Client performs proxied requests. Defaults to a 30 second client.
	Client *http.Client

	// MCP, when set, is mounted at /mcp.
	MCP http.Handler
}

// Server is the local viewer HTTP server.
type Server struct {
	ports   *Ports
	backend string
	client  *http.Client
	engine  *gin.Engine
}

// NewServer creates the viewer server and registers its routes.
func NewServer(ports *Ports, cfg Config) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	if !logger.IsVerbose() {
		gin.SetMode(gin.ReleaseMode)
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	s := &Server{
		ports:   ports,
		backend: strings.TrimRight(cfg.BackendURL, "/"),
		client:  client,
		engine:  gin.New(),
	}

	s.engine.Use(gin.Recovery(), requestID())
	s.engine.SetHTMLTemplate(template.Must(template.New("web").Funcs(templateFuncs).Parse(pageTemplates)))
	s.registerRoutes()
	if cfg.MCP != nil {
		s.engine.Any("/mcp", gin.WrapH(cfg.MCP))
	}

	return s, nil
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.engine.GET("/", s.handleIndex)
	s.engine.GET("/images", s.handleImages)
	s.engine.GET("/view/:id", s.handleView)
	s.engine.GET("/link", s.handleLink)
	s.engine.GET("/summary", s.handleSummary)

	api := s.engine.Group("/api")
	api.GET("/search", s.handleSearchJSON)
	api.GET("/summary", s.handleSummaryJSON)
	api.GET("/zim/image", s.handleZimImage)
}

// requestID stamps every request with an ID for log correlation.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Set("request_id", id)

		start := time.Now()
		c.Next()
		logger.Debug("web: %s %s %d %s [%s]", c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start).Round(time.Millisecond), id)
	}
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
