// Package api provides the HTTP surface for sessioncontext: event ingestion
// and the per-user context lookup, plus an operational health endpoint.
package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kodiak-labs/sessioncontext/pkg/config"
	"github.com/kodiak-labs/sessioncontext/pkg/queue"
	"github.com/kodiak-labs/sessioncontext/pkg/services"
)

// Server is the HTTP API server.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	cfg        *config.Config
	pool       *pgxpool.Pool
	enrichment *services.EnrichmentService
	context    *services.ContextService
	worker     *queue.Worker
}

// NewServer creates a new API server backed by gin.
func NewServer(
	cfg *config.Config,
	pool *pgxpool.Pool,
	enrichment *services.EnrichmentService,
	contextSvc *services.ContextService,
	worker *queue.Worker,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	e := gin.New()
	e.Use(gin.Recovery())
	e.Use(securityHeaders())

	s := &Server{
		engine:     e,
		cfg:        cfg,
		pool:       pool,
		enrichment: enrichment,
		context:    contextSvc,
		worker:     worker,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.healthHandler)
	s.engine.POST("/ingest", s.ingestHandler)
	s.engine.GET("/session/context/:user_id", s.userContextHandler)
}

// Start starts the HTTP server on the given address (blocking).
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// StartWithListener starts the HTTP server on a pre-created listener, such
// as one bound to a random OS-assigned port.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.engine}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
