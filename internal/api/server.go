// Package api provides the REST API for mailprobe. It exposes lookups,
// MX resolution and archived zone transfers via a Gin-based HTTP server.
package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jroosing/mailprobe/internal/api/handlers"
	"github.com/jroosing/mailprobe/internal/api/middleware"
	"github.com/jroosing/mailprobe/internal/config"
	"github.com/jroosing/mailprobe/internal/database"
	"github.com/jroosing/mailprobe/internal/logging"
)

// Server is the REST API server.
//
// Security note: do not expose the API to untrusted networks without an
// API key.
type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	engine     *gin.Engine
	handler    *handlers.Handler
	httpServer *http.Server
}

// New builds the server. db may be nil, which disables the transfer
// archive endpoints.
func New(cfg *config.Config, db *database.DB, logger *slog.Logger) *Server {
	if cfg == nil {
		panic("api.New: cfg is nil")
	}
	if logger == nil {
		logger = logging.Discard()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.SlogRequestLogger(logger))

	h := handlers.New(cfg, db, logger)
	RegisterRoutes(engine, h, cfg)

	addr := net.JoinHostPort(cfg.API.Host, strconv.Itoa(cfg.API.Port))
	// Zone transfers may run for a while; the write timeout covers the
	// resolver's TCP timeout.
	writeTimeout := 15 * time.Second
	if t := cfg.Resolver.TCPTimeout + 5*time.Second; t > writeTimeout {
		writeTimeout = t
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{cfg: cfg, logger: logger, engine: engine, handler: h, httpServer: httpServer}
}

func (s *Server) Addr() string {
	if s.httpServer == nil {
		return ""
	}
	return s.httpServer.Addr
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Handler exposes the endpoint handlers, mainly to swap resolvers in tests.
func (s *Server) Handler() *handlers.Handler {
	return s.handler
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
