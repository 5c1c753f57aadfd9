// Package handlers implements the REST API endpoint handlers for mailprobe.
//
// REST API Endpoints:
//
// System Health:
//   - GET /api/v1/health - Health check status
//   - GET /api/v1/stats - Server statistics (uptime, memory, host load)
//   - GET /api/v1/config - Current configuration (secrets redacted)
//
// Lookups:
//   - GET /api/v1/lookup/:name - Query the configured nameservers
//   - GET /api/v1/mx/:domain - Mail exchangers sorted by preference
//
// Zone transfers:
//   - POST /api/v1/zones/:zone/transfer - Run an AXFR and archive the result
//   - GET /api/v1/transfers - List archived transfers
//   - GET /api/v1/transfers/:id - Archived transfer with its records
//   - DELETE /api/v1/transfers/:id - Remove an archived transfer
//
// Authentication:
//
// When an API key is configured every endpoint requires the X-API-Key
// header.
//
// @title mailprobe API
// @version 1.0
// @description DNS lookups, MX resolution and zone transfers over HTTP.
//
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
//
// @host localhost:8080
// @BasePath /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jroosing/mailprobe/internal/api/models"
	"github.com/jroosing/mailprobe/internal/config"
	"github.com/jroosing/mailprobe/internal/database"
	"github.com/jroosing/mailprobe/internal/dns"
	"github.com/jroosing/mailprobe/internal/logging"
	"github.com/jroosing/mailprobe/internal/mxlookup"
	"github.com/jroosing/mailprobe/internal/resolver"
)

// Resolver is the part of resolver.Resolver the handlers use.
type Resolver interface {
	Query(ctx context.Context, name string, qtype dns.RecordType, qclass dns.RecordClass) (dns.Packet, error)
	Search(ctx context.Context, name string, qtype dns.RecordType, qclass dns.RecordClass) (dns.Packet, error)
	AXFR(ctx context.Context, zone string, class dns.RecordClass) ([]dns.Record, error)
	AnswerFrom() string
	Close() error
}

// ResolverFactory creates the resolver for one request. Resolvers keep
// per-exchange state and are never shared between requests.
type ResolverFactory func() (Resolver, error)

// Handler contains dependencies for API handlers.
type Handler struct {
	cfg       *config.Config
	db        *database.DB
	logger    *slog.Logger
	startTime time.Time

	mu          sync.RWMutex
	newResolver ResolverFactory
	platformMX  mxlookup.PlatformFunc
}

// New creates a new Handler. db may be nil, which disables the transfer
// archive.
func New(cfg *config.Config, db *database.DB, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	h := &Handler{
		cfg:       cfg,
		db:        db,
		logger:    logger,
		startTime: time.Now(),
	}
	h.newResolver = h.configResolver
	if cfg != nil && cfg.MX.UsePlatform {
		h.platformMX = net.DefaultResolver.LookupMX
	}
	return h
}

func (h *Handler) configResolver() (Resolver, error) {
	rc := config.DefaultResolverConfig()
	if h.cfg != nil {
		rc = h.cfg.Resolver
	}
	r, err := resolver.FromConfig(rc, resolver.WithLogger(h.logger))
	if err != nil {
		return nil, err
	}
	return r, nil
}

// DB returns the database connection for handlers that need it.
func (h *Handler) DB() *database.DB {
	return h.db
}

// SetResolverFactory replaces the resolver built from the configuration.
func (h *Handler) SetResolverFactory(fn ResolverFactory) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.newResolver = fn
}

// SetPlatformMX replaces the operating system MX lookup. nil disables it.
func (h *Handler) SetPlatformMX(fn mxlookup.PlatformFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.platformMX = fn
}

func (h *Handler) openResolver() (Resolver, error) {
	h.mu.RLock()
	fn := h.newResolver
	h.mu.RUnlock()
	return fn()
}

// statusFor maps a lookup or transfer error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, dns.ErrValue):
		return http.StatusBadRequest
	case errors.Is(err, resolver.ErrNoAnswer),
		errors.Is(err, mxlookup.ErrNoMX),
		errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, resolver.ErrTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Warn("api request failed", "path", c.Request.URL.Path, "err", err)
	}
	c.JSON(status, models.ErrorResponse{Error: err.Error()})
}

func recordResponses(records []dns.Record) []models.RecordResponse {
	out := make([]models.RecordResponse, 0, len(records))
	for _, rr := range records {
		h := rr.Header()
		out = append(out, models.RecordResponse{
			Name:  h.Name,
			TTL:   h.TTL,
			Class: h.Class.String(),
			Type:  rr.Type().String(),
			Data:  rr.RDataString(),
		})
	}
	return out
}
