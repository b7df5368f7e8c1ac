// Package api serves the query engine over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/openaudit/govquery/internal/core/ports/driven"
	"github.com/openaudit/govquery/internal/core/ports/driving"
	"github.com/openaudit/govquery/internal/logger"
)

// Services bundles the driving ports the handlers use.
type Services struct {
	Query driving.QueryService
	Chat  driving.ChatService
	Audit driven.AuditStore
}

// Server is the HTTP API server.
type Server struct {
	router   *http.ServeMux
	server   *http.Server
	addr     string
	services Services
}

// NewServer creates a server listening on addr.
func NewServer(addr string, services Services) *Server {
	s := &Server{
		addr:     addr,
		services: services,
		router:   http.NewServeMux(),
	}

	s.registerRoutes()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.withLogging(s.router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/api/v1/query", s.handleQuery)
	s.router.HandleFunc("/api/v1/chat", s.handleChat)
	s.router.HandleFunc("/api/v1/sessions", s.handleSessions)
	s.router.HandleFunc("/api/v1/sessions/", s.handleSessionHistory)
	s.router.HandleFunc("/api/v1/audit/logs", s.handleAuditLogs)
	s.router.HandleFunc("/api/v1/trust/metrics", s.handleTrustMetrics)
	s.router.HandleFunc("/api/v1/health", s.handleHealth)
}

// Start blocks serving until Shutdown is called.
func (s *Server) Start() error {
	logger.Info("Starting HTTP server on %s", s.addr)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// ServeHTTP implements http.Handler, used by tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.Handler.ServeHTTP(w, r)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("%s %s (%s)", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}
