// Package server exposes the chat pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/dcs-solutions/zabbix-chat/internal/chat"
	"github.com/dcs-solutions/zabbix-chat/internal/config"
)

// chatRequestsPerMinute bounds per-client chat throughput. Each message may
// cost a model call, so this is deliberately tight.
const chatRequestsPerMinute = 30

// Server wraps the HTTP listener around the orchestrator.
type Server struct {
	cfg     *config.Config
	orch    *chat.Orchestrator
	logger  *zap.Logger
	limiter *rateLimiter

	httpServer *http.Server
}

// New creates a server. The orchestrator carries all domain state; the
// server only translates HTTP.
func New(cfg *config.Config, orch *chat.Orchestrator, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{cfg: cfg, orch: orch, logger: logger, limiter: newRateLimiter(chatRequestsPerMinute)}

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      c.Handler(s.Router()),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Router builds the route table. Exposed so tests can drive handlers
// without a listener.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestLogging)
	r.Use(s.recoverPanics)

	r.Handle("/api/chat/message", s.limiter.middleware(http.HandlerFunc(s.handleChatMessage))).Methods(http.MethodPost)
	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/zabbix/status", s.handleZabbixStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/cache/clear", s.handleCacheClear).Methods(http.MethodPost)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}

// Start begins serving and blocks until the listener stops.
func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
