package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kbukum/streamkit/logger"
)

// Server hosts the HTTP surface of a stream application: SSE endpoints
// bridged from publishers plus the standard health and version endpoints.
// It is gin underneath; register routes on GinEngine before Start.
type Server struct {
	engine *gin.Engine
	http   *http.Server
	cfg    Config
	log    *logger.Logger

	listener atomic.Pointer[net.Listener]
}

// New builds a Server from cfg. Nothing is registered yet; call
// ApplyDefaults (or ApplyMiddleware plus your own routes) before Start.
func New(cfg Config, log *logger.Logger) *Server {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	return &Server{
		engine: engine,
		cfg:    cfg,
		log:    log.WithComponent("server"),
		http: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      engine,
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
			IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
		},
	}
}

// GinEngine exposes the router for route registration.
func (s *Server) GinEngine() *gin.Engine {
	return s.engine
}

// Start binds the listen address and serves in the background. By the time
// it returns without error the port is bound, so a port-0 config has a real
// address (see Addr).
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.http.Addr, err)
	}
	s.listener.Store(&ln)

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("http server failed")
		}
	}()

	s.log.Info("http server listening", logger.Fields("addr", s.Addr()))
	return nil
}

// Stop drains in-flight requests and closes the server. A 5 second fallback
// deadline applies when the caller's context has none.
func (s *Server) Stop(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.log.Info("http server stopped")
	return nil
}

// Addr returns the bound address once Start has run, or the configured
// address before that.
func (s *Server) Addr() string {
	if ln := s.listener.Load(); ln != nil {
		return (*ln).Addr().String()
	}
	return s.http.Addr
}

// ApplyMiddleware installs the standard stack: panic recovery, request IDs,
// and request logging.
func (s *Server) ApplyMiddleware() {
	s.engine.Use(Recovery(), RequestID(), RequestLogger())
}

// RegisterDefaultEndpoints registers /health and /version.
func (s *Server) RegisterDefaultEndpoints(serviceName string, checker HealthChecker) {
	s.engine.GET("/health", Health(serviceName, checker))
	s.engine.GET("/version", Version(serviceName))
}

// ApplyDefaults installs the standard middleware and default endpoints.
func (s *Server) ApplyDefaults(serviceName string, checker HealthChecker) {
	s.ApplyMiddleware()
	s.RegisterDefaultEndpoints(serviceName, checker)
}
