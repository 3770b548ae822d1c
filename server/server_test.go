package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/streamkit/component"
	"github.com/kbukum/streamkit/logger"
)

func newTestServer(checker HealthChecker) *Server {
	s := New(Config{Port: 0}, logger.NewDefault())
	s.ApplyDefaults("streamkit-test", checker)
	return s
}

func TestHealthEndpointHealthy(t *testing.T) {
	s := newTestServer(func(context.Context) []component.Health {
		return []component.Health{{Name: "pool", Status: component.StatusHealthy}}
	})

	w := httptest.NewRecorder()
	s.GinEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %v, want healthy", body["status"])
	}
}

func TestHealthEndpointUnhealthyReturns503(t *testing.T) {
	s := newTestServer(func(context.Context) []component.Health {
		return []component.Health{{Name: "pool", Status: component.StatusUnhealthy, Message: "stopped"}}
	})

	w := httptest.NewRecorder()
	s.GinEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestVersionEndpoint(t *testing.T) {
	s := newTestServer(nil)

	w := httptest.NewRecorder()
	s.GinEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/version", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["service"] != "streamkit-test" {
		t.Errorf("service = %v, want streamkit-test", body["service"])
	}
}

func TestRequestIDHeaderIsSet(t *testing.T) {
	s := newTestServer(nil)

	w := httptest.NewRecorder()
	s.GinEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/version", nil))

	if w.Header().Get("X-Request-Id") == "" {
		t.Error("X-Request-Id header should be set")
	}
}

func TestRequestIDHeaderIsPreserved(t *testing.T) {
	s := newTestServer(nil)

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	req.Header.Set("X-Request-Id", "fixed-id")
	w := httptest.NewRecorder()
	s.GinEngine().ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-Id"); got != "fixed-id" {
		t.Errorf("X-Request-Id = %q, want fixed-id", got)
	}
}

func TestRecoveryMiddlewareContainsPanics(t *testing.T) {
	s := newTestServer(nil)
	s.GinEngine().GET("/boom", func(*gin.Context) { panic("handler failure") })

	w := httptest.NewRecorder()
	s.GinEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestConfigValidation(t *testing.T) {
	cfg := Config{Port: 70000}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject port 70000")
	}

	cfg = Config{}
	cfg.ApplyDefaults()
	if cfg.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}
