package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"tickerbot/internal/config"
	"tickerbot/internal/server/handlers"
)

type fakeChecker struct {
	err error
}

func (f *fakeChecker) HealthCheck(context.Context) error {
	return f.err
}

type fakeStats struct {
	subs    int64
	blocked int64
	err     error
}

func (f *fakeStats) SubscriptionCount(context.Context) (int64, error) {
	return f.subs, f.err
}

func (f *fakeStats) BlockedCount(context.Context) (int64, error) {
	return f.blocked, f.err
}

func (f *fakeStats) PoolStats() map[string]interface{} {
	return map[string]interface{}{"total_conns": 3}
}

func createTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:         8080,
			Host:         "localhost",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Logging: config.LoggingConfig{
			Level:  "INFO",
			Format: "json",
		},
	}
}

func TestHealthEndpointHealthy(t *testing.T) {
	srv := New(createTestConfig(), Components{
		Checkers: map[string]handlers.HealthChecker{
			"database": &fakeChecker{},
			"redis":    &fakeChecker{},
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	srv.GetRouter().ServeHTTP(w, req)

	assert.Equal(t, w.Code, http.StatusOK)

	var status handlers.HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	assert.Equal(t, status.Status, "healthy")
	if _, ok := status.Checks["database"]; !ok {
		t.Error("health response missing database check")
	}
}

func TestHealthEndpointUnhealthy(t *testing.T) {
	srv := New(createTestConfig(), Components{
		Checkers: map[string]handlers.HealthChecker{
			"database": &fakeChecker{},
			"kafka":    &fakeChecker{err: errors.New("broker unreachable")},
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	srv.GetRouter().ServeHTTP(w, req)

	assert.Equal(t, w.Code, http.StatusServiceUnavailable)

	var status handlers.HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	assert.Equal(t, status.Status, "unhealthy")
}

func TestHealthEndpointNilChecker(t *testing.T) {
	srv := New(createTestConfig(), Components{
		Checkers: map[string]handlers.HealthChecker{
			"kafka": nil,
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	srv.GetRouter().ServeHTTP(w, req)

	assert.Equal(t, w.Code, http.StatusServiceUnavailable)
}

func TestStatsEndpoint(t *testing.T) {
	srv := New(createTestConfig(), Components{
		Checkers: map[string]handlers.HealthChecker{},
		Stats:    &fakeStats{subs: 42, blocked: 7},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	srv.GetRouter().ServeHTTP(w, req)

	assert.Equal(t, w.Code, http.StatusOK)

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	assert.Equal(t, body["subscriptions"], float64(42))
	assert.Equal(t, body["blocked_users"], float64(7))
}

func TestStatsEndpointError(t *testing.T) {
	srv := New(createTestConfig(), Components{
		Checkers: map[string]handlers.HealthChecker{},
		Stats:    &fakeStats{err: errors.New("db down")},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	srv.GetRouter().ServeHTTP(w, req)

	assert.Equal(t, w.Code, http.StatusInternalServerError)
}

func TestStatsEndpointAbsentWithoutSource(t *testing.T) {
	srv := New(createTestConfig(), Components{
		Checkers: map[string]handlers.HealthChecker{},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	srv.GetRouter().ServeHTTP(w, req)

	assert.Equal(t, w.Code, http.StatusNotFound)
}
