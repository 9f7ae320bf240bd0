package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker is any component that can report its own health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthStatus represents the health status of the service
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]interface{} `json:"checks"`
}

// ComponentHealth represents the health of an individual component
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

var startTime = time.Now()

// HealthCheck creates a health check handler probing every named component.
// A nil checker reports as unhealthy rather than being skipped.
func HealthCheck(components map[string]HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := make(map[string]interface{})
		overallStatus := "healthy"

		checks["server"] = ComponentHealth{
			Status:  "healthy",
			Message: "HTTP server is running",
		}

		for name, checker := range components {
			if checker == nil {
				checks[name] = ComponentHealth{
					Status:  "unhealthy",
					Message: name + " not initialized",
				}
				overallStatus = "unhealthy"
				continue
			}

			start := time.Now()
			ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
			err := checker.HealthCheck(ctx)
			cancel()

			if err != nil {
				checks[name] = ComponentHealth{
					Status:  "unhealthy",
					Message: err.Error(),
					Latency: time.Since(start).String(),
				}
				overallStatus = "unhealthy"
			} else {
				checks[name] = ComponentHealth{
					Status:  "healthy",
					Message: name + " connection is working",
					Latency: time.Since(start).String(),
				}
			}
		}

		response := HealthStatus{
			Status:    overallStatus,
			Timestamp: time.Now().Format(time.RFC3339),
			Uptime:    time.Since(startTime).String(),
			Checks:    checks,
		}

		statusCode := http.StatusOK
		if overallStatus != "healthy" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, response)
	}
}
