package middleware

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"tickerbot/internal/config"
)

// LogEntry represents a structured log entry
type LogEntry struct {
	Timestamp  string `json:"timestamp"`
	Level      string `json:"level"`
	Component  string `json:"component"`
	Method     string `json:"method"`
	Path       string `json:"path"`
	StatusCode int    `json:"status_code"`
	Duration   string `json:"duration"`
	ClientIP   string `json:"client_ip"`
	Error      string `json:"error,omitempty"`
}

// Logger creates a structured logging middleware
func Logger(cfg config.LoggingConfig) gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		entry := LogEntry{
			Timestamp:  param.TimeStamp.Format(time.RFC3339),
			Level:      "INFO",
			Component:  "ops_server",
			Method:     param.Method,
			Path:       param.Path,
			StatusCode: param.StatusCode,
			Duration:   param.Latency.String(),
			ClientIP:   param.ClientIP,
		}

		if param.ErrorMessage != "" {
			entry.Error = param.ErrorMessage
			entry.Level = "ERROR"
		}

		if cfg.Format == "json" {
			jsonData, err := json.Marshal(entry)
			if err != nil {
				log.Printf("Failed to marshal log entry: %v", err)
				return fmt.Sprintf("%s [%s] %s %s %d %s\n",
					entry.Timestamp, entry.Level, entry.Method, entry.Path, entry.StatusCode, entry.Duration)
			}
			return string(jsonData) + "\n"
		}

		return fmt.Sprintf("%s [%s] %s %s %d %s %s\n",
			entry.Timestamp, entry.Level, entry.Method, entry.Path, entry.StatusCode, entry.Duration, entry.ClientIP)
	})
}
