package config

import (
	"os"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "config_test_*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()
	return tmpFile.Name()
}

func TestLoad(t *testing.T) {
	configContent := `
server:
  port: 8080
  host: "localhost"
  read_timeout: 30s
  write_timeout: 30s
  idle_timeout: 120s

database:
  host: "localhost"
  port: 5432
  name: "test_db"
  user: "test_user"
  password: "test_password"
  pool_size: 10
  conn_max_lifetime: 300s

redis:
  addr: "localhost:6379"
  db: 1

kafka:
  brokers:
    - "localhost:9092"
  topic: "test-notifications"
  group_id: "test-group"
  producer:
    retry_max: 3
    retry_backoff: 100ms

reddit:
  base_url: "https://oauth.reddit.com"
  user_agent: "test-agent"
  username: "test-bot"
  subreddit: "wallstreetbets"
  timeout: 15s

pipeline:
  submission_limit: 25
  chunk_size: 50
  max_parallel: 4

logging:
  level: "INFO"
  format: "json"
`

	cfg, err := Load(writeTempConfig(t, configContent))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "test_db" {
		t.Errorf("Database.Name = %q, want test_db", cfg.Database.Name)
	}
	if cfg.Redis.DB != 1 {
		t.Errorf("Redis.DB = %d, want 1", cfg.Redis.DB)
	}
	if cfg.Kafka.Topic != "test-notifications" {
		t.Errorf("Kafka.Topic = %q, want test-notifications", cfg.Kafka.Topic)
	}
	if cfg.Reddit.Timeout != 15*time.Second {
		t.Errorf("Reddit.Timeout = %v, want 15s", cfg.Reddit.Timeout)
	}

	// Explicit values survive, omitted ones get defaults.
	if cfg.Pipeline.SubmissionLimit != 25 {
		t.Errorf("Pipeline.SubmissionLimit = %d, want 25", cfg.Pipeline.SubmissionLimit)
	}
	if cfg.Pipeline.ChunkSize != 50 {
		t.Errorf("Pipeline.ChunkSize = %d, want 50", cfg.Pipeline.ChunkSize)
	}
	if cfg.Pipeline.MaxTickersPerPost != 30 {
		t.Errorf("Pipeline.MaxTickersPerPost = %d, want default 30", cfg.Pipeline.MaxTickersPerPost)
	}
	if cfg.Pipeline.MaxTickersPerSub != 10 {
		t.Errorf("Pipeline.MaxTickersPerSub = %d, want default 10", cfg.Pipeline.MaxTickersPerSub)
	}
	if cfg.Pipeline.RetryAttempts != 2 {
		t.Errorf("Pipeline.RetryAttempts = %d, want default 2", cfg.Pipeline.RetryAttempts)
	}
	if cfg.Pipeline.NotifiedTTL != 120*time.Hour {
		t.Errorf("Pipeline.NotifiedTTL = %v, want default 120h", cfg.Pipeline.NotifiedTTL)
	}
	if len(cfg.Pipeline.ValidFlairs) != 1 || cfg.Pipeline.ValidFlairs[0] != "DD" {
		t.Errorf("Pipeline.ValidFlairs = %v, want [DD]", cfg.Pipeline.ValidFlairs)
	}
}

func TestLoadTokenFromEnv(t *testing.T) {
	configContent := `
database:
  host: "localhost"
  port: 5432
redis:
  addr: "localhost:6379"
kafka:
  brokers: ["localhost:9092"]
  topic: "t"
reddit:
  base_url: "https://oauth.reddit.com"
`
	t.Setenv("REDDIT_TOKEN", "secret-token")

	cfg, err := Load(writeTempConfig(t, configContent))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Reddit.Token != "secret-token" {
		t.Errorf("Reddit.Token = %q, want secret-token", cfg.Reddit.Token)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "missing database host",
			content: `
redis:
  addr: "localhost:6379"
kafka:
  brokers: ["localhost:9092"]
  topic: "t"
reddit:
  base_url: "https://oauth.reddit.com"
`,
		},
		{
			name: "missing redis addr",
			content: `
database:
  host: "localhost"
  port: 5432
kafka:
  brokers: ["localhost:9092"]
  topic: "t"
reddit:
  base_url: "https://oauth.reddit.com"
`,
		},
		{
			name: "missing kafka brokers",
			content: `
database:
  host: "localhost"
  port: 5432
redis:
  addr: "localhost:6379"
kafka:
  topic: "t"
reddit:
  base_url: "https://oauth.reddit.com"
`,
		},
		{
			name: "missing kafka topic",
			content: `
database:
  host: "localhost"
  port: 5432
redis:
  addr: "localhost:6379"
kafka:
  brokers: ["localhost:9092"]
reddit:
  base_url: "https://oauth.reddit.com"
`,
		},
		{
			name: "missing reddit base url",
			content: `
database:
  host: "localhost"
  port: 5432
redis:
  addr: "localhost:6379"
kafka:
  brokers: ["localhost:9092"]
  topic: "t"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeTempConfig(t, tt.content)); err == nil {
				t.Error("Load() expected validation error, got nil")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Load() with missing file expected error, got nil")
	}
}
