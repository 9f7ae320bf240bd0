package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Reddit   RedditConfig   `yaml:"reddit"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds ops HTTP server configuration
type ServerConfig struct {
	Port         int           `yaml:"port"`
	Host         string        `yaml:"host"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// DatabaseConfig holds Postgres configuration
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	PoolSize        int           `yaml:"pool_size"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// RedisConfig holds the ledger/blocklist store configuration
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// KafkaConfig holds transport configuration
type KafkaConfig struct {
	Brokers  []string            `yaml:"brokers"`
	Topic    string              `yaml:"topic"`
	GroupID  string              `yaml:"group_id"`
	Producer KafkaProducerConfig `yaml:"producer"`
}

// KafkaProducerConfig holds Kafka producer configuration
type KafkaProducerConfig struct {
	RetryMax     int           `yaml:"retry_max"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// RedditConfig holds the platform API client configuration. The token is
// normally supplied via the REDDIT_TOKEN environment variable instead of
// the config file.
type RedditConfig struct {
	BaseURL   string        `yaml:"base_url"`
	UserAgent string        `yaml:"user_agent"`
	Username  string        `yaml:"username"`
	Token     string        `yaml:"token"`
	Subreddit string        `yaml:"subreddit"`
	Timeout   time.Duration `yaml:"timeout"`
}

// PipelineConfig holds the notification pipeline tuning knobs
type PipelineConfig struct {
	SubmissionLimit   int           `yaml:"submission_limit"`
	ValidFlairs       []string      `yaml:"valid_flairs"`
	MaxTickersPerPost int           `yaml:"max_tickers_per_post"`
	MaxTickersPerSub  int           `yaml:"max_tickers_per_subscribe"`
	ChunkSize         int           `yaml:"chunk_size"`
	MaxParallel       int           `yaml:"max_parallel"`
	RetryAttempts     int           `yaml:"retry_attempts"`
	NotifiedTTL       time.Duration `yaml:"notified_ttl"`
	SymbolFile        string        `yaml:"symbol_file"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load loads configuration from file and applies defaults
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyDefaults fills in the documented defaults for omitted settings. The
// delivery defaults track the platform's 60 requests/minute budget.
func (c *Config) applyDefaults() {
	if c.Pipeline.SubmissionLimit == 0 {
		c.Pipeline.SubmissionLimit = 30
	}
	if len(c.Pipeline.ValidFlairs) == 0 {
		c.Pipeline.ValidFlairs = []string{"DD"}
	}
	if c.Pipeline.MaxTickersPerPost == 0 {
		c.Pipeline.MaxTickersPerPost = 30
	}
	if c.Pipeline.MaxTickersPerSub == 0 {
		c.Pipeline.MaxTickersPerSub = 10
	}
	if c.Pipeline.ChunkSize == 0 {
		c.Pipeline.ChunkSize = 60
	}
	if c.Pipeline.MaxParallel == 0 {
		c.Pipeline.MaxParallel = 6
	}
	if c.Pipeline.RetryAttempts == 0 {
		c.Pipeline.RetryAttempts = 2
	}
	if c.Pipeline.NotifiedTTL == 0 {
		c.Pipeline.NotifiedTTL = 120 * time.Hour
	}
	if c.Reddit.Timeout == 0 {
		c.Reddit.Timeout = 30 * time.Second
	}
	if token := os.Getenv("REDDIT_TOKEN"); token != "" && c.Reddit.Token == "" {
		c.Reddit.Token = token
	}
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required")
	}

	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("at least one Kafka broker is required")
	}

	if c.Kafka.Topic == "" {
		return fmt.Errorf("kafka topic is required")
	}

	if c.Reddit.BaseURL == "" {
		return fmt.Errorf("reddit base URL is required")
	}

	if c.Pipeline.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive")
	}

	if c.Pipeline.MaxParallel <= 0 {
		return fmt.Errorf("max parallel must be positive")
	}

	return nil
}
