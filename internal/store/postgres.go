package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"tickerbot/internal/config"
)

// Marker table kinds for the processed-submission ledger.
const (
	MarkerNotified  = "notified-submissions"
	MarkerCommented = "commented-submissions"
)

// StoreError represents a store-specific error
type StoreError struct {
	Operation string
	Err       error
	Retryable bool
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store operation '%s' failed: %v", e.Operation, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *StoreError) IsRetryable() bool {
	return e.Retryable
}

// Store holds the subscription table and the processed-submission markers
// in Postgres.
type Store struct {
	pool   *pgxpool.Pool
	config *config.DatabaseConfig
}

// NewStore creates a store with connection pooling and initializes the
// schema.
func NewStore(cfg *config.DatabaseConfig) (*Store, error) {
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable&pool_max_conns=%d",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
		cfg.PoolSize,
	)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if cfg.PoolSize > 0 {
		poolConfig.MaxConns = int32(cfg.PoolSize)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	// Connect with retry, the database may still be starting.
	var pool *pgxpool.Pool
	maxRetries := 5
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		cancel()

		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err = pool.Ping(ctx)
			cancel()
			if err == nil {
				break
			}
		}

		if i < maxRetries-1 {
			time.Sleep(retryDelay)
			retryDelay *= 2
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d retries: %w", maxRetries, err)
	}

	s := &Store{pool: pool, config: cfg}
	if err := s.initSchema(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}
	return s, nil
}

// initSchema creates the tables and indexes if they don't exist
func (s *Store) initSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS subscriptions (
			ticker VARCHAR(16) NOT NULL,
			user_id VARCHAR(64) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			PRIMARY KEY (ticker, user_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_subscriptions_ticker ON subscriptions(ticker);`,
		`CREATE TABLE IF NOT EXISTS submission_markers (
			kind VARCHAR(32) NOT NULL,
			submission_id VARCHAR(32) NOT NULL,
			marked_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			PRIMARY KEY (kind, submission_id)
		);`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// SubscribersFor returns the users subscribed to ticker, ordered by user id
// for deterministic fan-out.
func (s *Store) SubscribersFor(ctx context.Context, ticker string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id FROM subscriptions WHERE ticker = $1 ORDER BY user_id;`, ticker)
	if err != nil {
		return nil, &StoreError{Operation: "subscribers_for", Err: err, Retryable: true}
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, &StoreError{Operation: "subscribers_for", Err: err, Retryable: false}
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Operation: "subscribers_for", Err: err, Retryable: true}
	}
	return users, nil
}

// Subscribe adds a user to a ticker. Subscribing twice is a no-op.
func (s *Store) Subscribe(ctx context.Context, user, ticker string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO subscriptions (ticker, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING;`,
		ticker, user)
	if err != nil {
		return &StoreError{Operation: "subscribe", Err: err, Retryable: true}
	}
	return nil
}

// Unsubscribe removes a user from a ticker. Unsubscribing a missing row is
// a no-op.
func (s *Store) Unsubscribe(ctx context.Context, user, ticker string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM subscriptions WHERE ticker = $1 AND user_id = $2;`,
		ticker, user)
	if err != nil {
		return &StoreError{Operation: "unsubscribe", Err: err, Retryable: true}
	}
	return nil
}

// HasProcessed reports whether a submission was already processed under the
// given marker kind.
func (s *Store) HasProcessed(ctx context.Context, kind, submissionID string) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx,
		`SELECT 1 FROM submission_markers WHERE kind = $1 AND submission_id = $2;`,
		kind, submissionID).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, &StoreError{Operation: "has_processed", Err: err, Retryable: true}
	}
	return true, nil
}

// MarkProcessed records a submission under the given marker kind.
func (s *Store) MarkProcessed(ctx context.Context, kind, submissionID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO submission_markers (kind, submission_id) VALUES ($1, $2) ON CONFLICT DO NOTHING;`,
		kind, submissionID)
	if err != nil {
		return &StoreError{Operation: "mark_processed", Err: err, Retryable: true}
	}
	return nil
}

// SubscriptionCount returns the total number of (ticker, user) rows, for
// the ops stats endpoint.
func (s *Store) SubscriptionCount(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM subscriptions;`).Scan(&n); err != nil {
		return 0, &StoreError{Operation: "subscription_count", Err: err, Retryable: true}
	}
	return n, nil
}

// HealthCheck performs a database health check
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	var result int
	if err := s.pool.QueryRow(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query test failed: %w", err)
	}
	return nil
}

// Stats returns connection pool statistics for the ops endpoint.
func (s *Store) Stats() map[string]interface{} {
	stats := s.pool.Stat()
	return map[string]interface{}{
		"total_conns":    stats.TotalConns(),
		"acquired_conns": stats.AcquiredConns(),
		"idle_conns":     stats.IdleConns(),
		"max_conns":      stats.MaxConns(),
	}
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
