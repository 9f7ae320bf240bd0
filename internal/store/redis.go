package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"tickerbot/internal/config"
)

const (
	notifiedKeyPrefix = "tickerbot:notified:"
	blockedSetKey     = "tickerbot:blocked"
)

// Ledger tracks which notifications have already been delivered and which
// users are permanently unreachable. Notified entries expire so the keyspace
// does not grow without bound; the blocklist is durable.
type Ledger struct {
	client      *redis.Client
	notifiedTTL time.Duration
}

// NewLedger connects to Redis and verifies the connection.
func NewLedger(cfg *config.RedisConfig, notifiedTTL time.Duration) (*Ledger, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if notifiedTTL <= 0 {
		notifiedTTL = 120 * time.Hour
	}
	return &Ledger{client: client, notifiedTTL: notifiedTTL}, nil
}

// HasNotified reports whether a notification id was already delivered.
func (l *Ledger) HasNotified(ctx context.Context, notificationID string) (bool, error) {
	n, err := l.client.Exists(ctx, notifiedKeyPrefix+notificationID).Result()
	if err != nil {
		return false, &StoreError{Operation: "has_notified", Err: err, Retryable: true}
	}
	return n > 0, nil
}

// MarkNotified records a delivered notification id with the configured TTL.
func (l *Ledger) MarkNotified(ctx context.Context, notificationID string) error {
	err := l.client.Set(ctx, notifiedKeyPrefix+notificationID, "1", l.notifiedTTL).Err()
	if err != nil {
		return &StoreError{Operation: "mark_notified", Err: err, Retryable: true}
	}
	return nil
}

// IsBlocked reports whether a user is on the blocklist.
func (l *Ledger) IsBlocked(ctx context.Context, user string) (bool, error) {
	blocked, err := l.client.SIsMember(ctx, blockedSetKey, user).Result()
	if err != nil {
		return false, &StoreError{Operation: "is_blocked", Err: err, Retryable: true}
	}
	return blocked, nil
}

// Block adds a user to the blocklist.
func (l *Ledger) Block(ctx context.Context, user string) error {
	if err := l.client.SAdd(ctx, blockedSetKey, user).Err(); err != nil {
		return &StoreError{Operation: "block", Err: err, Retryable: true}
	}
	return nil
}

// BlockedCount returns the blocklist size, for the ops stats endpoint.
func (l *Ledger) BlockedCount(ctx context.Context) (int64, error) {
	n, err := l.client.SCard(ctx, blockedSetKey).Result()
	if err != nil {
		return 0, &StoreError{Operation: "blocked_count", Err: err, Retryable: true}
	}
	return n, nil
}

// HealthCheck pings Redis.
func (l *Ledger) HealthCheck(ctx context.Context) error {
	if err := l.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (l *Ledger) Close() error {
	return l.client.Close()
}
