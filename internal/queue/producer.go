package queue

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"tickerbot/internal/config"
	"tickerbot/internal/models"
)

// Producer publishes aggregated notification batches to the delivery topic.
type Producer struct {
	producer sarama.SyncProducer
	config   *config.KafkaConfig
}

// ProducerError represents a transport producer-specific error
type ProducerError struct {
	Operation string
	Topic     string
	Err       error
	Retryable bool
}

func (e *ProducerError) Error() string {
	return fmt.Sprintf("queue producer operation '%s' failed for topic '%s': %v", e.Operation, e.Topic, e.Err)
}

func (e *ProducerError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *ProducerError) IsRetryable() bool {
	return e.Retryable
}

// NewProducer creates a new producer instance
func NewProducer(cfg *config.KafkaConfig) (*Producer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = cfg.Producer.RetryMax
	saramaConfig.Producer.Retry.Backoff = cfg.Producer.RetryBackoff
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.Compression = sarama.CompressionSnappy

	// Idempotent producer so broker-side retries cannot duplicate a batch.
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1

	saramaConfig.Version = sarama.V2_6_0_0

	// Create producer with retry logic
	var producer sarama.SyncProducer
	var err error
	maxRetries := 5
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		producer, err = sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
		if err == nil {
			break
		}

		if i < maxRetries-1 {
			log.Printf("Failed to create Kafka producer (attempt %d/%d), retrying in %v: %v",
				i+1, maxRetries, retryDelay, err)
			time.Sleep(retryDelay)
			retryDelay *= 2
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer after %d retries: %w", maxRetries, err)
	}

	return &Producer{
		producer: producer,
		config:   cfg,
	}, nil
}

// PublishBatch splits the aggregated entries into transport messages of at
// most ten users each and publishes them in a single call. Message keys are
// fresh UUIDs so partitioning spreads batches across the topic.
func (p *Producer) PublishBatch(ctx context.Context, entries []models.UserNotification) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	if p.producer == nil {
		return 0, &ProducerError{
			Operation: "publish_batch",
			Topic:     p.config.Topic,
			Err:       fmt.Errorf("producer is not initialized"),
			Retryable: false,
		}
	}

	groups := splitEntries(entries)
	messages := make([]*sarama.ProducerMessage, 0, len(groups))
	for _, group := range groups {
		payload, err := EncodeBatch(group)
		if err != nil {
			return 0, &ProducerError{
				Operation: "encode_batch",
				Topic:     p.config.Topic,
				Err:       err,
				Retryable: false,
			}
		}
		messages = append(messages, &sarama.ProducerMessage{
			Topic:     p.config.Topic,
			Key:       sarama.StringEncoder(uuid.NewString()),
			Value:     sarama.ByteEncoder(payload),
			Timestamp: time.Now(),
		})
	}

	// Send with timeout derived from the caller's context.
	done := make(chan error, 1)
	go func() {
		done <- p.producer.SendMessages(messages)
	}()

	select {
	case err := <-done:
		if err != nil {
			return 0, &ProducerError{
				Operation: "publish_batch",
				Topic:     p.config.Topic,
				Err:       err,
				Retryable: isRetryableKafkaError(err),
			}
		}
		log.Printf("INFO: published %d notification entries across %d messages", len(entries), len(messages))
		return len(messages), nil
	case <-ctx.Done():
		return 0, &ProducerError{
			Operation: "publish_batch",
			Topic:     p.config.Topic,
			Err:       ctx.Err(),
			Retryable: true,
		}
	}
}

// HealthCheck verifies the producer can reach the brokers by publishing an
// empty batch marker to the delivery topic.
func (p *Producer) HealthCheck(ctx context.Context) error {
	if p.producer == nil {
		return &ProducerError{
			Operation: "health_check",
			Topic:     p.config.Topic,
			Err:       fmt.Errorf("producer is not initialized"),
			Retryable: false,
		}
	}

	msg := &sarama.ProducerMessage{
		Topic:     p.config.Topic,
		Key:       sarama.StringEncoder(fmt.Sprintf("health-check-%d", time.Now().UnixNano())),
		Value:     sarama.ByteEncoder([]byte("[]")),
		Timestamp: time.Now(),
	}

	done := make(chan error, 1)
	go func() {
		_, _, err := p.producer.SendMessage(msg)
		done <- err
	}()

	healthCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	select {
	case err := <-done:
		if err != nil {
			return &ProducerError{
				Operation: "health_check",
				Topic:     p.config.Topic,
				Err:       err,
				Retryable: isRetryableKafkaError(err),
			}
		}
		return nil
	case <-healthCtx.Done():
		return &ProducerError{
			Operation: "health_check",
			Topic:     p.config.Topic,
			Err:       healthCtx.Err(),
			Retryable: true,
		}
	}
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// isRetryableKafkaError determines if a Kafka error is retryable
func isRetryableKafkaError(err error) bool {
	if err == nil {
		return false
	}

	switch err {
	case sarama.ErrRequestTimedOut,
		sarama.ErrNotLeaderForPartition,
		sarama.ErrLeaderNotAvailable,
		sarama.ErrNetworkException,
		sarama.ErrNotEnoughReplicas,
		sarama.ErrNotEnoughReplicasAfterAppend:
		return true
	}

	errStr := err.Error()
	retryableErrors := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"temporary failure",
		"broker not available",
		"network error",
	}

	for _, retryableErr := range retryableErrors {
		if strings.Contains(errStr, retryableErr) {
			return true
		}
	}

	return false
}
