package queue

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"
	"tickerbot/internal/config"
	"tickerbot/internal/models"
)

// BatchHandler processes one decoded message worth of user notifications.
// Returning an error leaves the message unacknowledged so the group
// redelivers it; delivery is therefore at-least-once and handlers must be
// idempotent.
type BatchHandler interface {
	HandleBatch(ctx context.Context, entries []models.UserNotification) error
}

// Consumer reads notification batches from the delivery topic as part of a
// consumer group.
type Consumer struct {
	group   sarama.ConsumerGroup
	config  *config.KafkaConfig
	handler BatchHandler
}

// NewConsumer creates a consumer group member for the delivery topic.
func NewConsumer(cfg *config.KafkaConfig, handler BatchHandler) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{
		sarama.NewBalanceStrategyRoundRobin(),
	}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Version = sarama.V2_6_0_0

	var group sarama.ConsumerGroup
	var err error
	maxRetries := 5
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		group, err = sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
		if err == nil {
			break
		}

		if i < maxRetries-1 {
			log.Printf("Failed to create Kafka consumer group (attempt %d/%d), retrying in %v: %v",
				i+1, maxRetries, retryDelay, err)
			time.Sleep(retryDelay)
			retryDelay *= 2
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka consumer group after %d retries: %w", maxRetries, err)
	}

	return &Consumer{
		group:   group,
		config:  cfg,
		handler: handler,
	}, nil
}

// Run consumes the delivery topic until the context is cancelled or the
// handler reports a fatal error.
func (c *Consumer) Run(ctx context.Context) error {
	sess := &groupSession{handler: c.handler}

	go func() {
		for err := range c.group.Errors() {
			log.Printf("ERROR: consumer group error: %v", err)
		}
	}()

	for {
		if err := c.group.Consume(ctx, []string{c.config.Topic}, sess); err != nil {
			return fmt.Errorf("consumer group session failed: %w", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Rebalance happened, loop to rejoin.
	}
}

// Close closes the consumer group.
func (c *Consumer) Close() error {
	return c.group.Close()
}

// groupSession implements sarama.ConsumerGroupHandler. Offsets are marked
// only after the handler succeeds so a crash mid-batch causes redelivery
// instead of loss.
type groupSession struct {
	handler BatchHandler
}

func (s *groupSession) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (s *groupSession) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (s *groupSession) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			entries, err := DecodeBatch(msg.Value)
			if err != nil {
				// A payload that cannot be decoded will never succeed;
				// log and skip it rather than wedging the partition.
				log.Printf("ERROR: dropping undecodable message at %s/%d offset %d: %v",
					msg.Topic, msg.Partition, msg.Offset, err)
				session.MarkMessage(msg, "")
				continue
			}
			if len(entries) == 0 {
				session.MarkMessage(msg, "")
				continue
			}
			if err := s.handler.HandleBatch(session.Context(), entries); err != nil {
				return fmt.Errorf("batch handler failed at %s/%d offset %d: %w",
					msg.Topic, msg.Partition, msg.Offset, err)
			}
			session.MarkMessage(msg, "")
		case <-session.Context().Done():
			return nil
		}
	}
}
