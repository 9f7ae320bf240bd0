package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"tickerbot/internal/config"
)

func TestPublishBatchUninitialized(t *testing.T) {
	p := &Producer{config: &config.KafkaConfig{Topic: "test-topic"}}

	_, err := p.PublishBatch(context.Background(), entriesOf("u1"))
	if err == nil {
		t.Fatal("PublishBatch() on uninitialized producer expected error, got nil")
	}

	var perr *ProducerError
	if !errors.As(err, &perr) {
		t.Fatalf("error type = %T, want *ProducerError", err)
	}
	if perr.Operation != "publish_batch" {
		t.Errorf("Operation = %q, want publish_batch", perr.Operation)
	}
	if perr.IsRetryable() {
		t.Error("uninitialized producer error should not be retryable")
	}
}

func TestPublishBatchEmpty(t *testing.T) {
	p := &Producer{config: &config.KafkaConfig{Topic: "test-topic"}}

	n, err := p.PublishBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("PublishBatch() with no entries error = %v", err)
	}
	if n != 0 {
		t.Errorf("messages sent = %d, want 0", n)
	}
}

func TestProducerErrorUnwrap(t *testing.T) {
	inner := errors.New("broker gone")
	perr := &ProducerError{Operation: "publish_batch", Topic: "t", Err: inner, Retryable: true}

	if !errors.Is(perr, inner) {
		t.Error("errors.Is() failed to unwrap ProducerError")
	}
	if !perr.IsRetryable() {
		t.Error("IsRetryable() = false, want true")
	}
}

func TestIsRetryableKafkaError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"request timed out", sarama.ErrRequestTimedOut, true},
		{"leader not available", sarama.ErrLeaderNotAvailable, true},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"plain failure", errors.New("message too large"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableKafkaError(tt.err); got != tt.want {
				t.Errorf("isRetryableKafkaError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
