package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tickerbot/internal/delivery"
	"tickerbot/internal/models"
	"tickerbot/internal/notify"
	"tickerbot/internal/queue"
	"tickerbot/internal/reddit"
	"tickerbot/internal/store"
)

func deliverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deliver",
		Short: "Consume notification batches and send them to users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeliver(cmd.Context())
		},
	}
}

// runDeliver is the consumer half: read batches off the delivery topic and
// send them, filtering out notifications the ledger has already seen. It
// runs until interrupted.
func runDeliver(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ledger, err := store.NewLedger(&cfg.Redis, cfg.Pipeline.NotifiedTTL)
	if err != nil {
		return fmt.Errorf("failed to initialize ledger: %w", err)
	}
	defer ledger.Close()

	client := reddit.NewClient(&cfg.Reddit)

	engine := delivery.NewEngine(client, ledger, delivery.Options{
		ChunkSize:     cfg.Pipeline.ChunkSize,
		MaxParallel:   cfg.Pipeline.MaxParallel,
		RetryAttempts: cfg.Pipeline.RetryAttempts,
	})
	defer engine.Close()

	handler := &batchDeliverer{engine: engine, ledger: ledger}

	consumer, err := queue.NewConsumer(&cfg.Kafka, handler)
	if err != nil {
		return fmt.Errorf("failed to initialize consumer: %w", err)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("INFO: delivery consumer starting on topic %s", cfg.Kafka.Topic)
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// batchDeliverer glues the queue consumer to the delivery engine. Returning
// an error leaves the message unacknowledged; with the already-notified
// filter in front, redelivery only re-sends what never went out.
type batchDeliverer struct {
	engine *delivery.Engine
	ledger *store.Ledger
}

func (d *batchDeliverer) HandleBatch(ctx context.Context, entries []models.UserNotification) error {
	fresh := make([]models.UserNotification, 0, len(entries))
	ids := make(map[string]string, len(entries))
	for _, e := range entries {
		id := notify.NotificationID(e)
		seen, err := d.ledger.HasNotified(ctx, id)
		if err != nil {
			return err
		}
		if seen {
			log.Printf("INFO: already notified %s, skipping", id)
			continue
		}
		fresh = append(fresh, e)
		ids[e.User] = id
	}
	if len(fresh) == 0 {
		return nil
	}

	result, err := d.engine.DeliverAll(ctx, notify.BatchFromEntries(fresh))

	// Terminal outcomes go in the ledger even when the run aborted part way;
	// only users who were never reached stay unmarked for redelivery.
	for user, outcome := range result.Outcomes {
		if outcome != delivery.OutcomeDelivered && outcome != delivery.OutcomeBlocked {
			continue
		}
		if markErr := d.ledger.MarkNotified(ctx, ids[user]); markErr != nil {
			log.Printf("ERROR: failed to record notification for %s: %v", user, markErr)
		}
	}

	log.Printf("INFO: batch finished: %d delivered, %d blocked, %d skipped, %d failed",
		result.Count(delivery.OutcomeDelivered),
		result.Count(delivery.OutcomeBlocked),
		result.Count(delivery.OutcomeSkipped),
		result.Count(delivery.OutcomeFailed))
	return err
}
