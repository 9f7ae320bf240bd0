package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tickerbot/internal/queue"
	"tickerbot/internal/server"
	"tickerbot/internal/server/handlers"
	"tickerbot/internal/store"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the ops HTTP server with health and stats endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := store.NewStore(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	ledger, err := store.NewLedger(&cfg.Redis, cfg.Pipeline.NotifiedTTL)
	if err != nil {
		return fmt.Errorf("failed to initialize ledger: %w", err)
	}
	defer ledger.Close()

	producer, err := queue.NewProducer(&cfg.Kafka)
	if err != nil {
		return fmt.Errorf("failed to initialize producer: %w", err)
	}
	defer producer.Close()

	srv := server.New(cfg, server.Components{
		Checkers: map[string]handlers.HealthChecker{
			"database": st,
			"redis":    ledger,
			"kafka":    producer,
		},
		Stats: &pipelineStats{store: st, ledger: ledger},
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		log.Printf("INFO: ops server listening on %s", addr)
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// pipelineStats adapts the store and ledger to the stats endpoint.
type pipelineStats struct {
	store  *store.Store
	ledger *store.Ledger
}

func (p *pipelineStats) SubscriptionCount(ctx context.Context) (int64, error) {
	return p.store.SubscriptionCount(ctx)
}

func (p *pipelineStats) BlockedCount(ctx context.Context) (int64, error) {
	return p.ledger.BlockedCount(ctx)
}

func (p *pipelineStats) PoolStats() map[string]interface{} {
	return p.store.Stats()
}
