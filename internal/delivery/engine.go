package delivery

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"tickerbot/internal/models"
	"tickerbot/internal/notify"
	"tickerbot/internal/worker"
)

// Outcome is the terminal state of one user's delivery attempt. An attempt
// moves Pending -> Sending -> {Delivered, Blocked, Failed}, or is Skipped
// without a network call when the user is already blocklisted. Retries stay
// inside the Sending state.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeDelivered
	OutcomeBlocked
	OutcomeFailed
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "pending"
	}
}

// ErrRetryBudgetExhausted means a user was still throttled after the full
// attempt budget. It aborts the whole run: systemic throttling would skew
// every later chunk's timing window, so the run relies on transport
// redelivery instead of continuing.
var ErrRetryBudgetExhausted = errors.New("delivery retry budget exhausted")

// Sender delivers one message to one user.
type Sender interface {
	SendMessage(ctx context.Context, user, subject, body string) error
}

// Blocklist is the durable set of permanently unreachable users.
type Blocklist interface {
	IsBlocked(ctx context.Context, user string) (bool, error)
	Block(ctx context.Context, user string) error
}

// Options tunes the engine. Zero values fall back to the platform's
// 60 requests/minute budget: chunks of 60, 6 workers, 2 attempts per user,
// a 60 second window.
type Options struct {
	ChunkSize     int
	MaxParallel   int
	RetryAttempts int
	Window        time.Duration

	// Sleep and Now are injectable for tests.
	Sleep func(time.Duration)
	Now   func() time.Time
}

// minChunkPause floors the inter-chunk sleep so a slow chunk never turns
// the pause negative.
const minChunkPause = time.Second

// Engine sends aggregated notification batches in rate-limited chunks.
type Engine struct {
	sender    Sender
	blocklist Blocklist
	pool      *worker.Pool

	chunkSize     int
	retryAttempts int
	window        time.Duration
	sleep         func(time.Duration)
	now           func() time.Time
}

// NewEngine creates a delivery engine and starts its worker pool. Call
// Close when done.
func NewEngine(sender Sender, blocklist Blocklist, opts Options) *Engine {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 60
	}
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = 6
	}
	if opts.RetryAttempts <= 0 {
		opts.RetryAttempts = 2
	}
	if opts.Window <= 0 {
		opts.Window = time.Minute
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	pool := worker.NewPool(opts.MaxParallel, opts.ChunkSize)
	pool.Run()

	return &Engine{
		sender:        sender,
		blocklist:     blocklist,
		pool:          pool,
		chunkSize:     opts.ChunkSize,
		retryAttempts: opts.RetryAttempts,
		window:        opts.Window,
		sleep:         opts.Sleep,
		now:           opts.Now,
	}
}

// Close stops the worker pool.
func (e *Engine) Close() {
	e.pool.Stop()
}

// Result records the terminal outcome of every user in a run.
type Result struct {
	Outcomes map[string]Outcome
}

// Count returns how many users finished with the given outcome.
func (r Result) Count(o Outcome) int {
	n := 0
	for _, got := range r.Outcomes {
		if got == o {
			n++
		}
	}
	return n
}

// DeliverAll sends every user's notification in the batch, chunked to stay
// under the rate limit. Users within a chunk are delivered concurrently by
// the worker pool; chunks are separated by a synchronous barrier and a
// sleep that tops the elapsed chunk time up to the window. The last chunk
// does not sleep.
//
// A retry-budget exhaustion aborts the run and is returned to the caller;
// every other failure is isolated to its user. The returned Result is valid
// even when an error is returned.
func (e *Engine) DeliverAll(ctx context.Context, batch *notify.UserBatch) (Result, error) {
	result := Result{Outcomes: make(map[string]Outcome)}
	chunks := batch.Chunks(e.chunkSize)

	for i, chunk := range chunks {
		start := e.now()

		var (
			mu    sync.Mutex
			wg    sync.WaitGroup
			fatal error
		)
		for _, n := range chunk {
			n := n
			wg.Add(1)
			e.pool.Submit(worker.Job{Process: func(context.Context) {
				defer wg.Done()
				outcome, err := e.deliverUser(ctx, n)
				mu.Lock()
				result.Outcomes[n.User] = outcome
				if err != nil && fatal == nil {
					fatal = err
				}
				mu.Unlock()
			}})
		}
		wg.Wait()

		if fatal != nil {
			return result, fatal
		}

		if i < len(chunks)-1 {
			elapsed := e.now().Sub(start)
			pause := e.window - elapsed
			if pause < minChunkPause {
				pause = minChunkPause
			}
			log.Printf("INFO: chunk %d/%d done in %s, sleeping %s before next chunk", i+1, len(chunks), elapsed, pause)
			e.sleep(pause)
		}
	}
	return result, nil
}

// deliverUser sends a single user's notification, classifying failures per
// the error taxonomy: throttles are retried within the attempt budget,
// permanent rejections promote the user onto the blocklist, and anything
// else fails only this user.
func (e *Engine) deliverUser(ctx context.Context, n models.UserNotification) (Outcome, error) {
	blocked, err := e.blocklist.IsBlocked(ctx, n.User)
	if err != nil {
		log.Printf("ERROR: blocklist check for %s failed: %v", n.User, err)
		return OutcomeFailed, nil
	}
	if blocked {
		return OutcomeSkipped, nil
	}

	body := notify.FormatNotificationBody(n.Items)
	attemptsLeft := e.retryAttempts

	for {
		sendErr := e.sender.SendMessage(ctx, n.User, notify.NotificationSubject, body)
		if sendErr == nil {
			log.Printf("INFO: notified %s about %d tickers", n.User, len(n.Items))
			return OutcomeDelivered, nil
		}

		msg := sendErr.Error()
		if secs, ok := CooldownSeconds(msg); ok {
			attemptsLeft--
			if attemptsLeft <= 0 {
				log.Printf("ERROR: still throttled sending to %s with no attempts left, aborting run", n.User)
				return OutcomeFailed, fmt.Errorf("%w: user %s: %v", ErrRetryBudgetExhausted, n.User, sendErr)
			}
			pause := time.Duration(secs+1) * time.Second
			log.Printf("WARN: throttled sending to %s, sleeping %s before retrying (%d attempts left)", n.User, pause, attemptsLeft)
			e.sleep(pause)
			continue
		}

		if IsPermanentRejection(msg) {
			if blockErr := e.blocklist.Block(ctx, n.User); blockErr != nil {
				log.Printf("ERROR: failed to blocklist %s: %v", n.User, blockErr)
			}
			log.Printf("INFO: user %s is unreachable and was added to the blocklist", n.User)
			return OutcomeBlocked, nil
		}

		log.Printf("ERROR: could not send notification to %s: %v", n.User, sendErr)
		return OutcomeFailed, nil
	}
}
