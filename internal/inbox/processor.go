package inbox

import (
	"context"
	"log"
	"strings"

	"tickerbot/internal/models"
	"tickerbot/internal/notify"
	"tickerbot/internal/ticker"
)

// Mailbox is the slice of the platform client the processor needs.
type Mailbox interface {
	UnreadMessages(ctx context.Context) ([]models.InboxMessage, error)
	Reply(ctx context.Context, messageID, body string) error
	MarkRead(ctx context.Context, messageIDs ...string) error
}

// SubscriptionStore manages per-ticker subscriptions.
type SubscriptionStore interface {
	Subscribe(ctx context.Context, user, ticker string) error
	Unsubscribe(ctx context.Context, user, ticker string) error
}

// Processor turns inbox messages into subscription changes. A message whose
// body starts with "stop" unsubscribes the author from the tickers it
// mentions; any other message subscribes them. The author always gets a
// reply, and the message is marked read even when the reply fails so the
// next poll does not reprocess it.
type Processor struct {
	mailbox      Mailbox
	store        SubscriptionStore
	matcher      *ticker.Matcher
	maxPerChange int
}

// NewProcessor builds a processor. maxPerChange caps how many tickers one
// message may subscribe to at once.
func NewProcessor(mailbox Mailbox, store SubscriptionStore, matcher *ticker.Matcher, maxPerChange int) *Processor {
	if maxPerChange <= 0 {
		maxPerChange = 10
	}
	return &Processor{
		mailbox:      mailbox,
		store:        store,
		matcher:      matcher,
		maxPerChange: maxPerChange,
	}
}

// ProcessUnread handles every unread message. Per-message failures are
// logged and isolated; only a failed inbox fetch aborts the run.
func (p *Processor) ProcessUnread(ctx context.Context) error {
	messages, err := p.mailbox.UnreadMessages(ctx)
	if err != nil {
		return err
	}
	log.Printf("INFO: processing %d unread messages", len(messages))

	for _, msg := range messages {
		if err := p.handleMessage(ctx, msg); err != nil {
			log.Printf("ERROR: failed to handle message %s from %s: %v", msg.ID, msg.Author, err)
		}
	}
	return nil
}

func (p *Processor) handleMessage(ctx context.Context, msg models.InboxMessage) error {
	reply := p.dispatch(ctx, msg)

	if reply != "" {
		if err := p.mailbox.Reply(ctx, msg.ID, reply); err != nil {
			log.Printf("ERROR: could not reply to %s's message %s: %v", msg.Author, msg.ID, err)
		}
	}
	return p.mailbox.MarkRead(ctx, msg.ID)
}

// dispatch applies the subscription change and picks the reply text.
func (p *Processor) dispatch(ctx context.Context, msg models.InboxMessage) string {
	body := strings.TrimSpace(msg.Body)
	tickers := p.matcher.Extract(body)

	if strings.HasPrefix(strings.ToLower(body), "stop") {
		if mentionsAll(body) {
			log.Printf("INFO: user %s requested unsubscription from the all feed", msg.Author)
			return notify.AllFeedUnsubscriptionReply()
		}
		if len(tickers) == 0 {
			return notify.ErrorReply()
		}
		log.Printf("INFO: user %s requested unsubscription from %v", msg.Author, tickers)
		for _, t := range tickers {
			if err := p.store.Unsubscribe(ctx, msg.Author, t); err != nil {
				log.Printf("ERROR: failed to unsubscribe %s from %s: %v", msg.Author, t, err)
			}
		}
		return notify.UnsubscriptionReply(tickers)
	}

	if len(tickers) == 0 {
		if mentionsAll(body) {
			log.Printf("INFO: user %s requested subscription to the all feed", msg.Author)
			return notify.AllFeedSubscriptionReply()
		}
		return notify.ErrorReply()
	}

	if len(tickers) > p.maxPerChange {
		tickers = tickers[:p.maxPerChange]
	}
	log.Printf("INFO: user %s requested subscription to %v", msg.Author, tickers)
	for _, t := range tickers {
		if err := p.store.Subscribe(ctx, msg.Author, t); err != nil {
			log.Printf("ERROR: failed to subscribe %s to %s: %v", msg.Author, t, err)
		}
	}
	return notify.SubscriptionReply(tickers)
}

// mentionsAll reports whether the body contains the standalone word "all",
// which addresses the firehose feed instead of individual tickers.
func mentionsAll(body string) bool {
	for _, field := range strings.Fields(strings.ToLower(body)) {
		if strings.Trim(field, ".,!?") == "all" {
			return true
		}
	}
	return false
}
