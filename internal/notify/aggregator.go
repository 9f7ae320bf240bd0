package notify

import (
	"fmt"
	"log"

	"tickerbot/internal/models"
)

// BuildNotifications fans ticker groups out into per-user notification
// batches.
//
// For every ticker in discovery order, each subscriber returned by
// subscribers gets a NotificationItem appended to their list. Duplicate
// tickers in a user's list are then collapsed to the last occurrence, and
// users are ordered by descending item count (stable on first-seen order
// for ties). Empty groups yield an empty batch without calling subscribers.
func BuildNotifications(
	groups *TickerGroups,
	subscribers func(ticker string) ([]string, error),
) (*UserBatch, error) {
	batch := NewUserBatch()
	if groups == nil || groups.Len() == 0 {
		return batch, nil
	}

	notifiedTickers := 0
	for _, tickerSym := range groups.Tickers() {
		subs := groups.Submissions(tickerSym)
		ids := make([]string, len(subs))
		for i, s := range subs {
			ids[i] = s.ID
		}
		log.Printf("INFO: found ticker %s mentioned in posts %v", tickerSym, ids)

		users, err := subscribers(tickerSym)
		if err != nil {
			return nil, fmt.Errorf("failed to look up subscribers for %s: %w", tickerSym, err)
		}
		if len(users) > 0 {
			log.Printf("INFO: will notify %d users about ticker %s", len(users), tickerSym)
			notifiedTickers++
		}
		for _, u := range users {
			batch.add(u, models.NotificationItem{Ticker: tickerSym, Submissions: subs})
		}
	}

	batch.dedupe()
	batch.sortByVolume()

	if notifiedTickers > 0 {
		log.Printf("INFO: will notify users about a total of %d unique tickers", notifiedTickers)
	}
	return batch, nil
}
