package notify

import (
	"sort"

	"tickerbot/internal/models"
)

// UserBatch maps users to their pending notification items. User order is
// significant: after sorting, users with the most items come first so that
// oversized payloads fail early in a delivery run instead of after the
// rate-limit budget has been spent on small ones.
type UserBatch struct {
	order []string
	items map[string][]models.NotificationItem
}

// NewUserBatch returns an empty batch.
func NewUserBatch() *UserBatch {
	return &UserBatch{items: make(map[string][]models.NotificationItem)}
}

// BatchFromEntries rebuilds a batch from transport entries, preserving
// entry order.
func BatchFromEntries(entries []models.UserNotification) *UserBatch {
	b := NewUserBatch()
	for _, e := range entries {
		for _, item := range e.Items {
			b.add(e.User, item)
		}
	}
	return b
}

func (b *UserBatch) add(user string, item models.NotificationItem) {
	if _, ok := b.items[user]; !ok {
		b.order = append(b.order, user)
	}
	b.items[user] = append(b.items[user], item)
}

// Users returns the users in batch order.
func (b *UserBatch) Users() []string {
	return b.order
}

// Items returns the notification items for user.
func (b *UserBatch) Items(user string) []models.NotificationItem {
	return b.items[user]
}

// Len returns the number of users in the batch.
func (b *UserBatch) Len() int {
	return len(b.order)
}

// dedupe keeps only the last occurrence of each ticker in every user's
// list. Correct grouping never produces duplicates, but transport replays
// and the all-feed path historically could.
func (b *UserBatch) dedupe() {
	for user, items := range b.items {
		last := make(map[string]models.NotificationItem, len(items))
		var tickers []string
		for _, item := range items {
			if _, ok := last[item.Ticker]; !ok {
				tickers = append(tickers, item.Ticker)
			}
			last[item.Ticker] = item
		}
		if len(tickers) == len(items) {
			continue
		}
		deduped := make([]models.NotificationItem, 0, len(tickers))
		for _, t := range tickers {
			deduped = append(deduped, last[t])
		}
		b.items[user] = deduped
	}
}

// sortByVolume orders users by descending item count. The sort is stable,
// so ties keep their first-seen order.
func (b *UserBatch) sortByVolume() {
	sort.SliceStable(b.order, func(i, j int) bool {
		return len(b.items[b.order[i]]) > len(b.items[b.order[j]])
	})
}

// Entries flattens the batch into per-user transport entries, in batch
// order.
func (b *UserBatch) Entries() []models.UserNotification {
	entries := make([]models.UserNotification, 0, len(b.order))
	for _, user := range b.order {
		entries = append(entries, models.UserNotification{User: user, Items: b.items[user]})
	}
	return entries
}

// Chunks partitions the batch into ordered groups of at most size users,
// one group per rate-limit window.
func (b *UserBatch) Chunks(size int) [][]models.UserNotification {
	if size <= 0 || b.Len() == 0 {
		if b.Len() == 0 {
			return nil
		}
		size = b.Len()
	}
	entries := b.Entries()
	var chunks [][]models.UserNotification
	for start := 0; start < len(entries); start += size {
		end := start + size
		if end > len(entries) {
			end = len(entries)
		}
		chunks = append(chunks, entries[start:end])
	}
	return chunks
}
