package notify

import (
	"log"

	"tickerbot/internal/models"
)

// GroupSubmissions groups submissions by the tickers they mention.
//
// tickersFor extracts the validated tickers for one submission.
// alreadyProcessed is the idempotency check; submissions it reports as seen
// are skipped entirely unless reprocess is set. The caller is responsible
// for marking every input submission as processed afterwards, whether or
// not it matched anything; the marker is deliberately separate from the
// grouping so a submission is only ever counted once.
func GroupSubmissions(
	submissions []models.Submission,
	tickersFor func(models.Submission) []string,
	alreadyProcessed func(id string) bool,
	reprocess bool,
) *TickerGroups {
	groups := NewTickerGroups()
	processed := 0
	for _, s := range submissions {
		if alreadyProcessed(s.ID) && !reprocess {
			continue
		}
		for _, t := range tickersFor(s) {
			groups.Add(t, s.Ref())
		}
		processed++
	}
	log.Printf("INFO: grabbed %d new submissions", processed)
	return groups
}
