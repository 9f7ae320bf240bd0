package notify

import (
	"context"
	"log"

	"tickerbot/internal/models"
)

// Commenter posts a subscription-link comment under each submission that
// mentions known tickers. A submission is marked commented whether or not it
// matched anything, so a post without tickers is never re-scanned; a failed
// comment is left unmarked and picked up again on the next run.
type Commenter struct {
	BotUser          string
	TickersFor       func(models.Submission) []string
	AlreadyCommented func(ctx context.Context, id string) bool
	Post             func(ctx context.Context, submissionID, text string) error
	Mark             func(ctx context.Context, id string) error
	Examples         func() (string, string)
	Reprocess        bool
}

// PostComments walks the submissions and returns how many received a comment.
func (c *Commenter) PostComments(ctx context.Context, submissions []models.Submission) (int, error) {
	commented := 0
	for _, s := range submissions {
		if err := ctx.Err(); err != nil {
			return commented, err
		}
		if c.AlreadyCommented(ctx, s.ID) && !c.Reprocess {
			continue
		}
		if tickers := c.TickersFor(s); len(tickers) != 0 {
			example1, example2 := c.Examples()
			log.Printf("INFO: commenting on %s", s.Title)
			if err := c.Post(ctx, s.ID, FormatSubmissionComment(c.BotUser, tickers, example1, example2)); err != nil {
				log.Printf("ERROR: failed to comment on submission %s: %v", s.ID, err)
				continue
			}
			commented++
		}
		if err := c.Mark(ctx, s.ID); err != nil {
			log.Printf("ERROR: failed to mark submission %s commented: %v", s.ID, err)
		}
	}
	return commented, nil
}
