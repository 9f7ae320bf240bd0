package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"tickerbot/internal/notify"
	"tickerbot/internal/queue"
	"tickerbot/internal/reddit"
	"tickerbot/internal/store"
	"tickerbot/internal/ticker"
)

func runCmd() *cobra.Command {
	var reprocess bool
	var postComments bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch rising submissions and publish notification batches",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd.Context(), reprocess, postComments)
		},
	}
	cmd.Flags().BoolVar(&reprocess, "reprocess", false, "reprocess submissions already marked as notified")
	cmd.Flags().BoolVar(&postComments, "comment", false, "also comment subscription links under new submissions")
	return cmd
}

// runPipeline is the publisher half: fetch rising submissions, group them by
// ticker, fan out to subscribers and publish the aggregated batch. The
// submissions are marked processed only after the batch is on the wire, so a
// crash before that point causes a retry instead of a lost run.
func runPipeline(ctx context.Context, reprocess, postComments bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dict, err := loadDictionary(cfg)
	if err != nil {
		return err
	}
	matcher := ticker.NewMatcher(dict, cfg.Pipeline.MaxTickersPerPost)

	st, err := store.NewStore(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	producer, err := queue.NewProducer(&cfg.Kafka)
	if err != nil {
		return fmt.Errorf("failed to initialize producer: %w", err)
	}
	defer producer.Close()

	client := reddit.NewClient(&cfg.Reddit)

	submissions, err := client.RisingSubmissions(ctx, cfg.Pipeline.SubmissionLimit)
	if err != nil {
		return err
	}

	validFlairs := make(map[string]struct{}, len(cfg.Pipeline.ValidFlairs))
	for _, f := range cfg.Pipeline.ValidFlairs {
		validFlairs[f] = struct{}{}
	}
	filtered := submissions[:0:0]
	for _, s := range submissions {
		if _, ok := validFlairs[s.Flair]; ok {
			filtered = append(filtered, s)
		}
	}
	log.Printf("INFO: fetched %d rising submissions, %d with valid flair", len(submissions), len(filtered))

	if postComments {
		commenter := &notify.Commenter{
			BotUser:    cfg.Reddit.Username,
			TickersFor: matcher.TickersFor,
			AlreadyCommented: func(ctx context.Context, id string) bool {
				seen, err := st.HasProcessed(ctx, store.MarkerCommented, id)
				if err != nil {
					log.Printf("ERROR: commented check for submission %s failed: %v", id, err)
					return false
				}
				return seen
			},
			Post: client.Comment,
			Mark: func(ctx context.Context, id string) error {
				return st.MarkProcessed(ctx, store.MarkerCommented, id)
			},
			Examples:  func() (string, string) { return dict.Random(), dict.Random() },
			Reprocess: reprocess,
		}
		commented, err := commenter.PostComments(ctx, filtered)
		if err != nil {
			return err
		}
		log.Printf("INFO: commented on %d submissions", commented)
	}

	groups := notify.GroupSubmissions(filtered, matcher.TickersFor, func(id string) bool {
		seen, err := st.HasProcessed(ctx, store.MarkerNotified, id)
		if err != nil {
			log.Printf("ERROR: processed check for submission %s failed: %v", id, err)
			return false
		}
		return seen
	}, reprocess)

	batch, err := notify.BuildNotifications(groups, func(t string) ([]string, error) {
		return st.SubscribersFor(ctx, t)
	})
	if err != nil {
		return err
	}

	if entries := batch.Entries(); len(entries) > 0 {
		if _, err := producer.PublishBatch(ctx, entries); err != nil {
			return err
		}
	} else {
		log.Printf("INFO: no users to notify this run")
	}

	for _, s := range filtered {
		if err := st.MarkProcessed(ctx, store.MarkerNotified, s.ID); err != nil {
			log.Printf("ERROR: failed to mark submission %s processed: %v", s.ID, err)
		}
	}
	return nil
}
