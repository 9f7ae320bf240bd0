package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tickerbot/internal/inbox"
	"tickerbot/internal/reddit"
	"tickerbot/internal/store"
	"tickerbot/internal/ticker"
)

func inboxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inbox",
		Short: "Process unread messages into subscription changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInbox(cmd.Context())
		},
	}
}

func runInbox(ctx context.Context) error {
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

	client := reddit.NewClient(&cfg.Reddit)

	processor := inbox.NewProcessor(client, st, matcher, cfg.Pipeline.MaxTickersPerSub)
	return processor.ProcessUnread(ctx)
}
