package notify

import (
	"errors"
	"reflect"
	"testing"

	"tickerbot/internal/models"
)

func TestBuildNotifications(t *testing.T) {
	groups := NewTickerGroups()
	groups.Add("$FNJN", models.SubmissionRef{ID: "a1", Flair: "DD", Permalink: "test.permalink1", Title: "test-submission1"})
	groups.Add("$FNJN", models.SubmissionRef{ID: "a2", Flair: "DD", Permalink: "test.permalink2", Title: "test-submission2"})
	groups.Add("$WISA", models.SubmissionRef{ID: "a1", Flair: "DD", Permalink: "test.permalink1", Title: "test-submission1"})

	subscribers := func(ticker string) ([]string, error) {
		if ticker == "$WISA" {
			return []string{"u1", "u2"}, nil
		}
		return []string{"u1", "u3"}, nil
	}

	batch, err := BuildNotifications(groups, subscribers)
	if err != nil {
		t.Fatalf("BuildNotifications() error = %v", err)
	}

	// u1 has both tickers, u3 and u2 one each; volume order is stable on
	// first-seen order for the tie.
	wantUsers := []string{"u1", "u3", "u2"}
	if got := batch.Users(); !reflect.DeepEqual(got, wantUsers) {
		t.Fatalf("Users() = %v, want %v", got, wantUsers)
	}

	u1 := batch.Items("u1")
	if len(u1) != 2 {
		t.Fatalf("u1 has %d items, want 2", len(u1))
	}
	if u1[0].Ticker != "$FNJN" || u1[1].Ticker != "$WISA" {
		t.Errorf("u1 tickers = [%s %s], want [$FNJN $WISA]", u1[0].Ticker, u1[1].Ticker)
	}
	if len(u1[0].Submissions) != 2 {
		t.Errorf("u1 $FNJN has %d submissions, want 2", len(u1[0].Submissions))
	}

	u2 := batch.Items("u2")
	if len(u2) != 1 || u2[0].Ticker != "$WISA" {
		t.Errorf("u2 items = %v, want one $WISA item", u2)
	}

	u3 := batch.Items("u3")
	if len(u3) != 1 || u3[0].Ticker != "$FNJN" {
		t.Errorf("u3 items = %v, want one $FNJN item", u3)
	}
}

func TestBuildNotificationsEmptyGroups(t *testing.T) {
	called := false
	subscribers := func(string) ([]string, error) {
		called = true
		return nil, nil
	}

	batch, err := BuildNotifications(NewTickerGroups(), subscribers)
	if err != nil {
		t.Fatalf("BuildNotifications() error = %v", err)
	}
	if batch.Len() != 0 {
		t.Errorf("Len() = %d, want 0", batch.Len())
	}
	if called {
		t.Error("subscriber lookup was called for empty groups")
	}
}

func TestBuildNotificationsSubscriberError(t *testing.T) {
	groups := NewTickerGroups()
	groups.Add("$SPY", models.SubmissionRef{ID: "a1"})

	wantErr := errors.New("db down")
	_, err := BuildNotifications(groups, func(string) ([]string, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("BuildNotifications() error = %v, want wrapped %v", err, wantErr)
	}
}

func TestBuildNotificationsDeduplicates(t *testing.T) {
	groups := NewTickerGroups()
	groups.Add("$SPY", models.SubmissionRef{ID: "a1"})

	// The same user twice from one ticker lookup collapses to one item.
	batch, err := BuildNotifications(groups, func(string) ([]string, error) {
		return []string{"u1", "u1"}, nil
	})
	if err != nil {
		t.Fatalf("BuildNotifications() error = %v", err)
	}
	if got := len(batch.Items("u1")); got != 1 {
		t.Errorf("u1 has %d items, want 1", got)
	}
}
