package queue

import (
	"reflect"
	"testing"

	"tickerbot/internal/models"
)

func entriesOf(users ...string) []models.UserNotification {
	entries := make([]models.UserNotification, len(users))
	for i, u := range users {
		entries[i] = models.UserNotification{
			User: u,
			Items: []models.NotificationItem{
				{
					Ticker: "$SPY",
					Submissions: []models.SubmissionRef{
						{ID: "s1", Flair: "DD", Permalink: "/r/wallstreetbets/comments/s1/", Title: "SPY analysis"},
					},
				},
			},
		}
	}
	return entries
}

func TestEncodeDecodeBatch(t *testing.T) {
	entries := entriesOf("u1", "u2")

	data, err := EncodeBatch(entries)
	if err != nil {
		t.Fatalf("EncodeBatch() error = %v", err)
	}

	got, err := DecodeBatch(data)
	if err != nil {
		t.Fatalf("DecodeBatch() error = %v", err)
	}
	if !reflect.DeepEqual(got, entries) {
		t.Errorf("round trip = %+v, want %+v", got, entries)
	}
}

func TestDecodeBatchInvalid(t *testing.T) {
	if _, err := DecodeBatch([]byte("{not json")); err == nil {
		t.Error("DecodeBatch() with invalid payload expected error, got nil")
	}
}

func TestDecodeBatchEmpty(t *testing.T) {
	got, err := DecodeBatch([]byte("[]"))
	if err != nil {
		t.Fatalf("DecodeBatch() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d entries, want 0", len(got))
	}
}

func TestSplitEntries(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		wantSizes []int
	}{
		{name: "empty", count: 0, wantSizes: nil},
		{name: "under limit", count: 7, wantSizes: []int{7}},
		{name: "exactly limit", count: 10, wantSizes: []int{10}},
		{name: "one over", count: 11, wantSizes: []int{10, 1}},
		{name: "several groups", count: 25, wantSizes: []int{10, 10, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := make([]string, tt.count)
			for i := range users {
				users[i] = "u"
			}
			groups := splitEntries(entriesOf(users...))

			var sizes []int
			for _, g := range groups {
				sizes = append(sizes, len(g))
			}
			if !reflect.DeepEqual(sizes, tt.wantSizes) {
				t.Errorf("group sizes = %v, want %v", sizes, tt.wantSizes)
			}
		})
	}
}
