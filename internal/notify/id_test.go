package notify

import (
	"testing"

	"tickerbot/internal/models"
)

func TestNotificationID(t *testing.T) {
	tests := []struct {
		name string
		n    models.UserNotification
		want string
	}{
		{
			name: "user plus first submission id",
			n: models.UserNotification{
				User: "u1",
				Items: []models.NotificationItem{
					{Ticker: "$SPY", Submissions: []models.SubmissionRef{{ID: "abc123"}, {ID: "def456"}}},
					{Ticker: "$AAPL", Submissions: []models.SubmissionRef{{ID: "zzz999"}}},
				},
			},
			want: "u1-abc123",
		},
		{
			name: "no items falls back to user",
			n:    models.UserNotification{User: "u2"},
			want: "u2",
		},
		{
			name: "item without submissions falls back to user",
			n: models.UserNotification{
				User:  "u3",
				Items: []models.NotificationItem{{Ticker: "$SPY"}},
			},
			want: "u3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NotificationID(tt.n); got != tt.want {
				t.Errorf("NotificationID() = %q, want %q", got, tt.want)
			}
		})
	}
}
