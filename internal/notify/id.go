package notify

import (
	"fmt"

	"tickerbot/internal/models"
)

// NotificationID derives the idempotency key for a user's notification: the
// user plus the first submission id of the first item. A submission is never
// processed twice, so the same user can never be handed two different
// notifications with the same id.
func NotificationID(n models.UserNotification) string {
	if len(n.Items) == 0 || len(n.Items[0].Submissions) == 0 {
		return n.User
	}
	return fmt.Sprintf("%s-%s", n.User, n.Items[0].Submissions[0].ID)
}
