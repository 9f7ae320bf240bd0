package models

// Submission represents a post fetched from the platform. Link posts carry an
// empty SelfText and IsSelf=false.
type Submission struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	SelfText  string `json:"selftext"`
	IsSelf    bool   `json:"is_self"`
	Flair     string `json:"link_flair_text"`
	Permalink string `json:"permalink"`
}

// Ref returns the immutable slice of the submission that is carried through
// the notification pipeline and onto the transport.
func (s Submission) Ref() SubmissionRef {
	return SubmissionRef{
		ID:        s.ID,
		Flair:     s.Flair,
		Permalink: s.Permalink,
		Title:     s.Title,
	}
}

// SubmissionRef identifies a submission inside a notification. Identity is
// the ID; the remaining fields exist only to render message bodies.
type SubmissionRef struct {
	ID        string `json:"id"`
	Flair     string `json:"flair,omitempty"`
	Permalink string `json:"permalink"`
	Title     string `json:"title"`
}

// NotificationItem is one ticker and the submissions that mention it. After
// aggregation a user's list contains at most one item per ticker.
type NotificationItem struct {
	Ticker      string          `json:"ticker"`
	Submissions []SubmissionRef `json:"submissions"`
}

// UserNotification is a single user's pending notification payload, the unit
// carried on the transport between aggregation and delivery.
type UserNotification struct {
	User  string             `json:"user"`
	Items []NotificationItem `json:"items"`
}

// InboxMessage is an unread private message or comment reply addressed to
// the bot.
type InboxMessage struct {
	ID      string `json:"id"`
	Author  string `json:"author"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
