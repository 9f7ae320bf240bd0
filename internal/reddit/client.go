package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"tickerbot/internal/config"
	"tickerbot/internal/models"
)

// APIError is a structured error returned by the platform API. Its Error
// string carries both the code and the message so callers can classify
// throttles and permanent rejections from the text.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %s: %s", e.Code, e.Message)
}

// Client is a thin wrapper over the platform's JSON API.
type Client struct {
	http   *resty.Client
	config *config.RedditConfig
}

// NewClient builds a client from config. The token and user agent ride on
// every request.
func NewClient(cfg *config.RedditConfig) *Client {
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetAuthToken(cfg.Token)

	return &Client{http: http, config: cfg}
}

// listing mirrors the API's envelope for submission and message lists.
type listing struct {
	Data struct {
		Children []struct {
			Kind string          `json:"kind"`
			Data json.RawMessage `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type submissionData struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	SelfText      string `json:"selftext"`
	IsSelf        bool   `json:"is_self"`
	LinkFlairText string `json:"link_flair_text"`
	Permalink     string `json:"permalink"`
}

type messageData struct {
	Name    string `json:"name"`
	Author  string `json:"author"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// jsonResponse is the envelope of write endpoints; errors arrive as
// [code, message, field] triples.
type jsonResponse struct {
	JSON struct {
		Errors [][]string `json:"errors"`
	} `json:"json"`
}

func (r *jsonResponse) firstError() *APIError {
	if len(r.JSON.Errors) == 0 {
		return nil
	}
	e := r.JSON.Errors[0]
	apiErr := &APIError{}
	if len(e) > 0 {
		apiErr.Code = e[0]
	}
	if len(e) > 1 {
		apiErr.Message = e[1]
	}
	return apiErr
}

// RisingSubmissions fetches the newest rising submissions from the
// configured subreddit.
func (c *Client) RisingSubmissions(ctx context.Context, limit int) ([]models.Submission, error) {
	var result listing
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("limit", fmt.Sprintf("%d", limit)).
		SetResult(&result).
		Get(fmt.Sprintf("/r/%s/rising.json", c.config.Subreddit))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rising submissions: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("rising submissions request returned %s", resp.Status())
	}

	submissions := make([]models.Submission, 0, len(result.Data.Children))
	for _, child := range result.Data.Children {
		var data submissionData
		if err := json.Unmarshal(child.Data, &data); err != nil {
			return nil, fmt.Errorf("failed to decode submission: %w", err)
		}
		submissions = append(submissions, models.Submission{
			ID:        data.ID,
			Title:     data.Title,
			SelfText:  data.SelfText,
			IsSelf:    data.IsSelf,
			Flair:     data.LinkFlairText,
			Permalink: data.Permalink,
		})
	}
	return submissions, nil
}

// SendMessage sends a private message to a user. API-level errors, including
// throttles, come back as *APIError.
func (c *Client) SendMessage(ctx context.Context, user, subject, body string) error {
	var result jsonResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"api_type": "json",
			"to":       user,
			"subject":  subject,
			"text":     body,
		}).
		SetResult(&result).
		Post("/api/compose")
	if err != nil {
		return fmt.Errorf("failed to send message to %s: %w", user, err)
	}
	if resp.IsError() {
		return fmt.Errorf("compose request for %s returned %s", user, resp.Status())
	}
	if apiErr := result.firstError(); apiErr != nil {
		return apiErr
	}
	return nil
}

// UnreadMessages fetches the bot's unread inbox.
func (c *Client) UnreadMessages(ctx context.Context) ([]models.InboxMessage, error) {
	var result listing
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/message/unread.json")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unread messages: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("unread messages request returned %s", resp.Status())
	}

	messages := make([]models.InboxMessage, 0, len(result.Data.Children))
	for _, child := range result.Data.Children {
		var data messageData
		if err := json.Unmarshal(child.Data, &data); err != nil {
			return nil, fmt.Errorf("failed to decode inbox message: %w", err)
		}
		messages = append(messages, models.InboxMessage{
			ID:      data.Name,
			Author:  data.Author,
			Subject: data.Subject,
			Body:    data.Body,
		})
	}
	return messages, nil
}

// Reply posts a reply to an inbox message.
func (c *Client) Reply(ctx context.Context, messageID, body string) error {
	var result jsonResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"api_type": "json",
			"thing_id": messageID,
			"text":     body,
		}).
		SetResult(&result).
		Post("/api/comment")
	if err != nil {
		return fmt.Errorf("failed to reply to %s: %w", messageID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("reply request for %s returned %s", messageID, resp.Status())
	}
	if apiErr := result.firstError(); apiErr != nil {
		return apiErr
	}
	return nil
}

// Comment posts a top-level comment on a submission.
func (c *Client) Comment(ctx context.Context, submissionID, body string) error {
	return c.Reply(ctx, "t3_"+strings.TrimPrefix(submissionID, "t3_"), body)
}

// MarkRead marks inbox messages as read so the next poll skips them.
func (c *Client) MarkRead(ctx context.Context, messageIDs ...string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{"id": strings.Join(messageIDs, ",")}).
		Post("/api/read_message")
	if err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("read_message request returned %s", resp.Status())
	}
	return nil
}
