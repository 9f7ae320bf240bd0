package notify

import (
	"fmt"
	"math/rand"
	"net/url"
	"strings"

	"tickerbot/internal/models"
)

// NotificationSubject is the subject line of every ticker notification.
const NotificationSubject = "New DD posted!"

const howToUseLink = "https://www.reddit.com/user/WSBStockTickerBot/comments/gt375p/how_to_use_me/"

// FormatNotificationBody renders a user's notification items as the
// markdown message body. Item order is preserved, which keeps the rendered
// text deterministic for a given batch.
func FormatNotificationBody(items []models.NotificationItem) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString(fmt.Sprintf("## %s:\n", item.Ticker))
		for _, s := range item.Submissions {
			b.WriteString(fmt.Sprintf("- [%s](%s)\n", s.Title, s.Permalink))
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

// SubscriptionReply confirms a subscription request.
func SubscriptionReply(tickers []string) string {
	var stopExample []string
	if len(tickers) > 1 {
		stopExample = []string{
			tickers[rand.Intn(len(tickers))],
			tickers[rand.Intn(len(tickers))],
		}
	} else {
		stopExample = tickers[:1]
	}
	return fmt.Sprintf("You'll be notified when DD is posted for %s\n\n\n\n", strings.Join(tickers, ", ")) +
		fmt.Sprintf("To stop subscriptions reply with a message like `stop %s`", strings.Join(stopExample, " "))
}

// UnsubscriptionReply confirms an unsubscription request.
func UnsubscriptionReply(tickers []string) string {
	return fmt.Sprintf("You are no longer subscribed to %s", strings.Join(tickers, ", "))
}

// AllFeedSubscriptionReply is sent to users subscribing to the all-DD feed
// while the feed is disabled. The subscription itself is still recorded.
func AllFeedSubscriptionReply() string {
	return "The ALL DD feed is temporarily disabled\n\n" +
		"You'll still be subscribed, but you won't receive notifications until it's re-enabled\n\n\n\n" +
		"In the meantime, you can subscribe to DD for specific tickers [here]" +
		"(https://np.reddit.com/message/compose/?to=WSBStockTickerBot&subject=Subscribe%20Me&message=Type%20tickers%20%24LIKE%20%24THIS%20anywhere%20in%20this%20message%20to%20subscribe%20to%20them)"
}

// AllFeedUnsubscriptionReply confirms leaving the all-DD feed.
func AllFeedUnsubscriptionReply() string {
	return "I've unsubscribed you from the all DD feed\n\n" +
		"You'll still receive notifications for individual tickers which you are subscribed to"
}

// ErrorReply is sent when a message contains no recognizable tickers.
func ErrorReply() string {
	return "I couldn't understand what you sent\n\n" +
		"Be sure to include at least one real ticker in your message\n\n" +
		fmt.Sprintf("[Try reading these instructions on how to use me](%s)", howToUseLink)
}

// SubscribeLink builds a markdown link that pre-fills a subscription
// message for one ticker.
func SubscribeLink(botUser, ticker string) string {
	return fmt.Sprintf("[%s](https://np.reddit.com/message/compose/?to=%s&subject=Subscribe%%20Me&message=%s)",
		ticker, botUser, url.QueryEscape(ticker))
}

// SubscribeAllLink builds a plain URL that pre-fills a subscription message
// for every ticker in the list.
func SubscribeAllLink(botUser string, tickers []string) string {
	return fmt.Sprintf("https://np.reddit.com/message/compose/?to=%s&subject=Subscribe%%20Me&message=%s",
		botUser, url.QueryEscape(strings.Join(tickers, " ")))
}

// FormatSubmissionComment renders the comment posted under a submission
// listing the tickers found in it.
func FormatSubmissionComment(botUser string, tickers []string, example1, example2 string) string {
	links := make([]string, len(tickers))
	for i, t := range tickers {
		links[i] = SubscribeLink(botUser, t)
	}
	return "I'm a bot, REEEEEEE\n\n" +
		fmt.Sprintf("I've found these tickers in this submission: %s\n\n", strings.Join(links, " ")) +
		"I can notify you when DD is posted about these tickers in the future\n\n" +
		fmt.Sprintf("Click on the ticker above to subscribe or click [here](%s) to be subscribed to all tickers in this post\n\n", SubscribeAllLink(botUser, tickers)) +
		fmt.Sprintf("Comment below or send me a private message (not a chat!) like `$%s $%s` to subscribe to other tickers\n\n", example1, example2) +
		fmt.Sprintf("Read how to use me [here](%s)", howToUseLink)
}
