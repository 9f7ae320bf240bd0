package notify

import "tickerbot/internal/models"

// TickerGroups maps each ticker to the submissions that mention it, in
// discovery order. Iteration order over tickers is insertion order, which
// keeps downstream notification content deterministic. A ticker never maps
// to an empty list.
type TickerGroups struct {
	order  []string
	groups map[string][]models.SubmissionRef
}

// NewTickerGroups returns an empty group set.
func NewTickerGroups() *TickerGroups {
	return &TickerGroups{groups: make(map[string][]models.SubmissionRef)}
}

// Add appends ref to the ticker's submission list, creating the list on
// first encounter.
func (g *TickerGroups) Add(ticker string, ref models.SubmissionRef) {
	if _, ok := g.groups[ticker]; !ok {
		g.order = append(g.order, ticker)
	}
	g.groups[ticker] = append(g.groups[ticker], ref)
}

// Tickers returns the tickers in first-seen order.
func (g *TickerGroups) Tickers() []string {
	return g.order
}

// Submissions returns the submissions mentioning ticker, in discovery order.
func (g *TickerGroups) Submissions(ticker string) []models.SubmissionRef {
	return g.groups[ticker]
}

// Len returns the number of distinct tickers.
func (g *TickerGroups) Len() int {
	return len(g.order)
}
