package ticker

import (
	"log"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"tickerbot/internal/models"
)

// DueDiligenceFlair marks long-form research posts, which are allowed to
// mention any number of tickers.
const DueDiligenceFlair = "DD"

// DefaultMaxTickers is the per-submission match cap. A submission exceeding
// it without the due-diligence flair is treated as spam that accidentally
// capitalized too many words, and contributes no tickers at all.
const DefaultMaxTickers = 30

// punctChars may trail a symbol (quotes, sentence punctuation, markdown)
// and is stripped from the end of every raw match. Interior characters are
// kept so share classes like BRK.A survive.
const punctChars = `-.%#,:;'"&/![]()?`

// Common acronyms that pass the symbol grammar but are never tickers.
var exclusions = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"OTM", "ITM", "ATM", "ATH", "MACD", "ROI", "GAIN", "LOSS", "TLDR", "CEO",
		"WSB", "EOD", "YTD", "LLC", "IMO", "CFO", "FBI", "SEC", "THE", "NYSE",
		"USA", "IMF", "AND", "BABY", "EST", "PDT", "IPO", "YOLO", "LONG", "VEGA",
		"THETA", "GAMMA", "DELTA", "STOP", "ALL",
	} {
		exclusions[w] = struct{}{}
	}
}

// tickerPattern matches a candidate symbol ending at a token boundary.
// Three alternatives, first match wins: bare or $-prefixed 3-5 uppercase
// letters, $-prefixed 1-5 letters of any case, $-prefixed 1-2 letters. Each
// allows an optional one-letter share-class suffix and trailing punctuation.
// Tokens are pre-split on whitespace and '/', so anchoring at end-of-token
// replaces the lookahead a backtracking engine would use.
var tickerPattern = regexp.MustCompile(
	`(?:\$?[A-Z]{3,5}(?:\.[A-Z])?` +
		`|\$[A-Za-z]{1,5}(?:\.[A-Za-z])?` +
		`|\$[A-Za-z]{1,2}(?:\.[A-Za-z])?)` +
		`[-.%#,:;'"&/!\[\]()?]*$`)

// Matcher extracts validated ticker symbols from free text. It is immutable
// after construction and safe for concurrent use.
type Matcher struct {
	dict       *Dictionary
	maxTickers int
}

// NewMatcher returns a matcher validating against dict. maxTickers bounds
// matches per submission; values <= 0 fall back to DefaultMaxTickers.
func NewMatcher(dict *Dictionary, maxTickers int) *Matcher {
	if maxTickers <= 0 {
		maxTickers = DefaultMaxTickers
	}
	return &Matcher{dict: dict, maxTickers: maxTickers}
}

func tokenBoundary(r rune) bool {
	return unicode.IsSpace(r) || r == '/'
}

// Extract returns every validated ticker mentioned in text, $-prefixed,
// deduplicated and in lexicographic order. Malformed input yields an empty
// result, never an error.
func (m *Matcher) Extract(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, token := range strings.FieldsFunc(text, tokenBoundary) {
		raw := tickerPattern.FindString(token)
		if raw == "" {
			continue
		}
		sym := strings.TrimRight(strings.ToUpper(raw), punctChars)
		bare := strings.TrimPrefix(sym, "$")
		if bare == "" {
			continue
		}
		// Exclusion is checked on the bare form, so $OTM is dropped
		// just like OTM.
		if _, excluded := exclusions[bare]; excluded {
			continue
		}
		if !m.dict.Contains(bare) {
			continue
		}
		full := "$" + bare
		if _, dup := seen[full]; !dup {
			seen[full] = struct{}{}
			out = append(out, full)
		}
	}
	sort.Strings(out)
	return out
}

// TickersFor extracts tickers from a submission's title and body. Link posts
// contribute only their title. Submissions that exceed the match cap without
// the due-diligence flair return no tickers.
func (m *Matcher) TickersFor(s models.Submission) []string {
	text := s.Title + "\n"
	if s.IsSelf {
		text += s.SelfText + "\n"
	} else {
		text += "\n"
	}
	tickers := m.Extract(text)
	if len(tickers) <= m.maxTickers || s.Flair == DueDiligenceFlair {
		return tickers
	}
	log.Printf("WARN: submission %s mentions more than %d tickers and is excluded from processing", s.ID, m.maxTickers)
	return nil
}
