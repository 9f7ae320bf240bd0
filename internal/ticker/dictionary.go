package ticker

import (
	"bufio"
	_ "embed"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
)

// symbols.txt is the combined NASDAQ + other-listed symbol directory,
// regenerated periodically from the exchange symbol files.
//
//go:embed symbols.txt
var embeddedSymbols string

// Dictionary is the set of known exchange symbols. It is built once at
// startup and never mutated afterwards, so it is safe to share across
// goroutines without locking.
type Dictionary struct {
	symbols map[string]struct{}
	ordered []string
}

var (
	defaultDict *Dictionary
	defaultOnce sync.Once
)

// Default returns the process-wide dictionary loaded from the embedded
// symbol directory.
func Default() *Dictionary {
	defaultOnce.Do(func() {
		defaultDict = parseSymbols(strings.NewReader(embeddedSymbols))
	})
	return defaultDict
}

// Load reads a dictionary from a newline-delimited symbol file, overriding
// the embedded directory.
func Load(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open symbol file: %w", err)
	}
	defer f.Close()
	d := parseSymbols(f)
	if d.Len() == 0 {
		return nil, fmt.Errorf("symbol file %s contains no symbols", path)
	}
	return d, nil
}

// FromSymbols builds a dictionary from an explicit symbol list.
func FromSymbols(symbols ...string) *Dictionary {
	d := &Dictionary{symbols: make(map[string]struct{}, len(symbols))}
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := d.symbols[s]; !ok {
			d.symbols[s] = struct{}{}
			d.ordered = append(d.ordered, s)
		}
	}
	return d
}

func parseSymbols(r interface{ Read([]byte) (int, error) }) *Dictionary {
	d := &Dictionary{symbols: make(map[string]struct{})}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		sym := strings.TrimSpace(scanner.Text())
		if sym == "" {
			continue
		}
		if _, ok := d.symbols[sym]; !ok {
			d.symbols[sym] = struct{}{}
			d.ordered = append(d.ordered, sym)
		}
	}
	return d
}

// Contains reports whether the symbol is a known exchange symbol. A leading
// dollar sign is ignored.
func (d *Dictionary) Contains(symbol string) bool {
	_, ok := d.symbols[strings.TrimPrefix(symbol, "$")]
	return ok
}

// Len returns the number of known symbols.
func (d *Dictionary) Len() int {
	return len(d.symbols)
}

// Random returns an arbitrary known symbol, used when composing example
// subscription links in outbound messages.
func (d *Dictionary) Random() string {
	if len(d.ordered) == 0 {
		return ""
	}
	return d.ordered[rand.Intn(len(d.ordered))]
}
