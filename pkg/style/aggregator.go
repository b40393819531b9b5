package style

import (
	"strings"
	"sync"
)

// Marker is the attribute value stamped on processed elements and on the
// aggregated style block.
const Marker = "✨"

// Aggregator collects scoped stylesheets for one logical request. Add is
// safe for concurrent use. Duplicates are kept on write and filtered on
// read.
type Aggregator struct {
	mu      sync.Mutex
	entries []string
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Add appends a stylesheet. Empty text is ignored.
func (a *Aggregator) Add(text string) {
	if text == "" {
		return
	}
	a.mu.Lock()
	a.entries = append(a.entries, text)
	a.mu.Unlock()
}

// AddFragments appends the scoped text of each fragment.
func (a *Aggregator) AddFragments(fragments ...Fragment) {
	for _, f := range fragments {
		a.Add(f.Scoped)
	}
}

// Entries returns the distinct entries in first-insertion order.
func (a *Aggregator) Entries() []string {
	a.mu.Lock()
	snapshot := make([]string, len(a.entries))
	copy(snapshot, a.entries)
	a.mu.Unlock()

	return Distinct(snapshot)
}

// Len returns the number of entries added, duplicates included.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

// Reset discards all entries.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	a.entries = nil
	a.mu.Unlock()
}

// Render returns the distinct entries wrapped in a single marked style
// element, or "" when nothing was added.
func (a *Aggregator) Render() string {
	return Block(a.Entries())
}

// Block wraps stylesheets in a marked style element. It returns "" for an
// empty list.
func Block(entries []string) string {
	if len(entries) == 0 {
		return ""
	}
	return `<style enhanced="` + Marker + `">` + "\n" + strings.Join(entries, "\n") + "\n</style>"
}

// Distinct returns texts with exact duplicates removed, keeping the first
// occurrence of each.
func Distinct(texts []string) []string {
	seen := make(map[string]struct{}, len(texts))
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
