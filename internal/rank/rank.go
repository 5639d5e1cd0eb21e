// Package rank counts tokens and orders them by frequency.
package rank

import "sort"

// DefaultTopN is the number of entries kept when the caller passes zero.
const DefaultTopN = 20

// Entry is one row of a ranked list.
type Entry struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Table maps distinct tokens to their counts and remembers the order in
// which each token was first seen.
type Table struct {
	counts map[string]int
	order  []string
}

// Count builds a Table by exact string equality.
func Count(tokens []string) *Table {
	t := &Table{counts: make(map[string]int, len(tokens))}
	for _, tok := range tokens {
		if _, ok := t.counts[tok]; !ok {
			t.order = append(t.order, tok)
		}
		t.counts[tok]++
	}
	return t
}

// Len returns the number of distinct tokens.
func (t *Table) Len() int { return len(t.order) }

// Get returns the count of word, zero when absent.
func (t *Table) Get(word string) int { return t.counts[word] }

// Entries returns all tokens in first-seen order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.order))
	for i, w := range t.order {
		out[i] = Entry{Word: w, Count: t.counts[w]}
	}
	return out
}

// MostCommon returns the n most frequent entries, highest count first.
// Equal counts keep first-seen order. n <= 0 returns every entry.
func (t *Table) MostCommon(n int) []Entry {
	entries := t.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	if n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	return entries
}

// Rank counts tokens and returns the top N. topN <= 0 means DefaultTopN.
func Rank(tokens []string, topN int) []Entry {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return Count(tokens).MostCommon(topN)
}

// FilterByMinCount keeps entries with Count >= minCount, preserving order.
// The result may be empty.
func FilterByMinCount(ranked []Entry, minCount int) []Entry {
	out := make([]Entry, 0, len(ranked))
	for _, e := range ranked {
		if e.Count >= minCount {
			out = append(out, e)
		}
	}
	return out
}
