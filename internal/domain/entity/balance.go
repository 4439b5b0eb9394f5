package entity

import (
	"fmt"
	"sort"
)

// BalanceEntry is one dated observation of a token balance for a wallet.
// Change and PercentageChange are derived values owned by the recalculation engine.
type BalanceEntry struct {
	Date             Date    `json:"date"`
	Balance          float64 `json:"balance"`
	Change           float64 `json:"change"`
	PercentageChange float64 `json:"percentageChange"`
	Excluded         bool    `json:"excluded"`
	Block            uint64  `json:"block,omitempty"`
}

// TokenSeries is the ordered history of one (wallet, token) pair, ascending by date.
type TokenSeries []BalanceEntry

// Clone returns a copy that does not share the backing array.
func (s TokenSeries) Clone() TokenSeries {
	if s == nil {
		return nil
	}
	out := make(TokenSeries, len(s))
	copy(out, s)
	return out
}

// Sorted returns a copy ordered ascending by date. Equal dates keep their input order.
func (s TokenSeries) Sorted() TokenSeries {
	out := s.Clone()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Find returns the entry for date and its index.
func (s TokenSeries) Find(date Date) (BalanceEntry, int, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Date == date {
			return s[i], i, true
		}
	}
	return BalanceEntry{}, -1, false
}

// Latest returns the entry with the greatest date.
func (s TokenSeries) Latest() (BalanceEntry, bool) {
	if len(s) == 0 {
		return BalanceEntry{}, false
	}
	latest := s[0]
	for _, e := range s[1:] {
		if e.Date >= latest.Date {
			latest = e
		}
	}
	return latest, true
}

// First returns the entry with the smallest date.
func (s TokenSeries) First() (BalanceEntry, bool) {
	if len(s) == 0 {
		return BalanceEntry{}, false
	}
	first := s[0]
	for _, e := range s[1:] {
		if e.Date < first.Date {
			first = e
		}
	}
	return first, true
}

// Upsert inserts a new entry for date or replaces the existing one, leaving the
// series sorted. Derived fields are reset and must be recomputed.
func (s TokenSeries) Upsert(date Date, balance float64) TokenSeries {
	return s.UpsertEntry(BalanceEntry{Date: date, Balance: balance})
}

// UpsertEntry is Upsert with a caller-provided entry (block, exclusion).
func (s TokenSeries) UpsertEntry(entry BalanceEntry) TokenSeries {
	entry.Change = 0
	entry.PercentageChange = 0
	out := make(TokenSeries, 0, len(s)+1)
	for _, e := range s {
		if e.Date != entry.Date {
			out = append(out, e)
		}
	}
	out = append(out, entry)
	return out.Sorted()
}

// SetExcluded flips the exclusion flag of the entry for date.
func (s TokenSeries) SetExcluded(date Date, excluded bool) (TokenSeries, error) {
	_, idx, ok := s.Find(date)
	if !ok {
		return s, fmt.Errorf("%w: %s", ErrDateNotFound, date)
	}
	out := s.Clone()
	out[idx].Excluded = excluded
	return out, nil
}

// NonExcludedCount returns the number of entries that take part in calculations.
func (s TokenSeries) NonExcludedCount() int {
	n := 0
	for _, e := range s {
		if !e.Excluded {
			n++
		}
	}
	return n
}
