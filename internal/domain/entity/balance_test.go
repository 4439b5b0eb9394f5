package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(day int) Date { return NewDate(2024, time.April, day) }

func TestTokenSeriesUpsert(t *testing.T) {
	var s TokenSeries
	s = s.Upsert(d(3), 30)
	s = s.Upsert(d(1), 10)
	s = s.Upsert(d(2), 20)
	require.Len(t, s, 3)
	assert.Equal(t, []Date{d(1), d(2), d(3)}, []Date{s[0].Date, s[1].Date, s[2].Date})

	s = s.Upsert(d(2), 25)
	require.Len(t, s, 3, "existing date is replaced")
	assert.InDelta(t, 25, s[1].Balance, 1e-9)
}

func TestTokenSeriesUpsertDoesNotAlias(t *testing.T) {
	s := TokenSeries{{Date: d(1), Balance: 1}}
	out := s.Upsert(d(1), 2)
	assert.InDelta(t, 1, s[0].Balance, 1e-9)
	assert.InDelta(t, 2, out[0].Balance, 1e-9)
}

func TestTokenSeriesUpsertEntryKeepsBlock(t *testing.T) {
	s := TokenSeries{}.UpsertEntry(BalanceEntry{Date: d(1), Balance: 5, Block: 123, Change: 9})
	assert.Equal(t, uint64(123), s[0].Block)
	assert.Zero(t, s[0].Change)
}

func TestTokenSeriesSetExcluded(t *testing.T) {
	s := TokenSeries{{Date: d(1), Balance: 1}, {Date: d(2), Balance: 2}}

	out, err := s.SetExcluded(d(2), true)
	require.NoError(t, err)
	assert.True(t, out[1].Excluded)
	assert.False(t, s[1].Excluded)

	_, err = s.SetExcluded(d(9), true)
	assert.ErrorIs(t, err, ErrDateNotFound)
	assert.True(t, IsNotFound(err))
}

func TestTokenSeriesLatestAndFirst(t *testing.T) {
	s := TokenSeries{{Date: d(5), Balance: 5}, {Date: d(2), Balance: 2}, {Date: d(7), Balance: 7}}
	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, d(7), latest.Date)

	first, ok := s.First()
	require.True(t, ok)
	assert.Equal(t, d(2), first.Date)

	_, ok = TokenSeries{}.Latest()
	assert.False(t, ok)
}
