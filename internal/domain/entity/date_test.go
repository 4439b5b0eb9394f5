package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("05/03/2024")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.March, 5), d)
	assert.Equal(t, "05/03/2024", d.String())

	for _, bad := range []string{"2024-03-05", "32/01/2024", "", "5/3/2024"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2024, time.February, 28)
	assert.Equal(t, "29/02/2024", d.AddDays(1).String())
	assert.Equal(t, "01/03/2024", d.AddDays(2).String())
	assert.Equal(t, 2, d.AddDays(2).DaysSince(d))
	assert.True(t, d < d.AddDays(1))
}

func TestDateOfUsesLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	now := time.Date(2024, time.March, 10, 1, 0, 0, 0, loc)
	today, yesterday := TodayAndYesterday(now)
	assert.Equal(t, "10/03/2024", today.String())
	assert.Equal(t, "09/03/2024", yesterday.String())
}

func TestDateJSON(t *testing.T) {
	e := BalanceEntry{Date: NewDate(2023, time.December, 31), Balance: 1.5}
	raw, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"date":"31/12/2023"`)

	var back BalanceEntry
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, e, back)

	assert.Error(t, json.Unmarshal([]byte(`{"date":"2023-12-31"}`), &back))
}
