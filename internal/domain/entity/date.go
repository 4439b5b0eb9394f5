package entity

import (
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the external day format used in stored wallet documents and the API.
const DateLayout = "02/01/2006"

// Date is a calendar day, counted in days since 1970-01-01.
// It has no time-of-day and no location.
type Date int32

// NewDate builds a Date from calendar components.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	u := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return Date(u.Unix() / 86400)
}

// ParseDate parses a DD/MM/YYYY string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return time.Unix(int64(d)*86400, 0).UTC()
}

func (d Date) String() string {
	return d.Time().Format(DateLayout)
}

// AddDays returns the day n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return d + Date(n)
}

// DaysSince returns the number of days from o to d.
func (d Date) DaysSince(o Date) int {
	return int(d - o)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(data))
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TodayAndYesterday returns the calendar day of now and the day before it.
func TodayAndYesterday(now time.Time) (Date, Date) {
	today := DateOf(now)
	return today, today.AddDays(-1)
}
