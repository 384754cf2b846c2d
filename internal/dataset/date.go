package dataset

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical text form of a [Date].
const DateLayout = "2006-01-02"

var errInvalidDate = errors.New("invalid date")

// Date is a calendar date with day precision. The zero value is not a valid
// date; use [NewDate] or [ParseDate].
//
// Dates are comparable with ==.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the date for year, month and day. Out-of-range values are
// normalized the same way [time.Date] normalizes them.
func NewDate(year int, month time.Month, day int) Date {
	return dateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// ParseDate parses "yyyy-MM-dd". RFC 3339 timestamps are accepted as well and
// truncated to their date part in the timestamp's own offset.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)

	t, err := time.Parse(DateLayout, s)
	if err == nil {
		return dateOf(t), nil
	}

	t, rfcErr := time.Parse(time.RFC3339Nano, s)
	if rfcErr == nil {
		return dateOf(t), nil
	}

	return Date{}, fmt.Errorf("%w: %q", errInvalidDate, s)
}

// MustParseDate is like [ParseDate] but panics on error. For literals only.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}

	return d
}

func dateOf(t time.Time) Date {
	y, m, d := t.Date()

	return Date{Year: y, Month: m, Day: d}
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// String formats d as "yyyy-MM-dd".
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or
// after other.
func (d Date) Compare(other Date) int {
	return d.Time().Compare(other.Time())
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

// AddMonths adds n calendar months. When the day does not exist in the target
// month the result is the last day of that month, so 2027-01-31 + 1 month is
// 2027-02-28.
func (d Date) AddMonths(n int) Date {
	// First day of the target month never overflows.
	first := time.Date(d.Year, d.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()

	day := min(d.Day, last)

	return Date{Year: first.Year(), Month: first.Month(), Day: day}
}

// MarshalText implements [encoding.TextMarshaler].
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}
