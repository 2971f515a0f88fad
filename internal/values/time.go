package values

import (
	"fmt"
	"time"
)

// dateLayout is the wire format for calendar dates.
const dateLayout = "2006-01-02"

// UTCTime is a non-zero timestamp normalized to UTC. The wire format is
// RFC 3339, which always carries an explicit offset, so a timestamp without
// timezone information cannot be decoded into this type.
type UTCTime struct {
	t time.Time
}

// NewUTCTime validates a timestamp and normalizes it to UTC. The monotonic
// clock reading is stripped so equal instants compare equal after a
// serialization round trip.
func NewUTCTime(t time.Time) (UTCTime, error) {
	if t.IsZero() {
		return UTCTime{}, fmt.Errorf("values: invalid UtcDatetime: must not be the zero time")
	}
	return UTCTime{t: t.Round(0).UTC()}, nil
}

// ParseUTCTime parses an RFC 3339 timestamp and normalizes it to UTC.
func ParseUTCTime(raw string) (UTCTime, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return UTCTime{}, fmt.Errorf("values: invalid UtcDatetime %q: %w", raw, err)
	}
	return NewUTCTime(t)
}

// MustUTCTime parses an RFC 3339 timestamp for tests and static configuration; it panics on invalid input.
func MustUTCTime(raw string) UTCTime {
	v, err := ParseUTCTime(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func (v UTCTime) Time() time.Time { return v.t }
func (v UTCTime) IsZero() bool    { return v.t.IsZero() }

func (v UTCTime) String() string {
	return v.t.Format(time.RFC3339Nano)
}

func (v UTCTime) Equal(o UTCTime) bool  { return v.t.Equal(o.t) }
func (v UTCTime) Before(o UTCTime) bool { return v.t.Before(o.t) }
func (v UTCTime) After(o UTCTime) bool  { return v.t.After(o.t) }

// Add returns the timestamp shifted by d. The result stays in UTC.
func (v UTCTime) Add(d time.Duration) UTCTime {
	return UTCTime{t: v.t.Add(d)}
}

// Sub returns the duration v minus o.
func (v UTCTime) Sub(o UTCTime) time.Duration { return v.t.Sub(o.t) }

func (v UTCTime) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *UTCTime) UnmarshalText(b []byte) error {
	parsed, err := ParseUTCTime(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Date is a calendar date with no clock component, wire format 2006-01-02.
type Date struct {
	t time.Time
}

// NewDate validates a calendar date. Out-of-range components such as
// February 30th are rejected rather than normalized.
func NewDate(year int, month time.Month, day int) (Date, error) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return Date{}, fmt.Errorf("values: invalid Date %04d-%02d-%02d: no such calendar day", year, month, day)
	}
	return Date{t: t}, nil
}

// ParseDate parses a date in 2006-01-02 form.
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return Date{}, fmt.Errorf("values: invalid Date %q: %w", raw, err)
	}
	return Date{t: t.UTC()}, nil
}

// MustDate parses a date for tests and static configuration; it panics on invalid input.
func MustDate(raw string) Date {
	v, err := ParseDate(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// DateOf truncates a timestamp to its UTC calendar date.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return Date{t: time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)}
}

func (v Date) Year() int         { return v.t.Year() }
func (v Date) Month() time.Month { return v.t.Month() }
func (v Date) Day() int          { return v.t.Day() }

// Time returns the date as a UTC midnight timestamp.
func (v Date) Time() time.Time { return v.t }

func (v Date) IsZero() bool { return v.t.IsZero() }

func (v Date) String() string { return v.t.Format(dateLayout) }

func (v Date) Equal(o Date) bool  { return v.t.Equal(o.t) }
func (v Date) Before(o Date) bool { return v.t.Before(o.t) }
func (v Date) After(o Date) bool  { return v.t.After(o.t) }

// AddMonths returns the date shifted by n calendar months. Month-end days
// clamp the way time.AddDate does (Jan 31 + 1 month = Mar 2/3); swap tenor
// arithmetic that needs strict month ends should not rely on this.
func (v Date) AddMonths(n int) Date {
	return Date{t: v.t.AddDate(0, n, 0)}
}

// AddDays returns the date shifted by n days.
func (v Date) AddDays(n int) Date {
	return Date{t: v.t.AddDate(0, 0, n)}
}

func (v Date) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
