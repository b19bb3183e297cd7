package calendar

import (
	"fmt"
	"time"
	_ "time/tzdata" // the civil zone must resolve on hosts without a zoneinfo database
)

// DateLayout is the civil calendar date format used for day buckets.
const DateLayout = "2006-01-02"

// PeriodLayout is the billing period format for monthly dues.
const PeriodLayout = "2006-01"

// DefaultZone is the civil zone of the source deployment.
const DefaultZone = "Asia/Kolkata"

// Clock supplies the current instant and derives civil calendar days in a
// fixed zone, independent of the server's local time zone.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock creates a Clock for loc. A nil now uses time.Now.
// PRE: loc is non-nil
// POST: Returns a clock whose Today/DateString are computed in loc
func NewClock(loc *time.Location, now func() time.Time) Clock {
	if now == nil {
		now = time.Now
	}
	return Clock{loc: loc, now: now}
}

// LoadClock resolves the named zone and returns a real-time Clock.
func LoadClock(zone string) (Clock, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return Clock{}, fmt.Errorf("load time zone %q: %w", zone, err)
	}
	return NewClock(loc, nil), nil
}

// Location returns the civil zone.
func (c Clock) Location() *time.Location {
	return c.loc
}

// Now returns the current instant rendered in the civil zone.
func (c Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Today returns the current civil date as a Date.
func (c Clock) Today() Date {
	return DateOf(c.Now())
}

// DateString returns the civil date of t as YYYY-MM-DD.
func (c Clock) DateString(t time.Time) string {
	return t.In(c.loc).Format(DateLayout)
}

// DayBounds returns the first and last instants of the civil day d.
// POST: start is 00:00:00 and end is 23:59:59.999999999 in the civil zone,
// so an inclusive [start, end] range covers every stored instant of the day
func (c Clock) DayBounds(d Date) (start, end time.Time) {
	start = time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, c.loc)
	end = start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}

// Date is a calendar date without a time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	if !IsDateString(s) {
		return Date{}, fmt.Errorf("date must be YYYY-MM-DD: %q", s)
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return DateOf(t), nil
}

// IsDateString reports whether s has the YYYY-MM-DD shape: ten characters
// with dashes at positions 4 and 7.
func IsDateString(s string) bool {
	return len(s) == 10 && s[4] == '-' && s[7] == '-'
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.MidnightUTC().Format(DateLayout)
}

// Period renders the date's month as YYYY-MM.
func (d Date) Period() string {
	return d.MidnightUTC().Format(PeriodLayout)
}

// MidnightUTC is the persisted form of a civil date: midnight of the same
// calendar day, expressed in UTC.
func (d Date) MidnightUTC() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// NoonUTC is midday UTC of the same calendar day.
func (d Date) NoonUTC() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC)
}

// AddDays returns the date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return DateOf(d.MidnightUTC().AddDate(0, 0, n))
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	return d.MidnightUTC().Before(o.MidnightUTC())
}

// FirstOfMonth returns day 1 of d's month.
func (d Date) FirstOfMonth() Date {
	return Date{Year: d.Year, Month: d.Month, Day: 1}
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}
