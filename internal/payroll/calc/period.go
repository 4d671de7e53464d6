package calc

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// DefaultMaxPeriodDays is the longest period accepted when none is configured.
// A period is materialized day by day for every employee, so its length bounds
// the work of one generation run.
const DefaultMaxPeriodDays = 31

// Period is an inclusive range of calendar dates.
type Period struct {
	Start time.Time
	End   time.Time
}

func NewPeriod(start, end time.Time) (Period, error) {
	p := Period{Start: DateOf(start), End: DateOf(end)}
	return p, p.Validate()
}

// ParsePeriod parses two YYYY-MM-DD dates.
func ParsePeriod(start, end string) (Period, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return Period{}, fmt.Errorf("%w: start %q", ErrInvalidPeriod, start)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return Period{}, fmt.Errorf("%w: end %q", ErrInvalidPeriod, end)
	}
	return NewPeriod(s, e)
}

func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() || DateOf(p.End).Before(DateOf(p.Start)) {
		return ErrInvalidPeriod
	}
	return nil
}

// Length is the number of dates in p, counting both ends.
func (p Period) Length() int {
	start, end := DateOf(p.Start), DateOf(p.End)
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

// Days lists every date from Start to End inclusive.
func (p Period) Days() []time.Time {
	start, end := DateOf(p.Start), DateOf(p.End)
	if end.Before(start) {
		return nil
	}
	days := make([]time.Time, 0, p.Length())
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func (p Period) Contains(t time.Time) bool {
	d := DateOf(t)
	return !d.Before(DateOf(p.Start)) && !d.After(DateOf(p.End))
}

// Overlaps reports whether p and other share at least one date.
func (p Period) Overlaps(other Period) bool {
	return !DateOf(p.End).Before(DateOf(other.Start)) && !DateOf(other.End).Before(DateOf(p.Start))
}

// DateOf drops the clock of t, keeping its calendar date, in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func DateKey(t time.Time) string {
	return DateOf(t).Format(DateLayout)
}

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// WeekID is the ISO week of t, e.g. "2026-W07".
func WeekID(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// WeekOf returns the Monday to Sunday week containing t.
func WeekOf(t time.Time) Period {
	d := DateOf(t)
	offset := (int(d.Weekday()) + 6) % 7
	start := d.AddDate(0, 0, -offset)
	return Period{Start: start, End: start.AddDate(0, 0, 6)}
}
