package core

import (
	"fmt"
	"time"
)

// Date is a calendar day, normalized to midnight UTC so values built
// from the same year/month/day always compare equal.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date in 2006-01-02 form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t.UTC()}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Month identifies a calendar year + month.
type Month struct {
	Year  int
	Month int // 1-12
}

// ParseMonth parses a month in 2006-01 form.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, ErrInvalidMonth
	}
	return Month{Year: t.Year(), Month: int(t.Month())}, nil
}

// MonthOf returns the month a date belongs to.
func MonthOf(d Date) Month {
	return Month{Year: d.Year(), Month: int(d.Time.Month())}
}

func (m Month) Validate() error {
	if m.Month < 1 || m.Month > 12 || m.Year < 1 {
		return ErrInvalidMonth
	}
	return nil
}

// Days returns the number of calendar days in the month.
func (m Month) Days() int {
	return time.Date(m.Year, time.Month(m.Month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Start returns the first day of the month.
func (m Month) Start() Date {
	return NewDate(m.Year, m.Month, 1)
}

// End returns the last day of the month.
func (m Month) End() Date {
	return NewDate(m.Year, m.Month, m.Days())
}

// Day returns the n-th day of the month, 1-based.
func (m Month) Day(n int) Date {
	return NewDate(m.Year, m.Month, n)
}

// Prev returns the preceding month.
func (m Month) Prev() Month {
	if m.Month == 1 {
		return Month{Year: m.Year - 1, Month: 12}
	}
	return Month{Year: m.Year, Month: m.Month - 1}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Month)
}
