package membership

import "time"

// FiscalCalendar computes fiscal years that end on the last day of EndMonth.
// A date in or before EndMonth belongs to the fiscal year named after its
// calendar year; a later date belongs to the next one. With the default
// January end, January 2025 is FY2025 and February 2025 is FY2026.
type FiscalCalendar struct {
	EndMonth time.Month
	Location *time.Location
}

// NewFiscalCalendar creates a calendar; endMonth outside 1..12 means January
func NewFiscalCalendar(endMonth int, loc *time.Location) FiscalCalendar {
	if endMonth < 1 || endMonth > 12 {
		endMonth = int(time.January)
	}
	if loc == nil {
		loc = time.UTC
	}
	return FiscalCalendar{EndMonth: time.Month(endMonth), Location: loc}
}

// FiscalYear returns the fiscal year containing t
func (c FiscalCalendar) FiscalYear(t time.Time) int {
	t = t.In(c.Location)
	if t.Month() <= c.EndMonth {
		return t.Year()
	}
	return t.Year() + 1
}

// StartOfFiscalYear returns the first instant of fiscal year fy
func (c FiscalCalendar) StartOfFiscalYear(fy int) time.Time {
	return time.Date(fy-1, c.EndMonth+1, 1, 0, 0, 0, 0, c.Location)
}

// EndOfFiscalYear returns the last instant of fiscal year fy
func (c FiscalCalendar) EndOfFiscalYear(fy int) time.Time {
	return time.Date(fy, c.EndMonth+1, 1, 0, 0, 0, 0, c.Location).Add(-time.Nanosecond)
}

// EndOfCurrentFiscalYear returns the last instant of the fiscal year containing now
func (c FiscalCalendar) EndOfCurrentFiscalYear(now time.Time) time.Time {
	return c.EndOfFiscalYear(c.FiscalYear(now))
}

// LicenseExpiration returns the expiry for a membership license paid
// through fiscal year paidThrough, as seen at now. It is never earlier than
// the end of the current fiscal year.
func (c FiscalCalendar) LicenseExpiration(now time.Time, paidThrough int) time.Time {
	fy := c.FiscalYear(now)
	if paidThrough > fy {
		fy = paidThrough
	}
	return c.EndOfFiscalYear(fy)
}
