// Package window splits a requested time span into per-month units of work. Both
// planners clip to "today" so no unit ever asks an upstream about the future.
package window

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// DateWindow is an inclusive [Start, End] range of calendar days inside one month.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

func (w DateWindow) String() string {
	return fmt.Sprintf("%s..%s", w.Start.Format(dateLayout), w.End.Format(dateLayout))
}

// StartDate and EndDate give the ISO dates upstream query params expect.
func (w DateWindow) StartDate() string {
	return w.Start.Format(dateLayout)
}

func (w DateWindow) EndDate() string {
	return w.End.Format(dateLayout)
}

// YearMonth is a calendar month.
type YearMonth struct {
	Year  int
	Month int
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

func (ym YearMonth) before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

func (ym YearMonth) next() YearMonth {
	if ym.Month == 12 {
		return YearMonth{Year: ym.Year + 1, Month: 1}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Dates returns one window per calendar month from start's month through the month of
// min(end, today). The first window always begins on the 1st of start's month even when
// start is later in the month, the last window ends at min(end, today).
func Dates(start, end, today time.Time) []DateWindow {
	cutoff := day(end)
	if t := day(today); t.Before(cutoff) {
		cutoff = t
	}

	loc := start.Location()
	current := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, loc)

	windows := []DateWindow{}
	for !current.After(cutoff) {
		// day 0 of the next month is the last day of this one
		last := time.Date(current.Year(), current.Month()+1, 0, 0, 0, 0, 0, loc)
		if last.After(cutoff) {
			last = cutoff
		}
		windows = append(windows, DateWindow{Start: current, End: last})
		current = time.Date(current.Year(), current.Month()+1, 1, 0, 0, 0, 0, loc)
	}
	return windows
}

// Months returns every month from January of startYear through December of endYear,
// clipped to today's month.
func Months(startYear, endYear int, today time.Time) []YearMonth {
	cutoff := YearMonth{Year: endYear, Month: 12}
	if now := (YearMonth{Year: today.Year(), Month: int(today.Month())}); now.before(cutoff) {
		cutoff = now
	}

	months := []YearMonth{}
	for current := (YearMonth{Year: startYear, Month: 1}); !cutoff.before(current); current = current.next() {
		months = append(months, current)
	}
	return months
}

// Years returns startYear..endYear clipped to today's year.
func Years(startYear, endYear int, today time.Time) []int {
	if endYear > today.Year() {
		endYear = today.Year()
	}
	years := []int{}
	for y := startYear; y <= endYear; y++ {
		years = append(years, y)
	}
	return years
}
