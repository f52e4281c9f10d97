package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period identifies one monthly archive partition of a list: a
// (year, month) pair. Periods are derived during enumeration and never
// stored.
type Period struct {
	Year  int
	Month time.Month
}

// String renders the period as zero-padded "YYYY-MM".
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Filename returns the local payload filename for this period.
// Zero-padding keeps lexical directory order identical to chronological
// order.
func (p Period) Filename() string {
	return p.String() + ".txt.gz"
}

// RemoteName returns the filename the archive server publishes for this
// period. Pipermail-style servers name monthly chunks with English month
// names, e.g. "2020-January.txt.gz".
func (p Period) RemoteName() string {
	return fmt.Sprintf("%04d-%s.txt.gz", p.Year, p.Month)
}

// Before reports whether p is chronologically earlier than other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

// ParseFilename extracts the period from a local payload filename as
// produced by Filename. It returns ok=false for any other name, letting
// callers skip stray files during directory scans.
func ParseFilename(name string) (Period, bool) {
	base, found := strings.CutSuffix(name, ".txt.gz")
	if !found {
		return Period{}, false
	}
	ys, ms, found := strings.Cut(base, "-")
	if !found {
		return Period{}, false
	}
	year, err := strconv.Atoi(ys)
	if err != nil || year < 1 {
		return Period{}, false
	}
	month, err := strconv.Atoi(ms)
	if err != nil || month < 1 || month > 12 {
		return Period{}, false
	}
	return Period{Year: year, Month: time.Month(month)}, true
}

// Enumerate expands the given years into their monthly periods, years in
// the order supplied, months January through December within each year.
func Enumerate(years []int) []Period {
	periods := make([]Period, 0, len(years)*12)
	for _, year := range years {
		for month := time.January; month <= time.December; month++ {
			periods = append(periods, Period{Year: year, Month: month})
		}
	}
	return periods
}

// Class is the position of a period relative to the current month.
type Class int

const (
	// Past periods are settled; their remote archive can never change
	// again, so they are fetched once and then permanently closed.
	Past Class = iota

	// Current is the month still accumulating messages. It is re-fetched
	// on every run and never closed.
	Current

	// Future periods have nothing to fetch yet and are never closed.
	Future
)

// String returns the class name for logging.
func (c Class) String() string {
	switch c {
	case Past:
		return "past"
	case Current:
		return "current"
	case Future:
		return "future"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// Classify places p relative to now's calendar (year, month). The caller
// chooses the timezone policy by the location of now; this tool passes
// UTC throughout so a run near midnight behaves the same everywhere.
func Classify(p Period, now time.Time) Class {
	year, month := now.Year(), now.Month()
	switch {
	case p.Year > year || (p.Year == year && p.Month > month):
		return Future
	case p.Year == year && p.Month == month:
		return Current
	default:
		return Past
	}
}
