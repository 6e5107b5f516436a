package report

import (
	"time"

	"github.com/zambezimeats/backend/internal/domain/shared"
)

const (
	// DefaultRangeDays is used when no range is given.
	DefaultRangeDays = 30
	// MaxRangeDays bounds a single report request.
	MaxRangeDays = 366

	dateLayout = "2006-01-02"
)

// ErrInvalidDateRange is returned for unparsable, inverted or oversize ranges.
var ErrInvalidDateRange = shared.NewDomainError("INVALID_DATE_RANGE", "Invalid date range")

// DateRange is an inclusive range of whole store-local days.
type DateRange struct {
	From time.Time // first day, 00:00 local
	To   time.Time // last day, 00:00 local
}

// ParseDateRange reads YYYY-MM-DD bounds in loc. Missing bounds default to
// the DefaultRangeDays days ending today, or to a range around the given bound.
func ParseDateRange(from, to string, loc *time.Location, now time.Time) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	today := startOfDay(now.In(loc))

	var r DateRange
	var err error
	switch {
	case to == "":
		r.To = today
	default:
		if r.To, err = time.ParseInLocation(dateLayout, to, loc); err != nil {
			return DateRange{}, shared.NewDomainError(ErrInvalidDateRange.Code, "to must be a date in YYYY-MM-DD format")
		}
	}
	switch {
	case from == "":
		r.From = r.To.AddDate(0, 0, -(DefaultRangeDays - 1))
	default:
		if r.From, err = time.ParseInLocation(dateLayout, from, loc); err != nil {
			return DateRange{}, shared.NewDomainError(ErrInvalidDateRange.Code, "from must be a date in YYYY-MM-DD format")
		}
	}

	if r.From.After(r.To) {
		return DateRange{}, shared.NewDomainError(ErrInvalidDateRange.Code, "from must not be after to")
	}
	if r.Days() > MaxRangeDays {
		return DateRange{}, shared.NewDomainError(ErrInvalidDateRange.Code, "Date range cannot exceed 366 days")
	}
	return r, nil
}

// LastDays returns the n days ending on the day containing now.
func LastDays(n int, loc *time.Location, now time.Time) DateRange {
	today := startOfDay(now.In(loc))
	return DateRange{From: today.AddDate(0, 0, -(n - 1)), To: today}
}

// Days counts the days covered, both ends included.
func (r DateRange) Days() int {
	n := int((civilDay(r.To)-civilDay(r.From))/secondsPerDay) + 1
	return max(n, 0)
}

// Start is the first instant of the range.
func (r DateRange) Start() time.Time {
	return r.From
}

// End is the first instant after the range.
func (r DateRange) End() time.Time {
	return r.To.AddDate(0, 0, 1)
}

// Contains reports whether t falls on a day of the range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start()) && t.Before(r.End())
}

// String formats the range as "from to to".
func (r DateRange) String() string {
	return r.From.Format(dateLayout) + " to " + r.To.Format(dateLayout)
}

const secondsPerDay = 24 * 60 * 60

// civilDay is the calendar date of t as UTC midnight in Unix seconds, so
// daylight saving shifts do not change day arithmetic.
func civilDay(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix()
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
