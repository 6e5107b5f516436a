package report

import (
	"time"

	"github.com/zambezimeats/backend/internal/domain/shared"
)

// GroupBy is the bucket size of a sales report.
type GroupBy string

const (
	GroupByDay   GroupBy = "day"
	GroupByWeek  GroupBy = "week"
	GroupByMonth GroupBy = "month"
)

// ParseGroupBy defaults to day.
func ParseGroupBy(s string) (GroupBy, error) {
	switch GroupBy(s) {
	case "":
		return GroupByDay, nil
	case GroupByDay, GroupByWeek, GroupByMonth:
		return GroupBy(s), nil
	}
	return "", shared.NewDomainError("INVALID_GROUP_BY", "group_by must be one of day, week, month")
}

// PeriodStart truncates t to the start of its bucket. Weeks start on Monday.
func (g GroupBy) PeriodStart(t time.Time) time.Time {
	day := startOfDay(t)
	switch g {
	case GroupByWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case GroupByMonth:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	}
	return day
}

// Label formats a bucket start for display.
func (g GroupBy) Label(start time.Time) string {
	if g == GroupByMonth {
		return start.Format("2006-01")
	}
	return start.Format(dateLayout)
}

func (g GroupBy) next(start time.Time) time.Time {
	switch g {
	case GroupByWeek:
		return start.AddDate(0, 0, 7)
	case GroupByMonth:
		return start.AddDate(0, 1, 0)
	}
	return start.AddDate(0, 0, 1)
}

// Periods lists every bucket start touching the range, in order.
func (g GroupBy) Periods(r DateRange) []time.Time {
	var out []time.Time
	for p := g.PeriodStart(r.From); !p.After(r.To); p = g.next(p) {
		out = append(out, p)
	}
	return out
}
