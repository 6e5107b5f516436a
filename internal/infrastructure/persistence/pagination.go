package persistence

import (
	"strings"
	"time"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// normalizePage clamps paging input to page >= 1 and 1..maxPageSize rows.
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// likePattern lower-cases s and wraps it for a contains match.
func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

// utcValue normalizes time filter values; timestamps are stored in UTC.
func utcValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case *time.Time:
		if t != nil {
			return t.UTC()
		}
	}
	return v
}
