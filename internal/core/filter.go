package core

import (
	"fmt"
	"strings"
	"time"
)

// TimeFilter selects the active window for every derived view. Exactly one
// filter is active at a time.
type TimeFilter string

const (
	FilterAll   TimeFilter = "All"
	FilterDay   TimeFilter = "Day"
	FilterWeek  TimeFilter = "Week"
	FilterMonth TimeFilter = "Month"
	FilterYear  TimeFilter = "Year"
)

// ParseTimeFilter maps a request value onto a TimeFilter, case-insensitively.
// An empty value defaults to All.
func ParseTimeFilter(s string) (TimeFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "day":
		return FilterDay, nil
	case "week":
		return FilterWeek, nil
	case "month":
		return FilterMonth, nil
	case "year":
		return FilterYear, nil
	default:
		return "", fmt.Errorf("unknown time filter %q", s)
	}
}

// ActiveTransactions derives the active subset of the ledger: text match
// first, then the time window. The result preserves input order and the
// function is idempotent. referenceNow is injected by the caller so the
// pipeline stays deterministic; only its calendar date is used.
func ActiveTransactions(txns []Transaction, searchTerm string, filter TimeFilter, referenceNow time.Time) []Transaction {
	term := strings.ToLower(strings.TrimSpace(searchTerm))
	today := DateOf(referenceNow)

	active := make([]Transaction, 0, len(txns))
	for _, t := range txns {
		if !matchesSearch(t, term) {
			continue
		}
		if !inWindow(t.Date, filter, today) {
			continue
		}
		active = append(active, t)
	}
	return active
}

// matchesSearch reports whether a transaction passes the text filter: an
// empty term matches everything, otherwise the term must appear as a
// case-insensitive substring of the description or the category.
func matchesSearch(t Transaction, lowerTerm string) bool {
	if lowerTerm == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Description), lowerTerm) ||
		strings.Contains(strings.ToLower(t.Category), lowerTerm)
}

func inWindow(d Date, filter TimeFilter, today Date) bool {
	switch filter {
	case FilterDay:
		return d.Equal(today)
	case FilterWeek:
		// [today-7d, today], inclusive on both ends, compared at
		// calendar-date granularity.
		weekAgo := DateOf(today.AddDate(0, 0, -7))
		return !d.Before(weekAgo.Time) && !d.After(today.Time)
	case FilterMonth:
		return d.Month() == today.Month() && d.Year() == today.Year()
	case FilterYear:
		return d.Year() == today.Year()
	default:
		return true
	}
}
