// Package schedule groups a flat class list into days and navigates between them.
package schedule

import (
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/itsHabib/rsvpboard/internal/gym"
)

// Day is the classes of one calendar date ordered by hour.
type Day struct {
	Date    string
	Classes []gym.Class
}

// GroupByDay partitions classes by date. Days are ordered by date and each
// day's classes by hour, both compared lexically. The input is not modified.
func GroupByDay(classes []gym.Class) []Day {
	grouped := lo.GroupBy(classes, func(c gym.Class) string {
		return c.Date
	})

	dates := lo.Keys(grouped)
	slices.Sort(dates)

	days := make([]Day, 0, len(dates))
	for _, date := range dates {
		dayClasses := grouped[date]
		slices.SortStableFunc(dayClasses, func(a, b gym.Class) int {
			return strings.Compare(a.Hour, b.Hour)
		})
		days = append(days, Day{Date: date, Classes: dayClasses})
	}

	return days
}

// Dates returns the date of every day in order.
func Dates(days []Day) []string {
	return lo.Map(days, func(d Day, _ int) string {
		return d.Date
	})
}

// ClassesFor returns the classes of date, or nil when no day matches.
func ClassesFor(days []Day, date string) []gym.Class {
	day, ok := lo.Find(days, func(d Day) bool {
		return d.Date == date
	})
	if !ok {
		return nil
	}
	return day.Classes
}

// Flatten is the inverse of GroupByDay.
func Flatten(days []Day) []gym.Class {
	return lo.FlatMap(days, func(d Day, _ int) []gym.Class {
		return d.Classes
	})
}
