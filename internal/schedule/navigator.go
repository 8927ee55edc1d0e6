package schedule

import (
	"slices"
	"time"
)

const dateLayout = "2006-01-02"

// Navigator tracks the selected date. The selection is not required to be one
// of the available dates; an unknown date simply has no classes.
type Navigator struct {
	selected string
}

func NewNavigator(selected string) *Navigator {
	return &Navigator{selected: selected}
}

// Today returns a navigator positioned on now's calendar date in loc.
func Today(now time.Time, loc *time.Location) *Navigator {
	if loc == nil {
		loc = time.Local
	}
	return NewNavigator(now.In(loc).Format(dateLayout))
}

func (n *Navigator) Selected() string {
	return n.selected
}

func (n *Navigator) Select(date string) {
	n.selected = date
}

// Advance moves to the next available date. It does nothing on the last date.
// An unknown selection moves to the first date.
func (n *Navigator) Advance(dates []string) {
	i := slices.Index(dates, n.selected)
	if i < len(dates)-1 {
		n.selected = dates[i+1]
	}
}

// Retreat moves to the previous available date. It does nothing on the first
// date or when the selection is unknown.
func (n *Navigator) Retreat(dates []string) {
	i := slices.Index(dates, n.selected)
	if i > 0 {
		n.selected = dates[i-1]
	}
}

// ValidDate reports whether date is a YYYY-MM-DD calendar date.
func ValidDate(date string) bool {
	_, err := time.Parse(dateLayout, date)
	return err == nil
}
