package schedule

import (
	"strings"

	"github.com/samber/lo"

	"github.com/itsHabib/rsvpboard/internal/gym"
)

// Request describes a class to sign up for, either by ID or by title, date
// and hour.
type Request struct {
	ID        string `json:"id,omitempty"`
	ClassName string `json:"className,omitempty"`
	Date      string `json:"date,omitempty"`
	Hour      string `json:"hour,omitempty"`
}

func (r Request) String() string {
	if r.ID != "" {
		return r.ID
	}
	return strings.TrimSpace(r.ClassName + " " + r.Date + " " + r.Hour)
}

// Matches reports whether c is the class r asks for. Titles match on
// substring since the booking service appends the coach to the title.
func (r Request) Matches(c gym.Class) bool {
	if r.ID != "" {
		return c.ID == r.ID
	}
	if r.ClassName == "" || !strings.Contains(c.Title, r.ClassName) {
		return false
	}
	if r.Date != "" && c.Date != r.Date {
		return false
	}
	if r.Hour != "" && c.Hour != r.Hour {
		return false
	}
	return true
}

// Match returns the classes r asks for in day and hour order.
func Match(days []Day, r Request) []gym.Class {
	return lo.Filter(Flatten(days), func(c gym.Class, _ int) bool {
		return r.Matches(c)
	})
}
