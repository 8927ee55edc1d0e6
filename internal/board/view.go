package board

import (
	"slices"

	"github.com/itsHabib/rsvpboard/internal/gym"
	"github.com/itsHabib/rsvpboard/internal/schedule"
)

type State int

func (s State) String() string {
	switch s {
	case LOADING:
		return "loading"
	case FAILED:
		return "failed"
	case READY:
		return "ready"
	default:
		return "unknown"
	}
}

const (
	LOADING State = iota
	FAILED
	READY
)

type ClassView struct {
	gym.Class
	SignedUp bool `json:"signedUp"`
	Pending  bool `json:"pending"`
}

// View is a point-in-time rendering of the board. Everything in it is derived
// from the loaded classes and tasks when View is called.
type View struct {
	State    State       `json:"-"`
	Err      error       `json:"-"`
	Selected string      `json:"selected"`
	Dates    []string    `json:"dates"`
	Classes  []ClassView `json:"classes"`
	Prev     string      `json:"prev,omitempty"`
	Next     string      `json:"next,omitempty"`
}

func (b *Board) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()

	v := View{Selected: b.nav.Selected()}
	switch {
	case b.loading:
		v.State = LOADING
		return v
	case b.err != nil:
		v.State = FAILED
		v.Err = b.err
		return v
	case !b.loaded:
		// nothing requested yet
		v.State = LOADING
		return v
	}
	v.State = READY

	days := schedule.GroupByDay(b.classes)
	v.Dates = schedule.Dates(days)
	for _, c := range schedule.ClassesFor(days, v.Selected) {
		v.Classes = append(v.Classes, ClassView{
			Class:    c,
			SignedUp: IsSignedUp(b.tasks, c.ID),
			Pending:  b.pending[c.ID],
		})
	}

	i := slices.Index(v.Dates, v.Selected)
	if i > 0 {
		v.Prev = v.Dates[i-1]
	}
	if i < len(v.Dates)-1 {
		v.Next = v.Dates[i+1]
	}

	return v
}
