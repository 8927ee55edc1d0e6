package gym

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

type Availability int

func (a Availability) String() string {
	switch a {
	case FULL:
		return "full"
	case LOW:
		return "low"
	case OPEN:
		return "open"
	default:
		return "unknown"
	}
}

const (
	FULL Availability = iota
	LOW
	OPEN
)

/*
{
"id": "8c1e6c2a",
"date": "2024-01-02",
"hour": "09:00",
"title": "CrossFit",
"availabilityNumber": "4",
"scheduledTime": "2024-01-02T09:00:00"
}
*/

// Class is one schedulable class occurrence as served by the booking service.
type Class struct {
	ID                 string  `json:"id"`
	Date               string  `json:"date"`
	Hour               string  `json:"hour"`
	Title              string  `json:"title"`
	AvailabilityNumber string  `json:"availabilityNumber"`
	ScheduledTime      *string `json:"scheduledTime,omitempty"`
}

// Schedule returns the confirmed start timestamp, or "" when the class has none.
func (c Class) Schedule() string {
	if c.ScheduledTime == nil {
		return ""
	}
	return *c.ScheduledTime
}

// Bookable reports whether a sign-up can be issued for the class.
func (c Class) Bookable() bool {
	return c.Schedule() != ""
}

// Spots parses the remaining capacity.
func (c Class) Spots() (int, error) {
	n, err := cast.ToIntE(strings.TrimSpace(c.AvailabilityNumber))
	if err != nil {
		return 0, fmt.Errorf("unable to parse availability %q: %w", c.AvailabilityNumber, err)
	}
	return n, nil
}

// Availability buckets the remaining capacity. Unparseable counts are FULL.
func (c Class) Availability() Availability {
	n, err := c.Spots()
	if err != nil || n <= 0 {
		return FULL
	}
	if n <= lowSpots {
		return LOW
	}
	return OPEN
}

// Task is a member's booking record, possibly still pending upstream.
type Task struct {
	ID            string `json:"id"`
	MemberID      string `json:"memberId"`
	ScheduledTime string `json:"scheduledTime"`
	Processed     bool   `json:"processed"`
}

type SignUpRequest struct {
	ID            string `json:"id"`
	MemberID      string `json:"memberId"`
	ScheduledTime string `json:"scheduledTime"`
}

// StatusError is returned when the booking service answers with a non-2xx code.
type StatusError struct {
	Op         string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status code: %d", e.Op, e.StatusCode)
}
