package gym

import (
	"time"
)

const (
	classesPath      = "/api/classes"
	schedulePath     = "/api/schedule"
	pendingTasksPath = "/api/schedule/members/%s/tasks/pending"
	daysQueryName    = "days"

	authorizationHeader = "Authorization"
	contentTypeHeader   = "Content-Type"
	requestIDHeader     = "X-Request-Id"
	jsonContentType     = "application/json"

	// DefaultDays is the forward-looking window the board loads.
	DefaultDays = 14

	// DefaultTimeout bounds a single call to the booking service.
	DefaultTimeout = 10 * time.Second

	// lowSpots is the highest spot count still considered "low".
	lowSpots = 3
)

// Config identifies the booking service and the member acting against it.
type Config struct {
	BaseURL   string
	AuthToken string
	MemberID  string
}
