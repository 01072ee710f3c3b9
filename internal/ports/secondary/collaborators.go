package secondary

import (
	"context"
	"time"

	"github.com/example/grievd/internal/core/grievance"
)

// Notification is one message emitted for an accepted event.
type Notification struct {
	ID          string            `json:"id"`
	GrievanceID string            `json:"grievanceId"`
	EventType   string            `json:"eventType"`
	Recipient   string            `json:"recipient"`
	Payload     map[string]string `json:"payload"`
	OccurredAt  time.Time         `json:"occurredAt"`
}

// Notifier delivers notifications. Delivery is best-effort: a failure is
// reported to the caller but never undoes the event it describes.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// RoutingTable resolves categories to departments and departments to SLA windows.
type RoutingTable interface {
	// DepartmentFor returns the department handling a category.
	DepartmentFor(category string) (string, bool)

	// SLAWindowDays returns the SLA window configured for a department.
	SLAWindowDays(departmentID string) (int, bool)
}

// Authenticator turns a bearer credential into an actor.
// The engine never issues credentials itself.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (grievance.Actor, error)
}

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// DepartmentDirectory describes the configured departments.
type DepartmentDirectory interface {
	// Departments returns every configured department id.
	Departments() []string

	// DepartmentName returns the display name of a department.
	DepartmentName(departmentID string) (string, bool)
}
