// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which callers drive the grievance engine.
package primary

import (
	"context"

	"github.com/example/grievd/internal/core/grievance"
)

// CommandGateway is the single write path: every state change of a
// grievance enters here as a command.
type CommandGateway interface {
	// Submit validates cmd against the grievance's current state and, if
	// accepted, appends the resulting event.
	Submit(ctx context.Context, cmd Command) (*CommandResult, error)
}

// Command is a request to record one event against a grievance.
type Command struct {
	// GrievanceID may be empty for SUBMITTED; the gateway then assigns one.
	GrievanceID string `json:"grievanceId,omitempty"`

	EventType grievance.EventType `json:"eventType"`
	Actor     grievance.Actor     `json:"-"`
	Payload   map[string]string   `json:"payload,omitempty"`

	// ExpectedVersion, when set, must equal the grievance's current version.
	ExpectedVersion *int64 `json:"expectedVersion,omitempty"`

	// ExpectedStatus, when set, must equal the grievance's current status.
	ExpectedStatus grievance.Status `json:"expectedStatus,omitempty"`
}

// CommandResult is the accepted event and the view after applying it.
type CommandResult struct {
	Event grievance.Event `json:"acceptedEvent"`
	View  grievance.View  `json:"view"`
}

// Version returns a pointer to v, for filling Command.ExpectedVersion.
func Version(v int64) *int64 {
	return &v
}
