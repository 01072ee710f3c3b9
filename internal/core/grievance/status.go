// Package grievance contains the pure business logic for the grievance lifecycle.
// This is part of the Functional Core - no I/O, only pure functions.
package grievance

// Status represents the lifecycle status of a grievance.
type Status string

const (
	StatusNone         Status = ""
	StatusSubmitted    Status = "submitted"
	StatusRouted       Status = "routed"
	StatusAssigned     Status = "assigned"
	StatusAcknowledged Status = "acknowledged"
	StatusInProgress   Status = "in_progress"
	StatusEscalated    Status = "escalated"
	StatusClosed       Status = "closed"
	StatusReopened     Status = "reopened"
)

// AllStatuses lists every status a grievance can hold, in lifecycle order.
var AllStatuses = []Status{
	StatusSubmitted,
	StatusRouted,
	StatusAssigned,
	StatusAcknowledged,
	StatusInProgress,
	StatusEscalated,
	StatusClosed,
	StatusReopened,
}

// IsTerminal reports whether no further work is expected in this status.
// Closed is terminal unless reopened.
func (s Status) IsTerminal() bool {
	return s == StatusClosed
}

// IsOpen reports whether the grievance is in an active (non-terminal) status.
func (s Status) IsOpen() bool {
	return s != StatusNone && !s.IsTerminal()
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// EventType names an immutable fact in a grievance's log.
type EventType string

const (
	EventSubmitted      EventType = "SUBMITTED"
	EventRouted         EventType = "ROUTED"
	EventAssigned       EventType = "ASSIGNED"
	EventAcknowledged   EventType = "ACKNOWLEDGED"
	EventStatusUpdated  EventType = "STATUS_UPDATED"
	EventDelayExplained EventType = "DELAY_EXPLAINED"
	EventEscalated      EventType = "ESCALATED"
	EventProofUploaded  EventType = "PROOF_UPLOADED"
	EventClosed         EventType = "CLOSED"
	EventReopened       EventType = "REOPENED"
)

// AllEventTypes lists every event type the engine understands.
var AllEventTypes = []EventType{
	EventSubmitted,
	EventRouted,
	EventAssigned,
	EventAcknowledged,
	EventStatusUpdated,
	EventDelayExplained,
	EventEscalated,
	EventProofUploaded,
	EventClosed,
	EventReopened,
}

// Known reports whether t is an event type the engine understands.
func (t EventType) Known() bool {
	for _, known := range AllEventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Role is the capability class of an actor, as claimed by the auth collaborator.
type Role string

const (
	RoleCitizen Role = "citizen"
	RoleOfficer Role = "officer"
	RoleSystem  Role = "system"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleCitizen || r == RoleOfficer || r == RoleSystem
}

// SystemActorID is the actor id used for monitor-originated events.
const SystemActorID = "system"

// Actor identifies who triggered an event.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// SystemActor returns the actor used by background processes.
func SystemActor() Actor {
	return Actor{ID: SystemActorID, Role: RoleSystem}
}
