package transition

import (
	"fmt"
	"slices"

	"github.com/example/grievd/internal/core/grievance"
)

// RoleContext is the input to the role guard.
type RoleContext struct {
	Actor     grievance.Actor
	EventType grievance.EventType
}

// CanSubmit evaluates whether the actor's role may submit the event type.
// Unknown event types are a policy violation, not an authorization failure.
func CanSubmit(ctx RoleContext) grievance.GuardResult {
	if !ctx.EventType.Known() {
		return grievance.Deny(grievance.NewPolicyViolation(
			grievance.RuleUnknownEventType,
			fmt.Sprintf("unknown event type %q", ctx.EventType),
		))
	}
	if !Permitted(ctx.Actor.Role, ctx.EventType) {
		return grievance.Deny(&grievance.UnauthorizedError{
			ActorID:   ctx.Actor.ID,
			Role:      ctx.Actor.Role,
			EventType: ctx.EventType,
		})
	}
	return grievance.Allow()
}

// Request is everything the validator needs to judge one command.
type Request struct {
	GrievanceID string

	// Current is the projector's status for the grievance (StatusNone if it has no events).
	Current grievance.Status

	// ExpectedFrom is the status the caller believes the grievance is in.
	// Empty means the caller did not declare one.
	ExpectedFrom grievance.Status
	EventType    grievance.EventType
	Actor        grievance.Actor
	Payload      map[string]string
}

// Validate checks a command against the state machine and returns the
// status the grievance moves to. Checks run in a fixed order: event type,
// role, declared from-status, transition table, status-update target.
func Validate(req Request) (grievance.Status, error) {
	if err := CanSubmit(RoleContext{Actor: req.Actor, EventType: req.EventType}).Error(); err != nil {
		return grievance.StatusNone, err
	}

	if req.ExpectedFrom != grievance.StatusNone && req.ExpectedFrom != req.Current {
		return grievance.StatusNone, &grievance.ConflictError{
			GrievanceID:    req.GrievanceID,
			Kind:           grievance.ConflictStatus,
			EventType:      req.EventType,
			ExpectedStatus: req.ExpectedFrom,
			ActualStatus:   req.Current,
		}
	}

	if !Allowed(req.Current, req.EventType) {
		return grievance.StatusNone, &grievance.ConflictError{
			GrievanceID:  req.GrievanceID,
			Kind:         grievance.ConflictTransition,
			EventType:    req.EventType,
			ActualStatus: req.Current,
		}
	}

	if req.EventType == grievance.EventStatusUpdated {
		if requested := req.Payload[grievance.KeyStatus]; requested != "" &&
			!slices.Contains(grievance.StatusUpdateTargets, grievance.Status(requested)) {
			return grievance.StatusNone, grievance.NewPolicyViolation(
				grievance.RuleInvalidStatusTarget,
				"invalid status update target",
			)
		}
	}

	return Target(req.Current, req.EventType, req.Payload), nil
}
