package grievance

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a grievance has no events.
var ErrNotFound = errors.New("grievance not found")

// ErrLockTimeout is returned when a command could not acquire the
// per-grievance lock in time. The command was not applied; retry is safe.
var ErrLockTimeout = errors.New("timed out waiting for grievance lock")

// ConflictKind says which concurrency or ordering check rejected a command.
type ConflictKind string

const (
	// ConflictVersion: the caller's expected version is stale.
	ConflictVersion ConflictKind = "version_mismatch"

	// ConflictStatus: the caller's declared from-status is not the current status.
	ConflictStatus ConflictKind = "status_mismatch"

	// ConflictTransition: the event is not legal from the current status.
	ConflictTransition ConflictKind = "illegal_transition"
)

// ConflictError reports that a command lost a race or is out of order.
// Callers should re-read the grievance before retrying.
type ConflictError struct {
	GrievanceID     string
	Kind            ConflictKind
	EventType       EventType
	ExpectedVersion int64
	ActualVersion   int64
	ExpectedStatus  Status
	ActualStatus    Status
}

func (e *ConflictError) Error() string {
	switch e.Kind {
	case ConflictVersion:
		return fmt.Sprintf("grievance %s: version conflict (expected %d, current %d)", e.GrievanceID, e.ExpectedVersion, e.ActualVersion)
	case ConflictStatus:
		return fmt.Sprintf("grievance %s: status conflict (expected %s, current %s)", e.GrievanceID, e.ExpectedStatus, e.ActualStatus)
	default:
		return fmt.Sprintf("grievance %s: %s is not allowed from status %s", e.GrievanceID, e.EventType, displayStatus(e.ActualStatus))
	}
}

func displayStatus(s Status) string {
	if s == StatusNone {
		return "none"
	}
	return string(s)
}

// Policy rule names carried by PolicyViolation.
const (
	RuleReopenNotClosed     = "reopen_not_closed"
	RuleReopenLimit         = "reopen_limit"
	RuleReopenWindow        = "reopen_window"
	RuleReopenReason        = "reopen_reason"
	RuleUnknownEventType    = "unknown_event_type"
	RuleUnknownCategory     = "unknown_category"
	RuleUnknownDepartment   = "unknown_department"
	RuleDepartmentFixed     = "department_fixed"
	RuleMissingField        = "missing_field"
	RuleInvalidStatusTarget = "invalid_status_target"
)

// PolicyViolation reports that a named business precondition failed.
// Message is meant to be shown to the end user as-is.
type PolicyViolation struct {
	Rule    string
	Message string
}

func (e *PolicyViolation) Error() string {
	return e.Message
}

// NewPolicyViolation builds a PolicyViolation for rule.
func NewPolicyViolation(rule, message string) *PolicyViolation {
	return &PolicyViolation{Rule: rule, Message: message}
}

// UnauthorizedError reports that the actor's role may not submit the event.
type UnauthorizedError struct {
	ActorID   string
	Role      Role
	EventType EventType
	Reason    string
}

func (e *UnauthorizedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s (%s) may not submit %s: %s", e.ActorID, e.Role, e.EventType, e.Reason)
	}
	return fmt.Sprintf("%s (%s) may not submit %s", e.ActorID, e.Role, e.EventType)
}

// StoreUnavailableError wraps a transient infrastructure failure.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("event store unavailable (%s): %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// IsPolicyViolation reports whether err is (or wraps) a PolicyViolation.
func IsPolicyViolation(err error) bool {
	var p *PolicyViolation
	return errors.As(err, &p)
}

// IsUnauthorized reports whether err is (or wraps) an UnauthorizedError.
func IsUnauthorized(err error) bool {
	var u *UnauthorizedError
	return errors.As(err, &u)
}

// IsStoreUnavailable reports whether err is (or wraps) a StoreUnavailableError.
func IsStoreUnavailable(err error) bool {
	var s *StoreUnavailableError
	return errors.As(err, &s)
}

// ErrorKind classifies err for metrics and transport mapping.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case IsConflict(err):
		return "conflict"
	case IsPolicyViolation(err):
		return "policy_violation"
	case IsUnauthorized(err):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrLockTimeout):
		return "lock_timeout"
	case IsStoreUnavailable(err):
		return "store_unavailable"
	default:
		return "error"
	}
}
