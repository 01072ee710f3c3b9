package grievance

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "accepted"},
		{"conflict", &ConflictError{Kind: ConflictVersion}, "conflict"},
		{"wrapped conflict", fmt.Errorf("submit: %w", &ConflictError{Kind: ConflictTransition}), "conflict"},
		{"policy", NewPolicyViolation(RuleReopenLimit, "reopen limit reached"), "policy_violation"},
		{"unauthorized", &UnauthorizedError{Role: RoleCitizen, EventType: EventClosed}, "unauthorized"},
		{"not found", fmt.Errorf("load: %w", ErrNotFound), "not_found"},
		{"lock timeout", ErrLockTimeout, "lock_timeout"},
		{"store", &StoreUnavailableError{Op: "append", Err: errors.New("disk I/O error")}, "store_unavailable"},
		{"other", errors.New("boom"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorKind(tt.err); got != tt.want {
				t.Errorf("ErrorKind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConflictError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *ConflictError
		want string
	}{
		{
			name: "version",
			err:  &ConflictError{GrievanceID: "G", Kind: ConflictVersion, ExpectedVersion: 3, ActualVersion: 4},
			want: "grievance G: version conflict (expected 3, current 4)",
		},
		{
			name: "status",
			err:  &ConflictError{GrievanceID: "G", Kind: ConflictStatus, ExpectedStatus: StatusInProgress, ActualStatus: StatusEscalated},
			want: "grievance G: status conflict (expected in_progress, current escalated)",
		},
		{
			name: "transition from nothing",
			err:  &ConflictError{GrievanceID: "G", Kind: ConflictTransition, EventType: EventClosed},
			want: "grievance G: CLOSED is not allowed from status none",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGuardResult_Error(t *testing.T) {
	if err := Allow().Error(); err != nil {
		t.Errorf("Allow().Error() = %v, want nil", err)
	}
	pv := NewPolicyViolation(RuleReopenWindow, "reopen window expired")
	err := Deny(pv).Error()
	if !IsPolicyViolation(err) {
		t.Errorf("Deny(policy).Error() = %v, want PolicyViolation", err)
	}
	if got := Deny(pv).Reason; got != "reopen window expired" {
		t.Errorf("Reason = %q, want %q", got, "reopen window expired")
	}
}
