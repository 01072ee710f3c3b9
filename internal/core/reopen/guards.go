// Package reopen contains the pure rules for reopening a closed grievance.
// This is part of the Functional Core - no I/O, only pure functions.
package reopen

import (
	"strings"
	"time"

	"github.com/example/grievd/internal/core/grievance"
)

const (
	// Window is how long after closure a citizen may reopen.
	Window = 7 * 24 * time.Hour

	// MaxReopens is the lifetime cap on reopenings per grievance.
	MaxReopens = 2
)

// Context provides everything needed to evaluate a reopen request.
type Context struct {
	GrievanceID string
	Status      grievance.Status
	ClosedAt    *time.Time
	ReopenCount int
	Reason      string
	Now         time.Time
}

// ContextFromView builds a reopen context from the grievance's current view.
func ContextFromView(v grievance.View, reason string, now time.Time) Context {
	return Context{
		GrievanceID: v.ID,
		Status:      v.Status,
		ClosedAt:    v.ClosedAt,
		ReopenCount: v.ReopenCount,
		Reason:      reason,
		Now:         now,
	}
}

// CanReopen evaluates whether a closed grievance may be reopened.
// Rules, checked in order:
//   - the grievance must be closed
//   - fewer than MaxReopens reopenings so far (regardless of the window)
//   - closed less than Window ago
//   - a non-blank reason is given
func CanReopen(ctx Context) grievance.GuardResult {
	if ctx.Status != grievance.StatusClosed {
		return grievance.Deny(grievance.NewPolicyViolation(
			grievance.RuleReopenNotClosed,
			"only closed grievances can be reopened",
		))
	}

	if ctx.ReopenCount >= MaxReopens {
		return grievance.Deny(grievance.NewPolicyViolation(
			grievance.RuleReopenLimit,
			"reopen limit reached",
		))
	}

	if ctx.ClosedAt == nil || ctx.Now.Sub(*ctx.ClosedAt) >= Window {
		return grievance.Deny(grievance.NewPolicyViolation(
			grievance.RuleReopenWindow,
			"reopen window expired",
		))
	}

	if strings.TrimSpace(ctx.Reason) == "" {
		return grievance.Deny(grievance.NewPolicyViolation(
			grievance.RuleReopenReason,
			"reopen reason required",
		))
	}

	return grievance.Allow()
}
