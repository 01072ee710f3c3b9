package reopen

import (
	"errors"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/example/grievd/internal/core/grievance"
)

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func closedAgo(d time.Duration) *time.Time {
	t := now.Add(-d)
	return &t
}

func TestCanReopen(t *testing.T) {
	day := 24 * time.Hour

	tests := []struct {
		name        string
		ctx         Context
		wantAllowed bool
		wantRule    string
		wantMessage string
	}{
		{
			name: "three days after closure with reason",
			ctx: Context{
				Status:   grievance.StatusClosed,
				ClosedAt: closedAgo(3 * day),
				Reason:   "not actually fixed",
				Now:      now,
			},
			wantAllowed: true,
		},
		{
			name: "closed eight days ago",
			ctx: Context{
				Status:   grievance.StatusClosed,
				ClosedAt: closedAgo(8 * day),
				Reason:   "still broken",
				Now:      now,
			},
			wantRule:    grievance.RuleReopenWindow,
			wantMessage: "reopen window expired",
		},
		{
			name: "exactly seven days is outside the window",
			ctx: Context{
				Status:   grievance.StatusClosed,
				ClosedAt: closedAgo(7 * day),
				Reason:   "still broken",
				Now:      now,
			},
			wantRule:    grievance.RuleReopenWindow,
			wantMessage: "reopen window expired",
		},
		{
			name: "third reopen inside window",
			ctx: Context{
				Status:      grievance.StatusClosed,
				ClosedAt:    closedAgo(time.Hour),
				ReopenCount: 2,
				Reason:      "again",
				Now:         now,
			},
			wantRule:    grievance.RuleReopenLimit,
			wantMessage: "reopen limit reached",
		},
		{
			name: "third reopen outside window reports limit",
			ctx: Context{
				Status:      grievance.StatusClosed,
				ClosedAt:    closedAgo(30 * day),
				ReopenCount: 2,
				Reason:      "again",
				Now:         now,
			},
			wantRule:    grievance.RuleReopenLimit,
			wantMessage: "reopen limit reached",
		},
		{
			name: "blank reason",
			ctx: Context{
				Status:   grievance.StatusClosed,
				ClosedAt: closedAgo(day),
				Reason:   "   ",
				Now:      now,
			},
			wantRule:    grievance.RuleReopenReason,
			wantMessage: "reopen reason required",
		},
		{
			name: "not closed",
			ctx: Context{
				Status: grievance.StatusInProgress,
				Reason: "why not",
				Now:    now,
			},
			wantRule:    grievance.RuleReopenNotClosed,
			wantMessage: "only closed grievances can be reopened",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanReopen(tt.ctx)

			if result.Allowed != tt.wantAllowed {
				t.Fatalf("Allowed = %v, want %v (reason: %s)", result.Allowed, tt.wantAllowed, result.Reason)
			}
			if tt.wantAllowed {
				return
			}
			var pv *grievance.PolicyViolation
			if !errors.As(result.Error(), &pv) {
				t.Fatalf("Error() = %v, want PolicyViolation", result.Error())
			}
			if pv.Rule != tt.wantRule {
				t.Errorf("Rule = %q, want %q", pv.Rule, tt.wantRule)
			}
			if pv.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", pv.Message, tt.wantMessage)
			}
		})
	}
}

func TestContextFromView(t *testing.T) {
	closedAt := now.Add(-time.Hour)
	v := grievance.View{ID: "GRV-2026-000001", Status: grievance.StatusClosed, ClosedAt: &closedAt, ReopenCount: 1}

	ctx := ContextFromView(v, "leak is back", now)

	if ctx.GrievanceID != v.ID || ctx.ReopenCount != 1 || ctx.Reason != "leak is back" {
		t.Errorf("ContextFromView() = %+v", ctx)
	}
	if !CanReopen(ctx).Allowed {
		t.Errorf("CanReopen() denied: %s", CanReopen(ctx).Reason)
	}
}

// Whatever the timing, a grievance at the cap can never be reopened.
func TestCanReopen_BoundHolds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(MaxReopens, MaxReopens+3).Draw(rt, "reopenCount")
		age := time.Duration(rapid.Int64Range(0, int64(60*24*time.Hour)).Draw(rt, "age"))
		reason := rapid.String().Draw(rt, "reason")

		result := CanReopen(Context{
			Status:      grievance.StatusClosed,
			ClosedAt:    closedAgo(age),
			ReopenCount: count,
			Reason:      reason,
			Now:         now,
		})

		if result.Allowed {
			rt.Fatalf("CanReopen() allowed reopen #%d", count+1)
		}
		if result.Reason != "reopen limit reached" {
			rt.Fatalf("Reason = %q, want %q", result.Reason, "reopen limit reached")
		}
	})
}
