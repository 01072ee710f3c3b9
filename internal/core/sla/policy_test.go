package sla

import (
	"testing"
	"time"

	"pgregory.net/rapid"
)

func TestEvaluate(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	deadline := Deadline(start, 5)

	tests := []struct {
		name string
		now  time.Time
		want Status
	}{
		{
			name: "at submission",
			now:  start,
			want: OnTrack,
		},
		{
			name: "before submission clamps to on track",
			now:  start.Add(-time.Hour),
			want: OnTrack,
		},
		{
			name: "just under threshold",
			now:  start.Add(time.Duration(3.9 * float64(Day))),
			want: OnTrack,
		},
		{
			name: "82 percent elapsed is at risk",
			now:  start.Add(time.Duration(4.1 * float64(Day))),
			want: AtRisk,
		},
		{
			name: "exactly at threshold is at risk",
			now:  start.Add(4 * Day),
			want: AtRisk,
		},
		{
			name: "exactly at deadline is breached",
			now:  deadline,
			want: Breached,
		},
		{
			name: "past deadline is breached",
			now:  start.Add(time.Duration(5.1 * float64(Day))),
			want: Breached,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.now, start, deadline)
			if got != tt.want {
				t.Errorf("Evaluate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEvaluate_ZeroWindow(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	if got := Evaluate(start.Add(-time.Minute), start, start); got != OnTrack {
		t.Errorf("Evaluate() before zero-length deadline = %q, want %q", got, OnTrack)
	}
	if got := Evaluate(start, start, start); got != Breached {
		t.Errorf("Evaluate() at zero-length deadline = %q, want %q", got, Breached)
	}
}

func TestWorse(t *testing.T) {
	tests := []struct {
		a, b Status
		want Status
	}{
		{OnTrack, AtRisk, AtRisk},
		{AtRisk, OnTrack, AtRisk},
		{Breached, AtRisk, Breached},
		{"", OnTrack, OnTrack},
		{"", Breached, Breached},
	}

	for _, tt := range tests {
		if got := Worse(tt.a, tt.b); got != tt.want {
			t.Errorf("Worse(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestAssess(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	deadline := Deadline(start, 10)

	got := Assess(start.Add(5*Day), start, deadline)
	if got.ElapsedPercent != 50 {
		t.Errorf("ElapsedPercent = %d, want 50", got.ElapsedPercent)
	}
	if got.Remaining != 5*Day {
		t.Errorf("Remaining = %v, want %v", got.Remaining, 5*Day)
	}

	late := Assess(start.Add(20*Day), start, deadline)
	if late.ElapsedPercent != 100 {
		t.Errorf("ElapsedPercent past deadline = %d, want 100", late.ElapsedPercent)
	}
	if late.Remaining != 0 {
		t.Errorf("Remaining past deadline = %v, want 0", late.Remaining)
	}
	if late.Status != Breached {
		t.Errorf("Status past deadline = %q, want %q", late.Status, Breached)
	}
}

// Severity never decreases as the clock moves forward within one epoch.
func TestEvaluate_MonotonicInTime(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		start := time.Unix(rapid.Int64Range(0, 4_000_000_000).Draw(t, "start"), 0).UTC()
		windowDays := rapid.IntRange(0, 60).Draw(t, "windowDays")
		deadline := Deadline(start, windowDays)

		offsetA := time.Duration(rapid.Int64Range(-int64(Day), int64(90*Day)).Draw(t, "offsetA"))
		step := time.Duration(rapid.Int64Range(0, int64(30*Day)).Draw(t, "step"))

		earlier := Evaluate(start.Add(offsetA), start, deadline)
		later := Evaluate(start.Add(offsetA+step), start, deadline)
		if later.Severity() < earlier.Severity() {
			t.Fatalf("severity went backward: %q at t, %q at t+%v", earlier, later, step)
		}
	})
}
