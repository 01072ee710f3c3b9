// Package deptstats contains the pure department accountability aggregate:
// the per-event deltas applied on the hot path and the full rescan that
// backs them up.
// This is part of the Functional Core - no I/O, only pure functions.
package deptstats

import (
	"math"

	"github.com/example/grievd/internal/core/grievance"
)

// Stats is the accountability aggregate for one department.
type Stats struct {
	DepartmentID    string
	TotalComplaints int64
	ResolvedOnTime  int64
	BreachedCount   int64
	EscalatedCount  int64
}

// SLAScore is the canonical accountability score: the rounded percentage of
// complaints resolved on time. Zero when the department has no complaints.
func (s Stats) SLAScore() int {
	return percent(s.ResolvedOnTime, s.TotalComplaints)
}

// BreachRate is the rounded percentage of complaints closed after breach.
func (s Stats) BreachRate() int {
	return percent(s.BreachedCount, s.TotalComplaints)
}

// Equal reports whether the counters of s and o match.
func (s Stats) Equal(o Stats) bool {
	return s.TotalComplaints == o.TotalComplaints &&
		s.ResolvedOnTime == o.ResolvedOnTime &&
		s.BreachedCount == o.BreachedCount &&
		s.EscalatedCount == o.EscalatedCount
}

// Apply returns s with d added.
func (s Stats) Apply(d Delta) Stats {
	s.TotalComplaints += d.TotalComplaints
	s.ResolvedOnTime += d.ResolvedOnTime
	s.BreachedCount += d.BreachedCount
	s.EscalatedCount += d.EscalatedCount
	return s
}

func percent(n, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(n) / float64(total)))
}

// Delta is the change one event makes to its department's stats.
type Delta struct {
	DepartmentID    string
	TotalComplaints int64
	ResolvedOnTime  int64
	BreachedCount   int64
	EscalatedCount  int64
}

// IsZero reports whether d changes nothing.
func (d Delta) IsZero() bool {
	return d.TotalComplaints == 0 && d.ResolvedOnTime == 0 && d.BreachedCount == 0 && d.EscalatedCount == 0
}

// DeltaFor derives the stats delta of moving a grievance from prev to next.
// It compares the counters each view contributes, so summing DeltaFor over a
// log always equals Contribution of the final view.
func DeltaFor(prev, next grievance.View) Delta {
	before := Contribution(prev)
	after := Contribution(next)
	return Delta{
		DepartmentID:    next.DepartmentID,
		TotalComplaints: after.TotalComplaints - before.TotalComplaints,
		ResolvedOnTime:  after.ResolvedOnTime - before.ResolvedOnTime,
		BreachedCount:   after.BreachedCount - before.BreachedCount,
		EscalatedCount:  after.EscalatedCount - before.EscalatedCount,
	}
}

// Contribution is what one grievance adds to its department's stats: one
// complaint, the outcome of its latest closure, and at most one escalation.
// A grievance closed again after a reopen swaps its outcome rather than
// adding a second one, so resolved and breached never exceed the total.
func Contribution(v grievance.View) Stats {
	if !v.Exists() {
		return Stats{DepartmentID: v.DepartmentID}
	}
	s := Stats{
		DepartmentID:    v.DepartmentID,
		TotalComplaints: 1,
	}
	switch v.LastClosure {
	case grievance.ClosureOnTime:
		s.ResolvedOnTime = 1
	case grievance.ClosureBreached:
		s.BreachedCount = 1
	}
	if v.EscalationCount > 0 {
		s.EscalatedCount = 1
	}
	return s
}
