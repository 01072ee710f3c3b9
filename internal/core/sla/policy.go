// Package sla contains the pure SLA policy shared by the projector, the
// escalation monitor and every read path.
// This is part of the Functional Core - no I/O, only pure functions.
package sla

import (
	"math"
	"time"
)

// Status is the derived SLA health of a grievance.
type Status string

const (
	OnTrack  Status = "on_track"
	AtRisk   Status = "at_risk"
	Breached Status = "breached"
)

// AtRiskThreshold is the elapsed fraction at which a grievance becomes at risk.
const AtRiskThreshold = 0.8

// Day is the unit SLA windows are configured in.
const Day = 24 * time.Hour

// Severity orders statuses: on_track < at_risk < breached.
func (s Status) Severity() int {
	switch s {
	case AtRisk:
		return 1
	case Breached:
		return 2
	default:
		return 0
	}
}

// Valid reports whether s is a known SLA status.
func (s Status) Valid() bool {
	return s == OnTrack || s == AtRisk || s == Breached
}

// Worse returns the more severe of a and b. An empty status counts as on_track.
func Worse(a, b Status) Status {
	if b.Severity() > a.Severity() {
		return b
	}
	if a == "" {
		return OnTrack
	}
	return a
}

// Deadline computes the SLA deadline for an epoch starting at start.
func Deadline(start time.Time, windowDays int) time.Time {
	return start.Add(time.Duration(windowDays) * Day)
}

// ElapsedFraction returns (now - start) / (deadline - start).
// A degenerate window (deadline not after start) counts as fully elapsed once
// the deadline is reached. Times before start clamp to zero.
func ElapsedFraction(now, start, deadline time.Time) float64 {
	window := deadline.Sub(start)
	if window <= 0 {
		if now.Before(deadline) {
			return 0
		}
		return 1
	}
	elapsed := now.Sub(start)
	if elapsed <= 0 {
		return 0
	}
	return float64(elapsed) / float64(window)
}

// Evaluate derives the SLA status at now for the epoch [start, deadline].
func Evaluate(now, start, deadline time.Time) Status {
	f := ElapsedFraction(now, start, deadline)
	switch {
	case f >= 1.0:
		return Breached
	case f >= AtRiskThreshold:
		return AtRisk
	default:
		return OnTrack
	}
}

// Assessment is the read-time SLA picture of one epoch.
type Assessment struct {
	Status         Status
	ElapsedPercent int
	Remaining      time.Duration
}

// Assess evaluates the epoch at now. ElapsedPercent is rounded and capped at
// 100 so every dashboard shows the same figure.
func Assess(now, start, deadline time.Time) Assessment {
	f := ElapsedFraction(now, start, deadline)
	pct := int(math.Round(f * 100))
	if pct > 100 {
		pct = 100
	}
	remaining := deadline.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return Assessment{
		Status:         Evaluate(now, start, deadline),
		ElapsedPercent: pct,
		Remaining:      remaining,
	}
}
