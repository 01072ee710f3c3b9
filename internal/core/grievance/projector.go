package grievance

import (
	"slices"
	"strconv"
	"time"

	"github.com/example/grievd/internal/core/sla"
)

// View is the materialized state of one grievance, derived by folding its
// event log. It is a cache of the log, never authored directly.
type View struct {
	ID                string         `json:"id"`
	Status            Status         `json:"status"`
	SLAStatus         sla.Status     `json:"slaStatus"`
	DepartmentID      string         `json:"departmentId"`
	Category          string         `json:"category,omitempty"`
	CitizenID         string         `json:"citizenId"`
	AssignedOfficerID string         `json:"assignedOfficerId,omitempty"`
	SubmittedAt       time.Time      `json:"submittedAt"`
	EpochStartedAt    time.Time      `json:"epochStartedAt"`
	SLADeadlineAt     time.Time      `json:"slaDeadlineAt"`
	ClosedAt          *time.Time     `json:"closedAt,omitempty"`
	LastEventAt       time.Time      `json:"lastEventAt"`
	ReopenCount       int            `json:"reopenCount"`
	EscalationCount   int            `json:"escalationCount"`
	OnTimeClosures    int            `json:"onTimeClosures"`
	BreachedClosures  int            `json:"breachedClosures"`
	LastClosure       ClosureOutcome `json:"lastClosure,omitempty"`
	DelayExplanation  string         `json:"delayExplanation,omitempty"`
	EvidenceRefs      []string       `json:"evidenceRefs,omitempty"`
	Version           int64          `json:"version"`

	// SLAElapsedPercent is filled at read time by Refresh.
	SLAElapsedPercent int `json:"slaElapsedPercent"`
}

// ClosureOutcome is how the latest closure of a grievance fared against its
// deadline. A reopened grievance keeps its previous outcome until it closes again.
type ClosureOutcome string

const (
	ClosureNone     ClosureOutcome = ""
	ClosureOnTime   ClosureOutcome = "on_time"
	ClosureBreached ClosureOutcome = "breached"
)

// Exists reports whether at least one event has been folded into v.
func (v View) Exists() bool {
	return v.Version > 0
}

// Project folds an ordered event sequence into its view.
// It is total: unknown event types only advance the version.
func Project(events []Event) View {
	var v View
	for _, ev := range events {
		v = Apply(v, ev)
	}
	return v
}

// Apply folds a single event into v and returns the new view.
// v is not modified.
func Apply(v View, ev Event) View {
	v.Version++
	if !ev.Type.Known() {
		return v
	}
	if v.ID == "" {
		v.ID = ev.GrievanceID
	}
	at := ev.OccurredAt
	v.LastEventAt = at

	switch ev.Type {
	case EventSubmitted:
		v.Status = StatusSubmitted
		v.CitizenID = ev.ActorID
		v.Category = ev.Payload[KeyCategory]
		v.DepartmentID = ev.Payload[KeyDepartmentID]
		v.SubmittedAt = at
		v.startEpoch(at, windowDays(ev.Payload))
		v.SLAStatus = sla.OnTrack

	case EventRouted:
		v.Status = StatusRouted
		if v.DepartmentID == "" {
			v.DepartmentID = ev.Payload[KeyDepartmentID]
		}
		v.observe(at)

	case EventAssigned:
		v.Status = StatusAssigned
		v.AssignedOfficerID = ev.Payload[KeyOfficerID]
		v.observe(at)

	case EventAcknowledged:
		v.Status = StatusAcknowledged
		v.observe(at)

	case EventStatusUpdated:
		v.Status = StatusUpdateTarget(ev.Payload[KeyStatus])
		v.observe(at)

	case EventDelayExplained:
		v.DelayExplanation = ev.Payload[KeyExplanation]
		v.observe(at)

	case EventEscalated:
		v.Status = StatusEscalated
		v.EscalationCount++
		v.SLAStatus = sla.Breached

	case EventProofUploaded:
		v.EvidenceRefs = append(slices.Clone(v.EvidenceRefs), ev.Payload[KeyEvidenceRef])
		v.observe(at)

	case EventClosed:
		v.observe(at)
		v.Status = StatusClosed
		closedAt := at
		v.ClosedAt = &closedAt
		if v.SLAStatus == sla.Breached {
			v.BreachedClosures++
			v.LastClosure = ClosureBreached
		} else {
			v.OnTimeClosures++
			v.LastClosure = ClosureOnTime
		}

	case EventReopened:
		v.Status = StatusReopened
		v.ReopenCount++
		v.ClosedAt = nil
		v.startEpoch(at, windowDays(ev.Payload))
		v.SLAStatus = sla.AtRisk
	}

	return v
}

// startEpoch begins a fresh SLA epoch at start.
func (v *View) startEpoch(start time.Time, days int) {
	v.EpochStartedAt = start
	v.SLADeadlineAt = sla.Deadline(start, days)
}

// observe raises the SLA status to what the clock says at t. It never lowers it.
func (v *View) observe(t time.Time) {
	if v.Status.IsTerminal() {
		return
	}
	v.SLAStatus = sla.Worse(v.SLAStatus, sla.Evaluate(t, v.EpochStartedAt, v.SLADeadlineAt))
}

// Refresh re-evaluates the SLA status of v against now. Open grievances take
// the more severe of the folded status and the live one; closed grievances
// keep the status frozen at close time.
func Refresh(v View, now time.Time) View {
	if !v.Exists() {
		return v
	}
	at := now
	if v.Status.IsTerminal() && v.ClosedAt != nil {
		at = *v.ClosedAt
	}
	a := sla.Assess(at, v.EpochStartedAt, v.SLADeadlineAt)
	v.SLAElapsedPercent = a.ElapsedPercent
	if !v.Status.IsTerminal() {
		v.SLAStatus = sla.Worse(v.SLAStatus, a.Status)
	}
	return v
}

// NeedsEscalation reports whether the monitor should escalate v at now:
// the live SLA status is breached and v is open and not already escalated.
func NeedsEscalation(v View, now time.Time) bool {
	if !v.Status.IsOpen() || v.Status == StatusEscalated {
		return false
	}
	return sla.Evaluate(now, v.EpochStartedAt, v.SLADeadlineAt) == sla.Breached
}

// StatusUpdateTargets are the statuses an officer may choose with STATUS_UPDATED.
var StatusUpdateTargets = []Status{StatusAcknowledged, StatusInProgress}

// StatusUpdateTarget resolves the requested STATUS_UPDATED target, defaulting
// to in_progress.
func StatusUpdateTarget(requested string) Status {
	target := Status(requested)
	if slices.Contains(StatusUpdateTargets, target) {
		return target
	}
	return StatusInProgress
}

func windowDays(payload map[string]string) int {
	days, err := strconv.Atoi(payload[KeySLAWindowDays])
	if err != nil || days < 0 {
		return 0
	}
	return days
}
