// Package transition contains the grievance state machine: which events are
// legal from which status, who may submit them, and where they lead.
// This is part of the Functional Core - no I/O, only pure functions.
package transition

import (
	"slices"

	"github.com/example/grievd/internal/core/grievance"
)

// Rule describes one row of the transition table.
type Rule struct {
	// From lists the statuses the event may be applied in.
	From []grievance.Status

	// To is the resulting status. StatusNone means the status is unchanged.
	To grievance.Status

	// Roles lists the actor roles allowed to submit the event.
	Roles []grievance.Role
}

// active is every status in which work on the grievance is ongoing.
// Reopened counts as acknowledged-equivalent.
var active = []grievance.Status{
	grievance.StatusAcknowledged,
	grievance.StatusInProgress,
	grievance.StatusReopened,
}

var (
	citizenOnly   = []grievance.Role{grievance.RoleCitizen}
	officerOnly   = []grievance.Role{grievance.RoleOfficer}
	intake        = []grievance.Role{grievance.RoleCitizen, grievance.RoleOfficer}
	officerSystem = []grievance.Role{grievance.RoleOfficer, grievance.RoleSystem}
)

// Table is the complete transition table, keyed by event type.
var Table = map[grievance.EventType]Rule{
	grievance.EventSubmitted: {
		From:  []grievance.Status{grievance.StatusNone},
		To:    grievance.StatusSubmitted,
		Roles: intake,
	},
	grievance.EventRouted: {
		From:  []grievance.Status{grievance.StatusSubmitted},
		To:    grievance.StatusRouted,
		Roles: officerSystem,
	},
	grievance.EventAssigned: {
		From:  []grievance.Status{grievance.StatusRouted},
		To:    grievance.StatusAssigned,
		Roles: officerOnly,
	},
	grievance.EventAcknowledged: {
		From:  []grievance.Status{grievance.StatusSubmitted, grievance.StatusRouted, grievance.StatusAssigned},
		To:    grievance.StatusAcknowledged,
		Roles: officerOnly,
	},
	grievance.EventStatusUpdated: {
		From:  active,
		To:    grievance.StatusInProgress,
		Roles: officerOnly,
	},
	grievance.EventDelayExplained: {
		From:  append([]grievance.Status{grievance.StatusAssigned}, active...),
		Roles: officerOnly,
	},
	grievance.EventEscalated: {
		From: []grievance.Status{
			grievance.StatusSubmitted,
			grievance.StatusRouted,
			grievance.StatusAssigned,
			grievance.StatusAcknowledged,
			grievance.StatusInProgress,
			grievance.StatusReopened,
		},
		To:    grievance.StatusEscalated,
		Roles: officerSystem,
	},
	grievance.EventProofUploaded: {
		From:  append([]grievance.Status{grievance.StatusEscalated}, active...),
		Roles: officerOnly,
	},
	grievance.EventClosed: {
		From:  append([]grievance.Status{grievance.StatusEscalated}, active...),
		To:    grievance.StatusClosed,
		Roles: officerOnly,
	},
	grievance.EventReopened: {
		From:  []grievance.Status{grievance.StatusClosed},
		To:    grievance.StatusReopened,
		Roles: citizenOnly,
	},
}

// Allowed reports whether et may be applied to a grievance in status from.
func Allowed(from grievance.Status, et grievance.EventType) bool {
	rule, ok := Table[et]
	if !ok {
		return false
	}
	return slices.Contains(rule.From, from)
}

// Permitted reports whether role may submit et.
func Permitted(role grievance.Role, et grievance.EventType) bool {
	rule, ok := Table[et]
	if !ok {
		return false
	}
	return slices.Contains(rule.Roles, role)
}

// Target returns the status a grievance in status from ends up in after et.
// Events that leave the status unchanged return from.
func Target(from grievance.Status, et grievance.EventType, payload map[string]string) grievance.Status {
	if et == grievance.EventStatusUpdated {
		return grievance.StatusUpdateTarget(payload[grievance.KeyStatus])
	}
	rule, ok := Table[et]
	if !ok || rule.To == grievance.StatusNone {
		return from
	}
	return rule.To
}
