package grievance

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"time"
)

// Payload keys the engine reads or fills in.
const (
	KeyCategory      = "category"
	KeyDepartmentID  = "departmentId"
	KeySLAWindowDays = "slaWindowDays"
	KeyOfficerID     = "officerId"
	KeyStatus        = "status"
	KeyExplanation   = "explanation"
	KeyEvidenceRef   = "evidenceRef"
	KeyReason        = "reason"
	KeyNote          = "note"
)

// Event is an immutable fact in a grievance's log.
// OccurredAt and Sequence are assigned by the event store at append time.
type Event struct {
	ID          string            `json:"id"`
	GrievanceID string            `json:"grievanceId"`
	Sequence    int64             `json:"sequence"`
	Type        EventType         `json:"eventType"`
	ActorID     string            `json:"actorId"`
	ActorRole   Role              `json:"actorRole"`
	Payload     map[string]string `json:"payload"`
	OccurredAt  time.Time         `json:"occurredAt"`
}

// EventDraft is an event before the store has ordered and timestamped it.
type EventDraft struct {
	GrievanceID string
	Type        EventType
	Actor       Actor
	Payload     map[string]string
}

// Seal turns a draft into an event at the given position in the log.
func (d EventDraft) Seal(sequence int64, occurredAt time.Time) Event {
	payload := maps.Clone(d.Payload)
	if payload == nil {
		payload = map[string]string{}
	}
	return Event{
		ID:          EventID(d.GrievanceID, d.Type, sequence),
		GrievanceID: d.GrievanceID,
		Sequence:    sequence,
		Type:        d.Type,
		ActorID:     d.Actor.ID,
		ActorRole:   d.Actor.Role,
		Payload:     payload,
		OccurredAt:  occurredAt,
	}
}

// EventID derives the event id from (grievanceId, eventType, sequence).
// The same position in the same log always yields the same id, so replaying
// an append is detectable as a duplicate.
func EventID(grievanceID string, eventType EventType, sequence int64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%d", grievanceID, eventType, sequence)))
	return hex.EncodeToString(sum[:])[:32]
}
