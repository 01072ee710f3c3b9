// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/example/grievd/internal/core/grievance"
	"github.com/example/grievd/internal/ports/secondary"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// EventStore implements secondary.EventStore with SQLite.
type EventStore struct {
	db    *sql.DB
	clock secondary.Clock
}

// NewEventStore creates a new SQLite event store.
func NewEventStore(db *sql.DB, clock secondary.Clock) *EventStore {
	if clock == nil {
		clock = secondary.SystemClock{}
	}
	return &EventStore{db: db, clock: clock}
}

var _ secondary.EventStore = (*EventStore)(nil)

// Append writes one event, its view and its department delta in a single
// transaction, provided the log is still at expectedVersion.
func (s *EventStore) Append(ctx context.Context, draft grievance.EventDraft, expectedVersion int64, fold secondary.FoldFunc) (*secondary.AppendResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, unavailable("begin", err)
	}
	defer tx.Rollback()

	var (
		current int64
		lastAt  string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT sequence, occurred_at FROM grievance_events WHERE grievance_id = ? ORDER BY sequence DESC LIMIT 1`,
		draft.GrievanceID,
	).Scan(&current, &lastAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, unavailable("read head", err)
	}
	if current != expectedVersion {
		return nil, versionConflict(draft, expectedVersion, current)
	}

	// Timestamps never run backwards within one grievance's log.
	occurredAt := s.clock.Now().UTC()
	if lastAt != "" {
		if last, err := parseTime(lastAt); err == nil && occurredAt.Before(last) {
			occurredAt = last
		}
	}

	ev := draft.Seal(expectedVersion+1, occurredAt)
	view, delta, err := fold(ev)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO grievance_events (id, grievance_id, sequence, event_type, actor_id, actor_role, payload, occurred_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID,
		ev.GrievanceID,
		ev.Sequence,
		string(ev.Type),
		ev.ActorID,
		string(ev.ActorRole),
		string(payload),
		formatTime(ev.OccurredAt),
	)
	if err != nil {
		if isConstraint(err) {
			return nil, versionConflict(draft, expectedVersion, expectedVersion+1)
		}
		return nil, unavailable("insert event", err)
	}

	if err := upsertView(ctx, tx, view, occurredAt); err != nil {
		return nil, err
	}
	if !delta.IsZero() {
		if err := applyDelta(ctx, tx, delta, occurredAt); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, unavailable("commit", err)
	}
	return &secondary.AppendResult{Event: ev, View: view}, nil
}

// Read returns the full log of a grievance ordered by sequence.
func (s *EventStore) Read(ctx context.Context, grievanceID string) ([]grievance.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, grievance_id, sequence, event_type, actor_id, actor_role, payload, occurred_at FROM grievance_events WHERE grievance_id = ? ORDER BY sequence`,
		grievanceID,
	)
	if err != nil {
		return nil, unavailable("read", err)
	}
	defer rows.Close()

	var events []grievance.Event
	for rows.Next() {
		var (
			ev         grievance.Event
			eventType  string
			actorRole  string
			payload    string
			occurredAt string
		)
		if err := rows.Scan(&ev.ID, &ev.GrievanceID, &ev.Sequence, &eventType, &ev.ActorID, &actorRole, &payload, &occurredAt); err != nil {
			return nil, unavailable("scan event", err)
		}
		ev.Type = grievance.EventType(eventType)
		ev.ActorRole = grievance.Role(actorRole)
		if err := json.Unmarshal([]byte(payload), &ev.Payload); err != nil {
			return nil, fmt.Errorf("event %s: failed to decode payload: %w", ev.ID, err)
		}
		if ev.OccurredAt, err = parseTime(occurredAt); err != nil {
			return nil, fmt.Errorf("event %s: failed to parse occurred_at: %w", ev.ID, err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("read", err)
	}
	return events, nil
}

// GetView returns the cached view of a grievance.
func (s *EventStore) GetView(ctx context.Context, grievanceID string) (*grievance.View, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT view FROM grievances WHERE id = ?`, grievanceID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("grievance %s: %w", grievanceID, grievance.ErrNotFound)
	}
	if err != nil {
		return nil, unavailable("get view", err)
	}
	return decodeView(raw)
}

// SaveView overwrites the cached view of a grievance.
func (s *EventStore) SaveView(ctx context.Context, view grievance.View) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin", err)
	}
	defer tx.Rollback()

	if err := upsertView(ctx, tx, view, s.clock.Now()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit", err)
	}
	return nil
}

// ListOpen returns the cached views of every non-closed grievance, the
// nearest deadline first.
func (s *EventStore) ListOpen(ctx context.Context) ([]grievance.View, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT view FROM grievances WHERE status != ? ORDER BY sla_deadline_at, id`,
		string(grievance.StatusClosed),
	)
	if err != nil {
		return nil, unavailable("list open", err)
	}
	defer rows.Close()

	var views []grievance.View
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, unavailable("scan view", err)
		}
		v, err := decodeView(raw)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list open", err)
	}
	return views, nil
}

// ListIDsByDepartment returns the ids of every grievance filed against a department.
func (s *EventStore) ListIDsByDepartment(ctx context.Context, departmentID string) ([]string, error) {
	return s.queryStrings(ctx, "list by department",
		`SELECT id FROM grievances WHERE department_id = ? ORDER BY id`, departmentID)
}

// ListDepartments returns every department that has at least one grievance.
func (s *EventStore) ListDepartments(ctx context.Context) ([]string, error) {
	return s.queryStrings(ctx, "list departments",
		`SELECT DISTINCT department_id FROM grievances WHERE department_id != '' ORDER BY department_id`)
}

func (s *EventStore) queryStrings(ctx context.Context, op, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable(op, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, unavailable(op, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(op, err)
	}
	return out, nil
}

func upsertView(ctx context.Context, tx *sql.Tx, view grievance.View, now time.Time) error {
	raw, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to encode view: %w", err)
	}
	var deadline sql.NullString
	if !view.SLADeadlineAt.IsZero() {
		deadline = sql.NullString{String: formatTime(view.SLADeadlineAt), Valid: true}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO grievances (id, status, sla_status, department_id, citizen_id, version, sla_deadline_at, view, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			sla_status = excluded.sla_status,
			department_id = excluded.department_id,
			citizen_id = excluded.citizen_id,
			version = excluded.version,
			sla_deadline_at = excluded.sla_deadline_at,
			view = excluded.view,
			updated_at = excluded.updated_at`,
		view.ID,
		string(view.Status),
		string(view.SLAStatus),
		view.DepartmentID,
		view.CitizenID,
		view.Version,
		deadline,
		string(raw),
		formatTime(now),
	)
	if err != nil {
		return unavailable("save view", err)
	}
	return nil
}

func decodeView(raw string) (*grievance.View, error) {
	var v grievance.View
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("failed to decode view: %w", err)
	}
	return &v, nil
}

func versionConflict(draft grievance.EventDraft, expected, actual int64) error {
	return &grievance.ConflictError{
		GrievanceID:     draft.GrievanceID,
		Kind:            grievance.ConflictVersion,
		EventType:       draft.Type,
		ExpectedVersion: expected,
		ActualVersion:   actual,
	}
}

func unavailable(op string, err error) error {
	return &grievance.StoreUnavailableError{Op: op, Err: err}
}

func isConstraint(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.Code == sqlite3.ErrConstraint
}
