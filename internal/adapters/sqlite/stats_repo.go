package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/example/grievd/internal/core/deptstats"
	"github.com/example/grievd/internal/ports/secondary"
)

// StatsRepository implements secondary.StatsRepository with SQLite.
type StatsRepository struct {
	db    *sql.DB
	clock secondary.Clock
}

// NewStatsRepository creates a new SQLite department stats repository.
func NewStatsRepository(db *sql.DB, clock secondary.Clock) *StatsRepository {
	if clock == nil {
		clock = secondary.SystemClock{}
	}
	return &StatsRepository{db: db, clock: clock}
}

var _ secondary.StatsRepository = (*StatsRepository)(nil)

// Get returns a department's stats, zero if it has none.
func (r *StatsRepository) Get(ctx context.Context, departmentID string) (deptstats.Stats, error) {
	s := deptstats.Stats{DepartmentID: departmentID}
	err := r.db.QueryRowContext(ctx,
		`SELECT total_complaints, resolved_on_time, breached_count, escalated_count FROM department_stats WHERE department_id = ?`,
		departmentID,
	).Scan(&s.TotalComplaints, &s.ResolvedOnTime, &s.BreachedCount, &s.EscalatedCount)
	if errors.Is(err, sql.ErrNoRows) {
		return s, nil
	}
	if err != nil {
		return deptstats.Stats{}, unavailable("get stats", err)
	}
	return s, nil
}

// List returns the stats of every department that has any.
func (r *StatsRepository) List(ctx context.Context) ([]deptstats.Stats, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT department_id, total_complaints, resolved_on_time, breached_count, escalated_count FROM department_stats ORDER BY department_id`,
	)
	if err != nil {
		return nil, unavailable("list stats", err)
	}
	defer rows.Close()

	var out []deptstats.Stats
	for rows.Next() {
		var s deptstats.Stats
		if err := rows.Scan(&s.DepartmentID, &s.TotalComplaints, &s.ResolvedOnTime, &s.BreachedCount, &s.EscalatedCount); err != nil {
			return nil, unavailable("scan stats", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list stats", err)
	}
	return out, nil
}

// Overwrite replaces a department's stats with a recomputed value.
func (r *StatsRepository) Overwrite(ctx context.Context, s deptstats.Stats) error {
	now := formatTime(r.clock.Now())
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO department_stats (department_id, total_complaints, resolved_on_time, breached_count, escalated_count, reconciled_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(department_id) DO UPDATE SET
			total_complaints = excluded.total_complaints,
			resolved_on_time = excluded.resolved_on_time,
			breached_count = excluded.breached_count,
			escalated_count = excluded.escalated_count,
			reconciled_at = excluded.reconciled_at,
			updated_at = excluded.updated_at`,
		s.DepartmentID, s.TotalComplaints, s.ResolvedOnTime, s.BreachedCount, s.EscalatedCount, now, now,
	)
	if err != nil {
		return unavailable("overwrite stats", err)
	}
	return nil
}

// applyDelta adds d to the department's counters in place. The increment
// happens in SQL so concurrent writers never lose updates.
func applyDelta(ctx context.Context, tx *sql.Tx, d deptstats.Delta, now time.Time) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO department_stats (department_id, total_complaints, resolved_on_time, breached_count, escalated_count, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(department_id) DO UPDATE SET
			total_complaints = total_complaints + excluded.total_complaints,
			resolved_on_time = resolved_on_time + excluded.resolved_on_time,
			breached_count = breached_count + excluded.breached_count,
			escalated_count = escalated_count + excluded.escalated_count,
			updated_at = excluded.updated_at`,
		d.DepartmentID, d.TotalComplaints, d.ResolvedOnTime, d.BreachedCount, d.EscalatedCount, formatTime(now),
	)
	if err != nil {
		return unavailable("apply stats delta", err)
	}
	return nil
}
