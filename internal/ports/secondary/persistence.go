// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"

	"github.com/example/grievd/internal/core/deptstats"
	"github.com/example/grievd/internal/core/grievance"
)

// FoldFunc folds a freshly sealed event into the grievance's current view.
// The event store calls it inside the append transaction, after it has
// assigned the sequence and timestamp, and persists what it returns.
type FoldFunc func(ev grievance.Event) (grievance.View, deptstats.Delta, error)

// AppendResult is what a successful append produced.
type AppendResult struct {
	Event grievance.Event
	View  grievance.View
}

// EventStore defines the secondary port for the append-only grievance log
// and the views and aggregates derived from it.
type EventStore interface {
	// Append writes one event for draft.GrievanceID if the log is still at
	// expectedVersion. The event, the view returned by fold and the
	// department delta are committed atomically, or not at all.
	// A stale expectedVersion yields a *grievance.ConflictError.
	Append(ctx context.Context, draft grievance.EventDraft, expectedVersion int64, fold FoldFunc) (*AppendResult, error)

	// Read returns the full log of a grievance ordered by sequence.
	// A grievance with no events yields an empty slice and no error.
	Read(ctx context.Context, grievanceID string) ([]grievance.Event, error)

	// GetView returns the cached view of a grievance.
	// Returns grievance.ErrNotFound when there is none.
	GetView(ctx context.Context, grievanceID string) (*grievance.View, error)

	// SaveView overwrites the cached view of a grievance.
	SaveView(ctx context.Context, view grievance.View) error

	// ListOpen returns the cached views of every grievance in a non-terminal status.
	ListOpen(ctx context.Context) ([]grievance.View, error)

	// ListIDsByDepartment returns the ids of every grievance filed against a department.
	ListIDsByDepartment(ctx context.Context, departmentID string) ([]string, error)

	// ListDepartments returns every department that has at least one grievance.
	ListDepartments(ctx context.Context) ([]string, error)
}

// StatsRepository defines the secondary port for department aggregates.
type StatsRepository interface {
	// Get returns the stats of a department. A department without
	// grievances yields zero stats, not an error.
	Get(ctx context.Context, departmentID string) (deptstats.Stats, error)

	// List returns the stats of every department that has any.
	List(ctx context.Context) ([]deptstats.Stats, error)

	// Overwrite replaces a department's stats with a recomputed value.
	Overwrite(ctx context.Context, stats deptstats.Stats) error
}
