package primary

import (
	"context"
	"time"
)

// EscalationMonitor defines the primary port for SLA sweeps.
type EscalationMonitor interface {
	// Sweep checks every open grievance once and escalates breached ones.
	Sweep(ctx context.Context) SweepReport
}

// SweepReport summarizes one monitor sweep.
type SweepReport struct {
	Checked   int           `json:"checked"`
	Escalated int           `json:"escalated"`
	Skipped   int           `json:"skipped"`
	Conflicts int           `json:"conflicts"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// Reconciler defines the primary port for rebuilding department aggregates.
type Reconciler interface {
	// ReconcileDepartment recomputes one department from a full rescan and
	// overwrites the stored stats if they differ.
	ReconcileDepartment(ctx context.Context, departmentID string) (*ReconcileResult, error)

	// ReconcileAll reconciles every known department.
	ReconcileAll(ctx context.Context) ([]*ReconcileResult, error)
}

// ReconcileResult reports the outcome for one department.
type ReconcileResult struct {
	DepartmentID string           `json:"departmentId"`
	Drifted      bool             `json:"drifted"`
	Before       *DepartmentStats `json:"before"`
	After        *DepartmentStats `json:"after"`
}
