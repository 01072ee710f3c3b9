package primary

import (
	"context"

	"github.com/example/grievd/internal/core/deptstats"
	"github.com/example/grievd/internal/core/grievance"
)

// QueryService defines the primary port for read operations.
type QueryService interface {
	// GetGrievanceView returns the view with SLA status evaluated at the current time.
	GetGrievanceView(ctx context.Context, grievanceID string) (*grievance.View, error)

	// GetEventLog returns the grievance's events ordered by sequence.
	GetEventLog(ctx context.Context, grievanceID string) ([]grievance.Event, error)

	// GetDepartmentStats returns the accountability aggregate of a department.
	GetDepartmentStats(ctx context.Context, departmentID string) (*DepartmentStats, error)

	// ListDepartmentStats returns every department, best SLA score first.
	ListDepartmentStats(ctx context.Context) ([]*DepartmentStats, error)

	// RebuildView re-folds the log and overwrites the cached view.
	RebuildView(ctx context.Context, grievanceID string) (*grievance.View, error)
}

// DepartmentStats is a department's aggregate at the port boundary.
type DepartmentStats struct {
	DepartmentID    string `json:"departmentId"`
	Name            string `json:"name,omitempty"`
	TotalComplaints int64  `json:"totalComplaints"`
	ResolvedOnTime  int64  `json:"resolvedOnTime"`
	BreachedCount   int64  `json:"breachedCount"`
	EscalatedCount  int64  `json:"escalatedCount"`
	SLAScore        int    `json:"slaScore"`
	BreachRate      int    `json:"breachRate"`
}

// NewDepartmentStats converts the core aggregate into its boundary form.
func NewDepartmentStats(s deptstats.Stats, name string) *DepartmentStats {
	return &DepartmentStats{
		DepartmentID:    s.DepartmentID,
		Name:            name,
		TotalComplaints: s.TotalComplaints,
		ResolvedOnTime:  s.ResolvedOnTime,
		BreachedCount:   s.BreachedCount,
		EscalatedCount:  s.EscalatedCount,
		SLAScore:        s.SLAScore(),
		BreachRate:      s.BreachRate(),
	}
}
