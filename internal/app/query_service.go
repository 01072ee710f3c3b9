package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/grievd/internal/core/deptstats"
	"github.com/example/grievd/internal/core/grievance"
	"github.com/example/grievd/internal/ports/primary"
	"github.com/example/grievd/internal/ports/secondary"
)

// QueryServiceImpl implements the QueryService interface.
type QueryServiceImpl struct {
	store     secondary.EventStore
	stats     secondary.StatsRepository
	directory secondary.DepartmentDirectory
	clock     secondary.Clock
}

// NewQueryService creates a new QueryService with injected dependencies.
// directory may be nil, in which case only departments with grievances are known.
func NewQueryService(store secondary.EventStore, stats secondary.StatsRepository, directory secondary.DepartmentDirectory, clock secondary.Clock) *QueryServiceImpl {
	if clock == nil {
		clock = secondary.SystemClock{}
	}
	return &QueryServiceImpl{
		store:     store,
		stats:     stats,
		directory: directory,
		clock:     clock,
	}
}

var _ primary.QueryService = (*QueryServiceImpl)(nil)

// GetGrievanceView returns the cached view with SLA status evaluated now.
func (s *QueryServiceImpl) GetGrievanceView(ctx context.Context, grievanceID string) (*grievance.View, error) {
	view, err := s.store.GetView(ctx, grievanceID)
	if errors.Is(err, grievance.ErrNotFound) {
		// The log is the authority; a missing cache row is rebuilt on read.
		return s.RebuildView(ctx, grievanceID)
	}
	if err != nil {
		return nil, err
	}
	refreshed := grievance.Refresh(*view, s.clock.Now())
	return &refreshed, nil
}

// GetEventLog returns the grievance's events ordered by sequence.
func (s *QueryServiceImpl) GetEventLog(ctx context.Context, grievanceID string) ([]grievance.Event, error) {
	events, err := s.store.Read(ctx, grievanceID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("grievance %s: %w", grievanceID, grievance.ErrNotFound)
	}
	return events, nil
}

// GetDepartmentStats returns a department's aggregate. Departments that are
// neither configured nor referenced by any grievance are not found.
func (s *QueryServiceImpl) GetDepartmentStats(ctx context.Context, departmentID string) (*primary.DepartmentStats, error) {
	stats, err := s.stats.Get(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	name, known := s.departmentName(departmentID)
	if !known && stats.TotalComplaints == 0 {
		return nil, fmt.Errorf("department %s: %w", departmentID, grievance.ErrNotFound)
	}
	return primary.NewDepartmentStats(stats, name), nil
}

// ListDepartmentStats returns every department, best SLA score first.
// Configured departments without grievances are listed with zero stats.
func (s *QueryServiceImpl) ListDepartmentStats(ctx context.Context) ([]*primary.DepartmentStats, error) {
	stored, err := s.stats.List(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(stored))
	all := make([]deptstats.Stats, 0, len(stored))
	for _, st := range stored {
		seen[st.DepartmentID] = true
		all = append(all, st)
	}
	if s.directory != nil {
		for _, id := range s.directory.Departments() {
			if !seen[id] {
				all = append(all, deptstats.Stats{DepartmentID: id})
			}
		}
	}

	ranked := deptstats.Leaderboard(all)
	out := make([]*primary.DepartmentStats, len(ranked))
	for i, st := range ranked {
		name, _ := s.departmentName(st.DepartmentID)
		out[i] = primary.NewDepartmentStats(st, name)
	}
	return out, nil
}

// RebuildView re-folds the grievance's log and overwrites the cached view.
func (s *QueryServiceImpl) RebuildView(ctx context.Context, grievanceID string) (*grievance.View, error) {
	events, err := s.GetEventLog(ctx, grievanceID)
	if err != nil {
		return nil, err
	}
	view := grievance.Project(events)
	if err := s.store.SaveView(ctx, view); err != nil {
		return nil, fmt.Errorf("failed to save rebuilt view: %w", err)
	}
	refreshed := grievance.Refresh(view, s.clock.Now())
	return &refreshed, nil
}

func (s *QueryServiceImpl) departmentName(departmentID string) (string, bool) {
	if s.directory == nil {
		return "", false
	}
	return s.directory.DepartmentName(departmentID)
}
