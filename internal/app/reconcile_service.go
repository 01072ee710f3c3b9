package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/grievd/internal/core/deptstats"
	"github.com/example/grievd/internal/core/grievance"
	"github.com/example/grievd/internal/metrics"
	"github.com/example/grievd/internal/ports/primary"
	"github.com/example/grievd/internal/ports/secondary"
)

// ReconcileServiceImpl implements the Reconciler interface. The full rescan
// is the authority; the incremental counters are only a fast path.
type ReconcileServiceImpl struct {
	store  secondary.EventStore
	stats  secondary.StatsRepository
	logger *slog.Logger
}

// NewReconcileService creates a new Reconciler with injected dependencies.
func NewReconcileService(store secondary.EventStore, stats secondary.StatsRepository, logger *slog.Logger) *ReconcileServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconcileServiceImpl{
		store:  store,
		stats:  stats,
		logger: logger,
	}
}

var _ primary.Reconciler = (*ReconcileServiceImpl)(nil)

// ReconcileDepartment re-folds every grievance of the department and
// overwrites the stored stats when they disagree.
func (s *ReconcileServiceImpl) ReconcileDepartment(ctx context.Context, departmentID string) (*primary.ReconcileResult, error) {
	ids, err := s.store.ListIDsByDepartment(ctx, departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list grievances of %s: %w", departmentID, err)
	}

	views := make([]grievance.View, 0, len(ids))
	for _, id := range ids {
		events, err := s.store.Read(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", id, err)
		}
		views = append(views, grievance.Project(events))
	}
	full := deptstats.Rollup(departmentID, views)

	stored, err := s.stats.Get(ctx, departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats of %s: %w", departmentID, err)
	}

	result := &primary.ReconcileResult{
		DepartmentID: departmentID,
		Before:       primary.NewDepartmentStats(stored, ""),
		After:        primary.NewDepartmentStats(full, ""),
	}
	if stored.Equal(full) {
		return result, nil
	}

	if err := s.stats.Overwrite(ctx, full); err != nil {
		return nil, fmt.Errorf("failed to overwrite stats of %s: %w", departmentID, err)
	}
	result.Drifted = true
	metrics.StatsDrift.WithLabelValues(departmentID).Inc()
	s.logger.Warn("department stats drift corrected",
		"department_id", departmentID,
		"stored_total", stored.TotalComplaints,
		"rescan_total", full.TotalComplaints,
		"stored_on_time", stored.ResolvedOnTime,
		"rescan_on_time", full.ResolvedOnTime,
	)
	return result, nil
}

// ReconcileAll reconciles every department that has grievances. A failure
// on one department does not stop the others.
func (s *ReconcileServiceImpl) ReconcileAll(ctx context.Context) ([]*primary.ReconcileResult, error) {
	departments, err := s.store.ListDepartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}

	var (
		results []*primary.ReconcileResult
		errs    []error
	)
	for _, dept := range departments {
		r, err := s.ReconcileDepartment(ctx, dept)
		if err != nil {
			s.logger.Error("reconciliation failed", "department_id", dept, "err", err)
			errs = append(errs, err)
			continue
		}
		results = append(results, r)
	}
	return results, errors.Join(errs...)
}

// Run reconciles every interval until ctx is done.
func (s *ReconcileServiceImpl) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.ReconcileAll(ctx); err != nil {
				s.logger.Warn("reconciliation pass incomplete", "err", err)
			}
		}
	}
}
