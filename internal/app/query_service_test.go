package app

import (
	"context"
	"errors"
	"testing"

	"github.com/example/grievd/internal/core/grievance"
	"github.com/example/grievd/internal/core/sla"
)

func TestQuery_GetEventLog(t *testing.T) {
	f := newFixture()
	id := f.fileGrievance(t)
	f.workOn(t, id)

	events, err := f.query().GetEventLog(context.Background(), id)
	if err != nil {
		t.Fatalf("GetEventLog() error = %v", err)
	}
	for i, ev := range events {
		if ev.Sequence != int64(i+1) {
			t.Errorf("events[%d].Sequence = %d, want %d", i, ev.Sequence, i+1)
		}
	}

	_, err = f.query().GetEventLog(context.Background(), "GRV-2026-000000")
	if !errors.Is(err, grievance.ErrNotFound) {
		t.Errorf("GetEventLog(unknown) = %v, want ErrNotFound", err)
	}
}

func TestQuery_ViewRebuiltWhenCacheMissing(t *testing.T) {
	f := newFixture()
	id := f.fileGrievance(t)
	f.workOn(t, id)
	delete(f.store.views, id)

	view, err := f.query().GetGrievanceView(context.Background(), id)
	if err != nil {
		t.Fatalf("GetGrievanceView() error = %v", err)
	}
	if view.Status != grievance.StatusAcknowledged || view.Version != 4 {
		t.Errorf("view = %s v%d, want acknowledged v4", view.Status, view.Version)
	}
	if _, ok := f.store.views[id]; !ok {
		t.Error("cache row not restored")
	}
}

func TestQuery_ClosedGrievanceKeepsFrozenSLA(t *testing.T) {
	f := newFixture()
	id := f.fileGrievance(t)
	f.workOn(t, id)
	f.clock.Advance(2 * sla.Day)
	f.close(t, id)
	f.clock.Advance(30 * sla.Day)

	view, err := f.query().GetGrievanceView(context.Background(), id)
	if err != nil {
		t.Fatalf("GetGrievanceView() error = %v", err)
	}
	if view.SLAStatus != sla.OnTrack {
		t.Errorf("SLAStatus = %q, want %q", view.SLAStatus, sla.OnTrack)
	}
	if view.SLAElapsedPercent != 40 {
		t.Errorf("SLAElapsedPercent = %d, want 40", view.SLAElapsedPercent)
	}
}

func TestQuery_DepartmentStats(t *testing.T) {
	f := newFixture()
	id := f.fileGrievance(t)
	f.workOn(t, id)
	f.close(t, id)
	f.fileGrievance(t)

	q := f.query()
	water, err := q.GetDepartmentStats(context.Background(), "DEPT-WATER")
	if err != nil {
		t.Fatalf("GetDepartmentStats() error = %v", err)
	}
	if water.TotalComplaints != 2 || water.ResolvedOnTime != 1 || water.SLAScore != 50 {
		t.Errorf("water = %+v, want 2 complaints, 1 on time, score 50", water)
	}
	if water.Name != "Water Supply" {
		t.Errorf("Name = %q, want %q", water.Name, "Water Supply")
	}

	roads, err := q.GetDepartmentStats(context.Background(), "DEPT-ROADS")
	if err != nil {
		t.Fatalf("GetDepartmentStats(roads) error = %v", err)
	}
	if roads.TotalComplaints != 0 || roads.SLAScore != 0 {
		t.Errorf("roads = %+v, want zero stats", roads)
	}

	if _, err := q.GetDepartmentStats(context.Background(), "DEPT-NOWHERE"); !errors.Is(err, grievance.ErrNotFound) {
		t.Errorf("GetDepartmentStats(unknown) = %v, want ErrNotFound", err)
	}

	board, err := q.ListDepartmentStats(context.Background())
	if err != nil {
		t.Fatalf("ListDepartmentStats() error = %v", err)
	}
	if len(board) != 2 || board[0].DepartmentID != "DEPT-WATER" || board[1].DepartmentID != "DEPT-ROADS" {
		t.Errorf("leaderboard = %+v, want water then roads", board)
	}
}
