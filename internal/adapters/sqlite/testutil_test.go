// Package sqlite_test contains integration tests for the SQLite adapters.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
package sqlite_test

import (
	"database/sql"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/grievd/internal/core/deptstats"
	"github.com/example/grievd/internal/core/grievance"
	"github.com/example/grievd/internal/db"
	"github.com/example/grievd/internal/ports/secondary"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// A single connection keeps every query on the same in-memory database.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

var testStart = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

// stepClock returns a fixed time that tests move by hand.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// foldOnto returns a FoldFunc applying the event on top of prev.
func foldOnto(prev grievance.View) secondary.FoldFunc {
	return func(ev grievance.Event) (grievance.View, deptstats.Delta, error) {
		next := grievance.Apply(prev, ev)
		return next, deptstats.DeltaFor(prev, next), nil
	}
}

var (
	testCitizen = grievance.Actor{ID: "CIT-1", Role: grievance.RoleCitizen}
	testOfficer = grievance.Actor{ID: "OFF-1", Role: grievance.RoleOfficer}
)

func submitDraft(id, dept string) grievance.EventDraft {
	return grievance.EventDraft{
		GrievanceID: id,
		Type:        grievance.EventSubmitted,
		Actor:       testCitizen,
		Payload: map[string]string{
			grievance.KeyCategory:      "water",
			grievance.KeyDepartmentID:  dept,
			grievance.KeySLAWindowDays: "5",
		},
	}
}

func draft(id string, et grievance.EventType, payload map[string]string) grievance.EventDraft {
	return grievance.EventDraft{GrievanceID: id, Type: et, Actor: testOfficer, Payload: payload}
}
