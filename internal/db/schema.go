package db

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is the version recorded for the schema below.
const SchemaVersion = 1

// SchemaSQL is the complete schema.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests use
// this schema via GetSchemaSQL(); if adapter code references a column that
// doesn't exist here, tests fail immediately with "no such column".
//
// grievance_events is the system of record and is append-only: triggers
// reject UPDATE and DELETE. grievances and department_stats are derived and
// can be rebuilt from it.
const SchemaSQL = `
-- Append-only event log
CREATE TABLE IF NOT EXISTS grievance_events (
	id TEXT PRIMARY KEY,
	grievance_id TEXT NOT NULL,
	sequence INTEGER NOT NULL CHECK(sequence > 0),
	event_type TEXT NOT NULL,
	actor_id TEXT NOT NULL,
	actor_role TEXT NOT NULL CHECK(actor_role IN ('citizen', 'officer', 'system')),
	payload TEXT NOT NULL DEFAULT '{}',
	occurred_at TEXT NOT NULL,
	UNIQUE (grievance_id, sequence)
);

CREATE TRIGGER IF NOT EXISTS grievance_events_no_update
BEFORE UPDATE ON grievance_events
BEGIN
	SELECT RAISE(ABORT, 'grievance_events is append-only');
END;

CREATE TRIGGER IF NOT EXISTS grievance_events_no_delete
BEFORE DELETE ON grievance_events
BEGIN
	SELECT RAISE(ABORT, 'grievance_events is append-only');
END;

-- Materialized views (cache of the log)
CREATE TABLE IF NOT EXISTS grievances (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	sla_status TEXT NOT NULL,
	department_id TEXT NOT NULL,
	citizen_id TEXT NOT NULL,
	version INTEGER NOT NULL,
	sla_deadline_at TEXT,
	view TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_grievances_status ON grievances(status);
CREATE INDEX IF NOT EXISTS idx_grievances_department ON grievances(department_id);

-- Department accountability aggregates
CREATE TABLE IF NOT EXISTS department_stats (
	department_id TEXT PRIMARY KEY,
	total_complaints INTEGER NOT NULL DEFAULT 0,
	resolved_on_time INTEGER NOT NULL DEFAULT 0,
	breached_count INTEGER NOT NULL DEFAULT 0,
	escalated_count INTEGER NOT NULL DEFAULT 0,
	reconciled_at TEXT,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY,
	applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// InitSchema creates the schema on a fresh database and refuses to open a
// database written by a newer schema.
func InitSchema(conn *sql.DB) error {
	if _, err := conn.Exec(SchemaSQL); err != nil {
		return err
	}

	var current sql.NullInt64
	if err := conn.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&current); err != nil {
		return err
	}
	if !current.Valid {
		_, err := conn.Exec("INSERT INTO schema_version (version) VALUES (?)", SchemaVersion)
		return err
	}
	if current.Int64 > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", current.Int64, SchemaVersion)
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
