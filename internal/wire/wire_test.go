package wire

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/grievd/internal/core/grievance"
	"github.com/example/grievd/internal/ports/primary"
)

func TestBuild_EndToEnd(t *testing.T) {
	t.Setenv("GRIEVD_JWT_SECRET", "")
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	body := "routing:\n  categories:\n    water: DEPT-WATER\n  departments:\n    DEPT-WATER:\n      name: Water\n      sla_window_days: 5\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	c, err := Build(Options{ConfigPath: cfgPath, DBPath: filepath.Join(dir, "grievd.db"), LogOutput: io.Discard})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	res, err := c.Gateway.Submit(ctx, primary.Command{
		EventType: grievance.EventSubmitted,
		Actor:     grievance.Actor{ID: "CIT-1", Role: grievance.RoleCitizen},
		Payload:   map[string]string{grievance.KeyCategory: "water"},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	view, err := c.Queries.GetGrievanceView(ctx, res.View.ID)
	if err != nil {
		t.Fatalf("GetGrievanceView() error = %v", err)
	}
	if view.DepartmentID != "DEPT-WATER" {
		t.Errorf("DepartmentID = %q, want DEPT-WATER", view.DepartmentID)
	}

	stats, err := c.Queries.GetDepartmentStats(ctx, "DEPT-WATER")
	if err != nil {
		t.Fatalf("GetDepartmentStats() error = %v", err)
	}
	if stats.TotalComplaints != 1 || stats.Name != "Water" {
		t.Errorf("stats = %+v", stats)
	}

	if _, err := c.HTTPHandler(); err == nil {
		t.Error("HTTPHandler() without a secret succeeded")
	}
}

func TestBuild_SecretFromEnvironment(t *testing.T) {
	t.Setenv("GRIEVD_JWT_SECRET", "env-secret")
	c, err := Build(Options{ConfigPath: writeDefaultConfig(t), DBPath: ":memory:", LogOutput: io.Discard})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer c.Close()

	if c.Auth == nil {
		t.Fatal("Auth = nil, want authenticator from environment")
	}
	if _, err := c.HTTPHandler(); err != nil {
		t.Errorf("HTTPHandler() error = %v", err)
	}
}

func TestBuild_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("notify:\n  sink: pigeon\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := Build(Options{ConfigPath: path, DBPath: ":memory:", LogOutput: io.Discard}); err == nil {
		t.Error("Build() with invalid config succeeded")
	}
}

func writeDefaultConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  log_level: warn\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}
