package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleYAML = `
server:
  addr: ":9090"
  log_format: json
engine:
  lock_timeout: 2s
  monitor_interval: 30s
routing:
  categories:
    water: DEPT-WATER
    potholes: DEPT-ROADS
  departments:
    DEPT-WATER:
      name: Water Supply
      sla_window_days: 5
    DEPT-ROADS:
      name: Roads
      sla_window_days: 10
notify:
  sink: kafka
  kafka:
    brokers: ["localhost:9092"]
auth:
  jwt_secret: s3cret
`

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestParse_AppliesDefaultsAndKeepsValues(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Server.Addr != ":9090" || cfg.Server.LogFormat != "json" || cfg.Server.LogLevel != "info" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Engine.LockTimeout != 2*time.Second || cfg.Engine.MonitorInterval != 30*time.Second {
		t.Errorf("Engine durations = %+v", cfg.Engine)
	}
	if cfg.Engine.SweepBudget != 30*time.Second || cfg.Engine.MonitorWorkers != 4 {
		t.Errorf("Engine defaults = %+v", cfg.Engine)
	}
	if cfg.Notify.Kafka.Topic != "grievance-notifications" || cfg.Notify.QueueDepth != 1000 {
		t.Errorf("Notify = %+v", cfg.Notify)
	}
	if cfg.Routing.Departments["DEPT-ROADS"].SLAWindowDays != 10 {
		t.Errorf("Routing = %+v", cfg.Routing)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "category to unknown department",
			yaml:    "routing:\n  categories:\n    water: DEPT-NOPE\n",
			wantErr: `department "DEPT-NOPE" is not configured`,
		},
		{
			name:    "non-positive window",
			yaml:    "routing:\n  departments:\n    DEPT-WATER:\n      sla_window_days: 0\n",
			wantErr: "sla_window_days must be positive",
		},
		{
			name:    "unknown sink",
			yaml:    "notify:\n  sink: carrier-pigeon\n",
			wantErr: `unknown sink "carrier-pigeon"`,
		},
		{
			name:    "kafka without brokers",
			yaml:    "notify:\n  sink: kafka\n",
			wantErr: "brokers: required",
		},
		{
			name:    "unknown log level",
			yaml:    "server:\n  log_level: loud\n",
			wantErr: `unknown level "loud"`,
		},
		{
			name:    "malformed yaml",
			yaml:    "routing: [",
			wantErr: "parse config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestDefault_IsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Errorf("Validate(Default()) = %v", err)
	}
}

func TestRouting_Lookups(t *testing.T) {
	r := NewRouting(NewStaticLoader(Default()))

	if dept, ok := r.DepartmentFor("Water"); !ok || dept != "DEPT-WATER" {
		t.Errorf("DepartmentFor(Water) = %q, %v", dept, ok)
	}
	if _, ok := r.DepartmentFor("parking"); ok {
		t.Error("DepartmentFor(parking) found a department")
	}
	if days, ok := r.SLAWindowDays("DEPT-ROADS"); !ok || days != 10 {
		t.Errorf("SLAWindowDays(DEPT-ROADS) = %d, %v", days, ok)
	}
	if name, ok := r.DepartmentName("DEPT-SANITATION"); !ok || name != "Sanitation" {
		t.Errorf("DepartmentName() = %q, %v", name, ok)
	}
	want := []string{"DEPT-ROADS", "DEPT-SANITATION", "DEPT-WATER"}
	got := r.Departments()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Departments() = %v, want %v", got, want)
	}
}

func TestLoader_ReloadSwapsConfigAndNotifies(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, sampleYAML)

	l, err := NewLoader(path)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}
	r := NewRouting(l)

	var seen int
	l.OnChange(func(*Config) { seen++ })

	updated := strings.Replace(sampleYAML, "sla_window_days: 5", "sla_window_days: 7", 1)
	writeConfig(t, dir, updated)
	if _, err := l.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	if days, _ := r.SLAWindowDays("DEPT-WATER"); days != 7 {
		t.Errorf("SLAWindowDays after reload = %d, want 7", days)
	}
	if seen != 1 {
		t.Errorf("OnChange callbacks = %d, want 1", seen)
	}
}

func TestLoader_InvalidReloadKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, sampleYAML)
	l, err := NewLoader(path)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	writeConfig(t, dir, "routing:\n  categories:\n    water: DEPT-GONE\n")
	if _, err := l.Reload(); err == nil {
		t.Fatal("Reload() of invalid config succeeded")
	}
	if l.Config().Server.Addr != ":9090" {
		t.Errorf("config replaced by invalid reload: %+v", l.Config().Server)
	}
}

func TestLoader_WatchPicksUpWrites(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, sampleYAML)
	l, err := NewLoader(path)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	changed := make(chan *Config, 16)
	l.OnChange(func(c *Config) {
		select {
		case changed <- c:
		default:
		}
	})

	stop, err := l.Watch()
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer stop()

	writeConfig(t, dir, strings.Replace(sampleYAML, `":9090"`, `":9191"`, 1))

	timeout := time.After(5 * time.Second)
	for {
		select {
		case c := <-changed:
			if c.Server.Addr == ":9191" {
				return
			}
		case <-timeout:
			t.Fatal("config change not observed")
		}
	}
}

func TestNewLoader_MissingFile(t *testing.T) {
	if _, err := NewLoader(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("NewLoader() of missing file succeeded")
	}
}
