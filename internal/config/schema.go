// Package config loads grievd's YAML configuration and serves the routing
// table from it, reloading when the file changes.
package config

import "time"

// Config is the top-level YAML structure.
type Config struct {
	Server   ServerConf   `yaml:"server"`
	Database DatabaseConf `yaml:"database"`
	Engine   EngineConf   `yaml:"engine"`
	Routing  RoutingConf  `yaml:"routing"`
	Notify   NotifyConf   `yaml:"notify"`
	Auth     AuthConf     `yaml:"auth"`
}

// ServerConf configures the HTTP listener and logging.
type ServerConf struct {
	Addr      string `yaml:"addr"`
	LogFormat string `yaml:"log_format"` // text or json
	LogLevel  string `yaml:"log_level"`
}

// DatabaseConf locates the SQLite database.
type DatabaseConf struct {
	Path string `yaml:"path"` // empty = ~/.grievd/grievd.db
}

// EngineConf holds the tunables of the command gateway and background jobs.
type EngineConf struct {
	LockTimeout       time.Duration `yaml:"lock_timeout"`
	MonitorInterval   time.Duration `yaml:"monitor_interval"`
	SweepBudget       time.Duration `yaml:"sweep_budget"`
	MonitorWorkers    int           `yaml:"monitor_workers"`
	ReconcileInterval time.Duration `yaml:"reconcile_interval"`
}

// RoutingConf maps categories to departments.
type RoutingConf struct {
	Categories  map[string]string         `yaml:"categories"`
	Departments map[string]DepartmentConf `yaml:"departments"`
}

// DepartmentConf describes one department.
type DepartmentConf struct {
	Name          string `yaml:"name"`
	SLAWindowDays int    `yaml:"sla_window_days"`
}

// NotifyConf selects and tunes the notification sink.
type NotifyConf struct {
	Sink       string    `yaml:"sink"` // log or kafka
	Kafka      KafkaConf `yaml:"kafka"`
	QueueDepth int       `yaml:"queue_depth"`
	Workers    int       `yaml:"workers"`
}

// KafkaConf locates the notification topic.
type KafkaConf struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// AuthConf configures bearer-token verification for the HTTP API.
type AuthConf struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
}

// Sink names.
const (
	SinkLog   = "log"
	SinkKafka = "kafka"
)

// applyDefaults fills every unset tunable.
func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.LogFormat == "" {
		cfg.Server.LogFormat = "text"
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = "info"
	}
	if cfg.Engine.LockTimeout == 0 {
		cfg.Engine.LockTimeout = 5 * time.Second
	}
	if cfg.Engine.MonitorInterval == 0 {
		cfg.Engine.MonitorInterval = time.Minute
	}
	if cfg.Engine.SweepBudget == 0 {
		cfg.Engine.SweepBudget = 30 * time.Second
	}
	if cfg.Engine.MonitorWorkers == 0 {
		cfg.Engine.MonitorWorkers = 4
	}
	if cfg.Engine.ReconcileInterval == 0 {
		cfg.Engine.ReconcileInterval = time.Hour
	}
	if cfg.Notify.Sink == "" {
		cfg.Notify.Sink = SinkLog
	}
	if cfg.Notify.QueueDepth == 0 {
		cfg.Notify.QueueDepth = 1000
	}
	if cfg.Notify.Workers == 0 {
		cfg.Notify.Workers = 2
	}
	if cfg.Notify.Kafka.Topic == "" {
		cfg.Notify.Kafka.Topic = "grievance-notifications"
	}
}

// Default returns a configuration with every default applied and a small
// built-in routing table, used when no config file is given.
func Default() *Config {
	cfg := &Config{
		Routing: RoutingConf{
			Categories: map[string]string{
				"water":       "DEPT-WATER",
				"sewage":      "DEPT-WATER",
				"roads":       "DEPT-ROADS",
				"streetlight": "DEPT-ROADS",
				"sanitation":  "DEPT-SANITATION",
			},
			Departments: map[string]DepartmentConf{
				"DEPT-WATER":      {Name: "Water Supply", SLAWindowDays: 5},
				"DEPT-ROADS":      {Name: "Roads and Lighting", SLAWindowDays: 10},
				"DEPT-SANITATION": {Name: "Sanitation", SLAWindowDays: 3},
			},
		},
	}
	applyDefaults(cfg)
	return cfg
}
