package config

import (
	"fmt"
	"slices"
	"strings"
)

// Validate checks the config for:
//   - Categories routed to departments that are not configured
//   - Departments without a positive SLA window
//   - Unknown sink, log format or log level names
//   - Kafka sink without brokers
func Validate(cfg *Config) error {
	var errs []string

	for _, category := range sortedKeys(cfg.Routing.Categories) {
		dept := cfg.Routing.Categories[category]
		if strings.TrimSpace(category) == "" {
			errs = append(errs, "routing.categories: category name is required")
			continue
		}
		if _, ok := cfg.Routing.Departments[dept]; !ok {
			errs = append(errs, fmt.Sprintf("routing.categories.%s: department %q is not configured", category, dept))
		}
	}
	for _, id := range sortedKeys(cfg.Routing.Departments) {
		if cfg.Routing.Departments[id].SLAWindowDays <= 0 {
			errs = append(errs, fmt.Sprintf("routing.departments.%s: sla_window_days must be positive", id))
		}
	}

	switch cfg.Notify.Sink {
	case SinkLog:
	case SinkKafka:
		if len(cfg.Notify.Kafka.Brokers) == 0 {
			errs = append(errs, "notify.kafka.brokers: required when sink is kafka")
		}
	default:
		errs = append(errs, fmt.Sprintf("notify.sink: unknown sink %q", cfg.Notify.Sink))
	}
	if cfg.Notify.Workers < 1 || cfg.Notify.QueueDepth < 1 {
		errs = append(errs, "notify: workers and queue_depth must be positive")
	}

	if !slices.Contains([]string{"text", "json"}, cfg.Server.LogFormat) {
		errs = append(errs, fmt.Sprintf("server.log_format: unknown format %q", cfg.Server.LogFormat))
	}
	if _, err := ParseLevel(cfg.Server.LogLevel); err != nil {
		errs = append(errs, "server.log_level: "+err.Error())
	}
	if cfg.Engine.LockTimeout < 0 || cfg.Engine.SweepBudget < 0 || cfg.Engine.MonitorWorkers < 0 {
		errs = append(errs, "engine: durations and worker counts must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
