package app

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/example/grievd/internal/core/grievance"
	"github.com/example/grievd/internal/metrics"
	"github.com/example/grievd/internal/ports/primary"
	"github.com/example/grievd/internal/ports/secondary"
	"github.com/example/grievd/internal/workerpool"
)

// Monitor defaults.
const (
	DefaultSweepBudget    = 30 * time.Second
	DefaultMonitorWorkers = 4
)

// EscalationMonitorImpl implements the EscalationMonitor interface.
// It never writes to the store directly: escalations go through the gateway
// with the version and status the sweep observed.
type EscalationMonitorImpl struct {
	store   secondary.EventStore
	gateway primary.CommandGateway
	clock   secondary.Clock
	workers int
	budget  time.Duration
	logger  *slog.Logger

	running atomic.Bool
}

// MonitorOptions tunes a sweep.
type MonitorOptions struct {
	Workers int
	Budget  time.Duration
}

// NewEscalationMonitor creates a new EscalationMonitor with injected dependencies.
func NewEscalationMonitor(store secondary.EventStore, gateway primary.CommandGateway, clock secondary.Clock, logger *slog.Logger, opts MonitorOptions) *EscalationMonitorImpl {
	if clock == nil {
		clock = secondary.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultMonitorWorkers
	}
	if opts.Budget <= 0 {
		opts.Budget = DefaultSweepBudget
	}
	return &EscalationMonitorImpl{
		store:   store,
		gateway: gateway,
		clock:   clock,
		workers: opts.Workers,
		budget:  opts.Budget,
		logger:  logger,
	}
}

var _ primary.EscalationMonitor = (*EscalationMonitorImpl)(nil)

// Sweep checks every open grievance once and escalates the breached ones.
// A sweep that is already running makes this call return an empty report.
// Grievances not reached within the budget are counted as skipped.
func (m *EscalationMonitorImpl) Sweep(ctx context.Context) (report primary.SweepReport) {
	if !m.running.CompareAndSwap(false, true) {
		m.logger.Info("sweep already in progress, skipping")
		return report
	}
	defer m.running.Store(false)

	start := time.Now()
	defer func() {
		report.Duration = time.Since(start)
		m.record(report)
	}()

	sweepCtx, cancel := context.WithTimeout(ctx, m.budget)
	defer cancel()

	views, err := m.store.ListOpen(sweepCtx)
	if err != nil {
		m.logger.Error("sweep could not list open grievances", "err", err)
		report.Failed++
		return report
	}
	report.Checked = len(views)

	now := m.clock.Now()
	var candidates []grievance.View
	for _, v := range views {
		if grievance.NeedsEscalation(v, now) {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return report
	}

	pool := workerpool.New(sweepCtx, m.workers, m.workers, m.escalate)
	results := make(chan workerpool.Result[grievance.View, struct{}], len(candidates))
	for _, v := range candidates {
		if err := pool.SubmitWait(sweepCtx, v, results); err != nil {
			break
		}
	}
	pool.Drain()
	close(results)

	processed := 0
	for r := range results {
		processed++
		switch {
		case r.Err == nil:
			report.Escalated++
		case grievance.IsConflict(r.Err):
			// Someone else moved the grievance since we looked; not ours to retry.
			report.Conflicts++
			m.logger.Debug("escalation lost race", "grievance_id", r.Input.ID, "err", r.Err)
		case sweepCtx.Err() != nil:
			report.Skipped++
		default:
			report.Failed++
			m.logger.Warn("escalation failed", "grievance_id", r.Input.ID, "err", r.Err)
		}
	}
	report.Skipped += len(candidates) - processed
	if report.Skipped > 0 {
		m.logger.Warn("sweep budget exhausted", "skipped", report.Skipped, "budget", m.budget)
	}
	return report
}

func (m *EscalationMonitorImpl) escalate(ctx context.Context, v grievance.View) (struct{}, error) {
	_, err := m.gateway.Submit(ctx, primary.Command{
		GrievanceID:     v.ID,
		EventType:       grievance.EventEscalated,
		Actor:           grievance.SystemActor(),
		Payload:         map[string]string{grievance.KeyReason: EscalationReasonSLA},
		ExpectedVersion: primary.Version(v.Version),
		ExpectedStatus:  v.Status,
	})
	return struct{}{}, err
}

func (m *EscalationMonitorImpl) record(r primary.SweepReport) {
	metrics.SweepsTotal.Inc()
	metrics.SweepDuration.Observe(metrics.Millis(r.Duration))
	metrics.SweepOutcomes.WithLabelValues("escalated").Add(float64(r.Escalated))
	metrics.SweepOutcomes.WithLabelValues("conflict").Add(float64(r.Conflicts))
	metrics.SweepOutcomes.WithLabelValues("skipped").Add(float64(r.Skipped))
	metrics.SweepOutcomes.WithLabelValues("failed").Add(float64(r.Failed))

	m.logger.Info("sweep finished",
		"checked", r.Checked,
		"escalated", r.Escalated,
		"conflicts", r.Conflicts,
		"skipped", r.Skipped,
		"failed", r.Failed,
		"duration", r.Duration,
	)
}

// Run sweeps every interval until ctx is done. Sweeps run one at a time;
// ticks that fall inside a sweep are coalesced.
func (m *EscalationMonitorImpl) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}
