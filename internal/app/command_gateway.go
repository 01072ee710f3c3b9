package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/grievd/internal/core/deptstats"
	"github.com/example/grievd/internal/core/grievance"
	"github.com/example/grievd/internal/core/reopen"
	"github.com/example/grievd/internal/core/transition"
	"github.com/example/grievd/internal/metrics"
	"github.com/example/grievd/internal/ports/primary"
	"github.com/example/grievd/internal/ports/secondary"
)

// DefaultLockTimeout bounds how long a command waits for its grievance lock.
const DefaultLockTimeout = 5 * time.Second

// EscalationReasonSLA is recorded on escalations raised by the monitor.
const EscalationReasonSLA = "sla_breached"

// idAttempts bounds how many generated ids a submission tries before giving up.
const idAttempts = 5

// errIDTaken reports that a generated id already has a log.
var errIDTaken = errors.New("generated grievance id already in use")

// CommandGatewayImpl implements the CommandGateway interface.
type CommandGatewayImpl struct {
	store       secondary.EventStore
	routing     secondary.RoutingTable
	notifier    secondary.Notifier
	clock       secondary.Clock
	locks       *KeyLock
	lockTimeout time.Duration
	newEntropy  func() string
	logger      *slog.Logger
}

// GatewayDeps holds the collaborators of the command gateway.
type GatewayDeps struct {
	Store    secondary.EventStore
	Routing  secondary.RoutingTable
	Notifier secondary.Notifier
	Clock    secondary.Clock
	Logger   *slog.Logger

	// LockTimeout defaults to DefaultLockTimeout.
	LockTimeout time.Duration
}

// NewCommandGateway creates a new CommandGateway with injected dependencies.
func NewCommandGateway(deps GatewayDeps) *CommandGatewayImpl {
	g := &CommandGatewayImpl{
		store:       deps.Store,
		routing:     deps.Routing,
		notifier:    deps.Notifier,
		clock:       deps.Clock,
		locks:       NewKeyLock(),
		lockTimeout: deps.LockTimeout,
		newEntropy:  uuid.NewString,
		logger:      deps.Logger,
	}
	if g.clock == nil {
		g.clock = secondary.SystemClock{}
	}
	if g.lockTimeout <= 0 {
		g.lockTimeout = DefaultLockTimeout
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

var _ primary.CommandGateway = (*CommandGatewayImpl)(nil)

// Submit validates the command and appends the resulting event.
func (g *CommandGatewayImpl) Submit(ctx context.Context, cmd primary.Command) (*primary.CommandResult, error) {
	start := time.Now()
	label := string(cmd.EventType)
	if !cmd.EventType.Known() {
		label = "unknown"
	}

	res, err := g.apply(ctx, cmd)
	metrics.CommandsTotal.WithLabelValues(label, grievance.ErrorKind(err)).Inc()
	if err != nil {
		g.logRejection(cmd, err)
		return nil, err
	}
	metrics.CommandDuration.WithLabelValues(label).Observe(metrics.Millis(time.Since(start)))

	g.logger.Info("event accepted",
		"grievance_id", res.Event.GrievanceID,
		"event_type", res.Event.Type,
		"sequence", res.Event.Sequence,
		"actor_id", res.Event.ActorID,
		"status", res.View.Status,
	)
	g.notify(ctx, res)

	res.View = grievance.Refresh(res.View, g.clock.Now())
	return res, nil
}

// apply validates the actor and resolves the grievance id. Submissions
// without an id get a generated one; a generated id that turns out to be
// taken is redrawn.
func (g *CommandGatewayImpl) apply(ctx context.Context, cmd primary.Command) (*primary.CommandResult, error) {
	if err := transition.CanSubmit(transition.RoleContext{Actor: cmd.Actor, EventType: cmd.EventType}).Error(); err != nil {
		return nil, err
	}

	if cmd.GrievanceID != "" {
		return g.applyTo(ctx, cmd, cmd.GrievanceID, false)
	}
	if cmd.EventType != grievance.EventSubmitted {
		return nil, grievance.NewPolicyViolation(grievance.RuleMissingField, "grievance id is required")
	}

	for attempt := 1; attempt <= idAttempts; attempt++ {
		id := grievance.GenerateGrievanceID(g.clock.Now().Year(), g.newEntropy())
		res, err := g.applyTo(ctx, cmd, id, true)
		if !errors.Is(err, errIDTaken) {
			return res, err
		}
		g.logger.Debug("generated grievance id taken, drawing another", "grievance_id", id, "attempt", attempt)
	}
	return nil, fmt.Errorf("no free grievance id after %d attempts: %w", idAttempts, errIDTaken)
}

// applyTo runs read-validate-append under the lock of id. When generated is
// set, id must not have a log yet.
func (g *CommandGatewayImpl) applyTo(ctx context.Context, cmd primary.Command, id string, generated bool) (*primary.CommandResult, error) {
	lockCtx, cancel := context.WithTimeout(ctx, g.lockTimeout)
	defer cancel()
	release, err := g.locks.Acquire(lockCtx, id)
	if err != nil {
		if errors.Is(err, grievance.ErrLockTimeout) {
			metrics.LockTimeouts.Inc()
		}
		return nil, err
	}
	defer release()

	events, err := g.store.Read(ctx, id)
	if err != nil {
		return nil, err
	}
	if generated && len(events) > 0 {
		return nil, errIDTaken
	}
	current := grievance.Project(events)
	if !current.Exists() && cmd.EventType != grievance.EventSubmitted {
		return nil, fmt.Errorf("grievance %s: %w", id, grievance.ErrNotFound)
	}

	if cmd.ExpectedVersion != nil && *cmd.ExpectedVersion != current.Version {
		return nil, &grievance.ConflictError{
			GrievanceID:     id,
			Kind:            grievance.ConflictVersion,
			EventType:       cmd.EventType,
			ExpectedVersion: *cmd.ExpectedVersion,
			ActualVersion:   current.Version,
		}
	}

	target, err := transition.Validate(transition.Request{
		GrievanceID:  id,
		Current:      current.Status,
		ExpectedFrom: cmd.ExpectedStatus,
		EventType:    cmd.EventType,
		Actor:        cmd.Actor,
		Payload:      cmd.Payload,
	})
	if err != nil {
		return nil, err
	}

	payload, err := g.preparePayload(cmd, current, g.clock.Now())
	if err != nil {
		return nil, err
	}

	draft := grievance.EventDraft{
		GrievanceID: id,
		Type:        cmd.EventType,
		Actor:       cmd.Actor,
		Payload:     payload,
	}
	result, err := g.store.Append(ctx, draft, current.Version, func(ev grievance.Event) (grievance.View, deptstats.Delta, error) {
		next := grievance.Apply(current, ev)
		if next.Status != target {
			return grievance.View{}, deptstats.Delta{}, fmt.Errorf("grievance %s: %s led to %s, validator expected %s", id, ev.Type, next.Status, target)
		}
		return next, deptstats.DeltaFor(current, next), nil
	})
	if generated && grievance.IsConflict(err) {
		// another process filed under the same id between read and append
		return nil, errIDTaken
	}
	if err != nil {
		return nil, err
	}

	return &primary.CommandResult{Event: result.Event, View: result.View}, nil
}

// preparePayload checks the event-specific preconditions and fills in the
// fields the engine owns (department, SLA window, escalation reason).
func (g *CommandGatewayImpl) preparePayload(cmd primary.Command, current grievance.View, now time.Time) (map[string]string, error) {
	payload := maps.Clone(cmd.Payload)
	if payload == nil {
		payload = map[string]string{}
	}

	switch cmd.EventType {
	case grievance.EventSubmitted:
		category := strings.TrimSpace(payload[grievance.KeyCategory])
		if category == "" {
			return nil, missingField(grievance.KeyCategory)
		}
		dept, ok := g.routing.DepartmentFor(category)
		if !ok {
			return nil, grievance.NewPolicyViolation(grievance.RuleUnknownCategory, fmt.Sprintf("unknown category %q", category))
		}
		days, err := g.windowFor(dept)
		if err != nil {
			return nil, err
		}
		payload[grievance.KeyCategory] = category
		payload[grievance.KeyDepartmentID] = dept
		payload[grievance.KeySLAWindowDays] = strconv.Itoa(days)

	case grievance.EventRouted:
		if dept := payload[grievance.KeyDepartmentID]; dept != "" && dept != current.DepartmentID {
			return nil, grievance.NewPolicyViolation(grievance.RuleDepartmentFixed, "department is fixed at routing")
		}
		payload[grievance.KeyDepartmentID] = current.DepartmentID

	case grievance.EventAssigned:
		if err := requireField(payload, grievance.KeyOfficerID); err != nil {
			return nil, err
		}

	case grievance.EventDelayExplained:
		if err := requireField(payload, grievance.KeyExplanation); err != nil {
			return nil, err
		}

	case grievance.EventProofUploaded:
		if err := requireField(payload, grievance.KeyEvidenceRef); err != nil {
			return nil, err
		}

	case grievance.EventEscalated:
		if payload[grievance.KeyReason] == "" && cmd.Actor.Role == grievance.RoleSystem {
			payload[grievance.KeyReason] = EscalationReasonSLA
		}

	case grievance.EventReopened:
		if cmd.Actor.Role == grievance.RoleCitizen && cmd.Actor.ID != current.CitizenID {
			return nil, &grievance.UnauthorizedError{
				ActorID:   cmd.Actor.ID,
				Role:      cmd.Actor.Role,
				EventType: cmd.EventType,
				Reason:    "only the submitting citizen may reopen a grievance",
			}
		}
		if err := reopen.CanReopen(reopen.ContextFromView(current, payload[grievance.KeyReason], now)).Error(); err != nil {
			return nil, err
		}
		days, err := g.windowFor(current.DepartmentID)
		if err != nil {
			return nil, err
		}
		payload[grievance.KeySLAWindowDays] = strconv.Itoa(days)
	}

	return payload, nil
}

func (g *CommandGatewayImpl) windowFor(departmentID string) (int, error) {
	days, ok := g.routing.SLAWindowDays(departmentID)
	if !ok {
		return 0, grievance.NewPolicyViolation(grievance.RuleUnknownDepartment, fmt.Sprintf("no SLA window configured for department %q", departmentID))
	}
	return days, nil
}

func requireField(payload map[string]string, key string) error {
	if strings.TrimSpace(payload[key]) == "" {
		return missingField(key)
	}
	return nil
}

func missingField(key string) error {
	return grievance.NewPolicyViolation(grievance.RuleMissingField, key+" is required")
}

// notify emits one notification per recipient. Failures are logged only;
// the event is already committed.
func (g *CommandGatewayImpl) notify(ctx context.Context, res *primary.CommandResult) {
	if g.notifier == nil {
		return
	}
	for _, recipient := range grievance.Recipients(res.View, res.Event) {
		n := secondary.Notification{
			ID:          uuid.NewString(),
			GrievanceID: res.Event.GrievanceID,
			EventType:   string(res.Event.Type),
			Recipient:   recipient,
			Payload:     res.Event.Payload,
			OccurredAt:  res.Event.OccurredAt,
		}
		if err := g.notifier.Notify(ctx, n); err != nil {
			g.logger.Warn("notification failed",
				"grievance_id", n.GrievanceID,
				"event_type", n.EventType,
				"recipient", recipient,
				"err", err,
			)
		}
	}
}

func (g *CommandGatewayImpl) logRejection(cmd primary.Command, err error) {
	kind := grievance.ErrorKind(err)
	attrs := []any{
		"grievance_id", cmd.GrievanceID,
		"event_type", cmd.EventType,
		"actor_id", cmd.Actor.ID,
		"kind", kind,
		"err", err,
	}
	switch kind {
	case "store_unavailable", "lock_timeout", "error":
		g.logger.Warn("command failed", attrs...)
	default:
		g.logger.Debug("command rejected", attrs...)
	}
}
