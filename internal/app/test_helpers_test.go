package app

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/example/grievd/internal/core/deptstats"
	"github.com/example/grievd/internal/core/grievance"
	"github.com/example/grievd/internal/ports/secondary"
)

var testStart = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: testStart}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Ensure mocks implement the interfaces.
var (
	_ secondary.EventStore          = (*mockEventStore)(nil)
	_ secondary.StatsRepository     = (*mockStatsRepository)(nil)
	_ secondary.RoutingTable        = (*staticRouting)(nil)
	_ secondary.DepartmentDirectory = (*staticRouting)(nil)
	_ secondary.Notifier            = (*recordingNotifier)(nil)
)

// mockEventStore implements secondary.EventStore in memory with the same
// optimistic version check as the real store.
type mockEventStore struct {
	mu     sync.Mutex
	clock  secondary.Clock
	events map[string][]grievance.Event
	views  map[string]grievance.View
	stats  map[string]deptstats.Stats

	appendErr error
	readErr   error
	appends   int
}

func newMockEventStore(clock secondary.Clock) *mockEventStore {
	return &mockEventStore{
		clock:  clock,
		events: make(map[string][]grievance.Event),
		views:  make(map[string]grievance.View),
		stats:  make(map[string]deptstats.Stats),
	}
}

func (m *mockEventStore) Append(ctx context.Context, draft grievance.EventDraft, expectedVersion int64, fold secondary.FoldFunc) (*secondary.AppendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return nil, m.appendErr
	}

	log := m.events[draft.GrievanceID]
	if int64(len(log)) != expectedVersion {
		return nil, &grievance.ConflictError{
			GrievanceID:     draft.GrievanceID,
			Kind:            grievance.ConflictVersion,
			EventType:       draft.Type,
			ExpectedVersion: expectedVersion,
			ActualVersion:   int64(len(log)),
		}
	}

	ev := draft.Seal(expectedVersion+1, m.clock.Now())
	view, delta, err := fold(ev)
	if err != nil {
		return nil, err
	}
	m.events[draft.GrievanceID] = append(log, ev)
	m.views[draft.GrievanceID] = view
	if !delta.IsZero() {
		m.stats[delta.DepartmentID] = m.stats[delta.DepartmentID].Apply(delta)
	}
	m.appends++
	return &secondary.AppendResult{Event: ev, View: view}, nil
}

func (m *mockEventStore) Read(ctx context.Context, grievanceID string) ([]grievance.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	return append([]grievance.Event(nil), m.events[grievanceID]...), nil
}

func (m *mockEventStore) GetView(ctx context.Context, grievanceID string) (*grievance.View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.views[grievanceID]
	if !ok {
		return nil, grievance.ErrNotFound
	}
	return &v, nil
}

func (m *mockEventStore) SaveView(ctx context.Context, view grievance.View) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.views[view.ID] = view
	return nil
}

func (m *mockEventStore) ListOpen(ctx context.Context) ([]grievance.View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []grievance.View
	for _, v := range m.views {
		if v.Status.IsOpen() {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockEventStore) ListIDsByDepartment(ctx context.Context, departmentID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, v := range m.views {
		if v.DepartmentID == departmentID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *mockEventStore) ListDepartments(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, v := range m.views {
		if !seen[v.DepartmentID] {
			seen[v.DepartmentID] = true
			out = append(out, v.DepartmentID)
		}
	}
	sort.Strings(out)
	return out, nil
}

// mockStatsRepository exposes the stats the mock store maintains.
type mockStatsRepository struct {
	store *mockEventStore
}

func (m *mockStatsRepository) Get(ctx context.Context, departmentID string) (deptstats.Stats, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	s := m.store.stats[departmentID]
	s.DepartmentID = departmentID
	return s, nil
}

func (m *mockStatsRepository) List(ctx context.Context) ([]deptstats.Stats, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var out []deptstats.Stats
	for id, s := range m.store.stats {
		s.DepartmentID = id
		out = append(out, s)
	}
	return out, nil
}

func (m *mockStatsRepository) Overwrite(ctx context.Context, stats deptstats.Stats) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.stats[stats.DepartmentID] = stats
	return nil
}

// staticRouting is a fixed routing table.
type staticRouting struct {
	categories map[string]string
	windows    map[string]int
	names      map[string]string
}

func newStaticRouting() *staticRouting {
	return &staticRouting{
		categories: map[string]string{
			"water": "DEPT-WATER",
			"roads": "DEPT-ROADS",
		},
		windows: map[string]int{
			"DEPT-WATER": 5,
			"DEPT-ROADS": 10,
		},
		names: map[string]string{
			"DEPT-WATER": "Water Supply",
			"DEPT-ROADS": "Roads & Transport",
		},
	}
}

func (r *staticRouting) DepartmentFor(category string) (string, bool) {
	d, ok := r.categories[category]
	return d, ok
}

func (r *staticRouting) SLAWindowDays(departmentID string) (int, bool) {
	d, ok := r.windows[departmentID]
	return d, ok
}

func (r *staticRouting) Departments() []string {
	out := make([]string, 0, len(r.windows))
	for id := range r.windows {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (r *staticRouting) DepartmentName(departmentID string) (string, bool) {
	n, ok := r.names[departmentID]
	return n, ok
}

// recordingNotifier collects every notification it is handed.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []secondary.Notification
	err  error
}

func (n *recordingNotifier) Notify(ctx context.Context, msg secondary.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) recipients() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.sent))
	for i, msg := range n.sent {
		out[i] = msg.Recipient
	}
	return out
}

// fixture wires a gateway to in-memory collaborators.
type fixture struct {
	clock    *fakeClock
	store    *mockEventStore
	stats    *mockStatsRepository
	routing  *staticRouting
	notifier *recordingNotifier
	gateway  *CommandGatewayImpl
}

func newFixture() *fixture {
	clock := newFakeClock()
	store := newMockEventStore(clock)
	f := &fixture{
		clock:    clock,
		store:    store,
		stats:    &mockStatsRepository{store: store},
		routing:  newStaticRouting(),
		notifier: &recordingNotifier{},
	}
	f.gateway = NewCommandGateway(GatewayDeps{
		Store:       store,
		Routing:     f.routing,
		Notifier:    f.notifier,
		Clock:       clock,
		Logger:      discardLogger(),
		LockTimeout: time.Second,
	})
	return f
}
