package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/njnj03/homewatch/internal/eventbus"
	"github.com/njnj03/homewatch/pkg/models"
)

// fakeProvider is an in-memory authoritative alert source.
type fakeProvider struct {
	mu      sync.Mutex
	alerts  map[models.AlertID]*models.Alert
	houses  []*models.House
	listErr error
}

func newFakeProvider(alerts ...*models.Alert) *fakeProvider {
	p := &fakeProvider{
		alerts: make(map[models.AlertID]*models.Alert),
		houses: []*models.House{
			{ID: "H001", Name: "Smith Family Home"},
			{ID: "H002", Name: "Johnson Residence"},
		},
	}
	for _, a := range alerts {
		clone := *a
		p.alerts[a.ID] = &clone
	}
	return p
}

func (p *fakeProvider) ListAlerts(ctx context.Context, params models.ListAlertsParams) (*models.AlertList, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listErr != nil {
		return nil, p.listErr
	}
	out := make([]*models.Alert, 0, len(p.alerts))
	for _, a := range p.alerts {
		clone := *a
		out = append(out, &clone)
	}
	return &models.AlertList{Alerts: out, Total: len(out)}, nil
}

func (p *fakeProvider) ListHouses(ctx context.Context) ([]*models.House, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listErr != nil {
		return nil, p.listErr
	}
	return p.houses, nil
}

func (p *fakeProvider) transition(id models.AlertID, op models.TransitionOp, notes string) (*models.Alert, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	a, ok := p.alerts[id]
	if !ok {
		return nil, fmt.Errorf("alert not found: %s", id)
	}
	if !models.ValidateTransition(a.Status, op) {
		return nil, fmt.Errorf("cannot %s alert in status %q", op, a.Status)
	}
	now := time.Now().UTC()
	a.Status = op.TargetStatus()
	if notes != "" {
		a.Notes = notes
	}
	switch op {
	case models.TransitionAcknowledge:
		a.AcknowledgedAt = &now
	case models.TransitionResolve:
		a.ResolvedAt = &now
	case models.TransitionDismiss:
		a.DismissedAt = &now
	}
	clone := *a
	return &clone, nil
}

func (p *fakeProvider) AcknowledgeAlert(ctx context.Context, id models.AlertID, notes string) (*models.Alert, error) {
	return p.transition(id, models.TransitionAcknowledge, notes)
}

func (p *fakeProvider) ResolveAlert(ctx context.Context, id models.AlertID, notes string) (*models.Alert, error) {
	return p.transition(id, models.TransitionResolve, notes)
}

func (p *fakeProvider) DismissAlert(ctx context.Context, id models.AlertID, notes string) (*models.Alert, error) {
	return p.transition(id, models.TransitionDismiss, notes)
}

func (p *fakeProvider) setListErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listErr = err
}

func testAlert(id models.AlertID, status models.AlertStatus) *models.Alert {
	return &models.Alert{
		ID:        id,
		HouseID:   "H001",
		Type:      models.AlertTypeDistress,
		Severity:  models.AlertSeverityHigh,
		Status:    status,
		CreatedAt: time.Now().UTC().Add(-5 * time.Minute),
	}
}

func testController(t *testing.T, provider Provider, bus eventbus.Subscriber) *Controller {
	t.Helper()
	return New(Options{
		Provider:     provider,
		Bus:          bus,
		Logger:       slog.New(slog.DiscardHandler),
		PollInterval: time.Hour, // tests drive polls explicitly
	})
}

func statusOf(t *testing.T, c *Controller, id models.AlertID) models.AlertStatus {
	t.Helper()
	for _, a := range c.Snapshot() {
		if a.ID == id {
			return a.Status
		}
	}
	t.Fatalf("alert %s not in snapshot", id)
	return ""
}

func TestTransitionHappyPath(t *testing.T) {
	ctx := context.Background()
	provider := newFakeProvider(testAlert("alert-1", models.AlertStatusActive))
	c := testController(t, provider, nil)
	c.Refresh(ctx)

	if err := c.Acknowledge(ctx, "alert-1", "on it"); err != nil {
		t.Fatalf("acknowledge failed: %v", err)
	}
	if got := statusOf(t, c, "alert-1"); got != models.AlertStatusAcknowledged {
		t.Fatalf("status = %q, want acknowledged", got)
	}

	if err := c.Resolve(ctx, "alert-1", "handled"); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got := statusOf(t, c, "alert-1"); got != models.AlertStatusResolved {
		t.Fatalf("status = %q, want resolved", got)
	}
}

func TestTransitionRejectedFromTerminalState(t *testing.T) {
	ctx := context.Background()
	provider := newFakeProvider(testAlert("alert-1", models.AlertStatusResolved))
	c := testController(t, provider, nil)
	c.Refresh(ctx)

	err := c.Acknowledge(ctx, "alert-1", "")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
	if got := statusOf(t, c, "alert-1"); got != models.AlertStatusResolved {
		t.Fatalf("status changed to %q on rejected transition", got)
	}
}

func TestTransitionUnknownAlert(t *testing.T) {
	ctx := context.Background()
	provider := newFakeProvider()
	c := testController(t, provider, nil)
	c.Refresh(ctx)

	if err := c.Resolve(ctx, "alert-missing", ""); !errors.Is(err, ErrAlertNotFound) {
		t.Fatalf("err = %v, want ErrAlertNotFound", err)
	}
}

func TestDismissFromAcknowledged(t *testing.T) {
	ctx := context.Background()
	provider := newFakeProvider(testAlert("alert-1", models.AlertStatusAcknowledged))
	c := testController(t, provider, nil)
	c.Refresh(ctx)

	if err := c.Dismiss(ctx, "alert-1", ""); err != nil {
		t.Fatalf("dismiss failed: %v", err)
	}
	if got := statusOf(t, c, "alert-1"); got != models.AlertStatusDismissed {
		t.Fatalf("status = %q, want dismissed", got)
	}
}

func TestCreatedEventIsIdempotent(t *testing.T) {
	ctx := context.Background()
	provider := newFakeProvider(testAlert("alert-1", models.AlertStatusActive))
	bus := eventbus.New()
	c := testController(t, provider, bus)
	c.Start(ctx)
	defer c.Stop()

	fresh := testAlert("alert-2", models.AlertStatusActive)
	bus.Publish(models.NewCreatedEvent(fresh))
	bus.Publish(models.NewCreatedEvent(fresh))
	// Duplicate of an alert the poll already delivered.
	bus.Publish(models.NewCreatedEvent(testAlert("alert-1", models.AlertStatusActive)))

	snapshot := c.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("snapshot has %d alerts, want 2", len(snapshot))
	}
	// New alerts are prepended.
	if snapshot[0].ID != "alert-2" {
		t.Fatalf("newest alert = %s, want alert-2", snapshot[0].ID)
	}
}

func TestUpdatedEventPatchesOnlyCarriedFields(t *testing.T) {
	ctx := context.Background()
	alert := testAlert("alert-1", models.AlertStatusActive)
	alert.Notes = "original note"
	provider := newFakeProvider(alert)
	bus := eventbus.New()
	c := testController(t, provider, bus)
	c.Start(ctx)
	defer c.Stop()

	status := models.AlertStatusAcknowledged
	now := time.Now().UTC()
	bus.Publish(models.NewUpdatedEvent(&models.AlertPatch{
		ID:             "alert-1",
		Status:         &status,
		AcknowledgedAt: &now,
	}))

	got := c.Snapshot()[0]
	if got.Status != models.AlertStatusAcknowledged {
		t.Errorf("status = %q, want acknowledged", got.Status)
	}
	if got.AcknowledgedAt == nil {
		t.Error("acknowledged_at not applied")
	}
	if got.Notes != "original note" {
		t.Errorf("notes = %q, patch must not clear untouched fields", got.Notes)
	}
}

func TestUpdatedEventForUnknownAlertIsIgnored(t *testing.T) {
	ctx := context.Background()
	provider := newFakeProvider(testAlert("alert-1", models.AlertStatusActive))
	bus := eventbus.New()
	c := testController(t, provider, bus)
	c.Start(ctx)
	defer c.Stop()

	status := models.AlertStatusResolved
	bus.Publish(models.NewUpdatedEvent(&models.AlertPatch{ID: "alert-ghost", Status: &status}))

	snapshot := c.Snapshot()
	if len(snapshot) != 1 || snapshot[0].ID != "alert-1" {
		t.Fatalf("snapshot changed unexpectedly: %+v", snapshot)
	}
}

func TestStalePollResultIsDiscarded(t *testing.T) {
	provider := newFakeProvider()
	c := testController(t, provider, nil)

	newer := []*models.Alert{testAlert("alert-new", models.AlertStatusActive)}
	older := []*models.Alert{testAlert("alert-old", models.AlertStatusActive)}

	// Result for poll 2 lands before the slow result for poll 1.
	c.applySnapshot(2, newer, nil)
	c.applySnapshot(1, older, nil)

	snapshot := c.Snapshot()
	if len(snapshot) != 1 || snapshot[0].ID != "alert-new" {
		t.Fatalf("stale poll overwrote newer data: %+v", snapshot)
	}
}

func TestPollFailureKeepsPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	provider := newFakeProvider(testAlert("alert-1", models.AlertStatusActive))
	c := testController(t, provider, nil)
	c.Refresh(ctx)

	provider.setListErr(errors.New("connection refused"))
	c.Refresh(ctx)

	if len(c.Snapshot()) != 1 {
		t.Fatal("snapshot lost after poll failure")
	}
	if c.Err() == nil {
		t.Fatal("poll failure not surfaced through Err")
	}

	provider.setListErr(nil)
	c.Refresh(ctx)
	if c.Err() != nil {
		t.Fatalf("Err = %v after successful poll, want nil", c.Err())
	}
}

func TestStaleFailureDoesNotMaskNewerSuccess(t *testing.T) {
	provider := newFakeProvider()
	c := testController(t, provider, nil)

	c.applySnapshot(2, []*models.Alert{testAlert("alert-1", models.AlertStatusActive)}, nil)
	c.recordPollError(1, errors.New("slow poll finally failed"))

	if c.Err() != nil {
		t.Fatalf("stale failure recorded: %v", c.Err())
	}
}

func TestTransitionSyncsWithAuthoritativeState(t *testing.T) {
	ctx := context.Background()
	provider := newFakeProvider(testAlert("alert-1", models.AlertStatusActive))
	c := testController(t, provider, nil)
	c.Refresh(ctx)

	// The provider state changed behind the controller's back.
	if _, err := provider.AcknowledgeAlert(ctx, "alert-1", ""); err != nil {
		t.Fatalf("provider acknowledge: %v", err)
	}

	// The local snapshot still says active, so acknowledge passes local
	// validation but fails at the provider. The set must stay unchanged
	// until the next poll.
	if err := c.Acknowledge(ctx, "alert-1", ""); err == nil {
		t.Fatal("expected provider rejection")
	}
	if got := statusOf(t, c, "alert-1"); got != models.AlertStatusActive {
		t.Fatalf("failed transition mutated snapshot: %q", got)
	}

	c.Refresh(ctx)
	if got := statusOf(t, c, "alert-1"); got != models.AlertStatusAcknowledged {
		t.Fatalf("poll did not reconcile: %q", got)
	}
}

func TestHouseNames(t *testing.T) {
	ctx := context.Background()
	provider := newFakeProvider()
	c := testController(t, provider, nil)
	c.Refresh(ctx)

	names := c.HouseNames()
	if names["H001"] != "Smith Family Home" {
		t.Fatalf("house name = %q", names["H001"])
	}
}

func TestOnChangeFiresOnAppliedUpdates(t *testing.T) {
	ctx := context.Background()
	provider := newFakeProvider(testAlert("alert-1", models.AlertStatusActive))

	var notified int
	c := New(Options{
		Provider:     provider,
		Logger:       slog.New(slog.DiscardHandler),
		PollInterval: time.Hour,
		OnChange:     func() { notified++ },
	})

	c.Refresh(ctx)
	if notified != 1 {
		t.Fatalf("notified %d times after poll, want 1", notified)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	provider := newFakeProvider(testAlert("alert-1", models.AlertStatusActive))
	c := testController(t, provider, nil)
	c.Refresh(ctx)

	c.Snapshot()[0].Status = models.AlertStatusDismissed
	if got := statusOf(t, c, "alert-1"); got != models.AlertStatusActive {
		t.Fatal("mutating a snapshot leaked into the working set")
	}
}
