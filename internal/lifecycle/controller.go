// Package lifecycle keeps a client-side view of the alert set consistent
// under two update sources: a periodic authoritative poll and best-effort
// push events. Views read snapshots from the controller and request
// transitions through it; they never mutate alert state directly.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/njnj03/homewatch/internal/eventbus"
	"github.com/njnj03/homewatch/pkg/models"
)

var (
	// ErrAlertNotFound is returned when the referenced alert is not in the
	// working set.
	ErrAlertNotFound = errors.New("alert not found")
	// ErrInvalidTransition indicates the transition precondition does not
	// hold; it is raised before any network call and leaves the displayed
	// state untouched.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrTransitionPending rejects a second transition on an alert whose
	// previous transition has not completed yet.
	ErrTransitionPending = errors.New("transition already in flight")
)

// DefaultPollInterval is used when the options leave the interval unset.
const DefaultPollInterval = 10 * time.Second

// Provider is the authoritative alert source the controller synchronizes
// against. pkg/client implements it over the HTTP API; tests supply fakes.
type Provider interface {
	ListAlerts(ctx context.Context, params models.ListAlertsParams) (*models.AlertList, error)
	ListHouses(ctx context.Context) ([]*models.House, error)
	AcknowledgeAlert(ctx context.Context, id models.AlertID, notes string) (*models.Alert, error)
	ResolveAlert(ctx context.Context, id models.AlertID, notes string) (*models.Alert, error)
	DismissAlert(ctx context.Context, id models.AlertID, notes string) (*models.Alert, error)
}

// Options encapsulates the controller's dependencies.
type Options struct {
	Provider     Provider
	Bus          eventbus.Subscriber
	Logger       *slog.Logger
	PollInterval time.Duration
	// OnChange, when set, is invoked after every applied update so a view
	// can re-render. It runs on the goroutine that applied the update.
	OnChange func()
}

// Controller owns the working alert set. Poll results replace the set
// wholesale and win on conflict; push events are low-latency hints merged
// between polls. A monotonic sequence number per poll discards slow,
// out-of-order responses so an older poll can never overwrite newer data.
type Controller struct {
	provider Provider
	bus      eventbus.Subscriber
	log      *slog.Logger
	interval time.Duration
	onChange func()

	seq uint64 // issued poll sequence numbers

	mu         sync.Mutex
	alerts     []*models.Alert
	houses     map[models.HouseID]string
	appliedSeq uint64
	lastErr    error
	inflight   map[models.AlertID]struct{}

	token   eventbus.Token
	started bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// New constructs a controller. Call Start to begin polling and receiving
// push events.
func New(opts Options) *Controller {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Controller{
		provider: opts.Provider,
		bus:      opts.Bus,
		log:      opts.Logger.With("component", "lifecycle"),
		interval: interval,
		onChange: opts.OnChange,
		houses:   make(map[models.HouseID]string),
		inflight: make(map[models.AlertID]struct{}),
		stop:     make(chan struct{}),
	}
}

// Start subscribes to the event bus, performs an initial poll, and launches
// the periodic poll loop.
func (c *Controller) Start(ctx context.Context) {
	if c.bus != nil {
		c.token = c.bus.Subscribe(c.applyEvent)
	}

	c.poll(ctx)

	c.started = true
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.poll(ctx)
			case <-c.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop unsubscribes from the bus and halts the poll loop. Delivery to this
// controller deterministically ends when Stop returns.
func (c *Controller) Stop() {
	if c.bus != nil {
		c.bus.Unsubscribe(c.token)
	}
	if c.started {
		close(c.stop)
		c.wg.Wait()
		c.started = false
	}
}

// poll fetches a full snapshot under a fresh sequence number and applies it
// unless a newer poll already landed.
func (c *Controller) poll(ctx context.Context) {
	seq := atomic.AddUint64(&c.seq, 1)

	list, err := c.provider.ListAlerts(ctx, models.ListAlertsParams{Limit: 1000})
	if err != nil {
		c.recordPollError(seq, err)
		return
	}
	houses, err := c.provider.ListHouses(ctx)
	if err != nil {
		c.recordPollError(seq, err)
		return
	}
	c.applySnapshot(seq, list.Alerts, houses)
}

// applySnapshot replaces the working set with a poll result. Results are
// applied in completion order; a result older than one already applied is
// discarded.
func (c *Controller) applySnapshot(seq uint64, alerts []*models.Alert, houses []*models.House) {
	c.mu.Lock()
	if seq <= c.appliedSeq {
		c.mu.Unlock()
		c.log.Debug("discarding stale poll result", "seq", seq, "applied", c.appliedSeq)
		return
	}
	c.appliedSeq = seq
	c.alerts = alerts
	if houses != nil {
		names := make(map[models.HouseID]string, len(houses))
		for _, h := range houses {
			names[h.ID] = h.Name
		}
		c.houses = names
	}
	c.lastErr = nil
	c.mu.Unlock()

	c.notify()
}

// recordPollError keeps the previous snapshot visible and surfaces the error
// through Err. Stale failures are ignored the same way stale results are.
func (c *Controller) recordPollError(seq uint64, err error) {
	c.mu.Lock()
	if seq <= c.appliedSeq {
		c.mu.Unlock()
		return
	}
	c.lastErr = err
	c.mu.Unlock()

	c.log.Warn("poll failed, keeping previous snapshot", "seq", seq, "error", err)
	c.notify()
}

// applyEvent merges one push event into the working set. alert_created is
// idempotent by identifier; alert_updated patches only the fields carried in
// the payload.
func (c *Controller) applyEvent(evt models.Event) {
	c.mu.Lock()
	changed := false
	switch evt.Type {
	case models.EventAlertCreated:
		if evt.Alert != nil && c.indexOf(evt.Alert.ID) < 0 {
			clone := *evt.Alert
			c.alerts = append([]*models.Alert{&clone}, c.alerts...)
			changed = true
		}
	case models.EventAlertUpdated:
		if evt.Patch != nil {
			if i := c.indexOf(evt.Patch.ID); i >= 0 {
				evt.Patch.Apply(c.alerts[i])
				changed = true
			}
		}
	}
	c.mu.Unlock()

	if changed {
		c.notify()
	}
}

// indexOf must be called with the mutex held.
func (c *Controller) indexOf(id models.AlertID) int {
	for i, a := range c.alerts {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// Acknowledge moves an active alert to acknowledged.
func (c *Controller) Acknowledge(ctx context.Context, id models.AlertID, notes string) error {
	return c.transition(ctx, id, models.TransitionAcknowledge, notes)
}

// Resolve moves an active or acknowledged alert to resolved.
func (c *Controller) Resolve(ctx context.Context, id models.AlertID, notes string) error {
	return c.transition(ctx, id, models.TransitionResolve, notes)
}

// Dismiss moves an active or acknowledged alert to dismissed.
func (c *Controller) Dismiss(ctx context.Context, id models.AlertID, notes string) error {
	return c.transition(ctx, id, models.TransitionDismiss, notes)
}

// transition validates the precondition against the local snapshot before
// touching the network, then calls the provider and, on success, re-fetches
// the full set from the authoritative source rather than trusting the local
// patch. On failure nothing in the working set changes.
func (c *Controller) transition(ctx context.Context, id models.AlertID, op models.TransitionOp, notes string) error {
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAlertNotFound, id)
	}
	if _, busy := c.inflight[id]; busy {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTransitionPending, id)
	}
	if status := c.alerts[i].Status; !models.ValidateTransition(status, op) {
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot %s alert in status %q", ErrInvalidTransition, op, status)
	}
	c.inflight[id] = struct{}{}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inflight, id)
		c.mu.Unlock()
	}()

	var err error
	switch op {
	case models.TransitionAcknowledge:
		_, err = c.provider.AcknowledgeAlert(ctx, id, notes)
	case models.TransitionResolve:
		_, err = c.provider.ResolveAlert(ctx, id, notes)
	case models.TransitionDismiss:
		_, err = c.provider.DismissAlert(ctx, id, notes)
	}
	if err != nil {
		c.log.Warn("transition failed", "alert_id", id, "op", op, "error", err)
		return err
	}

	// The post-success refresh carries a fresh sequence number, so any poll
	// that was in flight before the transition cannot clobber it.
	c.poll(ctx)
	return nil
}

// Refresh forces an immediate authoritative poll (operator-initiated retry).
func (c *Controller) Refresh(ctx context.Context) {
	c.poll(ctx)
}

// Snapshot returns a copy of the working alert set, newest first. Callers may
// hold and filter it freely without racing the controller.
func (c *Controller) Snapshot() []*models.Alert {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*models.Alert, len(c.alerts))
	for i, a := range c.alerts {
		clone := *a
		out[i] = &clone
	}
	return out
}

// HouseNames returns the display-name lookup for the current snapshot.
func (c *Controller) HouseNames() map[models.HouseID]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[models.HouseID]string, len(c.houses))
	for id, name := range c.houses {
		out[id] = name
	}
	return out
}

// Err reports the most recent poll failure, or nil after a successful poll.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}
