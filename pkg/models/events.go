package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType labels a push event on the wire.
type EventType string

const (
	EventAlertCreated EventType = "alert_created"
	EventAlertUpdated EventType = "alert_updated"
)

// AlertPatch is the sparse payload of an alert_updated event: only the fields
// present in the payload are applied to the matching alert, everything else is
// left untouched.
type AlertPatch struct {
	ID             AlertID      `json:"id"`
	Status         *AlertStatus `json:"status,omitempty"`
	Notes          *string      `json:"notes,omitempty"`
	AcknowledgedAt *time.Time   `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time   `json:"resolved_at,omitempty"`
	DismissedAt    *time.Time   `json:"dismissed_at,omitempty"`
}

// Apply copies the non-nil patch fields onto the alert. The identifier and
// creation timestamp are never touched.
func (p *AlertPatch) Apply(a *Alert) {
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.Notes != nil {
		a.Notes = *p.Notes
	}
	if p.AcknowledgedAt != nil {
		a.AcknowledgedAt = p.AcknowledgedAt
	}
	if p.ResolvedAt != nil {
		a.ResolvedAt = p.ResolvedAt
	}
	if p.DismissedAt != nil {
		a.DismissedAt = p.DismissedAt
	}
}

// Event is the push-event envelope shared by the websocket stream and the
// in-process bus: {"type": ..., "payload": ...}. Exactly one of Alert or Patch
// is set depending on Type.
type Event struct {
	Type  EventType
	Alert *Alert
	Patch *AlertPatch
}

// NewCreatedEvent wraps a freshly created alert.
func NewCreatedEvent(a *Alert) Event {
	return Event{Type: EventAlertCreated, Alert: a}
}

// NewUpdatedEvent wraps a sparse patch for an existing alert.
func NewUpdatedEvent(p *AlertPatch) Event {
	return Event{Type: EventAlertUpdated, Patch: p}
}

type eventEnvelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// MarshalJSON renders the {type, payload} wire envelope.
func (e Event) MarshalJSON() ([]byte, error) {
	var (
		payload any
		err     error
	)
	switch e.Type {
	case EventAlertCreated:
		payload = e.Alert
	case EventAlertUpdated:
		payload = e.Patch
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(eventEnvelope{Type: e.Type, Payload: raw})
}

// UnmarshalJSON decodes the payload according to the envelope type. Unknown
// event types are preserved with an empty payload so consumers can skip them.
func (e *Event) UnmarshalJSON(data []byte) error {
	var env eventEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	e.Type = env.Type
	e.Alert = nil
	e.Patch = nil
	switch env.Type {
	case EventAlertCreated:
		var a Alert
		if err := json.Unmarshal(env.Payload, &a); err != nil {
			return fmt.Errorf("failed to decode alert_created payload: %w", err)
		}
		e.Alert = &a
	case EventAlertUpdated:
		var p AlertPatch
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return fmt.Errorf("failed to decode alert_updated payload: %w", err)
		}
		e.Patch = &p
	}
	return nil
}
