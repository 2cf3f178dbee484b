package models

import "time"

// AlertID is the opaque identifier of an alert. Identifiers generated by the
// simulated feed look like "alert-<uuid>"; ingested alerts may carry any
// unique string.
type AlertID string

// AlertSeverity categorises how urgent an alert is.
type AlertSeverity string

const (
	AlertSeverityHigh   AlertSeverity = "high"
	AlertSeverityMedium AlertSeverity = "medium"
	AlertSeverityLow    AlertSeverity = "low"
)

// AlertStatus captures the lifecycle state of an alert.
type AlertStatus string

const (
	AlertStatusActive       AlertStatus = "active"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"
	AlertStatusDismissed    AlertStatus = "dismissed"
)

// AlertType enumerates the detection categories produced by the platform.
type AlertType string

const (
	AlertTypeDistress   AlertType = "distress"
	AlertTypeInactivity AlertType = "inactivity"
	AlertTypeAlarm      AlertType = "alarm"
	AlertTypeFall       AlertType = "fall"
)

// TransitionOp names an operator-triggered status transition.
type TransitionOp string

const (
	TransitionAcknowledge TransitionOp = "acknowledge"
	TransitionResolve     TransitionOp = "resolve"
	TransitionDismiss     TransitionOp = "dismiss"
)

// Alert is the central entity of the platform. The identifier and creation
// timestamp are immutable once set; status only moves forward per the
// transition table (see ValidateTransition).
type Alert struct {
	ID             AlertID       `json:"id"`
	HouseID        HouseID       `json:"house_id"`
	DeviceID       DeviceID      `json:"device_id,omitempty"`
	Type           AlertType     `json:"type"`
	Severity       AlertSeverity `json:"severity"`
	Status         AlertStatus   `json:"status"`
	Confidence     *float64      `json:"confidence,omitempty"`
	Location       string        `json:"location,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	AcknowledgedAt *time.Time    `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time    `json:"resolved_at,omitempty"`
	DismissedAt    *time.Time    `json:"dismissed_at,omitempty"`
}

// Terminal reports whether the alert has reached a final state.
func (s AlertStatus) Terminal() bool {
	return s == AlertStatusResolved || s == AlertStatusDismissed
}

// TargetStatus returns the status an operation moves an alert into.
func (op TransitionOp) TargetStatus() AlertStatus {
	switch op {
	case TransitionAcknowledge:
		return AlertStatusAcknowledged
	case TransitionResolve:
		return AlertStatusResolved
	case TransitionDismiss:
		return AlertStatusDismissed
	}
	return ""
}

// ValidateTransition reports whether op may be applied to an alert currently
// in status from. acknowledge requires active; resolve and dismiss require
// active or acknowledged. Terminal states never transition again.
func ValidateTransition(from AlertStatus, op TransitionOp) bool {
	switch op {
	case TransitionAcknowledge:
		return from == AlertStatusActive
	case TransitionResolve, TransitionDismiss:
		return from == AlertStatusActive || from == AlertStatusAcknowledged
	}
	return false
}

// TransitionRequest carries the optional operator note attached to a
// transition operation.
type TransitionRequest struct {
	Notes string `json:"notes,omitempty"`
}

// ListAlertsParams are the supported filters for listing alerts.
type ListAlertsParams struct {
	Severity AlertSeverity
	Status   AlertStatus
	HouseID  HouseID
	Limit    int
	Offset   int
}

// AlertList is the payload returned by the list endpoint.
type AlertList struct {
	Alerts []*Alert `json:"alerts"`
	Total  int      `json:"total"`
}

// DefaultAlertListLimit caps list responses when the caller does not specify one.
const DefaultAlertListLimit = 100
