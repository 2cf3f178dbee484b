// Package core implements the business operations of the platform: alert
// lifecycle transitions, the ML model registry, dashboard metrics, and demo
// seeding. Handlers and background workers call into this package; it owns
// the rules, the sqlite package owns the persistence.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/njnj03/homewatch/internal/sqlite"
	"github.com/njnj03/homewatch/pkg/models"
)

var (
	// ErrAlertNotFound is returned when an alert identifier does not resolve.
	ErrAlertNotFound = errors.New("alert not found")
	// ErrInvalidTransition indicates a status-precondition violation; the
	// alert is left exactly as it was.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrInvalidAlert indicates a malformed alert payload.
	ErrInvalidAlert = errors.New("invalid alert")
)

var validSeverities = map[models.AlertSeverity]struct{}{
	models.AlertSeverityHigh:   {},
	models.AlertSeverityMedium: {},
	models.AlertSeverityLow:    {},
}

// NewAlertID mints an opaque identifier for a generated alert.
func NewAlertID() models.AlertID {
	return models.AlertID("alert-" + uuid.NewString())
}

// CreateAlert persists a new alert with status active. The identifier is
// minted here when the caller leaves it empty.
func CreateAlert(ctx context.Context, db *sqlite.DB, log *slog.Logger, alert *models.Alert) error {
	if alert == nil {
		return ErrInvalidAlert
	}
	if alert.HouseID == "" {
		return fmt.Errorf("%w: house_id is required", ErrInvalidAlert)
	}
	if _, ok := validSeverities[alert.Severity]; !ok {
		return fmt.Errorf("%w: invalid severity %q", ErrInvalidAlert, alert.Severity)
	}
	if alert.Confidence != nil && (*alert.Confidence < 0 || *alert.Confidence > 1) {
		return fmt.Errorf("%w: confidence must be within [0,1]", ErrInvalidAlert)
	}
	if alert.ID == "" {
		alert.ID = NewAlertID()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}
	alert.Status = models.AlertStatusActive

	if err := db.InsertAlert(ctx, alert); err != nil {
		log.Error("failed to create alert", "alert_id", alert.ID, "house_id", alert.HouseID, "error", err)
		return fmt.Errorf("failed to create alert: %w", err)
	}
	log.Info("alert created", "alert_id", alert.ID, "house_id", alert.HouseID, "severity", alert.Severity)
	return nil
}

// GetAlert retrieves a single alert by identifier.
func GetAlert(ctx context.Context, db *sqlite.DB, log *slog.Logger, alertID models.AlertID) (*models.Alert, error) {
	alert, err := db.GetAlert(ctx, alertID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, ErrAlertNotFound
		}
		log.Error("failed to get alert", "alert_id", alertID, "error", err)
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return alert, nil
}

// ListAlerts returns alerts matching the filters plus the total match count.
func ListAlerts(ctx context.Context, db *sqlite.DB, log *slog.Logger, params models.ListAlertsParams) (*models.AlertList, error) {
	alerts, total, err := db.ListAlerts(ctx, params)
	if err != nil {
		log.Error("failed to list alerts", "error", err)
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	if alerts == nil {
		alerts = []*models.Alert{}
	}
	return &models.AlertList{Alerts: alerts, Total: total}, nil
}

// TransitionAlert applies an operator transition (acknowledge, resolve,
// dismiss) and returns the updated record. On any failure the stored alert is
// unchanged. The precondition is also enforced inside the store's UPDATE so a
// racing transition cannot sneak a terminal alert back to life.
func TransitionAlert(ctx context.Context, db *sqlite.DB, log *slog.Logger, alertID models.AlertID, op models.TransitionOp, notes string) (*models.Alert, error) {
	current, err := db.GetAlert(ctx, alertID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, ErrAlertNotFound
		}
		log.Error("failed to load alert for transition", "alert_id", alertID, "error", err)
		return nil, fmt.Errorf("failed to load alert: %w", err)
	}
	if !models.ValidateTransition(current.Status, op) {
		return nil, fmt.Errorf("%w: cannot %s alert in status %q", ErrInvalidTransition, op, current.Status)
	}

	rows, err := db.TransitionAlert(ctx, alertID, op, strings.TrimSpace(notes), time.Now().UTC())
	if err != nil {
		log.Error("failed to apply transition", "alert_id", alertID, "op", op, "error", err)
		return nil, fmt.Errorf("failed to apply %s: %w", op, err)
	}
	if rows == 0 {
		// Lost a race: the alert moved since we validated. Report it as the
		// precondition failure it is.
		return nil, fmt.Errorf("%w: cannot %s alert in status %q", ErrInvalidTransition, op, current.Status)
	}

	updated, err := db.GetAlert(ctx, alertID)
	if err != nil {
		log.Error("failed to reload alert after transition", "alert_id", alertID, "error", err)
		return nil, fmt.Errorf("failed to reload alert: %w", err)
	}
	log.Info("alert transitioned", "alert_id", alertID, "op", op, "status", updated.Status)
	return updated, nil
}

// TransitionPatch condenses a transition result into the sparse alert_updated
// event payload.
func TransitionPatch(a *models.Alert) *models.AlertPatch {
	patch := &models.AlertPatch{ID: a.ID, Status: &a.Status}
	if a.Notes != "" {
		notes := a.Notes
		patch.Notes = &notes
	}
	switch a.Status {
	case models.AlertStatusAcknowledged:
		patch.AcknowledgedAt = a.AcknowledgedAt
	case models.AlertStatusResolved:
		patch.ResolvedAt = a.ResolvedAt
	case models.AlertStatusDismissed:
		patch.DismissedAt = a.DismissedAt
	}
	return patch
}
