package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/njnj03/homewatch/pkg/models"
)

const (
	insertAlertQuery = `INSERT INTO alerts (
    alert_id,
    house_id,
    device_id,
    type,
    severity,
    status,
    confidence,
    location,
    notes,
    created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectAlertBase = `SELECT
    alert_id,
    house_id,
    device_id,
    type,
    severity,
    status,
    confidence,
    location,
    notes,
    created_at,
    acknowledged_at,
    resolved_at,
    dismissed_at
FROM alerts`
)

// InsertAlert persists a new alert record. The caller supplies the identifier
// and creation timestamp; both are immutable afterwards.
func (db *DB) InsertAlert(ctx context.Context, alert *models.Alert) error {
	if alert == nil {
		return fmt.Errorf("alert payload is required")
	}
	var confidence any
	if alert.Confidence != nil {
		confidence = *alert.Confidence
	}
	_, err := db.writeDB.ExecContext(ctx, insertAlertQuery,
		string(alert.ID),
		string(alert.HouseID),
		nullableString(string(alert.DeviceID)),
		string(alert.Type),
		string(alert.Severity),
		string(alert.Status),
		confidence,
		nullableString(alert.Location),
		nullableString(alert.Notes),
		alert.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

// GetAlert retrieves an alert by its identifier.
func (db *DB) GetAlert(ctx context.Context, alertID models.AlertID) (*models.Alert, error) {
	row := db.readDB.QueryRowContext(ctx, selectAlertBase+" WHERE alert_id = ?", string(alertID))
	alert, err := scanAlert(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return alert, nil
}

// ListAlerts returns alerts matching the filters, newest first, plus the
// total match count ignoring pagination.
func (db *DB) ListAlerts(ctx context.Context, params models.ListAlertsParams) ([]*models.Alert, int, error) {
	var (
		conds []string
		args  []any
	)
	if params.Severity != "" {
		conds = append(conds, "severity = ?")
		args = append(args, string(params.Severity))
	}
	if params.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(params.Status))
	}
	if params.HouseID != "" {
		conds = append(conds, "house_id = ?")
		args = append(args, string(params.HouseID))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := db.readDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM alerts"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count alerts: %w", err)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = models.DefaultAlertListLimit
	}
	query := selectAlertBase + where + " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	rows, err := db.readDB.QueryContext(ctx, query, append(args, limit, params.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*models.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, 0, err
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating alerts: %w", err)
	}
	return alerts, total, nil
}

// TransitionAlert applies an operator transition with its precondition folded
// into the WHERE clause, so a concurrent transition can never move an alert
// backwards. It returns the number of rows changed: zero means the alert is
// missing or the precondition failed, which the caller disambiguates.
func (db *DB) TransitionAlert(ctx context.Context, alertID models.AlertID, op models.TransitionOp, notes string, at time.Time) (int64, error) {
	var query string
	switch op {
	case models.TransitionAcknowledge:
		query = `UPDATE alerts
SET status = 'acknowledged',
    acknowledged_at = ?,
    notes = COALESCE(NULLIF(?, ''), notes)
WHERE alert_id = ? AND status = 'active'`
	case models.TransitionResolve:
		query = `UPDATE alerts
SET status = 'resolved',
    resolved_at = ?,
    notes = COALESCE(NULLIF(?, ''), notes)
WHERE alert_id = ? AND status IN ('active', 'acknowledged')`
	case models.TransitionDismiss:
		query = `UPDATE alerts
SET status = 'dismissed',
    dismissed_at = ?,
    notes = COALESCE(NULLIF(?, ''), notes)
WHERE alert_id = ? AND status IN ('active', 'acknowledged')`
	default:
		return 0, fmt.Errorf("unknown transition operation %q", op)
	}

	res, err := db.writeDB.ExecContext(ctx, query, at.UTC(), notes, string(alertID))
	if err != nil {
		return 0, fmt.Errorf("failed to apply %s: %w", op, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return rows, nil
}

// CountActiveAlerts returns the number of alerts currently in active status.
func (db *DB) CountActiveAlerts(ctx context.Context) (int, error) {
	var n int
	if err := db.readDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM alerts WHERE status = 'active'").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count active alerts: %w", err)
	}
	return n, nil
}

// CountActiveAlertHouses returns how many distinct houses have an active alert.
func (db *DB) CountActiveAlertHouses(ctx context.Context) (int, error) {
	var n int
	if err := db.readDB.QueryRowContext(ctx, "SELECT COUNT(DISTINCT house_id) FROM alerts WHERE status = 'active'").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count houses with active alerts: %w", err)
	}
	return n, nil
}

func scanAlert(scanner interface{ Scan(dest ...any) error }) (*models.Alert, error) {
	var (
		id             string
		houseID        string
		deviceID       sql.NullString
		alertType      string
		severity       string
		status         string
		confidence     sql.NullFloat64
		location       sql.NullString
		notes          sql.NullString
		createdAt      time.Time
		acknowledgedAt sql.NullTime
		resolvedAt     sql.NullTime
		dismissedAt    sql.NullTime
	)
	if err := scanner.Scan(&id, &houseID, &deviceID, &alertType, &severity, &status, &confidence, &location, &notes, &createdAt, &acknowledgedAt, &resolvedAt, &dismissedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan alert: %w", err)
	}

	alert := &models.Alert{
		ID:        models.AlertID(id),
		HouseID:   models.HouseID(houseID),
		DeviceID:  models.DeviceID(deviceID.String),
		Type:      models.AlertType(alertType),
		Severity:  models.AlertSeverity(severity),
		Status:    models.AlertStatus(status),
		Location:  location.String,
		Notes:     notes.String,
		CreatedAt: createdAt,
	}
	if confidence.Valid {
		alert.Confidence = &confidence.Float64
	}
	if acknowledgedAt.Valid {
		alert.AcknowledgedAt = &acknowledgedAt.Time
	}
	if resolvedAt.Valid {
		alert.ResolvedAt = &resolvedAt.Time
	}
	if dismissedAt.Valid {
		alert.DismissedAt = &dismissedAt.Time
	}
	return alert, nil
}
