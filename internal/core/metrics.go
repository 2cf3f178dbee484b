package core

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/njnj03/homewatch/internal/sqlite"
	"github.com/njnj03/homewatch/pkg/models"
)

// DashboardMetrics aggregates the counts shown on the overview page. The
// system-health pair is simulated jitter, matching what the demo dashboard
// displays.
func DashboardMetrics(ctx context.Context, db *sqlite.DB, log *slog.Logger) (*models.DashboardMetrics, error) {
	activeHouses, err := db.CountActiveAlertHouses(ctx)
	if err != nil {
		log.Error("failed to count active houses", "error", err)
		return nil, fmt.Errorf("failed to compute metrics: %w", err)
	}
	totalDevices, err := db.CountDevices(ctx)
	if err != nil {
		log.Error("failed to count devices", "error", err)
		return nil, fmt.Errorf("failed to compute metrics: %w", err)
	}
	onlineDevices, err := db.CountOnlineDevices(ctx)
	if err != nil {
		log.Error("failed to count online devices", "error", err)
		return nil, fmt.Errorf("failed to compute metrics: %w", err)
	}
	activeAlerts, err := db.CountActiveAlerts(ctx)
	if err != nil {
		log.Error("failed to count active alerts", "error", err)
		return nil, fmt.Errorf("failed to compute metrics: %w", err)
	}

	return &models.DashboardMetrics{
		ActiveHouses:  activeHouses,
		TotalDevices:  totalDevices,
		OnlineDevices: onlineDevices,
		ActiveAlerts:  activeAlerts,
		SystemHealth: models.SystemHealth{
			APILatencyMs: 40 + rand.Intn(31),
			QueueDepth:   rand.Intn(11),
		},
	}, nil
}
