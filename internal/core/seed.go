package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/njnj03/homewatch/internal/sqlite"
	"github.com/njnj03/homewatch/pkg/models"
)

func ptrFloat(v float64) *float64 { return &v }

func heartbeatAgo(ago time.Duration) *time.Time {
	t := time.Now().UTC().Add(-ago)
	return &t
}

// SeedDemoData populates the database with the demo fleet on first boot
// (empty houses table): three houses, four devices, one aged high-severity
// alert, and three registered models with one active. Subsequent boots are
// no-ops.
func SeedDemoData(ctx context.Context, db *sqlite.DB, log *slog.Logger) error {
	count, err := db.CountHouses(ctx)
	if err != nil {
		return fmt.Errorf("failed to check existing demo data: %w", err)
	}
	if count > 0 {
		log.Debug("demo data already present, skipping seeding")
		return nil
	}

	log.Info("seeding demo data (first boot)")
	now := time.Now().UTC()

	houses := []*models.House{
		{ID: "H001", Name: "House 1", Latitude: ptrFloat(37.3382), Longitude: ptrFloat(-121.8863)},
		{ID: "H002", Name: "House 2", Latitude: ptrFloat(37.7749), Longitude: ptrFloat(-122.4194)},
		{ID: "H003", Name: "House 3", Latitude: ptrFloat(37.8044), Longitude: ptrFloat(-122.2711)},
	}
	for _, h := range houses {
		if err := db.InsertHouse(ctx, h); err != nil {
			return fmt.Errorf("failed to seed house %s: %w", h.ID, err)
		}
	}

	devices := []*models.Device{
		{ID: "dev-001", HouseID: "H001", Name: "Living Mic", Location: "Living Room", Status: models.DeviceStatusOnline, LastHeartbeat: heartbeatAgo(12 * time.Second)},
		{ID: "dev-002", HouseID: "H001", Name: "Kitchen Cam", Location: "Kitchen", Status: models.DeviceStatusDegraded, LastHeartbeat: heartbeatAgo(35 * time.Second)},
		{ID: "dev-003", HouseID: "H002", Name: "Bedroom Mic", Location: "Bedroom", Status: models.DeviceStatusOffline, LastHeartbeat: heartbeatAgo(13 * time.Minute)},
		{ID: "dev-004", HouseID: "H003", Name: "Hall Cam", Location: "Hallway", Status: models.DeviceStatusOnline, LastHeartbeat: heartbeatAgo(5 * time.Second)},
	}
	for _, d := range devices {
		if err := db.InsertDevice(ctx, d); err != nil {
			return fmt.Errorf("failed to seed device %s: %w", d.ID, err)
		}
	}

	// One aged alert so SLA badges have something to show immediately.
	alert := &models.Alert{
		ID:         "alert-1001",
		HouseID:    "H001",
		DeviceID:   "dev-001",
		Type:       models.AlertTypeDistress,
		Severity:   models.AlertSeverityHigh,
		Status:     models.AlertStatusActive,
		Confidence: ptrFloat(0.92),
		Location:   "Living Room",
		CreatedAt:  now.Add(-18 * time.Minute),
	}
	if err := db.InsertAlert(ctx, alert); err != nil {
		return fmt.Errorf("failed to seed alert: %w", err)
	}

	seedModels := []*models.Model{
		{Name: "YAMNet Human v1.0", Version: "1.0", FilePath: "yamnet_human_v1.0.keras", ModelType: "yamnet", Accuracy: ptrFloat(0.92), IsActive: true},
		{Name: "YAMNet Human v1.1", Version: "1.1", FilePath: "yamnet_human_v1.1.keras", ModelType: "yamnet", Accuracy: ptrFloat(0.94)},
		{Name: "Custom Audio Classifier", Version: "2.0", FilePath: "custom_audio_v2.0.keras", ModelType: "custom", Accuracy: ptrFloat(0.89)},
	}
	for _, m := range seedModels {
		if err := db.InsertModel(ctx, m); err != nil {
			return fmt.Errorf("failed to seed model %s: %w", m.Name, err)
		}
	}

	log.Info("demo data seeded", "houses", len(houses), "devices", len(devices), "models", len(seedModels))
	return nil
}
