package feed

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/njnj03/homewatch/internal/config"
	"github.com/njnj03/homewatch/internal/eventbus"
	"github.com/njnj03/homewatch/internal/sqlite"
	"github.com/njnj03/homewatch/pkg/models"
)

func testFeed(t *testing.T, chance float64) (*Feed, *sqlite.DB, *eventbus.Bus) {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	db, err := sqlite.New(sqlite.Options{
		Config: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")},
		Logger: log,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	bus := eventbus.New()
	f := New(Options{
		Config: config.FeedConfig{Enabled: true, Chance: chance},
		DB:     db,
		Bus:    bus,
		Logger: log,
	})
	return f, db, bus
}

func TestTickGeneratesAlert(t *testing.T) {
	ctx := context.Background()
	f, db, bus := testFeed(t, 1.0)

	if err := db.InsertHouse(ctx, &models.House{ID: "H001", Name: "Smith Family Home"}); err != nil {
		t.Fatalf("failed to insert house: %v", err)
	}

	var events []models.Event
	bus.Subscribe(func(evt models.Event) { events = append(events, evt) })

	f.tick(ctx)

	alerts, total, err := db.ListAlerts(ctx, models.ListAlertsParams{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("generated %d alerts, want 1", total)
	}

	alert := alerts[0]
	if alert.Status != models.AlertStatusActive {
		t.Errorf("status = %q, want active", alert.Status)
	}
	if alert.HouseID != "H001" {
		t.Errorf("house = %q", alert.HouseID)
	}
	if alert.Confidence == nil || *alert.Confidence < 0.6 || *alert.Confidence > 1.0 {
		t.Errorf("confidence = %v, want within [0.6, 1.0]", alert.Confidence)
	}

	if len(events) != 1 {
		t.Fatalf("published %d events, want 1", len(events))
	}
	if events[0].Type != models.EventAlertCreated {
		t.Errorf("event type = %q", events[0].Type)
	}
	if events[0].Alert == nil || events[0].Alert.ID != alert.ID {
		t.Errorf("event alert = %+v", events[0].Alert)
	}
}

func TestTickZeroChanceNeverFires(t *testing.T) {
	ctx := context.Background()
	f, db, bus := testFeed(t, 0)

	if err := db.InsertHouse(ctx, &models.House{ID: "H001", Name: "Smith Family Home"}); err != nil {
		t.Fatalf("failed to insert house: %v", err)
	}

	var events int
	bus.Subscribe(func(models.Event) { events++ })

	for range 50 {
		f.tick(ctx)
	}

	if _, total, err := db.ListAlerts(ctx, models.ListAlertsParams{}); err != nil || total != 0 {
		t.Fatalf("total = %d err = %v, want no alerts", total, err)
	}
	if events != 0 {
		t.Fatalf("published %d events, want 0", events)
	}
}

func TestTickWithoutHousesSkips(t *testing.T) {
	ctx := context.Background()
	f, db, _ := testFeed(t, 1.0)

	f.tick(ctx)

	if _, total, err := db.ListAlerts(ctx, models.ListAlertsParams{}); err != nil || total != 0 {
		t.Fatalf("total = %d err = %v, want no alerts", total, err)
	}
}
