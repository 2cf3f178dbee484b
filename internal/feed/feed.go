// Package feed synthesizes alerts on a timer to animate the demo dashboard.
// It stands in for a real ingestion pipeline: generated alerts go through the
// same core create path and the same event bus publish path any other
// producer would use.
package feed

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"

	"github.com/njnj03/homewatch/internal/config"
	"github.com/njnj03/homewatch/internal/core"
	"github.com/njnj03/homewatch/internal/eventbus"
	"github.com/njnj03/homewatch/internal/sqlite"
	"github.com/njnj03/homewatch/pkg/models"
)

var generatedAlerts = metrics.NewCounter("homewatch_feed_alerts_generated_total")

var (
	alertTypes = []models.AlertType{
		models.AlertTypeDistress,
		models.AlertTypeInactivity,
		models.AlertTypeAlarm,
		models.AlertTypeFall,
	}
	severities = []models.AlertSeverity{
		models.AlertSeverityHigh,
		models.AlertSeverityMedium,
		models.AlertSeverityLow,
	}
	locations = []string{"Living Room", "Kitchen", "Bedroom", "Garage"}
)

// Options encapsulates the dependencies required to run the simulated feed.
type Options struct {
	Config config.FeedConfig
	DB     *sqlite.DB
	Bus    eventbus.Publisher
	Logger *slog.Logger
}

// Feed periodically creates a random alert and announces it on the bus.
type Feed struct {
	cfg config.FeedConfig
	db  *sqlite.DB
	bus eventbus.Publisher
	log *slog.Logger

	stop chan struct{}
	wg   sync.WaitGroup
}

// New constructs a feed. It does nothing until Start is called.
func New(opts Options) *Feed {
	return &Feed{
		cfg:  opts.Config,
		db:   opts.DB,
		bus:  opts.Bus,
		log:  opts.Logger.With("component", "feed"),
		stop: make(chan struct{}),
	}
}

// Start launches the generation loop. It is a no-op when the feed is
// disabled.
func (f *Feed) Start(ctx context.Context) {
	if !f.cfg.Enabled {
		f.log.Info("simulated feed disabled")
		return
	}
	interval := f.cfg.Interval
	if interval <= 0 {
		interval = 6 * time.Second
	}
	f.log.Info("starting simulated feed", "interval", interval, "chance", f.cfg.Chance)

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				f.tick(ctx)
			case <-f.stop:
				f.log.Info("simulated feed stopping")
				return
			case <-ctx.Done():
				f.log.Info("simulated feed context cancelled")
				return
			}
		}
	}()
}

// Stop signals the feed to stop generating alerts and waits for the loop to
// exit.
func (f *Feed) Stop() {
	close(f.stop)
	f.wg.Wait()
}

func (f *Feed) tick(ctx context.Context) {
	if rand.Float64() >= f.cfg.Chance {
		return
	}

	houses, err := f.db.ListHouses(ctx)
	if err != nil {
		f.log.Error("failed to list houses for generation", "error", err)
		return
	}
	if len(houses) == 0 {
		f.log.Debug("no houses registered, skipping generation")
		return
	}

	house := houses[rand.Intn(len(houses))]
	confidence := float64(int((0.6+rand.Float64()*0.4)*100)) / 100
	alert := &models.Alert{
		HouseID:    house.ID,
		Type:       alertTypes[rand.Intn(len(alertTypes))],
		Severity:   severities[rand.Intn(len(severities))],
		Location:   locations[rand.Intn(len(locations))],
		Confidence: &confidence,
		CreatedAt:  time.Now().UTC(),
	}

	if err := core.CreateAlert(ctx, f.db, f.log, alert); err != nil {
		f.log.Error("failed to create generated alert", "error", err)
		return
	}

	generatedAlerts.Inc()
	f.bus.Publish(models.NewCreatedEvent(alert))
}
