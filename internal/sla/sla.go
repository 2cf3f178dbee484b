// Package sla classifies alert staleness from severity and age. The policy is
// a pure function: it must be re-evaluated on every render or poll tick since
// the age advances with the clock.
package sla

import (
	"time"

	"github.com/njnj03/homewatch/pkg/models"
	"github.com/njnj03/homewatch/pkg/timefmt"
)

// Tier grades how loudly a badge should be displayed.
type Tier string

const (
	TierCritical Tier = "critical"
	TierWarning  Tier = "warning"
)

// Badge is the staleness marker attached to an out-of-SLA alert.
type Badge struct {
	Label string `json:"label"`
	Tier  Tier   `json:"tier"`
}

// Age thresholds, inclusive, in whole minutes.
const (
	highAgingMinutes   = 15
	mediumAgingMinutes = 30
	lowStaleMinutes    = 60
)

// Classify returns the staleness badge for an alert of the given severity
// created at createdAt, observed at now. A nil result means the alert is
// within SLA.
func Classify(severity models.AlertSeverity, createdAt, now time.Time) *Badge {
	age := timefmt.AgeMinutes(createdAt, now)
	switch severity {
	case models.AlertSeverityHigh:
		if age >= highAgingMinutes {
			return &Badge{Label: "Aging", Tier: TierCritical}
		}
	case models.AlertSeverityMedium:
		if age >= mediumAgingMinutes {
			return &Badge{Label: "Aging", Tier: TierWarning}
		}
	case models.AlertSeverityLow:
		if age >= lowStaleMinutes {
			return &Badge{Label: "Stale", Tier: TierWarning}
		}
	}
	return nil
}
