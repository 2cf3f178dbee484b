package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/njnj03/homewatch/internal/sla"
	"github.com/njnj03/homewatch/pkg/models"
	"github.com/njnj03/homewatch/pkg/timefmt"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)

	severityStyles = map[models.AlertSeverity]lipgloss.Style{
		models.AlertSeverityHigh:   criticalStyle,
		models.AlertSeverityMedium: warningStyle,
		models.AlertSeverityLow:    mutedStyle,
	}
)

// renderAlertTable formats alerts as a fixed-width table with SLA badges,
// newest first. House identifiers are replaced with display names where
// known.
func renderAlertTable(alerts []*models.Alert, houseNames map[models.HouseID]string, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", headerStyle.Render(fmt.Sprintf(
		"%-38s %-20s %-12s %-10s %-14s %-10s %s",
		"ID", "HOUSE", "TYPE", "SEVERITY", "STATUS", "SLA", "CREATED",
	)))

	for _, a := range alerts {
		house := houseNames[a.HouseID]
		if house == "" {
			house = string(a.HouseID)
		}

		badge := "-"
		if a.Status == models.AlertStatusActive || a.Status == models.AlertStatusAcknowledged {
			if s := sla.Classify(a.Severity, a.CreatedAt, now); s != nil {
				label := fmt.Sprintf("%s %dm", s.Label, timefmt.AgeMinutes(a.CreatedAt, now))
				if s.Tier == sla.TierCritical {
					badge = criticalStyle.Render(label)
				} else {
					badge = warningStyle.Render(label)
				}
			}
		}

		sevStyle, ok := severityStyles[a.Severity]
		if !ok {
			sevStyle = mutedStyle
		}

		fmt.Fprintf(&b, "%-38s %-20s %-12s %-10s %-14s %-10s %s\n",
			truncate(string(a.ID), 38),
			truncate(house, 20),
			a.Type,
			sevStyle.Render(string(a.Severity)),
			renderStatus(a.Status),
			badge,
			timefmt.Format(a.CreatedAt),
		)
	}

	return b.String()
}

func renderStatus(status models.AlertStatus) string {
	switch status {
	case models.AlertStatusActive:
		return criticalStyle.Render(string(status))
	case models.AlertStatusAcknowledged:
		return warningStyle.Render(string(status))
	default:
		return okStyle.Render(string(status))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
