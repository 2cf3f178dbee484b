package lifecycle

import (
	"strings"
	"time"

	"github.com/njnj03/homewatch/pkg/models"
)

// StatusFilterAll disables status filtering.
const StatusFilterAll = "all"

// FilterParams narrow an alert snapshot for a list view.
type FilterParams struct {
	// Query is matched case-insensitively as a substring of the combined
	// house name, severity, and status text.
	Query string
	// Status keeps only alerts in this status; empty or "all" keeps every
	// status.
	Status string
	// RangeHours keeps only alerts younger than this many hours; zero or
	// negative disables the cutoff.
	RangeHours int
}

// Filter returns the alerts matching the given filters, preserving order.
// houseNames supplies display names keyed by house identifier; alerts whose
// house is unknown match against an empty name.
func Filter(alerts []*models.Alert, houseNames map[models.HouseID]string, params FilterParams, now time.Time) []*models.Alert {
	query := strings.ToLower(strings.TrimSpace(params.Query))
	statusFilter := params.Status

	var out []*models.Alert
	for _, a := range alerts {
		if statusFilter != "" && statusFilter != StatusFilterAll && a.Status != models.AlertStatus(statusFilter) {
			continue
		}
		if params.RangeHours > 0 {
			cutoff := time.Duration(params.RangeHours) * time.Hour
			if now.Sub(a.CreatedAt) >= cutoff {
				continue
			}
		}
		if query != "" {
			haystack := strings.ToLower(strings.Join([]string{
				houseNames[a.HouseID],
				string(a.Severity),
				string(a.Status),
			}, " "))
			if !strings.Contains(haystack, query) {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}
