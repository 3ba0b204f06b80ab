package tracking

import (
	"time"

	"github.com/lracdim/trazer-backend/internal/models"
)

// Status precedence: out_of_bounds > idle > offline > normal. Alert-derived
// state always wins over staleness-derived offline.
const (
	StatusNormal      = "normal"
	StatusOutOfBounds = "out_of_bounds"
	StatusIdle        = "idle"
	StatusOffline     = "offline"
)

// offlineAfter is how stale the latest fix may be before a guard shows as
// offline.
const offlineAfter = 90 * time.Second

// AlertReader exposes the open alerts of a shift to the projector.
type AlertReader interface {
	OpenForShift(shiftID string) ([]models.Alert, error)
}

type Position struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	RecordedAt time.Time `json:"recordedAt"`
}

type StatusEntry struct {
	GuardID   string    `json:"guardId"`
	GuardName string    `json:"guardName"`
	ShiftID   string    `json:"shiftId"`
	SiteName  string    `json:"siteName"`
	Status    string    `json:"status"`
	Location  *Position `json:"location"`
}

// Projector computes the displayable status of every active shift on demand
// by combining latest-fix freshness with open-alert state.
type Projector struct {
	shifts    ShiftStore
	locations LocationStore
	alerts    AlertReader
}

func NewProjector(shifts ShiftStore, locations LocationStore, alerts AlertReader) *Projector {
	return &Projector{
		shifts:    shifts,
		locations: locations,
		alerts:    alerts,
	}
}

// ActiveGuardStatuses builds the live-map entry for every active shift.
func (p *Projector) ActiveGuardStatuses() ([]StatusEntry, error) {
	active, err := p.shifts.FindActive()

	if err != nil {
		return nil, err
	}

	entries := make([]StatusEntry, 0, len(active))

	for _, shift := range active {
		latest, err := p.locations.Latest(shift.ID)

		if err != nil {
			return nil, err
		}

		status := StatusNormal
		var location *Position

		if latest == nil {
			// No GPS ping yet: fall back to the site's anchor coordinate.
			if shift.Site != nil {
				location = &Position{
					Lat:        shift.Site.LatFrom,
					Lng:        shift.Site.LngFrom,
					RecordedAt: time.Now(),
				}
			} else {
				status = StatusOffline
			}
		} else {
			if time.Since(latest.RecordedAt) > offlineAfter {
				status = StatusOffline
			}

			location = &Position{
				Lat:        latest.Latitude,
				Lng:        latest.Longitude,
				RecordedAt: latest.RecordedAt,
			}
		}

		open, err := p.alerts.OpenForShift(shift.ID)

		if err != nil {
			return nil, err
		}

		for _, alert := range open {
			if alert.Type == models.AlertOutOfBounds {
				status = StatusOutOfBounds
			} else if alert.Type == models.AlertIdle && status != StatusOutOfBounds {
				status = StatusIdle
			}
		}

		siteName := "Unknown Site"
		if shift.Site != nil {
			siteName = shift.Site.Name
		}

		entries = append(entries, StatusEntry{
			GuardID:   shift.GuardID,
			GuardName: shift.Guard.Name,
			ShiftID:   shift.ID,
			SiteName:  siteName,
			Status:    status,
			Location:  location,
		})
	}

	return entries, nil
}
