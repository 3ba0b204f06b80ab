// Package tracking ingests streamed GPS fixes, runs the geofence and idle
// checks against them and projects live guard statuses for the dashboard.
package tracking

import (
	"errors"
	"fmt"
	"time"

	"github.com/lracdim/trazer-backend/internal/alerts"
	"github.com/lracdim/trazer-backend/internal/geo"
	"github.com/lracdim/trazer-backend/internal/models"
	"github.com/lracdim/trazer-backend/internal/ws"
)

// ErrShiftNotFound is returned by route playback for an unknown shift id.
var ErrShiftNotFound = errors.New("shift not found")

// Fixed anomaly policy. Not tenant-configurable.
const (
	idleWindowSize     = 10
	idleMinSamples     = 5
	idleMinSpan        = 5 * time.Minute
	idleDistanceMeters = 10.0
)

// ShiftStore is the shift lookup surface consumed by the engine and the
// projector. Lookups that miss return (nil, nil), not an error.
type ShiftStore interface {
	// FindOwnedActive returns the shift only if it belongs to the guard and
	// is still active, with its site preloaded.
	FindOwnedActive(guardID, shiftID string) (*models.Shift, error)
	// FindActiveForGuard returns the guard's current active shift, with guard
	// and site preloaded.
	FindActiveForGuard(guardID string) (*models.Shift, error)
	Find(shiftID string) (*models.Shift, error)
	// FindActive returns all active shifts with guard and site preloaded.
	FindActive() ([]models.Shift, error)
}

// LocationStore persists and reads back location samples. Samples are
// append-only; nothing here mutates or deletes them.
type LocationStore interface {
	AppendBatch(samples []models.LocationSample) error
	// Recent returns up to limit samples, newest first.
	Recent(shiftID string, limit int) ([]models.LocationSample, error)
	// All returns every sample for the shift, oldest first.
	All(shiftID string) ([]models.LocationSample, error)
	Latest(shiftID string) (*models.LocationSample, error)
}

type SampleInput struct {
	Latitude   float64    `json:"latitude" binding:"required"`
	Longitude  float64    `json:"longitude" binding:"required"`
	Accuracy   *float64   `json:"accuracy"`
	Speed      *float64   `json:"speed"`
	Heading    *float64   `json:"heading"`
	RecordedAt *time.Time `json:"recordedAt"`
}

type IngestResult struct {
	Inserted int             `json:"inserted"`
	Alerts   []*models.Alert `json:"alerts"`
}

type RoutePoint struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Accuracy   *float64  `json:"accuracy"`
	Speed      *float64  `json:"speed"`
	Heading    *float64  `json:"heading"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Engine validates and persists location batches and raises anomaly alerts
// through the ledger. Broadcasts never block the ingest path.
type Engine struct {
	shifts    ShiftStore
	locations LocationStore
	ledger    *alerts.Ledger
	notifier  ws.Notifier
}

func NewEngine(shifts ShiftStore, locations LocationStore, ledger *alerts.Ledger, notifier ws.Notifier) *Engine {
	return &Engine{
		shifts:    shifts,
		locations: locations,
		ledger:    ledger,
		notifier:  notifier,
	}
}

// IngestBatch persists a batch of samples for an active shift and evaluates
// the boundary and idle conditions. Batches for missing, foreign or completed
// shifts are dropped silently: stale telemetry is a no-op, not an error.
func (e *Engine) IngestBatch(guardID, shiftID string, inputs []SampleInput) (IngestResult, error) {
	result := IngestResult{Alerts: []*models.Alert{}}

	if len(inputs) == 0 {
		return result, nil
	}

	shift, err := e.shifts.FindOwnedActive(guardID, shiftID)

	if err != nil {
		return result, err
	}

	if shift == nil {
		return result, nil
	}

	samples := make([]models.LocationSample, 0, len(inputs))

	for _, in := range inputs {
		recordedAt := time.Now()
		if in.RecordedAt != nil {
			recordedAt = *in.RecordedAt
		}

		samples = append(samples, models.LocationSample{
			GuardID:    guardID,
			ShiftID:    shiftID,
			Latitude:   in.Latitude,
			Longitude:  in.Longitude,
			Accuracy:   in.Accuracy,
			Speed:      in.Speed,
			Heading:    in.Heading,
			RecordedAt: recordedAt,
		})
	}

	if err := e.locations.AppendBatch(samples); err != nil {
		return result, err
	}

	result.Inserted = len(samples)

	siteName := "Unknown Site"
	if shift.Site != nil {
		siteName = shift.Site.Name
	}

	// Boundary check on the latest position only.
	latest := samples[len(samples)-1]

	if shift.Site != nil {
		if boundary, ok := geo.ParseBoundary(shift.Site.Boundary); ok {
			inside := geo.IsPointInPolygon(geo.Point{Lat: latest.Latitude, Lng: latest.Longitude}, boundary)

			if !inside {
				alert, err := e.ledger.Create(shiftID, models.AlertOutOfBounds,
					fmt.Sprintf("Guard left the boundary of %s", siteName))

				if err != nil {
					return result, err
				}

				result.Alerts = append(result.Alerts, alert)
			}
		}
	}

	// Idle check over the most recent persisted samples.
	idle, err := e.detectIdle(shiftID)

	if err != nil {
		return result, err
	}

	if idle {
		alert, err := e.ledger.Create(shiftID, models.AlertIdle,
			fmt.Sprintf("Guard has been stationary at %s for over 5 minutes", siteName))

		if err != nil {
			return result, err
		}

		result.Alerts = append(result.Alerts, alert)
	}

	e.broadcast(guardID, shiftID, latest, result.Alerts)

	return result, nil
}

// detectIdle reports whether the guard has effectively not moved across the
// recent sample window: at least 5 minutes of data whose total path length is
// under 10 meters.
func (e *Engine) detectIdle(shiftID string) (bool, error) {
	recent, err := e.locations.Recent(shiftID, idleWindowSize)

	if err != nil {
		return false, err
	}

	if len(recent) < idleMinSamples {
		return false, nil
	}

	newest := recent[0]
	oldest := recent[len(recent)-1]

	if newest.RecordedAt.Sub(oldest.RecordedAt) < idleMinSpan {
		return false, nil
	}

	var totalTravel float64

	for i := 1; i < len(recent); i++ {
		totalTravel += geo.HaversineDistance(
			geo.Point{Lat: recent[i-1].Latitude, Lng: recent[i-1].Longitude},
			geo.Point{Lat: recent[i].Latitude, Lng: recent[i].Longitude},
		)
	}

	return totalTravel < idleDistanceMeters, nil
}

// broadcast pushes the latest position and any raised alerts to dashboard
// subscribers. Runs detached so delivery can never stall the ingest response.
func (e *Engine) broadcast(guardID, shiftID string, latest models.LocationSample, raised []*models.Alert) {
	go func() {
		e.notifier.BroadcastToDashboards("guard:location", map[string]interface{}{
			"guardId":    guardID,
			"shiftId":    shiftID,
			"lat":        latest.Latitude,
			"lng":        latest.Longitude,
			"accuracy":   latest.Accuracy,
			"speed":      latest.Speed,
			"recordedAt": latest.RecordedAt,
		})

		for _, alert := range raised {
			e.notifier.BroadcastToDashboards("alert:new", alert)
		}
	}()
}

// ShiftRoute returns the ordered location trail of a shift for playback.
func (e *Engine) ShiftRoute(shiftID string) ([]RoutePoint, error) {
	shift, err := e.shifts.Find(shiftID)

	if err != nil {
		return nil, err
	}

	if shift == nil {
		return nil, ErrShiftNotFound
	}

	samples, err := e.locations.All(shiftID)

	if err != nil {
		return nil, err
	}

	route := make([]RoutePoint, 0, len(samples))

	for _, s := range samples {
		route = append(route, RoutePoint{
			Lat:        s.Latitude,
			Lng:        s.Longitude,
			Accuracy:   s.Accuracy,
			Speed:      s.Speed,
			Heading:    s.Heading,
			RecordedAt: s.RecordedAt,
		})
	}

	return route, nil
}
