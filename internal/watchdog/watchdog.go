// Package watchdog periodically sweeps active shifts for guards whose
// devices have gone quiet and raises signal_lost alerts.
package watchdog

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lracdim/trazer-backend/internal/alerts"
	"github.com/lracdim/trazer-backend/internal/models"
	"github.com/lracdim/trazer-backend/internal/tracking"
	"github.com/lracdim/trazer-backend/internal/ws"
)

const (
	sweepInterval = time.Minute
	// silenceAfter is how long a shift may go without any fix before a
	// signal_lost alert is raised. Deliberately far above the dashboard's
	// 90s offline threshold so transient dead zones do not page anyone.
	silenceAfter = 5 * time.Minute
)

type Watchdog struct {
	shifts    tracking.ShiftStore
	locations tracking.LocationStore
	ledger    *alerts.Ledger
	notifier  ws.Notifier

	ctx    context.Context
	cancel context.CancelFunc
}

func New(shifts tracking.ShiftStore, locations tracking.LocationStore, ledger *alerts.Ledger, notifier ws.Notifier) *Watchdog {
	ctx, cancel := context.WithCancel(context.Background())
	return &Watchdog{
		shifts:    shifts,
		locations: locations,
		ledger:    ledger,
		notifier:  notifier,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start begins sweeping in the background.
func (w *Watchdog) Start() {
	log.Println("Starting signal watchdog...")

	go w.run()
}

// Stop halts the sweep loop.
func (w *Watchdog) Stop() {
	w.cancel()
	log.Println("Signal watchdog stopped")
}

func (w *Watchdog) run() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			if err := w.Sweep(); err != nil {
				log.Printf("Watchdog sweep failed: %v", err)
			}
		}
	}
}

// Sweep raises a signal_lost alert for every active shift whose latest fix
// is older than the silence threshold. Shifts with no fixes at all are left
// alone: the guard may simply not have pinged yet.
func (w *Watchdog) Sweep() error {
	active, err := w.shifts.FindActive()

	if err != nil {
		return err
	}

	for _, shift := range active {
		latest, err := w.locations.Latest(shift.ID)

		if err != nil {
			return err
		}

		if latest == nil || time.Since(latest.RecordedAt) < silenceAfter {
			continue
		}

		siteName := "Unknown Site"
		if shift.Site != nil {
			siteName = shift.Site.Name
		}

		alert, err := w.ledger.Create(shift.ID, models.AlertSignalLost,
			fmt.Sprintf("No signal from %s at %s for over 5 minutes", shift.Guard.Name, siteName))

		if err != nil {
			return err
		}

		// The ledger dedupes, so an already-open alert comes back here on
		// every sweep; re-broadcasting it is harmless.
		w.notifier.BroadcastToDashboards("alert:new", alerts.Summary{
			ID:         alert.ID,
			Type:       alert.Type,
			Message:    alert.Message,
			CreatedAt:  alert.CreatedAt,
			ResolvedAt: alert.ResolvedAt,
			Shift: alerts.ShiftInfo{
				ID:        shift.ID,
				GuardName: shift.Guard.Name,
				SiteName:  siteName,
			},
		})
	}

	return nil
}
