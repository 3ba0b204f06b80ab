// Package alerts owns the alert ledger: creation with open-alert dedup,
// resolution and display queries.
package alerts

import (
	"errors"
	"time"

	"github.com/lracdim/trazer-backend/internal/models"
)

// ErrAlertNotFound is returned by Resolve for an unknown alert id.
var ErrAlertNotFound = errors.New("alert not found")

// pageSize bounds List results.
const pageSize = 100

type Filter struct {
	Type     string
	Resolved *bool
}

type ShiftInfo struct {
	ID        string `json:"id"`
	GuardName string `json:"guardName"`
	SiteName  string `json:"siteName"`
}

// Summary is an alert enriched with the owning shift's guard and site for
// display.
type Summary struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Message    string     `json:"message"`
	CreatedAt  time.Time  `json:"createdAt"`
	ResolvedAt *time.Time `json:"resolvedAt"`
	Shift      ShiftInfo  `json:"shift"`
}

// Store is the persistence surface the ledger needs. FindOpen returns
// (nil, nil) when no open alert exists. Query preloads each alert's shift
// with its guard and site.
type Store interface {
	FindOpen(shiftID, alertType string) (*models.Alert, error)
	Insert(alert *models.Alert) error
	MarkResolved(alertID string, resolvedAt time.Time) (*models.Alert, error)
	Query(filter Filter, limit int) ([]models.Alert, error)
	CountUnresolved() (int64, error)
}

type Ledger struct {
	store Store
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// Create records a new open alert for the shift, unless one of the same type
// is already open, in which case the existing alert is returned unchanged.
// Repeated boundary or idle triggers on every location batch therefore cannot
// spam duplicates.
func (l *Ledger) Create(shiftID, alertType, message string) (*models.Alert, error) {
	existing, err := l.store.FindOpen(shiftID, alertType)

	if err != nil {
		return nil, err
	}

	if existing != nil {
		return existing, nil
	}

	alert := &models.Alert{
		ShiftID: shiftID,
		Type:    alertType,
		Message: message,
	}

	if err := l.store.Insert(alert); err != nil {
		return nil, err
	}

	return alert, nil
}

// Resolve closes an alert. Returns ErrAlertNotFound for unknown ids.
func (l *Ledger) Resolve(alertID string) (*models.Alert, error) {
	return l.store.MarkResolved(alertID, time.Now())
}

// List returns matching alerts newest-first, capped at 100.
func (l *Ledger) List(filter Filter) ([]Summary, error) {
	matched, err := l.store.Query(filter, pageSize)

	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(matched))

	for _, alert := range matched {
		siteName := "Unknown Site"
		if alert.Shift.Site != nil {
			siteName = alert.Shift.Site.Name
		}

		summaries = append(summaries, Summary{
			ID:         alert.ID,
			Type:       alert.Type,
			Message:    alert.Message,
			CreatedAt:  alert.CreatedAt,
			ResolvedAt: alert.ResolvedAt,
			Shift: ShiftInfo{
				ID:        alert.ShiftID,
				GuardName: alert.Shift.Guard.Name,
				SiteName:  siteName,
			},
		})
	}

	return summaries, nil
}

func (l *Ledger) CountUnresolved() (int64, error) {
	return l.store.CountUnresolved()
}
