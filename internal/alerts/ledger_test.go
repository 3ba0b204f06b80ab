package alerts

import (
	"fmt"
	"testing"
	"time"

	"github.com/lracdim/trazer-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	alerts []*models.Alert
	nextID int
}

func (s *fakeStore) FindOpen(shiftID, alertType string) (*models.Alert, error) {
	for _, a := range s.alerts {
		if a.ShiftID == shiftID && a.Type == alertType && a.ResolvedAt == nil {
			return a, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) Insert(alert *models.Alert) error {
	s.nextID++
	alert.ID = fmt.Sprintf("alert-%d", s.nextID)
	alert.CreatedAt = time.Now()
	s.alerts = append(s.alerts, alert)
	return nil
}

func (s *fakeStore) MarkResolved(alertID string, resolvedAt time.Time) (*models.Alert, error) {
	for _, a := range s.alerts {
		if a.ID == alertID {
			a.ResolvedAt = &resolvedAt
			return a, nil
		}
	}
	return nil, ErrAlertNotFound
}

func (s *fakeStore) Query(filter Filter, limit int) ([]models.Alert, error) {
	matched := make([]models.Alert, 0)

	for i := len(s.alerts) - 1; i >= 0; i-- {
		a := s.alerts[i]

		if filter.Type != "" && a.Type != filter.Type {
			continue
		}
		if filter.Resolved != nil && *filter.Resolved != (a.ResolvedAt != nil) {
			continue
		}

		matched = append(matched, *a)

		if len(matched) >= limit {
			break
		}
	}

	return matched, nil
}

func (s *fakeStore) CountUnresolved() (int64, error) {
	var count int64
	for _, a := range s.alerts {
		if a.ResolvedAt == nil {
			count++
		}
	}
	return count, nil
}

func TestLedgerCreate_DedupesOpenAlerts(t *testing.T) {
	store := &fakeStore{}
	ledger := NewLedger(store)

	first, err := ledger.Create("shift-1", models.AlertIdle, "Guard has been stationary")
	require.NoError(t, err)

	second, err := ledger.Create("shift-1", models.AlertIdle, "a different message")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Guard has been stationary", second.Message)
	assert.Len(t, store.alerts, 1)
}

func TestLedgerCreate_SeparatePerType(t *testing.T) {
	store := &fakeStore{}
	ledger := NewLedger(store)

	idle, err := ledger.Create("shift-1", models.AlertIdle, "idle")
	require.NoError(t, err)

	oob, err := ledger.Create("shift-1", models.AlertOutOfBounds, "out of bounds")
	require.NoError(t, err)

	assert.NotEqual(t, idle.ID, oob.ID)
	assert.Len(t, store.alerts, 2)
}

func TestLedgerCreate_NewAlertAfterResolve(t *testing.T) {
	store := &fakeStore{}
	ledger := NewLedger(store)

	first, err := ledger.Create("shift-1", models.AlertIdle, "idle")
	require.NoError(t, err)

	_, err = ledger.Resolve(first.ID)
	require.NoError(t, err)

	second, err := ledger.Create("shift-1", models.AlertIdle, "idle again")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, store.alerts, 2)
}

func TestLedgerResolve(t *testing.T) {
	store := &fakeStore{}
	ledger := NewLedger(store)

	alert, err := ledger.Create("shift-1", models.AlertSOS, "sos")
	require.NoError(t, err)

	resolved, err := ledger.Resolve(alert.ID)
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolvedAt)

	count, err := ledger.CountUnresolved()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLedgerResolve_NotFound(t *testing.T) {
	ledger := NewLedger(&fakeStore{})

	_, err := ledger.Resolve("missing")
	assert.ErrorIs(t, err, ErrAlertNotFound)
}

func TestLedgerList_FiltersAndEnriches(t *testing.T) {
	store := &fakeStore{}
	ledger := NewLedger(store)

	created, err := ledger.Create("shift-1", models.AlertIdle, "idle")
	require.NoError(t, err)
	_, err = ledger.Create("shift-1", models.AlertOutOfBounds, "oob")
	require.NoError(t, err)

	// Attach shift context the way the gorm store preloads it.
	site := &models.Site{Name: "Warehouse 4"}
	for _, a := range store.alerts {
		a.Shift = models.Shift{
			Guard: models.User{Name: "R. Santos"},
			Site:  site,
		}
	}

	open := false
	summaries, err := ledger.List(Filter{Type: models.AlertIdle, Resolved: &open})
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	assert.Equal(t, created.ID, summaries[0].ID)
	assert.Equal(t, "R. Santos", summaries[0].Shift.GuardName)
	assert.Equal(t, "Warehouse 4", summaries[0].Shift.SiteName)
}

func TestLedgerList_UnknownSiteFallback(t *testing.T) {
	store := &fakeStore{}
	ledger := NewLedger(store)

	_, err := ledger.Create("shift-1", models.AlertSOS, "sos")
	require.NoError(t, err)
	store.alerts[0].Shift = models.Shift{Guard: models.User{Name: "R. Santos"}}

	summaries, err := ledger.List(Filter{})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Unknown Site", summaries[0].Shift.SiteName)
}

func TestLedgerCountUnresolved(t *testing.T) {
	store := &fakeStore{}
	ledger := NewLedger(store)

	_, err := ledger.Create("shift-1", models.AlertIdle, "idle")
	require.NoError(t, err)
	_, err = ledger.Create("shift-2", models.AlertIdle, "idle")
	require.NoError(t, err)

	count, err := ledger.CountUnresolved()
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}
