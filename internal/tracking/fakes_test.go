package tracking

import (
	"fmt"
	"sort"
	"time"

	"github.com/lracdim/trazer-backend/internal/alerts"
	"github.com/lracdim/trazer-backend/internal/models"
)

type fakeShiftStore struct {
	shifts map[string]*models.Shift
}

func newFakeShiftStore(shifts ...*models.Shift) *fakeShiftStore {
	s := &fakeShiftStore{shifts: make(map[string]*models.Shift)}
	for _, shift := range shifts {
		s.shifts[shift.ID] = shift
	}
	return s
}

func (s *fakeShiftStore) FindOwnedActive(guardID, shiftID string) (*models.Shift, error) {
	shift := s.shifts[shiftID]

	if shift == nil || shift.GuardID != guardID || shift.Status != models.ShiftActive {
		return nil, nil
	}

	return shift, nil
}

func (s *fakeShiftStore) FindActiveForGuard(guardID string) (*models.Shift, error) {
	for _, shift := range s.shifts {
		if shift.GuardID == guardID && shift.Status == models.ShiftActive {
			return shift, nil
		}
	}
	return nil, nil
}

func (s *fakeShiftStore) Find(shiftID string) (*models.Shift, error) {
	return s.shifts[shiftID], nil
}

func (s *fakeShiftStore) FindActive() ([]models.Shift, error) {
	ids := make([]string, 0, len(s.shifts))
	for id := range s.shifts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	active := make([]models.Shift, 0)
	for _, id := range ids {
		if s.shifts[id].Status == models.ShiftActive {
			active = append(active, *s.shifts[id])
		}
	}

	return active, nil
}

type fakeLocationStore struct {
	samples map[string][]models.LocationSample
}

func newFakeLocationStore() *fakeLocationStore {
	return &fakeLocationStore{samples: make(map[string][]models.LocationSample)}
}

func (s *fakeLocationStore) AppendBatch(batch []models.LocationSample) error {
	for _, sample := range batch {
		s.samples[sample.ShiftID] = append(s.samples[sample.ShiftID], sample)
	}
	return nil
}

func (s *fakeLocationStore) ordered(shiftID string, newestFirst bool) []models.LocationSample {
	ordered := append([]models.LocationSample(nil), s.samples[shiftID]...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if newestFirst {
			return ordered[i].RecordedAt.After(ordered[j].RecordedAt)
		}
		return ordered[i].RecordedAt.Before(ordered[j].RecordedAt)
	})
	return ordered
}

func (s *fakeLocationStore) Recent(shiftID string, limit int) ([]models.LocationSample, error) {
	ordered := s.ordered(shiftID, true)
	if len(ordered) > limit {
		ordered = ordered[:limit]
	}
	return ordered, nil
}

func (s *fakeLocationStore) All(shiftID string) ([]models.LocationSample, error) {
	return s.ordered(shiftID, false), nil
}

func (s *fakeLocationStore) Latest(shiftID string) (*models.LocationSample, error) {
	ordered := s.ordered(shiftID, true)
	if len(ordered) == 0 {
		return nil, nil
	}
	return &ordered[0], nil
}

// fakeAlertStore backs both the ledger and the projector's alert reads.
type fakeAlertStore struct {
	alerts []*models.Alert
	nextID int
}

func (s *fakeAlertStore) FindOpen(shiftID, alertType string) (*models.Alert, error) {
	for _, a := range s.alerts {
		if a.ShiftID == shiftID && a.Type == alertType && a.ResolvedAt == nil {
			return a, nil
		}
	}
	return nil, nil
}

func (s *fakeAlertStore) Insert(alert *models.Alert) error {
	s.nextID++
	alert.ID = fmt.Sprintf("alert-%d", s.nextID)
	alert.CreatedAt = time.Now()
	s.alerts = append(s.alerts, alert)
	return nil
}

func (s *fakeAlertStore) MarkResolved(alertID string, resolvedAt time.Time) (*models.Alert, error) {
	for _, a := range s.alerts {
		if a.ID == alertID {
			a.ResolvedAt = &resolvedAt
			return a, nil
		}
	}
	return nil, alerts.ErrAlertNotFound
}

func (s *fakeAlertStore) Query(filter alerts.Filter, limit int) ([]models.Alert, error) {
	matched := make([]models.Alert, 0)
	for i := len(s.alerts) - 1; i >= 0 && len(matched) < limit; i-- {
		a := s.alerts[i]
		if filter.Type != "" && a.Type != filter.Type {
			continue
		}
		if filter.Resolved != nil && *filter.Resolved != (a.ResolvedAt != nil) {
			continue
		}
		matched = append(matched, *a)
	}
	return matched, nil
}

func (s *fakeAlertStore) CountUnresolved() (int64, error) {
	var count int64
	for _, a := range s.alerts {
		if a.ResolvedAt == nil {
			count++
		}
	}
	return count, nil
}

func (s *fakeAlertStore) OpenForShift(shiftID string) ([]models.Alert, error) {
	open := make([]models.Alert, 0)
	for _, a := range s.alerts {
		if a.ShiftID == shiftID && a.ResolvedAt == nil {
			open = append(open, *a)
		}
	}
	return open, nil
}
