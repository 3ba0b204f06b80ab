// Package store backs the core's persistence interfaces with gorm.
package store

import (
	"errors"
	"time"

	"github.com/lracdim/trazer-backend/internal/alerts"
	"github.com/lracdim/trazer-backend/internal/models"
	"gorm.io/gorm"
)

// AlertStore implements alerts.Store and tracking.AlertReader.
type AlertStore struct {
	db *gorm.DB
}

func NewAlertStore(db *gorm.DB) *AlertStore {
	return &AlertStore{db: db}
}

func (s *AlertStore) FindOpen(shiftID, alertType string) (*models.Alert, error) {
	var alert models.Alert

	err := s.db.Where("shift_id = ? AND type = ? AND resolved_at IS NULL", shiftID, alertType).
		First(&alert).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &alert, nil
}

func (s *AlertStore) Insert(alert *models.Alert) error {
	return s.db.Create(alert).Error
}

func (s *AlertStore) MarkResolved(alertID string, resolvedAt time.Time) (*models.Alert, error) {
	var alert models.Alert

	err := s.db.Where("id = ?", alertID).First(&alert).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, alerts.ErrAlertNotFound
	}

	if err != nil {
		return nil, err
	}

	alert.ResolvedAt = &resolvedAt

	if err := s.db.Save(&alert).Error; err != nil {
		return nil, err
	}

	return &alert, nil
}

func (s *AlertStore) Query(filter alerts.Filter, limit int) ([]models.Alert, error) {
	query := s.db.Preload("Shift.Guard").Preload("Shift.Site")

	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	if filter.Resolved != nil {
		if *filter.Resolved {
			query = query.Where("resolved_at IS NOT NULL")
		} else {
			query = query.Where("resolved_at IS NULL")
		}
	}

	var matched []models.Alert

	if err := query.Order("created_at DESC").Limit(limit).Find(&matched).Error; err != nil {
		return nil, err
	}

	return matched, nil
}

func (s *AlertStore) CountUnresolved() (int64, error) {
	var count int64

	err := s.db.Model(&models.Alert{}).Where("resolved_at IS NULL").Count(&count).Error

	return count, err
}

func (s *AlertStore) OpenForShift(shiftID string) ([]models.Alert, error) {
	var open []models.Alert

	err := s.db.Where("shift_id = ? AND resolved_at IS NULL", shiftID).Find(&open).Error

	return open, err
}

// ShiftStore implements tracking.ShiftStore.
type ShiftStore struct {
	db *gorm.DB
}

func NewShiftStore(db *gorm.DB) *ShiftStore {
	return &ShiftStore{db: db}
}

func (s *ShiftStore) FindOwnedActive(guardID, shiftID string) (*models.Shift, error) {
	var shift models.Shift

	err := s.db.Preload("Site").
		Where("id = ? AND guard_id = ? AND status = ?", shiftID, guardID, models.ShiftActive).
		First(&shift).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &shift, nil
}

func (s *ShiftStore) FindActiveForGuard(guardID string) (*models.Shift, error) {
	var shift models.Shift

	err := s.db.Preload("Guard").Preload("Site").
		Where("guard_id = ? AND status = ?", guardID, models.ShiftActive).
		First(&shift).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &shift, nil
}

func (s *ShiftStore) Find(shiftID string) (*models.Shift, error) {
	var shift models.Shift

	err := s.db.Preload("Site").Preload("Guard").Where("id = ?", shiftID).First(&shift).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &shift, nil
}

func (s *ShiftStore) FindActive() ([]models.Shift, error) {
	var active []models.Shift

	err := s.db.Preload("Guard").Preload("Site").
		Where("status = ?", models.ShiftActive).
		Order("start_time DESC").
		Find(&active).Error

	return active, err
}

// LocationStore implements tracking.LocationStore.
type LocationStore struct {
	db *gorm.DB
}

func NewLocationStore(db *gorm.DB) *LocationStore {
	return &LocationStore{db: db}
}

func (s *LocationStore) AppendBatch(samples []models.LocationSample) error {
	if len(samples) == 0 {
		return nil
	}

	return s.db.Create(&samples).Error
}

func (s *LocationStore) Recent(shiftID string, limit int) ([]models.LocationSample, error) {
	var samples []models.LocationSample

	err := s.db.Where("shift_id = ?", shiftID).
		Order("recorded_at DESC").
		Limit(limit).
		Find(&samples).Error

	return samples, err
}

func (s *LocationStore) All(shiftID string) ([]models.LocationSample, error) {
	var samples []models.LocationSample

	err := s.db.Where("shift_id = ?", shiftID).
		Order("recorded_at ASC").
		Find(&samples).Error

	return samples, err
}

func (s *LocationStore) Latest(shiftID string) (*models.LocationSample, error) {
	var sample models.LocationSample

	err := s.db.Where("shift_id = ?", shiftID).
		Order("recorded_at DESC").
		First(&sample).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &sample, nil
}
