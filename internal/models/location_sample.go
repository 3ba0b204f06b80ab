package models

import (
	"time"
)

// LocationSample is one GPS fix from a guard device. Samples are append-only
// for the lifetime of the shift.
type LocationSample struct {
	BaseModel

	GuardID    string    `gorm:"type:uuid;not null;index"`
	ShiftID    string    `gorm:"type:uuid;not null;index:idx_samples_shift_recorded"`
	Latitude   float64   `gorm:"not null"`
	Longitude  float64   `gorm:"not null"`
	Accuracy   *float64
	Speed      *float64
	Heading    *float64
	RecordedAt time.Time `gorm:"not null;index:idx_samples_shift_recorded"`

	// Relationships
	Shift Shift `gorm:"foreignKey:ShiftID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
