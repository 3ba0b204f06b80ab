package models

import (
	"time"
)

const (
	ShiftActive    = "active"
	ShiftCompleted = "completed"
)

type Shift struct {
	BaseModel

	GuardID         string    `gorm:"type:uuid;not null;index"`
	SiteID          *string   `gorm:"type:uuid;index"`
	Status          string    `gorm:"not null;default:active;index"` // "active", "completed"
	StartTime       time.Time `gorm:"not null"`
	EndTime         *time.Time
	TimeInConfirmed *time.Time

	// Relationships
	Guard           User             `gorm:"foreignKey:GuardID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Site            *Site            `gorm:"foreignKey:SiteID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	LocationSamples []LocationSample `gorm:"foreignKey:ShiftID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Alerts          []Alert          `gorm:"foreignKey:ShiftID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Incidents       []Incident       `gorm:"foreignKey:ShiftID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
