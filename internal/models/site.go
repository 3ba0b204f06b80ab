package models

import (
	"gorm.io/datatypes"
)

// Site is a patrol corridor between two addresses. The boundary polygon is
// generated from the two anchor coordinates plus the buffer and stored as
// GeoJSON.
type Site struct {
	BaseModel

	Name         string         `gorm:"not null"`
	AddressFrom  string         `gorm:"not null"`
	AddressTo    string         `gorm:"not null"`
	LatFrom      float64        `gorm:"not null"`
	LngFrom      float64        `gorm:"not null"`
	LatTo        float64        `gorm:"not null"`
	LngTo        float64        `gorm:"not null"`
	BufferMeters int            `gorm:"not null;default:100"`
	Boundary     datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	Shifts []Shift `gorm:"foreignKey:SiteID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
