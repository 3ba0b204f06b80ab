package models

import (
	"time"
)

const (
	AlertOutOfBounds = "out_of_bounds"
	AlertIdle        = "idle"
	AlertSignalLost  = "signal_lost"
	AlertSOS         = "sos"
)

// Alert is open while ResolvedAt is nil. At most one open alert exists per
// (shift, type) pair; the ledger dedupes on create.
type Alert struct {
	BaseModel

	ShiftID    string `gorm:"type:uuid;not null;index"`
	Type       string `gorm:"not null;index"` // "out_of_bounds", "idle", "signal_lost", "sos"
	Message    string `gorm:"not null"`
	ResolvedAt *time.Time

	// Relationships
	Shift Shift `gorm:"foreignKey:ShiftID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
