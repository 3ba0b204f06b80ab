package models

type Incident struct {
	BaseModel

	ShiftID     string `gorm:"type:uuid;not null;index"`
	Description string `gorm:"not null"`
	PhotoPath   string

	// Relationships
	Shift Shift `gorm:"foreignKey:ShiftID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
