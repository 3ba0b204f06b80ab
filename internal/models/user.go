package models

const (
	RoleGuard      = "guard"
	RoleSupervisor = "supervisor"
	RoleAdmin      = "admin"
)

type User struct {
	BaseModel

	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null;default:guard"` // "guard", "supervisor", "admin"
	BadgeID      string

	// Relationships
	Shifts []Shift `gorm:"foreignKey:GuardID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
