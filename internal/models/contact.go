package models

import "time"

// Contact roles.
const (
	RoleMechanic  = "mechanic"
	RoleTowing    = "towing"
	RoleEmergency = "emergency"
	RoleSupport   = "support"
)

// Contact is a service provider that can be dispatched to a request.
type Contact struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128" json:"name"`
	Phone     string    `gorm:"size:32" json:"phone"`
	Email     string    `gorm:"size:128" json:"email"`
	Role      string    `gorm:"size:16;index" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}
