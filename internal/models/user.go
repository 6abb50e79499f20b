package models

import "time"

// User roles and statuses.
const (
	UserRoleAdmin      = "admin"
	UserRoleSuperAdmin = "super_admin"
	UserRoleOperator   = "operator"

	UserActive    = "active"
	UserInactive  = "inactive"
	UserSuspended = "suspended"
)

// User is a dispatcher/operator account.
type User struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:64;uniqueIndex" json:"username"`
	Email     string    `gorm:"size:128;uniqueIndex" json:"email"`
	Role      string    `gorm:"size:16;default:operator" json:"role"`
	Status    string    `gorm:"size:16;default:active;index" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
