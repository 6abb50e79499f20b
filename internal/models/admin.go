package models

import "time"

// Admin is an administrative staff record. Admins are not referenced by
// assignments, so deleting one does not cascade.
type Admin struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128" json:"name"`
	Username  string    `gorm:"size:64" json:"username"`
	Email     string    `gorm:"size:128" json:"email"`
	Phone     string    `gorm:"size:32" json:"phone"`
	Level     string    `gorm:"size:16" json:"level"`
	Status    string    `gorm:"size:16;default:active" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
