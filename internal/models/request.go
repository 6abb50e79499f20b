package models

import "time"

// Request statuses. UpdateRequestStatus accepts arbitrary text for
// compatibility with existing clients, so these are the known values,
// not an enforced closed set.
const (
	RequestSubmitted  = "Submitted"
	RequestInProgress = "In Progress"
	RequestCompleted  = "Completed"
)

// Request is a roadside-assistance case submitted by an end user.
type Request struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	UserInfo  string    `gorm:"type:text" json:"userInfo"`
	ImageURL  *string   `gorm:"size:255" json:"imageUrl"`
	Status    string    `gorm:"size:32;default:Submitted;index" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
