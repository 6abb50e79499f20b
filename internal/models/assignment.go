package models

import "time"

// Assignment statuses.
const (
	AssignmentAssigned   = "assigned"
	AssignmentInProgress = "in_progress"
	AssignmentCompleted  = "completed"
)

// Assignment binds one contact and one user to one request. The store
// keeps at most one assignment per request id; a second upsert for the
// same request updates the existing row in place.
//
// ContactID and UserID are not re-checked after creation: a concurrent
// delete may leave them dangling, and reads resolve dangling references
// to null instead of failing.
type Assignment struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	RequestID int       `gorm:"uniqueIndex" json:"requestId"`
	ContactID int       `gorm:"index" json:"contactId"`
	UserID    int       `gorm:"index" json:"userId"`
	Status    string    `gorm:"size:16;default:assigned" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
