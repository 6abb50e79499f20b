// Package store implements the dispatch store: the single source of truth
// for requests, contacts, users, admins and assignments. All mutation and
// cross-collection consistency logic lives here — at most one assignment
// per request, cascade deletes, and the request status side effect on
// assignment upsert.
//
// Two implementations share the contract: FileStore persists one JSON
// document and serializes operations behind a mutex; GormStore runs the
// same semantics on a SQL database through GORM. Callers always receive
// copies, never references into store-owned state.
package store

import (
	"errors"

	"github.com/ybenali/roadcall/internal/models"
)

// ErrNotFound is returned when the id targeted by an update or delete is
// absent from its collection.
var ErrNotFound = errors.New("not found")

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ContactParams carries the mutable contact fields. Updates replace all
// four wholesale: a field the caller leaves empty is stored empty.
type ContactParams struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UserParams carries the mutable user fields, replaced wholesale on update.
type UserParams struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

// AdminParams carries the mutable admin fields, replaced wholesale on update.
type AdminParams struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Level    string `json:"level"`
	Status   string `json:"status"`
}

// Store is the operation contract the HTTP layer and CLI program against.
type Store interface {
	ListRequests() ([]RequestView, error)
	CreateRequest(userInfo string, imageRef *string) (models.Request, error)
	UpdateRequestStatus(id int, status string) error
	DeleteRequest(id int) error

	ListContacts() ([]models.Contact, error)
	CreateContact(p ContactParams) (models.Contact, error)
	UpdateContact(id int, p ContactParams) error
	DeleteContact(id int) error

	ListUsers() ([]models.User, error)
	CreateUser(p UserParams) (models.User, error)
	UpdateUser(id int, p UserParams) error
	DeleteUser(id int) error

	ListAdmins() ([]models.Admin, error)
	CreateAdmin(p AdminParams) (models.Admin, error)
	UpdateAdmin(id int, p AdminParams) error
	DeleteAdmin(id int) error

	ListAssignments() ([]AssignmentView, error)
	UpsertAssignment(requestID, contactID, userID int, status string) error
}
