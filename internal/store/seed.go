package store

import (
	"time"

	"github.com/ybenali/roadcall/internal/models"
)

// SeedContacts returns the initial contact directory written into a fresh
// datastore: one mechanic, one towing service, one emergency line.
func SeedContacts(now time.Time) []models.Contact {
	return []models.Contact{
		{ID: 1, Name: "Garage Atlas", Phone: "0522334455", Email: "contact@garage-atlas.ma", Role: models.RoleMechanic, CreatedAt: now},
		{ID: 2, Name: "Remorquage Express", Phone: "0661778899", Email: "dispatch@remorquage-express.ma", Role: models.RoleTowing, CreatedAt: now},
		{ID: 3, Name: "SOS Assistance", Phone: "0537112233", Email: "urgence@sos-assistance.ma", Role: models.RoleEmergency, CreatedAt: now},
	}
}

// SeedUsers returns the initial staff accounts for a fresh datastore.
func SeedUsers(now time.Time) []models.User {
	return []models.User{
		{ID: 1, Username: "admin", Email: "admin@roadcall.ma", Role: models.UserRoleAdmin, Status: models.UserActive, CreatedAt: now},
		{ID: 2, Username: "superadmin", Email: "superadmin@roadcall.ma", Role: models.UserRoleSuperAdmin, Status: models.UserActive, CreatedAt: now},
		{ID: 3, Username: "operator1", Email: "operator1@roadcall.ma", Role: models.UserRoleOperator, Status: models.UserActive, CreatedAt: now},
	}
}

// SeedAdmins returns the initial administrative staff records.
func SeedAdmins(now time.Time) []models.Admin {
	return []models.Admin{
		{ID: 1, Name: "Yassine Benali", Username: "ybenali", Email: "ybenali@roadcall.ma", Phone: "0600112233", Level: "super", Status: "active", CreatedAt: now},
		{ID: 2, Name: "Salma Idrissi", Username: "sidrissi", Email: "sidrissi@roadcall.ma", Phone: "0600445566", Level: "standard", Status: "active", CreatedAt: now},
	}
}
