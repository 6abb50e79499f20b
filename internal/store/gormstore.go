package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ybenali/roadcall/internal/models"
)

// GormStore runs the dispatch store contract on a SQL database. Each
// mutation executes inside a transaction, so the cascade and upsert side
// effects are all-or-nothing like the file store's single-document write.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open GORM connection. The caller is responsible
// for migration and seeding (see the db package).
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// nextID recomputes max(id)+1 for a model's table. Called only inside a
// transaction, which serializes allocation the way the file store's mutex
// does.
func nextID(tx *gorm.DB, model interface{}) (int, error) {
	var max int
	if err := tx.Model(model).Select("COALESCE(MAX(id), 0)").Scan(&max).Error; err != nil {
		return 0, err
	}
	return max + 1, nil
}

// ListRequests returns every request enriched with its assigned contact
// and user, most recent first.
func (s *GormStore) ListRequests() ([]RequestView, error) {
	var (
		requests    []models.Request
		assignments []models.Assignment
		contacts    []models.Contact
		users       []models.User
	)
	if err := s.db.Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("store: list requests: %w", err)
	}
	if err := s.db.Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("store: list requests: %w", err)
	}
	if err := s.db.Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("store: list requests: %w", err)
	}
	if err := s.db.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("store: list requests: %w", err)
	}
	return buildRequestViews(requests, assignments, contacts, users), nil
}

// CreateRequest stores a new request with status Submitted.
func (s *GormStore) CreateRequest(userInfo string, imageRef *string) (models.Request, error) {
	var r models.Request
	err := s.db.Transaction(func(tx *gorm.DB) error {
		id, err := nextID(tx, &models.Request{})
		if err != nil {
			return err
		}
		now := time.Now()
		r = models.Request{
			ID:        id,
			UserInfo:  userInfo,
			ImageURL:  imageRef,
			Status:    models.RequestSubmitted,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return tx.Create(&r).Error
	})
	if err != nil {
		return models.Request{}, fmt.Errorf("store: create request: %w", err)
	}
	return r, nil
}

// UpdateRequestStatus sets the status text as given and refreshes
// updatedAt. Unknown status values are accepted.
func (s *GormStore) UpdateRequestStatus(id int, status string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var r models.Request
		if err := tx.First(&r, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		return tx.Model(&models.Request{}).Where("id = ?", id).
			Select("status", "updated_at").
			Updates(models.Request{Status: status, UpdatedAt: time.Now()}).Error
	})
	if err != nil {
		return fmt.Errorf("store: update request %d: %w", id, err)
	}
	return nil
}

// DeleteRequest removes the request and every assignment referencing it
// in one transaction.
func (s *GormStore) DeleteRequest(id int) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var r models.Request
		if err := tx.First(&r, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("request_id = ?", id).Delete(&models.Assignment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Request{}, "id = ?", id).Error
	})
	if err != nil {
		return fmt.Errorf("store: delete request %d: %w", id, err)
	}
	return nil
}

// ListContacts returns all contacts sorted by name ascending.
func (s *GormStore) ListContacts() ([]models.Contact, error) {
	var contacts []models.Contact
	if err := s.db.Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("store: list contacts: %w", err)
	}
	sortContacts(contacts)
	return contacts, nil
}

// CreateContact stores a new contact.
func (s *GormStore) CreateContact(p ContactParams) (models.Contact, error) {
	var c models.Contact
	err := s.db.Transaction(func(tx *gorm.DB) error {
		id, err := nextID(tx, &models.Contact{})
		if err != nil {
			return err
		}
		c = models.Contact{
			ID:        id,
			Name:      p.Name,
			Phone:     p.Phone,
			Email:     p.Email,
			Role:      p.Role,
			CreatedAt: time.Now(),
		}
		return tx.Create(&c).Error
	})
	if err != nil {
		return models.Contact{}, fmt.Errorf("store: create contact: %w", err)
	}
	return c, nil
}

// UpdateContact replaces the four mutable fields wholesale. Select forces
// empty strings through, matching full-replacement semantics.
func (s *GormStore) UpdateContact(id int, p ContactParams) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var c models.Contact
		if err := tx.First(&c, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		return tx.Model(&models.Contact{}).Where("id = ?", id).
			Select("name", "phone", "email", "role").
			Updates(models.Contact{Name: p.Name, Phone: p.Phone, Email: p.Email, Role: p.Role}).Error
	})
	if err != nil {
		return fmt.Errorf("store: update contact %d: %w", id, err)
	}
	return nil
}

// DeleteContact removes the contact and every assignment referencing it.
func (s *GormStore) DeleteContact(id int) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var c models.Contact
		if err := tx.First(&c, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("contact_id = ?", id).Delete(&models.Assignment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Contact{}, "id = ?", id).Error
	})
	if err != nil {
		return fmt.Errorf("store: delete contact %d: %w", id, err)
	}
	return nil
}

// ListUsers returns all users sorted by username ascending.
func (s *GormStore) ListUsers() ([]models.User, error) {
	var users []models.User
	if err := s.db.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("store: list users: %w", err)
	}
	sortUsers(users)
	return users, nil
}

// CreateUser stores a new user.
func (s *GormStore) CreateUser(p UserParams) (models.User, error) {
	var u models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		id, err := nextID(tx, &models.User{})
		if err != nil {
			return err
		}
		u = models.User{
			ID:        id,
			Username:  p.Username,
			Email:     p.Email,
			Role:      p.Role,
			Status:    p.Status,
			CreatedAt: time.Now(),
		}
		return tx.Create(&u).Error
	})
	if err != nil {
		return models.User{}, fmt.Errorf("store: create user: %w", err)
	}
	return u, nil
}

// UpdateUser replaces the four mutable fields wholesale.
func (s *GormStore) UpdateUser(id int, p UserParams) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.First(&u, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", id).
			Select("username", "email", "role", "status").
			Updates(models.User{Username: p.Username, Email: p.Email, Role: p.Role, Status: p.Status}).Error
	})
	if err != nil {
		return fmt.Errorf("store: update user %d: %w", id, err)
	}
	return nil
}

// DeleteUser removes the user and every assignment referencing it.
func (s *GormStore) DeleteUser(id int) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.First(&u, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Assignment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", id).Error
	})
	if err != nil {
		return fmt.Errorf("store: delete user %d: %w", id, err)
	}
	return nil
}

// ListAdmins returns all admins sorted by username ascending.
func (s *GormStore) ListAdmins() ([]models.Admin, error) {
	var admins []models.Admin
	if err := s.db.Find(&admins).Error; err != nil {
		return nil, fmt.Errorf("store: list admins: %w", err)
	}
	sortAdmins(admins)
	return admins, nil
}

// CreateAdmin stores a new admin record.
func (s *GormStore) CreateAdmin(p AdminParams) (models.Admin, error) {
	var a models.Admin
	err := s.db.Transaction(func(tx *gorm.DB) error {
		id, err := nextID(tx, &models.Admin{})
		if err != nil {
			return err
		}
		a = models.Admin{
			ID:        id,
			Name:      p.Name,
			Username:  p.Username,
			Email:     p.Email,
			Phone:     p.Phone,
			Level:     p.Level,
			Status:    p.Status,
			CreatedAt: time.Now(),
		}
		return tx.Create(&a).Error
	})
	if err != nil {
		return models.Admin{}, fmt.Errorf("store: create admin: %w", err)
	}
	return a, nil
}

// UpdateAdmin replaces the six mutable fields wholesale.
func (s *GormStore) UpdateAdmin(id int, p AdminParams) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var a models.Admin
		if err := tx.First(&a, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		return tx.Model(&models.Admin{}).Where("id = ?", id).
			Select("name", "username", "email", "phone", "level", "status").
			Updates(models.Admin{Name: p.Name, Username: p.Username, Email: p.Email,
				Phone: p.Phone, Level: p.Level, Status: p.Status}).Error
	})
	if err != nil {
		return fmt.Errorf("store: update admin %d: %w", id, err)
	}
	return nil
}

// DeleteAdmin removes the admin record. No cascade: assignments never
// reference admins.
func (s *GormStore) DeleteAdmin(id int) error {
	result := s.db.Delete(&models.Admin{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("store: delete admin %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("store: delete admin %d: %w", id, ErrNotFound)
	}
	return nil
}

// ListAssignments returns every assignment enriched with request, contact
// and user fields, most recent first.
func (s *GormStore) ListAssignments() ([]AssignmentView, error) {
	var (
		assignments []models.Assignment
		requests    []models.Request
		contacts    []models.Contact
		users       []models.User
	)
	if err := s.db.Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("store: list assignments: %w", err)
	}
	if err := s.db.Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("store: list assignments: %w", err)
	}
	if err := s.db.Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("store: list assignments: %w", err)
	}
	if err := s.db.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("store: list assignments: %w", err)
	}
	return buildAssignmentViews(assignments, requests, contacts, users), nil
}

// UpsertAssignment creates or updates the single assignment for
// requestID, then forces the request (if present) to In Progress. Contact
// and user ids are stored without an existence check.
func (s *GormStore) UpsertAssignment(requestID, contactID, userID int, status string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Assignment
		err := tx.First(&existing, "request_id = ?", requestID).Error
		switch {
		case err == nil:
			if err := tx.Model(&models.Assignment{}).Where("id = ?", existing.ID).
				Select("contact_id", "user_id", "status").
				Updates(models.Assignment{ContactID: contactID, UserID: userID, Status: status}).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			id, err := nextID(tx, &models.Assignment{})
			if err != nil {
				return err
			}
			a := models.Assignment{
				ID:        id,
				RequestID: requestID,
				ContactID: contactID,
				UserID:    userID,
				Status:    status,
				CreatedAt: time.Now(),
			}
			if err := tx.Create(&a).Error; err != nil {
				return err
			}
		default:
			return err
		}

		// Unconditional side effect: an upsert marks the request as
		// being worked, whatever the assignment status says.
		return tx.Model(&models.Request{}).Where("id = ?", requestID).
			Select("status", "updated_at").
			Updates(models.Request{Status: models.RequestInProgress, UpdatedAt: time.Now()}).Error
	})
	if err != nil {
		return fmt.Errorf("store: upsert assignment for request %d: %w", requestID, err)
	}
	return nil
}
