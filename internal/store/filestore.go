package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ybenali/roadcall/internal/models"
)

// document is the serialized datastore: five named collections in one
// JSON file, always read and written in full.
type document struct {
	Requests    []models.Request    `json:"requests"`
	Contacts    []models.Contact    `json:"contacts"`
	Users       []models.User       `json:"users"`
	Admins      []models.Admin      `json:"admins"`
	Assignments []models.Assignment `json:"assignments"`
}

// FileStore persists the dispatch collections in a single JSON document.
// Every operation reads the whole document, mutates it in memory and
// writes it back; the mutex makes that read-modify-write window exclusive
// so the semantics hold under concurrent callers, not just under a
// single-threaded host.
type FileStore struct {
	mu     sync.Mutex
	path   string
	strict bool
}

// FileStoreOpts configures a FileStore.
type FileStoreOpts struct {
	// StrictReads makes a corrupt or unreadable datastore an error.
	// When false (the default), such reads degrade to empty collections
	// and the damage is logged — the historical behavior.
	StrictReads bool
}

// NewFileStore opens the datastore at path, creating and seeding it when
// it does not exist yet.
func NewFileStore(path string, opts FileStoreOpts) (*FileStore, error) {
	s := &FileStore{path: path, strict: opts.StrictReads}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		now := time.Now()
		doc := document{
			Requests:    []models.Request{},
			Contacts:    SeedContacts(now),
			Users:       SeedUsers(now),
			Admins:      SeedAdmins(now),
			Assignments: []models.Assignment{},
		}
		if err := s.save(&doc); err != nil {
			return nil, fmt.Errorf("store: seed %s: %w", path, err)
		}
	}
	return s, nil
}

// Path returns the datastore file path, used by the backup scheduler.
func (s *FileStore) Path() string {
	return s.path
}

// load reads and decodes the full document. A missing file yields empty
// collections. A failed read or decode yields empty collections unless
// StrictReads is set, in which case it is returned as an error.
func (s *FileStore) load() (*document, error) {
	var doc document
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &doc, nil
		}
		if s.strict {
			return nil, fmt.Errorf("store: read %s: %w", s.path, err)
		}
		log.Printf("store: read %s failed, starting empty: %v", s.path, err)
		return &doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		if s.strict {
			return nil, fmt.Errorf("store: decode %s: %w", s.path, err)
		}
		log.Printf("store: decode %s failed, starting empty: %v", s.path, err)
		return &document{}, nil
	}
	return &doc, nil
}

// save writes the full document to a temp file in the same directory and
// renames it over the datastore, so a crash never leaves a partial write.
func (s *FileStore) save(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".roadcall-*.json")
	if err != nil {
		return fmt.Errorf("store: temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("store: write %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: replace %s: %w", s.path, err)
	}
	return nil
}

// nextRequestID and friends recompute max+1 over the live collection, so
// ids survive restarts without a persisted counter. Safe here because
// allocation happens inside the store mutex.
func nextRequestID(requests []models.Request) int {
	max := 0
	for _, r := range requests {
		if r.ID > max {
			max = r.ID
		}
	}
	return max + 1
}

func nextContactID(contacts []models.Contact) int {
	max := 0
	for _, c := range contacts {
		if c.ID > max {
			max = c.ID
		}
	}
	return max + 1
}

func nextUserID(users []models.User) int {
	max := 0
	for _, u := range users {
		if u.ID > max {
			max = u.ID
		}
	}
	return max + 1
}

func nextAdminID(admins []models.Admin) int {
	max := 0
	for _, a := range admins {
		if a.ID > max {
			max = a.ID
		}
	}
	return max + 1
}

func nextAssignmentID(assignments []models.Assignment) int {
	max := 0
	for _, a := range assignments {
		if a.ID > max {
			max = a.ID
		}
	}
	return max + 1
}

// ListRequests returns every request enriched with its assigned contact
// and user, most recent first.
func (s *FileStore) ListRequests() ([]RequestView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return buildRequestViews(doc.Requests, doc.Assignments, doc.Contacts, doc.Users), nil
}

// CreateRequest stores a new request with status Submitted. A nil image
// ref is stored as null, never an error.
func (s *FileStore) CreateRequest(userInfo string, imageRef *string) (models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return models.Request{}, err
	}
	now := time.Now()
	r := models.Request{
		ID:        nextRequestID(doc.Requests),
		UserInfo:  userInfo,
		ImageURL:  imageRef,
		Status:    models.RequestSubmitted,
		CreatedAt: now,
		UpdatedAt: now,
	}
	doc.Requests = append(doc.Requests, r)
	if err := s.save(doc); err != nil {
		return models.Request{}, err
	}
	return r, nil
}

// UpdateRequestStatus sets the status text as given — unknown values are
// accepted — and refreshes updatedAt.
func (s *FileStore) UpdateRequestStatus(id int, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	for i := range doc.Requests {
		if doc.Requests[i].ID == id {
			doc.Requests[i].Status = status
			doc.Requests[i].UpdatedAt = time.Now()
			return s.save(doc)
		}
	}
	return fmt.Errorf("store: update request %d: %w", id, ErrNotFound)
}

// DeleteRequest removes the request and every assignment referencing it.
func (s *FileStore) DeleteRequest(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	found := false
	kept := doc.Requests[:0]
	for _, r := range doc.Requests {
		if r.ID == id {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	if !found {
		return fmt.Errorf("store: delete request %d: %w", id, ErrNotFound)
	}
	doc.Requests = kept
	doc.Assignments = dropAssignments(doc.Assignments, func(a models.Assignment) bool {
		return a.RequestID == id
	})
	return s.save(doc)
}

// dropAssignments removes every assignment matching the predicate.
func dropAssignments(assignments []models.Assignment, match func(models.Assignment) bool) []models.Assignment {
	kept := assignments[:0]
	for _, a := range assignments {
		if match(a) {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}

// ListContacts returns all contacts sorted by name ascending.
func (s *FileStore) ListContacts() ([]models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	sortContacts(doc.Contacts)
	return doc.Contacts, nil
}

// CreateContact stores a new contact.
func (s *FileStore) CreateContact(p ContactParams) (models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return models.Contact{}, err
	}
	c := models.Contact{
		ID:        nextContactID(doc.Contacts),
		Name:      p.Name,
		Phone:     p.Phone,
		Email:     p.Email,
		Role:      p.Role,
		CreatedAt: time.Now(),
	}
	doc.Contacts = append(doc.Contacts, c)
	if err := s.save(doc); err != nil {
		return models.Contact{}, err
	}
	return c, nil
}

// UpdateContact replaces the four mutable fields wholesale.
func (s *FileStore) UpdateContact(id int, p ContactParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	for i := range doc.Contacts {
		if doc.Contacts[i].ID == id {
			doc.Contacts[i].Name = p.Name
			doc.Contacts[i].Phone = p.Phone
			doc.Contacts[i].Email = p.Email
			doc.Contacts[i].Role = p.Role
			return s.save(doc)
		}
	}
	return fmt.Errorf("store: update contact %d: %w", id, ErrNotFound)
}

// DeleteContact removes the contact and every assignment referencing it.
func (s *FileStore) DeleteContact(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	found := false
	kept := doc.Contacts[:0]
	for _, c := range doc.Contacts {
		if c.ID == id {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return fmt.Errorf("store: delete contact %d: %w", id, ErrNotFound)
	}
	doc.Contacts = kept
	doc.Assignments = dropAssignments(doc.Assignments, func(a models.Assignment) bool {
		return a.ContactID == id
	})
	return s.save(doc)
}

// ListUsers returns all users sorted by username ascending.
func (s *FileStore) ListUsers() ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	sortUsers(doc.Users)
	return doc.Users, nil
}

// CreateUser stores a new user.
func (s *FileStore) CreateUser(p UserParams) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return models.User{}, err
	}
	u := models.User{
		ID:        nextUserID(doc.Users),
		Username:  p.Username,
		Email:     p.Email,
		Role:      p.Role,
		Status:    p.Status,
		CreatedAt: time.Now(),
	}
	doc.Users = append(doc.Users, u)
	if err := s.save(doc); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// UpdateUser replaces the four mutable fields wholesale.
func (s *FileStore) UpdateUser(id int, p UserParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	for i := range doc.Users {
		if doc.Users[i].ID == id {
			doc.Users[i].Username = p.Username
			doc.Users[i].Email = p.Email
			doc.Users[i].Role = p.Role
			doc.Users[i].Status = p.Status
			return s.save(doc)
		}
	}
	return fmt.Errorf("store: update user %d: %w", id, ErrNotFound)
}

// DeleteUser removes the user and every assignment referencing it.
func (s *FileStore) DeleteUser(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	found := false
	kept := doc.Users[:0]
	for _, u := range doc.Users {
		if u.ID == id {
			found = true
			continue
		}
		kept = append(kept, u)
	}
	if !found {
		return fmt.Errorf("store: delete user %d: %w", id, ErrNotFound)
	}
	doc.Users = kept
	doc.Assignments = dropAssignments(doc.Assignments, func(a models.Assignment) bool {
		return a.UserID == id
	})
	return s.save(doc)
}

// ListAdmins returns all admins sorted by username ascending.
func (s *FileStore) ListAdmins() ([]models.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	sortAdmins(doc.Admins)
	return doc.Admins, nil
}

// CreateAdmin stores a new admin record.
func (s *FileStore) CreateAdmin(p AdminParams) (models.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return models.Admin{}, err
	}
	a := models.Admin{
		ID:        nextAdminID(doc.Admins),
		Name:      p.Name,
		Username:  p.Username,
		Email:     p.Email,
		Phone:     p.Phone,
		Level:     p.Level,
		Status:    p.Status,
		CreatedAt: time.Now(),
	}
	doc.Admins = append(doc.Admins, a)
	if err := s.save(doc); err != nil {
		return models.Admin{}, err
	}
	return a, nil
}

// UpdateAdmin replaces the six mutable fields wholesale.
func (s *FileStore) UpdateAdmin(id int, p AdminParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	for i := range doc.Admins {
		if doc.Admins[i].ID == id {
			doc.Admins[i].Name = p.Name
			doc.Admins[i].Username = p.Username
			doc.Admins[i].Email = p.Email
			doc.Admins[i].Phone = p.Phone
			doc.Admins[i].Level = p.Level
			doc.Admins[i].Status = p.Status
			return s.save(doc)
		}
	}
	return fmt.Errorf("store: update admin %d: %w", id, ErrNotFound)
}

// DeleteAdmin removes the admin record. Admins are not referenced by
// assignments, so nothing cascades.
func (s *FileStore) DeleteAdmin(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	kept := doc.Admins[:0]
	found := false
	for _, a := range doc.Admins {
		if a.ID == id {
			found = true
			continue
		}
		kept = append(kept, a)
	}
	if !found {
		return fmt.Errorf("store: delete admin %d: %w", id, ErrNotFound)
	}
	doc.Admins = kept
	return s.save(doc)
}

// ListAssignments returns every assignment enriched with request, contact
// and user fields, most recent first.
func (s *FileStore) ListAssignments() ([]AssignmentView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return buildAssignmentViews(doc.Assignments, doc.Requests, doc.Contacts, doc.Users), nil
}

// UpsertAssignment creates the assignment for requestID, or updates the
// existing one in place (id and createdAt preserved). Either way, if the
// request exists its status is forced to In Progress and updatedAt is
// refreshed — even when the assignment status says completed. Contact and
// user ids are stored without an existence check.
func (s *FileStore) UpsertAssignment(requestID, contactID, userID int, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}

	updated := false
	for i := range doc.Assignments {
		if doc.Assignments[i].RequestID == requestID {
			doc.Assignments[i].ContactID = contactID
			doc.Assignments[i].UserID = userID
			doc.Assignments[i].Status = status
			updated = true
			break
		}
	}
	if !updated {
		doc.Assignments = append(doc.Assignments, models.Assignment{
			ID:        nextAssignmentID(doc.Assignments),
			RequestID: requestID,
			ContactID: contactID,
			UserID:    userID,
			Status:    status,
			CreatedAt: time.Now(),
		})
	}

	for i := range doc.Requests {
		if doc.Requests[i].ID == requestID {
			doc.Requests[i].Status = models.RequestInProgress
			doc.Requests[i].UpdatedAt = time.Now()
			break
		}
	}

	return s.save(doc)
}
