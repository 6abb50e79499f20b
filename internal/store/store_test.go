package store

import (
	"testing"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ybenali/roadcall/internal/models"
)

// runStoreSuite exercises the full operation contract against a freshly
// seeded store (3 contacts, 3 users, 2 admins, no requests or
// assignments). Both backends run it, so their semantics cannot drift.
func runStoreSuite(t *testing.T, open func(t *testing.T) Store) {
	t.Run("SeedState", func(t *testing.T) {
		s := open(t)
		contacts, err := s.ListContacts()
		if err != nil {
			t.Fatalf("ListContacts: %v", err)
		}
		if len(contacts) != 3 {
			t.Fatalf("seed contacts = %d, want 3", len(contacts))
		}
		users, err := s.ListUsers()
		if err != nil {
			t.Fatalf("ListUsers: %v", err)
		}
		if len(users) != 3 {
			t.Fatalf("seed users = %d, want 3", len(users))
		}
		admins, err := s.ListAdmins()
		if err != nil {
			t.Fatalf("ListAdmins: %v", err)
		}
		if len(admins) != 2 {
			t.Fatalf("seed admins = %d, want 2", len(admins))
		}
		requests, err := s.ListRequests()
		if err != nil {
			t.Fatalf("ListRequests: %v", err)
		}
		if len(requests) != 0 {
			t.Fatalf("seed requests = %d, want 0", len(requests))
		}
	})

	t.Run("CreateRequest", func(t *testing.T) {
		s := open(t)
		r, err := s.CreateRequest("Jane, Toyota, Rabat", nil)
		if err != nil {
			t.Fatalf("CreateRequest: %v", err)
		}
		if r.ID != 1 {
			t.Errorf("first request id = %d, want 1", r.ID)
		}
		if r.Status != models.RequestSubmitted {
			t.Errorf("status = %q, want %q", r.Status, models.RequestSubmitted)
		}
		if r.ImageURL != nil {
			t.Errorf("imageUrl = %v, want nil", *r.ImageURL)
		}
		if r.CreatedAt.IsZero() || r.UpdatedAt.IsZero() {
			t.Error("timestamps not set")
		}

		ref := "/uploads/123.jpg"
		r2, err := s.CreateRequest("Omar, Dacia, Fès", &ref)
		if err != nil {
			t.Fatalf("CreateRequest with image: %v", err)
		}
		if r2.ID != 2 {
			t.Errorf("second request id = %d, want 2", r2.ID)
		}
		if r2.ImageURL == nil || *r2.ImageURL != ref {
			t.Errorf("imageUrl = %v, want %q", r2.ImageURL, ref)
		}
	})

	t.Run("IDsRecomputedAfterDelete", func(t *testing.T) {
		s := open(t)
		r1, _ := s.CreateRequest("one", nil)
		r2, _ := s.CreateRequest("two", nil)
		if err := s.DeleteRequest(r2.ID); err != nil {
			t.Fatalf("DeleteRequest: %v", err)
		}
		r3, err := s.CreateRequest("three", nil)
		if err != nil {
			t.Fatalf("CreateRequest: %v", err)
		}
		// max+1 over the live collection: deleting the max frees its id.
		if r3.ID != r1.ID+1 {
			t.Errorf("id after delete = %d, want %d", r3.ID, r1.ID+1)
		}
	})

	t.Run("UpdateRequestStatus", func(t *testing.T) {
		s := open(t)
		r, _ := s.CreateRequest("Jane, Toyota, Rabat", nil)
		time.Sleep(5 * time.Millisecond)
		if err := s.UpdateRequestStatus(r.ID, models.RequestCompleted); err != nil {
			t.Fatalf("UpdateRequestStatus: %v", err)
		}
		views, _ := s.ListRequests()
		if views[0].Status != models.RequestCompleted {
			t.Errorf("status = %q, want %q", views[0].Status, models.RequestCompleted)
		}
		if !views[0].UpdatedAt.After(r.UpdatedAt) {
			t.Error("updatedAt not refreshed")
		}

		// Arbitrary status text is accepted, not validated.
		if err := s.UpdateRequestStatus(r.ID, "Weird Custom State"); err != nil {
			t.Fatalf("UpdateRequestStatus custom text: %v", err)
		}
		views, _ = s.ListRequests()
		if views[0].Status != "Weird Custom State" {
			t.Errorf("status = %q, want the raw text stored", views[0].Status)
		}
	})

	t.Run("UpdateRequestStatus_NotFound", func(t *testing.T) {
		s := open(t)
		err := s.UpdateRequestStatus(999, models.RequestCompleted)
		if !IsNotFound(err) {
			t.Fatalf("UpdateRequestStatus(999) = %v, want ErrNotFound", err)
		}
	})

	t.Run("ListRequests_OrderAndEnrichment", func(t *testing.T) {
		s := open(t)
		r1, _ := s.CreateRequest("first", nil)
		time.Sleep(5 * time.Millisecond)
		r2, _ := s.CreateRequest("second", nil)

		if err := s.UpsertAssignment(r1.ID, 1, 1, models.AssignmentAssigned); err != nil {
			t.Fatalf("UpsertAssignment: %v", err)
		}

		views, err := s.ListRequests()
		if err != nil {
			t.Fatalf("ListRequests: %v", err)
		}
		if len(views) != 2 {
			t.Fatalf("len = %d, want 2", len(views))
		}
		// Most recent first.
		if views[0].ID != r2.ID || views[1].ID != r1.ID {
			t.Errorf("order = [%d %d], want [%d %d]", views[0].ID, views[1].ID, r2.ID, r1.ID)
		}
		// Unassigned request resolves to nils.
		if views[0].ContactName != nil || views[0].UserName != nil {
			t.Error("unassigned request should have nil contact/user")
		}
		// Assigned request resolves names. Seed contact 1 is Garage Atlas.
		if views[1].ContactName == nil || *views[1].ContactName != "Garage Atlas" {
			t.Errorf("contactName = %v, want Garage Atlas", views[1].ContactName)
		}
		if views[1].ContactRole == nil || *views[1].ContactRole != models.RoleMechanic {
			t.Errorf("contactRole = %v, want mechanic", views[1].ContactRole)
		}
		if views[1].UserName == nil || *views[1].UserName != "admin" {
			t.Errorf("userName = %v, want admin", views[1].UserName)
		}
	})

	t.Run("UpsertAssignment_StatusSideEffect", func(t *testing.T) {
		s := open(t)
		r, _ := s.CreateRequest("Jane, Toyota, Rabat", nil)
		prior := r.UpdatedAt
		time.Sleep(5 * time.Millisecond)

		// Even a completed assignment forces the request to In Progress.
		if err := s.UpsertAssignment(r.ID, 1, 1, models.AssignmentCompleted); err != nil {
			t.Fatalf("UpsertAssignment: %v", err)
		}
		views, _ := s.ListRequests()
		if views[0].Status != models.RequestInProgress {
			t.Errorf("status = %q, want %q", views[0].Status, models.RequestInProgress)
		}
		if !views[0].UpdatedAt.After(prior) {
			t.Error("updatedAt not strictly greater after upsert")
		}
	})

	t.Run("UpsertAssignment_AtMostOnePerRequest", func(t *testing.T) {
		s := open(t)
		r, _ := s.CreateRequest("Jane, Toyota, Rabat", nil)

		if err := s.UpsertAssignment(r.ID, 1, 1, models.AssignmentAssigned); err != nil {
			t.Fatalf("first upsert: %v", err)
		}
		first, _ := s.ListAssignments()
		if len(first) != 1 {
			t.Fatalf("assignments = %d, want 1", len(first))
		}

		time.Sleep(5 * time.Millisecond)
		if err := s.UpsertAssignment(r.ID, 2, 3, models.AssignmentInProgress); err != nil {
			t.Fatalf("second upsert: %v", err)
		}
		second, _ := s.ListAssignments()
		if len(second) != 1 {
			t.Fatalf("assignments after re-upsert = %d, want 1", len(second))
		}
		a := second[0]
		if a.ContactID != 2 || a.UserID != 3 || a.Status != models.AssignmentInProgress {
			t.Errorf("assignment = {contact %d, user %d, %s}, want latest values", a.ContactID, a.UserID, a.Status)
		}
		if a.ID != first[0].ID {
			t.Errorf("id changed from %d to %d on re-upsert", first[0].ID, a.ID)
		}
		if !a.CreatedAt.Equal(first[0].CreatedAt) {
			t.Errorf("createdAt changed from %v to %v on re-upsert", first[0].CreatedAt, a.CreatedAt)
		}
	})

	t.Run("UpsertAssignment_DanglingReferencesAllowed", func(t *testing.T) {
		s := open(t)
		r, _ := s.CreateRequest("x", nil)
		// Contact 99 and user 99 do not exist; the upsert still succeeds.
		if err := s.UpsertAssignment(r.ID, 99, 99, models.AssignmentAssigned); err != nil {
			t.Fatalf("UpsertAssignment with dangling refs: %v", err)
		}
		views, _ := s.ListAssignments()
		if len(views) != 1 {
			t.Fatalf("assignments = %d, want 1", len(views))
		}
		if views[0].ContactName != nil || views[0].Username != nil {
			t.Error("dangling references should resolve to nil")
		}
		if views[0].UserInfo == nil || *views[0].UserInfo != "x" {
			t.Errorf("userInfo = %v, want x", views[0].UserInfo)
		}
	})

	t.Run("DeleteRequest_Cascades", func(t *testing.T) {
		s := open(t)
		r1, _ := s.CreateRequest("one", nil)
		r2, _ := s.CreateRequest("two", nil)
		s.UpsertAssignment(r1.ID, 1, 1, models.AssignmentAssigned)
		s.UpsertAssignment(r2.ID, 2, 2, models.AssignmentAssigned)

		if err := s.DeleteRequest(r1.ID); err != nil {
			t.Fatalf("DeleteRequest: %v", err)
		}
		views, _ := s.ListAssignments()
		if len(views) != 1 {
			t.Fatalf("assignments = %d, want 1", len(views))
		}
		if views[0].RequestID != r2.ID {
			t.Errorf("surviving assignment references request %d, want %d", views[0].RequestID, r2.ID)
		}

		if err := s.DeleteRequest(r1.ID); !IsNotFound(err) {
			t.Errorf("second delete = %v, want ErrNotFound", err)
		}
	})

	t.Run("Contacts_CRUDAndCascade", func(t *testing.T) {
		s := open(t)
		c, err := s.CreateContact(ContactParams{Name: "Ahmed", Phone: "0612345678", Email: "ahmed@x.com", Role: models.RoleMechanic})
		if err != nil {
			t.Fatalf("CreateContact: %v", err)
		}
		if c.ID != 4 {
			t.Errorf("contact id = %d, want 4 after 3 seed contacts", c.ID)
		}

		r, _ := s.CreateRequest("Jane, Toyota, Rabat", nil)
		if r.ID != 1 {
			t.Errorf("request id = %d, want 1", r.ID)
		}
		if err := s.UpsertAssignment(r.ID, c.ID, 1, models.AssignmentAssigned); err != nil {
			t.Fatalf("UpsertAssignment: %v", err)
		}
		views, _ := s.ListRequests()
		if views[0].Status != models.RequestInProgress {
			t.Errorf("status = %q, want In Progress", views[0].Status)
		}
		if views[0].ContactName == nil || *views[0].ContactName != "Ahmed" {
			t.Errorf("contactName = %v, want Ahmed", views[0].ContactName)
		}

		if err := s.DeleteContact(c.ID); err != nil {
			t.Fatalf("DeleteContact: %v", err)
		}
		assignments, _ := s.ListAssignments()
		if len(assignments) != 0 {
			t.Errorf("assignments after contact delete = %d, want 0", len(assignments))
		}
	})

	t.Run("UpdateContact_FullReplacement", func(t *testing.T) {
		s := open(t)
		c, _ := s.CreateContact(ContactParams{Name: "Ahmed", Phone: "0612345678", Email: "ahmed@x.com", Role: models.RoleMechanic})
		// Only the name is supplied; the other fields are replaced with
		// empty values, not preserved.
		if err := s.UpdateContact(c.ID, ContactParams{Name: "Ahmed Jr"}); err != nil {
			t.Fatalf("UpdateContact: %v", err)
		}
		contacts, _ := s.ListContacts()
		var got *models.Contact
		for i := range contacts {
			if contacts[i].ID == c.ID {
				got = &contacts[i]
			}
		}
		if got == nil {
			t.Fatal("updated contact not found")
		}
		if got.Name != "Ahmed Jr" {
			t.Errorf("name = %q, want Ahmed Jr", got.Name)
		}
		if got.Phone != "" || got.Email != "" || got.Role != "" {
			t.Errorf("omitted fields = {%q %q %q}, want all empty", got.Phone, got.Email, got.Role)
		}

		if err := s.UpdateContact(999, ContactParams{}); !IsNotFound(err) {
			t.Errorf("UpdateContact(999) = %v, want ErrNotFound", err)
		}
	})

	t.Run("ListContacts_SortedByName", func(t *testing.T) {
		s := open(t)
		s.CreateContact(ContactParams{Name: "atlas auto", Role: models.RoleMechanic})
		s.CreateContact(ContactParams{Name: "Zouhair Towing", Role: models.RoleTowing})
		contacts, err := s.ListContacts()
		if err != nil {
			t.Fatalf("ListContacts: %v", err)
		}
		coll := collate.New(language.Und)
		for i := 1; i < len(contacts); i++ {
			if coll.CompareString(contacts[i-1].Name, contacts[i].Name) > 0 {
				t.Errorf("contacts out of order: %q before %q", contacts[i-1].Name, contacts[i].Name)
			}
		}
	})

	t.Run("Users_CRUDAndCascade", func(t *testing.T) {
		s := open(t)
		u, err := s.CreateUser(UserParams{Username: "operator2", Email: "op2@roadcall.ma", Role: models.UserRoleOperator, Status: models.UserActive})
		if err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
		if u.ID != 4 {
			t.Errorf("user id = %d, want 4 after 3 seed users", u.ID)
		}

		r, _ := s.CreateRequest("x", nil)
		s.UpsertAssignment(r.ID, 1, u.ID, models.AssignmentAssigned)

		if err := s.UpdateUser(u.ID, UserParams{Username: "operator2b", Email: "op2b@roadcall.ma", Role: models.UserRoleOperator, Status: models.UserSuspended}); err != nil {
			t.Fatalf("UpdateUser: %v", err)
		}

		if err := s.DeleteUser(u.ID); err != nil {
			t.Fatalf("DeleteUser: %v", err)
		}
		assignments, _ := s.ListAssignments()
		if len(assignments) != 0 {
			t.Errorf("assignments after user delete = %d, want 0", len(assignments))
		}

		if err := s.DeleteUser(u.ID); !IsNotFound(err) {
			t.Errorf("second DeleteUser = %v, want ErrNotFound", err)
		}
	})

	t.Run("Admins_NoCascade", func(t *testing.T) {
		s := open(t)
		a, err := s.CreateAdmin(AdminParams{Name: "Nadia Alaoui", Username: "nalaoui", Email: "nalaoui@roadcall.ma", Phone: "0600778899", Level: "standard", Status: "active"})
		if err != nil {
			t.Fatalf("CreateAdmin: %v", err)
		}
		if a.ID != 3 {
			t.Errorf("admin id = %d, want 3 after 2 seed admins", a.ID)
		}

		r, _ := s.CreateRequest("x", nil)
		s.UpsertAssignment(r.ID, 1, 1, models.AssignmentAssigned)

		if err := s.UpdateAdmin(a.ID, AdminParams{Name: "Nadia A", Username: "nalaoui", Email: "n@roadcall.ma", Phone: "0600778899", Level: "super", Status: "active"}); err != nil {
			t.Fatalf("UpdateAdmin: %v", err)
		}
		if err := s.DeleteAdmin(a.ID); err != nil {
			t.Fatalf("DeleteAdmin: %v", err)
		}
		// Assignments are untouched: admins are not referenced.
		assignments, _ := s.ListAssignments()
		if len(assignments) != 1 {
			t.Errorf("assignments after admin delete = %d, want 1", len(assignments))
		}

		if err := s.DeleteAdmin(a.ID); !IsNotFound(err) {
			t.Errorf("second DeleteAdmin = %v, want ErrNotFound", err)
		}
	})

	t.Run("IDUniqueness", func(t *testing.T) {
		s := open(t)
		for i := 0; i < 5; i++ {
			s.CreateRequest("r", nil)
			s.CreateContact(ContactParams{Name: "c", Role: models.RoleSupport})
			s.CreateUser(UserParams{Username: "u", Email: "u@x", Role: models.UserRoleOperator, Status: models.UserActive})
		}
		s.DeleteRequest(3)
		s.CreateRequest("r", nil)

		views, _ := s.ListRequests()
		seen := map[int]bool{}
		for _, v := range views {
			if seen[v.ID] {
				t.Errorf("duplicate request id %d", v.ID)
			}
			seen[v.ID] = true
		}
		contacts, _ := s.ListContacts()
		seen = map[int]bool{}
		for _, c := range contacts {
			if seen[c.ID] {
				t.Errorf("duplicate contact id %d", c.ID)
			}
			seen[c.ID] = true
		}
	})
}
