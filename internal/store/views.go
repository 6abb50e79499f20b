package store

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ybenali/roadcall/internal/models"
)

// RequestView is a request enriched with its assignment's contact and
// user, when both the assignment and the referenced entity still exist.
// Missing references resolve to nil, never to an error.
type RequestView struct {
	models.Request
	ContactName *string `json:"contactName"`
	ContactRole *string `json:"contactRole"`
	UserName    *string `json:"userName"`
}

// AssignmentView is an assignment enriched with fields from the request,
// contact and user it references. Each reference resolves independently;
// a dangling one yields nil for its fields only.
type AssignmentView struct {
	models.Assignment
	UserInfo      *string `json:"userInfo"`
	RequestImage  *string `json:"imageUrl"`
	RequestStatus *string `json:"requestStatus"`
	ContactName   *string `json:"contactName"`
	ContactRole   *string `json:"contactRole"`
	Username      *string `json:"username"`
}

// buildRequestViews enriches every request and orders the result by
// creation time, most recent first. Tie order is unspecified.
func buildRequestViews(requests []models.Request, assignments []models.Assignment,
	contacts []models.Contact, users []models.User) []RequestView {

	contactByID := make(map[int]models.Contact, len(contacts))
	for _, c := range contacts {
		contactByID[c.ID] = c
	}
	userByID := make(map[int]models.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}
	assignmentByRequest := make(map[int]models.Assignment, len(assignments))
	for _, a := range assignments {
		assignmentByRequest[a.RequestID] = a
	}

	views := make([]RequestView, len(requests))
	for i, r := range requests {
		v := RequestView{Request: r}
		if a, ok := assignmentByRequest[r.ID]; ok {
			if c, ok := contactByID[a.ContactID]; ok {
				v.ContactName = &c.Name
				v.ContactRole = &c.Role
			}
			if u, ok := userByID[a.UserID]; ok {
				v.UserName = &u.Username
			}
		}
		views[i] = v
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
	return views
}

// buildAssignmentViews enriches every assignment and orders the result by
// creation time, most recent first.
func buildAssignmentViews(assignments []models.Assignment, requests []models.Request,
	contacts []models.Contact, users []models.User) []AssignmentView {

	requestByID := make(map[int]models.Request, len(requests))
	for _, r := range requests {
		requestByID[r.ID] = r
	}
	contactByID := make(map[int]models.Contact, len(contacts))
	for _, c := range contacts {
		contactByID[c.ID] = c
	}
	userByID := make(map[int]models.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	views := make([]AssignmentView, len(assignments))
	for i, a := range assignments {
		v := AssignmentView{Assignment: a}
		if r, ok := requestByID[a.RequestID]; ok {
			v.UserInfo = &r.UserInfo
			v.RequestImage = r.ImageURL
			v.RequestStatus = &r.Status
		}
		if c, ok := contactByID[a.ContactID]; ok {
			v.ContactName = &c.Name
			v.ContactRole = &c.Role
		}
		if u, ok := userByID[a.UserID]; ok {
			v.Username = &u.Username
		}
		views[i] = v
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
	return views
}

// sortContacts orders contacts by name ascending using locale-aware
// collation. Collators are not safe for concurrent use, so each call
// builds its own.
func sortContacts(contacts []models.Contact) {
	c := collate.New(language.Und)
	sort.SliceStable(contacts, func(i, j int) bool {
		return c.CompareString(contacts[i].Name, contacts[j].Name) < 0
	})
}

// sortUsers orders users by username ascending.
func sortUsers(users []models.User) {
	c := collate.New(language.Und)
	sort.SliceStable(users, func(i, j int) bool {
		return c.CompareString(users[i].Username, users[j].Username) < 0
	})
}

// sortAdmins orders admins by username ascending.
func sortAdmins(admins []models.Admin) {
	c := collate.New(language.Und)
	sort.SliceStable(admins, func(i, j int) bool {
		return c.CompareString(admins[i].Username, admins[j].Username) < 0
	})
}
