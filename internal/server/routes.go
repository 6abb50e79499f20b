package server

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ybenali/roadcall/internal/notify"
	"github.com/ybenali/roadcall/internal/store"
)

type handlers struct {
	store      store.Store
	uploadsDir string
	notifier   notify.Notifier
}

// registerRoutes sets up all API routes on the gin router.
func registerRoutes(router *gin.Engine, h *handlers) {
	router.GET("/healthz", h.health)
	router.Static("/uploads", h.uploadsDir)

	api := router.Group("/api")
	api.GET("/requests", h.listRequests)
	api.POST("/requests", h.createRequest)
	api.PUT("/requests/:id/status", h.updateRequestStatus)
	api.DELETE("/requests/:id", h.deleteRequest)

	api.GET("/contacts", h.listContacts)
	api.POST("/contacts", h.createContact)
	api.PUT("/contacts/:id", h.updateContact)
	api.DELETE("/contacts/:id", h.deleteContact)

	api.GET("/users", h.listUsers)
	api.POST("/users", h.createUser)
	api.PUT("/users/:id", h.updateUser)
	api.DELETE("/users/:id", h.deleteUser)

	api.GET("/admins", h.listAdmins)
	api.POST("/admins", h.createAdmin)
	api.PUT("/admins/:id", h.updateAdmin)
	api.DELETE("/admins/:id", h.deleteAdmin)

	api.GET("/assignments", h.listAssignments)
	api.POST("/assignments", h.upsertAssignment)
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// pathID parses the :id path parameter. A non-numeric id is a client
// error, not a missing record.
func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// replyStoreError maps store failures onto HTTP statuses: absent ids are
// 404, everything else is a generic 500 with the message.
func replyStoreError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func (h *handlers) listRequests(c *gin.Context) {
	views, err := h.store.ListRequests()
	if err != nil {
		replyStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *handlers) createRequest(c *gin.Context) {
	userInfo, imageRef, err := h.parseRequestSubmission(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	r, err := h.store.CreateRequest(userInfo, imageRef)
	if err != nil {
		replyStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *handlers) updateRequestStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.UpdateRequestStatus(id, body.Status); err != nil {
		replyStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": id})
}

func (h *handlers) deleteRequest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteRequest(id); err != nil {
		replyStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *handlers) listContacts(c *gin.Context) {
	contacts, err := h.store.ListContacts()
	if err != nil {
		replyStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, contacts)
}

func (h *handlers) createContact(c *gin.Context) {
	var p store.ContactParams
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	contact, err := h.store.CreateContact(p)
	if err != nil {
		replyStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contact)
}

func (h *handlers) updateContact(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var p store.ContactParams
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.UpdateContact(id, p); err != nil {
		replyStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": id})
}

func (h *handlers) deleteContact(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteContact(id); err != nil {
		replyStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *handlers) listUsers(c *gin.Context) {
	users, err := h.store.ListUsers()
	if err != nil {
		replyStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *handlers) createUser(c *gin.Context) {
	var p store.UserParams
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.store.CreateUser(p)
	if err != nil {
		replyStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *handlers) updateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var p store.UserParams
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.UpdateUser(id, p); err != nil {
		replyStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": id})
}

func (h *handlers) deleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteUser(id); err != nil {
		replyStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *handlers) listAdmins(c *gin.Context) {
	admins, err := h.store.ListAdmins()
	if err != nil {
		replyStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, admins)
}

func (h *handlers) createAdmin(c *gin.Context) {
	var p store.AdminParams
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	admin, err := h.store.CreateAdmin(p)
	if err != nil {
		replyStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, admin)
}

func (h *handlers) updateAdmin(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var p store.AdminParams
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.UpdateAdmin(id, p); err != nil {
		replyStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": id})
}

func (h *handlers) deleteAdmin(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteAdmin(id); err != nil {
		replyStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *handlers) listAssignments(c *gin.Context) {
	views, err := h.store.ListAssignments()
	if err != nil {
		replyStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *handlers) upsertAssignment(c *gin.Context) {
	var body struct {
		RequestID int    `json:"requestId"`
		ContactID int    `json:"contactId"`
		UserID    int    `json:"userId"`
		Status    string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.UpsertAssignment(body.RequestID, body.ContactID, body.UserID, body.Status); err != nil {
		replyStoreError(c, err)
		return
	}
	h.notifyAssignment(body.RequestID)
	c.JSON(http.StatusOK, gin.H{"requestId": body.RequestID})
}

// notifyAssignment posts a notification for the assignment now bound to
// requestID. Best-effort: failures are logged, never surfaced.
func (h *handlers) notifyAssignment(requestID int) {
	if h.notifier == nil {
		return
	}
	views, err := h.store.ListAssignments()
	if err != nil {
		log.Printf("server: notify lookup for request %d failed: %v", requestID, err)
		return
	}
	for _, v := range views {
		if v.RequestID == requestID {
			if err := h.notifier.AssignmentUpserted(notify.EventFromView(v)); err != nil {
				log.Printf("server: notify for request %d failed: %v", requestID, err)
			}
			return
		}
	}
}
