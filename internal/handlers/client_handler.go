package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/appointly/appointment-scheduler/internal/audit"
	"github.com/appointly/appointment-scheduler/internal/httperr"
	"github.com/appointly/appointment-scheduler/internal/httpresp"
	"github.com/appointly/appointment-scheduler/internal/middleware"
	"github.com/appointly/appointment-scheduler/internal/models"
)

type ClientHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewClientHandler(db *gorm.DB, auditor *audit.Dispatcher) *ClientHandler {
	return &ClientHandler{db: db, audit: auditor}
}

type CreateClientRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Notes     string `json:"notes"`
}

type UpdateClientRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

func (h *ClientHandler) Create(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uuid.UUID)
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request payload.")
		return
	}

	client := models.Client{
		ID:         uuid.New(),
		BusinessID: businessID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Notes:      req.Notes,
	}

	if err := h.db.Create(&client).Error; err != nil {
		httperr.Internal(c, "failed_to_create_client", "Failed to create client.")
		return
	}

	h.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		UserID:     &userID,
		Action:     "client_created",
		Entity:     "client",
		EntityID:   &client.ID,
	})

	httpresp.Created(c, client)
}

// List supports a free-text search across name, email and phone.
func (h *ClientHandler) List(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uuid.UUID)

	query := h.db.Where("business_id = ?", businessID)

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?",
			like, like, like, like,
		)
	}

	var clients []models.Client
	if err := query.Order("first_name ASC, last_name ASC").Find(&clients).Error; err != nil {
		httperr.Internal(c, "failed_to_list_clients", "Failed to list clients.")
		return
	}

	httpresp.List(c, clients)
}

func (h *ClientHandler) Get(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uuid.UUID)

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid client id.")
		return
	}

	var client models.Client
	err = h.db.
		Where("id = ? AND business_id = ?", clientID, businessID).
		First(&client).Error
	if err != nil {
		respondError(c, err, "client_not_found", "Client not found.")
		return
	}

	c.JSON(http.StatusOK, client)
}

func (h *ClientHandler) Update(c *gin.Context) {
	businessID := c.MustGet(middleware.ContextBusinessID).(uuid.UUID)
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid client id.")
		return
	}

	var client models.Client
	err = h.db.
		Where("id = ? AND business_id = ?", clientID, businessID).
		First(&client).Error
	if err != nil {
		respondError(c, err, "client_not_found", "Client not found.")
		return
	}

	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request payload.")
		return
	}

	if req.FirstName != nil {
		client.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		client.LastName = *req.LastName
	}
	if req.Email != nil {
		client.Email = *req.Email
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.Notes != nil {
		client.Notes = *req.Notes
	}

	if err := h.db.Save(&client).Error; err != nil {
		httperr.Internal(c, "failed_to_update_client", "Failed to update client.")
		return
	}

	h.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		UserID:     &userID,
		Action:     "client_updated",
		Entity:     "client",
		EntityID:   &client.ID,
	})

	c.JSON(http.StatusOK, client)
}
