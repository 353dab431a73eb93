package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/okrhub/okrhub/backend/internal/middleware"
	"github.com/okrhub/okrhub/backend/internal/services"
	"github.com/okrhub/okrhub/backend/pkg/response"
	"gorm.io/gorm"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{
		notificationService: services.NewNotificationService(db, services.GetTaskQueue()),
	}
}

// Create sends a join request, invitation or informational notification
// POST /api/notifications
func (h *NotificationHandler) Create(c *gin.Context) {
	var req services.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	// the authenticated caller is always the sender
	req.SenderID = middleware.GetUID(c)

	n, err := h.notificationService.Create(&req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, n)
}

// List returns the caller's inbox or sent notifications
// GET /api/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	var req services.NotificationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.notificationService.ListForUser(middleware.GetUID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, resp)
}

// Action accepts or declines a pending notification
// POST /api/notifications/:nid/action
func (h *NotificationHandler) Action(c *gin.Context) {
	nid, ok := uintParam(c, "nid")
	if !ok {
		return
	}

	var req struct {
		Decision string `json:"decision" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.notificationService.HandleAction(nid, middleware.GetUID(c), req.Decision)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, result)
}

// Delete removes a notification the caller is party to
// DELETE /api/notifications/:nid
func (h *NotificationHandler) Delete(c *gin.Context) {
	nid, ok := uintParam(c, "nid")
	if !ok {
		return
	}

	if err := h.notificationService.Delete(nid, middleware.GetUID(c)); err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}
