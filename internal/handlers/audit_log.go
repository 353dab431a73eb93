package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/okrhub/okrhub/backend/internal/services"
	"github.com/okrhub/okrhub/backend/pkg/response"
	"gorm.io/gorm"
)

type AuditLogHandler struct {
	auditLogService *services.AuditLogService
}

func NewAuditLogHandler(db *gorm.DB) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogService: services.NewAuditLogService(db),
	}
}

// List returns paginated audit log entries
// GET /api/audit-logs
func (h *AuditLogHandler) List(c *gin.Context) {
	var req services.AuditLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.auditLogService.List(&req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, resp)
}
