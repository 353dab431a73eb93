package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/okrhub/okrhub/backend/internal/middleware"
	"github.com/okrhub/okrhub/backend/internal/services"
	"github.com/okrhub/okrhub/backend/pkg/response"
	"gorm.io/gorm"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{
		profileService: services.NewProfileService(db),
	}
}

// Me returns the authenticated caller's profile
// GET /api/profile
func (h *ProfileHandler) Me(c *gin.Context) {
	profile, err := h.profileService.GetByUID(middleware.GetUID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, profile)
}

// Update modifies the authenticated caller's profile
// PUT /api/profile
func (h *ProfileHandler) Update(c *gin.Context) {
	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	uid := middleware.GetUID(c)
	profile, err := h.profileService.Update(uid, &req, uid)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, profile)
}

// GetByUsername looks up a profile by username
// GET /api/profiles/:username
func (h *ProfileHandler) GetByUsername(c *gin.Context) {
	profile, err := h.profileService.GetByUsername(c.Param("username"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, profile)
}
