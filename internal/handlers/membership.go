package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/okrhub/okrhub/backend/internal/middleware"
	"github.com/okrhub/okrhub/backend/internal/services"
	"github.com/okrhub/okrhub/backend/pkg/response"
	"gorm.io/gorm"
)

type MembershipHandler struct {
	membershipService *services.MembershipService
}

func NewMembershipHandler(db *gorm.DB) *MembershipHandler {
	return &MembershipHandler{
		membershipService: services.NewMembershipService(db),
	}
}

// AddManager promotes a profile to organization manager
// POST /api/orgs/:org_id/managers
func (h *MembershipHandler) AddManager(c *gin.Context) {
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	org, err := h.membershipService.AddManager(orgID, middleware.GetUID(c), req.Username)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, org)
}

// Join enrolls a member in a team. Without a uid in the body the caller
// enrolls themselves; enrolling someone else takes manager capability.
// POST /api/orgs/:org_id/teams/:tid/members
func (h *MembershipHandler) Join(c *gin.Context) {
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}

	var req struct {
		UID  string `json:"uid"`
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	actingUID := middleware.GetUID(c)
	uid := req.UID
	if uid == "" {
		uid = actingUID
	}

	m, err := h.membershipService.JoinTeam(orgID, c.Param("tid"), uid, req.Role, actingUID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, m)
}

// ChangeRole changes a member's role within a team
// PUT /api/orgs/:org_id/teams/:tid/members/:uid
func (h *MembershipHandler) ChangeRole(c *gin.Context) {
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	m, err := h.membershipService.ChangeRole(orgID, c.Param("tid"), c.Param("uid"), req.Role, middleware.GetUID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, m)
}

// Remove removes a member from a team
// DELETE /api/orgs/:org_id/teams/:tid/members/:uid
func (h *MembershipHandler) Remove(c *gin.Context) {
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}

	err := h.membershipService.RemoveMembership(orgID, c.Param("tid"), c.Param("uid"), middleware.GetUID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, gin.H{"removed": true})
}
