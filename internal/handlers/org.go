package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/okrhub/okrhub/backend/internal/middleware"
	"github.com/okrhub/okrhub/backend/internal/services"
	"github.com/okrhub/okrhub/backend/pkg/response"
	"gorm.io/gorm"
)

type OrgHandler struct {
	orgService        *services.OrgService
	membershipService *services.MembershipService
}

func NewOrgHandler(db *gorm.DB) *OrgHandler {
	return &OrgHandler{
		orgService:        services.NewOrgService(db),
		membershipService: services.NewMembershipService(db),
	}
}

// Create creates an organization, optionally with an initial team
// POST /api/orgs
func (h *OrgHandler) Create(c *gin.Context) {
	var req services.NewOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.orgService.HandleNewOrg(&req, middleware.GetUID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, result)
}

// List returns the organizations the caller participates in
// GET /api/orgs
func (h *OrgHandler) List(c *gin.Context) {
	orgs, err := h.membershipService.GetUserOrgs(middleware.GetUID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, orgs)
}

// Get returns the organization detail with its roster
// GET /api/orgs/:org_id
func (h *OrgHandler) Get(c *gin.Context) {
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}

	detail, err := h.orgService.GetOrg(orgID, middleware.GetUID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, detail)
}

// Update changes the organization name or description
// PUT /api/orgs/:org_id
func (h *OrgHandler) Update(c *gin.Context) {
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}

	var req services.UpdateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	org, err := h.orgService.UpdateOrg(orgID, &req, middleware.GetUID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, org)
}

// CreateTeam adds a team to the organization
// POST /api/orgs/:org_id/teams
func (h *OrgHandler) CreateTeam(c *gin.Context) {
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}

	var req services.NewTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	team, err := h.orgService.CreateTeam(orgID, req.TeamName, middleware.GetUID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, team)
}

// ListTeams returns the teams visible to the caller within the organization
// GET /api/orgs/:org_id/teams
func (h *OrgHandler) ListTeams(c *gin.Context) {
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}

	teams, err := h.membershipService.GetUserOrgTeams(orgID, middleware.GetUID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, teams)
}
