package services

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/okrhub/okrhub/backend/internal/models"
	"gorm.io/gorm"
)

type OrgService struct {
	db    *gorm.DB
	authz *AuthzService
}

func NewOrgService(db *gorm.DB) *OrgService {
	return &OrgService{db: db, authz: NewAuthzService(db)}
}

type NewTeamRequest struct {
	TeamName string `json:"team_name" binding:"required"`
}

type NewOrgRequest struct {
	OrgName  string          `json:"org_name" binding:"required"`
	AboutOrg string          `json:"about_org"`
	Team     *NewTeamRequest `json:"team"`
}

type NewOrgResult struct {
	Organization *models.Organization `json:"organization"`
	Team         *models.Team         `json:"team,omitempty"`
	Membership   *models.Membership   `json:"membership,omitempty"`
}

// HandleNewOrg creates an organization, and when the request carries an
// initial team definition, the team plus a Manager membership for the
// creator. All rows commit together or not at all.
func (s *OrgService) HandleNewOrg(req *NewOrgRequest, actingUID string) (*NewOrgResult, error) {
	var creator models.Profile
	if err := s.db.First(&creator, "uid = ?", actingUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrValidation("acting user has no profile")
		}
		return nil, err
	}

	result := &NewOrgResult{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		org := models.Organization{
			CreatorID: actingUID,
			OrgName:   req.OrgName,
			AboutOrg:  req.AboutOrg,
			Managers:  []string{actingUID},
		}
		if err := tx.Create(&org).Error; err != nil {
			return err
		}
		result.Organization = &org

		if req.Team == nil {
			return nil
		}

		team := models.Team{
			TID:      uuid.NewString(),
			OID:      org.OID,
			TeamName: req.Team.TeamName,
		}
		if err := tx.Create(&team).Error; err != nil {
			return err
		}
		result.Team = &team

		membership := models.Membership{
			UID:  actingUID,
			OID:  org.OID,
			TID:  team.TID,
			Role: models.RoleManager,
		}
		if err := tx.Create(&membership).Error; err != nil {
			return err
		}
		result.Membership = &membership
		return nil
	})
	if err != nil {
		return nil, ErrTransaction("organization creation failed", err)
	}
	return result, nil
}

// RosterRow is one line of the organization member table: who is in which
// team with which role.
type RosterRow struct {
	Username   string    `json:"username"`
	FullName   *string   `json:"full_name,omitempty"`
	TeamName   string    `json:"team_name"`
	Role       string    `json:"role"`
	InsertedAt time.Time `json:"inserted_at"`
}

type OrgDetail struct {
	Organization *models.Organization `json:"organization"`
	Admins       []models.Profile     `json:"admins"`
	Roster       []RosterRow          `json:"roster"`
}

// GetOrg returns the organization with its admin profiles and full member
// roster. Visible to admins and to anyone holding a membership in the org.
func (s *OrgService) GetOrg(orgID uint, actingUID string) (*OrgDetail, error) {
	var org models.Organization
	if err := s.db.First(&org, orgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("organization not found")
		}
		return nil, err
	}

	ok, err := s.authz.IsOrgParticipant(actingUID, &org)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotAuthorized("not a member of this organization")
	}

	detail := &OrgDetail{Organization: &org}

	// The creator is an admin whether or not it appears in the manager list.
	adminIDs := org.Managers
	if !slices.Contains(adminIDs, org.CreatorID) {
		adminIDs = append([]string{org.CreatorID}, adminIDs...)
	}
	if err := s.db.Where("uid IN ?", adminIDs).Find(&detail.Admins).Error; err != nil {
		return nil, err
	}

	err = s.db.Model(&models.Membership{}).
		Select("profiles.username, profiles.full_name, teams.team_name, memberships.role, memberships.inserted_at").
		Joins("JOIN profiles ON profiles.uid = memberships.uid").
		Joins("JOIN teams ON teams.tid = memberships.tid").
		Where("memberships.oid = ?", orgID).
		Order("memberships.inserted_at ASC").
		Scan(&detail.Roster).Error
	if err != nil {
		return nil, err
	}
	return detail, nil
}

type UpdateOrgRequest struct {
	OrgName  string `json:"org_name"`
	AboutOrg string `json:"about_org"`
}

// UpdateOrg changes the organization's name or description. Admin only.
func (s *OrgService) UpdateOrg(orgID uint, req *UpdateOrgRequest, actingUID string) (*models.Organization, error) {
	var org models.Organization
	if err := s.db.First(&org, orgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("organization not found")
		}
		return nil, err
	}

	if !s.authz.IsOrgAdmin(&org, actingUID) {
		return nil, ErrNotAuthorized("only organization admins can update the organization")
	}

	if req.OrgName != "" {
		org.OrgName = req.OrgName
	}
	if req.AboutOrg != "" {
		org.AboutOrg = req.AboutOrg
	}
	if err := s.db.Save(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// CreateTeam adds a team to an existing organization. Admin only; the
// creator does not automatically join the team.
func (s *OrgService) CreateTeam(orgID uint, teamName, actingUID string) (*models.Team, error) {
	var org models.Organization
	if err := s.db.First(&org, orgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("organization not found")
		}
		return nil, err
	}

	if !s.authz.IsOrgAdmin(&org, actingUID) {
		return nil, ErrNotAuthorized("only organization admins can create teams")
	}
	if teamName == "" {
		return nil, ErrValidation("team name is required")
	}

	team := models.Team{
		TID:      uuid.NewString(),
		OID:      orgID,
		TeamName: teamName,
	}
	if err := s.db.Create(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}
