package services

import (
	"errors"

	"github.com/okrhub/okrhub/backend/internal/models"
	"gorm.io/gorm"
)

type MembershipService struct {
	db    *gorm.DB
	authz *AuthzService
}

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db, authz: NewAuthzService(db)}
}

// AddManager grants org-level admin capability to the profile identified
// by targetUsername. Only an existing admin may grant it. Granting to a
// uid already in the manager list is a no-op, so concurrent duplicate
// calls converge on the same list.
func (s *MembershipService) AddManager(orgID uint, actingUID, targetUsername string) (*models.Organization, error) {
	var org models.Organization
	if err := s.db.First(&org, orgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("organization not found")
		}
		return nil, err
	}

	if !s.authz.IsOrgAdmin(&org, actingUID) {
		return nil, ErrNotAuthorized("only organization admins can add managers")
	}

	var target models.Profile
	if err := s.db.First(&target, "username = ?", targetUsername).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("no profile with that username")
		}
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Re-read inside the transaction so the append works from the
		// freshest manager list.
		if err := tx.First(&org, orgID).Error; err != nil {
			return err
		}
		if !org.AddManager(target.UID) {
			return nil // already a manager
		}
		return tx.Model(&org).Update("managers", org.Managers).Error
	})
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// JoinTeam creates a membership for uid in the given team. Users may
// enroll themselves; enrolling someone else takes manager capability on
// the team. The composite unique index on (uid, oid, tid) decides the
// winner between concurrent joins; the loser gets a conflict.
func (s *MembershipService) JoinTeam(orgID uint, tid, uid, role, actingUID string) (*models.Membership, error) {
	if !models.ValidRole(role) {
		return nil, ErrValidation("unknown role: " + role)
	}

	var team models.Team
	if err := s.db.First(&team, "tid = ?", tid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("team not found")
		}
		return nil, err
	}
	if team.OID != orgID {
		return nil, ErrValidation("team does not belong to that organization")
	}

	if uid != actingUID {
		var org models.Organization
		if err := s.db.First(&org, orgID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound("organization not found")
			}
			return nil, err
		}
		ok, err := s.authz.CanManageTeam(actingUID, &org, tid)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNotAuthorized("only team managers can enroll other members")
		}
	}

	var profile models.Profile
	if err := s.db.First(&profile, "uid = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("profile not found")
		}
		return nil, err
	}

	membership := models.Membership{
		UID:  uid,
		OID:  orgID,
		TID:  tid,
		Role: role,
	}
	if err := s.db.Create(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict("already a member of that team")
		}
		return nil, err
	}
	return &membership, nil
}

// ChangeRole updates the role of an existing membership. The acting user
// must be a Manager in that team or an org admin.
func (s *MembershipService) ChangeRole(orgID uint, tid, uid, newRole, actingUID string) (*models.Membership, error) {
	if !models.ValidRole(newRole) {
		return nil, ErrValidation("unknown role: " + newRole)
	}

	var org models.Organization
	if err := s.db.First(&org, orgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("organization not found")
		}
		return nil, err
	}

	ok, err := s.authz.CanManageTeam(actingUID, &org, tid)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotAuthorized("only team managers can change roles")
	}

	var membership models.Membership
	err = s.db.First(&membership, "uid = ? AND oid = ? AND tid = ?", uid, orgID, tid).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("membership not found")
		}
		return nil, err
	}

	membership.Role = newRole
	if err := s.db.Save(&membership).Error; err != nil {
		return nil, err
	}
	return &membership, nil
}

// RemoveMembership deletes uid's membership in the team. Removing a
// membership that does not exist succeeds, so retries are harmless.
func (s *MembershipService) RemoveMembership(orgID uint, tid, uid, actingUID string) error {
	var org models.Organization
	if err := s.db.First(&org, orgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound("organization not found")
		}
		return err
	}

	// Members may always remove themselves; anyone else needs manager
	// capability on the team.
	if uid != actingUID {
		ok, err := s.authz.CanManageTeam(actingUID, &org, tid)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotAuthorized("only team managers can remove members")
		}
	}

	return s.db.
		Where("uid = ? AND oid = ? AND tid = ?", uid, orgID, tid).
		Delete(&models.Membership{}).Error
}

// IsAdmin reports whether uid holds admin capability in the organization.
func (s *MembershipService) IsAdmin(orgID uint, uid string) (bool, error) {
	return s.authz.CanManageOrg(uid, orgID)
}

// GetUserOrgs returns the organizations uid belongs to: those it created
// plus those where it holds at least one team membership.
func (s *MembershipService) GetUserOrgs(uid string) ([]models.Organization, error) {
	var orgs []models.Organization
	err := s.db.
		Distinct("organizations.*").
		Joins("LEFT JOIN memberships ON memberships.oid = organizations.oid AND memberships.uid = ?", uid).
		Where("organizations.creator_id = ? OR memberships.uid = ?", uid, uid).
		Order("organizations.date_created ASC").
		Find(&orgs).Error
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

// GetUserOrgTeams returns the teams of the organization visible to uid:
// all teams for org admins, otherwise only teams the user is a member of.
func (s *MembershipService) GetUserOrgTeams(orgID uint, uid string) ([]models.Team, error) {
	var org models.Organization
	if err := s.db.First(&org, orgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("organization not found")
		}
		return nil, err
	}

	var teams []models.Team
	if org.IsAdmin(uid) {
		if err := s.db.Where("oid = ?", orgID).Order("date_created ASC").Find(&teams).Error; err != nil {
			return nil, err
		}
		return teams, nil
	}

	err := s.db.
		Joins("JOIN memberships ON memberships.tid = teams.tid").
		Where("memberships.uid = ? AND memberships.oid = ?", uid, orgID).
		Order("teams.date_created ASC").
		Find(&teams).Error
	if err != nil {
		return nil, err
	}
	return teams, nil
}
