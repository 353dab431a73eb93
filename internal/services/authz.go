package services

import (
	"errors"

	"github.com/okrhub/okrhub/backend/internal/models"
	"gorm.io/gorm"
)

// AuthzService holds the capability predicates shared by the other
// services. It only ever reads; authorization checks never mutate state.
type AuthzService struct {
	db *gorm.DB
}

func NewAuthzService(db *gorm.DB) *AuthzService {
	return &AuthzService{db: db}
}

// IsOrgAdmin reports whether uid is the creator or a listed manager of org.
func (s *AuthzService) IsOrgAdmin(org *models.Organization, uid string) bool {
	return org.IsAdmin(uid)
}

// CanManageOrg loads the organization and checks admin capability.
func (s *AuthzService) CanManageOrg(uid string, orgID uint) (bool, error) {
	var org models.Organization
	if err := s.db.First(&org, orgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrNotFound("organization not found")
		}
		return false, err
	}
	return org.IsAdmin(uid), nil
}

// CanManageTeam reports whether uid may administer the given team: either
// an org-level admin, or a Manager membership in that team.
func (s *AuthzService) CanManageTeam(uid string, org *models.Organization, tid string) (bool, error) {
	if org.IsAdmin(uid) {
		return true, nil
	}
	return s.HasTeamRole(uid, org.OID, tid, models.RoleManager)
}

// HasTeamRole reports whether uid holds one of the given roles in the team.
func (s *AuthzService) HasTeamRole(uid string, oid uint, tid string, roles ...string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Membership{}).
		Where("uid = ? AND oid = ? AND tid = ? AND role IN ?", uid, oid, tid, roles).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsOrgParticipant reports whether uid is an admin of org or holds a
// membership in any of its teams.
func (s *AuthzService) IsOrgParticipant(uid string, org *models.Organization) (bool, error) {
	if org.IsAdmin(uid) {
		return true, nil
	}
	var count int64
	err := s.db.Model(&models.Membership{}).
		Where("uid = ? AND oid = ?", uid, org.OID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CanActOnNotification reports whether uid may accept or decline n.
// Only the receiver acts; direction was fixed when the notification was
// created.
func (s *AuthzService) CanActOnNotification(uid string, n *models.Notification) bool {
	return uid == n.ReceiverID
}
