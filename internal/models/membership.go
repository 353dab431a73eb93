package models

import "time"

// Membership roles, ordered from most to least capable.
const (
	RoleManager  = "Manager"
	RoleMember   = "Member"
	RoleObserver = "Observer"
)

// ValidRole reports whether role is one of the known membership roles.
func ValidRole(role string) bool {
	return role == RoleManager || role == RoleMember || role == RoleObserver
}

// Membership is a profile's role within one team of one organization.
// The composite unique index closes the race between concurrent joins:
// the second insert for the same (uid, oid, tid) fails at the store.
type Membership struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UID        string    `gorm:"size:64;not null;uniqueIndex:idx_membership_scope" json:"uid"`
	OID        uint      `gorm:"column:oid;not null;uniqueIndex:idx_membership_scope" json:"oid"`
	TID        string    `gorm:"column:tid;size:36;not null;uniqueIndex:idx_membership_scope" json:"tid"`
	Role       string    `gorm:"size:20;not null" json:"role"`
	Profile    *Profile  `gorm:"foreignKey:UID;references:UID" json:"profile,omitempty"`
	Team       *Team     `gorm:"foreignKey:TID;references:TID" json:"team,omitempty"`
	InsertedAt time.Time `gorm:"autoCreateTime" json:"inserted_at"`
}

func (Membership) TableName() string { return "memberships" }
