package models

import (
	"slices"
	"time"
)

// Organization is the top-level tenant. Managers holds the profile uids
// granted admin capability; the creator is always an admin whether or not
// it appears in the list.
type Organization struct {
	OID         uint      `gorm:"primaryKey;column:oid" json:"oid"`
	CreatorID   string    `gorm:"size:64;not null;index" json:"creator_id"`
	Creator     *Profile  `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	OrgName     string    `gorm:"size:200;not null" json:"org_name"`
	AboutOrg    string    `gorm:"type:text" json:"about_org"`
	Managers    []string  `gorm:"serializer:json;type:text" json:"managers"`
	DateCreated time.Time `gorm:"autoCreateTime" json:"date_created"`
}

func (Organization) TableName() string { return "organizations" }

// IsAdmin reports whether uid holds admin capability in this organization.
func (o *Organization) IsAdmin(uid string) bool {
	return uid == o.CreatorID || slices.Contains(o.Managers, uid)
}

// AddManager appends uid to the manager list. Returns false if uid is
// already present, keeping the operation idempotent.
func (o *Organization) AddManager(uid string) bool {
	if slices.Contains(o.Managers, uid) {
		return false
	}
	o.Managers = append(o.Managers, uid)
	return true
}
