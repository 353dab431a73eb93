package models

import "time"

// Team is a sub-unit of an organization. The tid is a UUID string assigned
// at creation; the owning organization never changes afterwards.
type Team struct {
	TID         string    `gorm:"primaryKey;column:tid;size:36" json:"tid"`
	OID         uint      `gorm:"column:oid;not null;index" json:"oid"`
	TeamName    string    `gorm:"size:200;not null" json:"team_name"`
	DateCreated time.Time `gorm:"autoCreateTime" json:"date_created"`
}

func (Team) TableName() string { return "teams" }
