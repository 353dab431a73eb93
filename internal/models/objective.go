package models

import "time"

// Objective is a goal owned by a team, measured by its key results.
type Objective struct {
	ObjID      uint       `gorm:"primaryKey" json:"obj_id"`
	TeamID     string     `gorm:"size:36;not null;index" json:"team_id"`
	ObjName    string     `gorm:"size:200;not null" json:"obj_name"`
	ObjDesc    string     `gorm:"type:text" json:"obj_desc"`
	TargetDate *time.Time `json:"target_date,omitempty"`
	CreatedOn  time.Time  `gorm:"autoCreateTime" json:"created_on"`
}

func (Objective) TableName() string { return "objectives" }
