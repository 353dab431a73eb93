package models

import "time"

// Key result measurement kinds.
const (
	KeyTypePercentage    = "PER"
	KeyTypeNumeric       = "NUM"
	KeyTypeCurrency      = "CUR"
	KeyTypeNotApplicable = "NAN"
)

// Key result statuses.
const (
	KeyStatusDue      = "DUE"
	KeyStatusOverdue  = "OVERDUE"
	KeyStatusComplete = "COMPLETE"
)

// ValidKeyType reports whether t is a known measurement kind.
func ValidKeyType(t string) bool {
	switch t {
	case KeyTypePercentage, KeyTypeNumeric, KeyTypeCurrency, KeyTypeNotApplicable:
		return true
	}
	return false
}

// KeyResult is a quantitative measure contributing to an objective.
// Status is derived from progress and target date, never set directly.
type KeyResult struct {
	KeyID       uint       `gorm:"primaryKey" json:"key_id"`
	ObjectiveID uint       `gorm:"not null;index" json:"objective_id"`
	KeyName     string     `gorm:"size:200;not null" json:"key_name"`
	KeyDesc     string     `gorm:"type:text" json:"key_desc"`
	Type        string     `gorm:"size:10;not null" json:"type"`
	Progress    float64    `json:"progress"`
	MaxProgress float64    `json:"max_progress"`
	Status      string     `gorm:"size:20;not null" json:"status"`
	TargetDate  *time.Time `json:"target_date,omitempty"`
	AddedOn     time.Time  `gorm:"autoCreateTime" json:"added_on"`
}

func (KeyResult) TableName() string { return "key_results" }
