package models

import "time"

// Profile represents a user identity. The uid is issued by the external
// authentication provider; the row is created the first time that identity
// reaches this service.
type Profile struct {
	UID       string    `gorm:"primaryKey;size:64" json:"uid"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	Username  string    `gorm:"uniqueIndex;size:100;not null" json:"username"`
	FullName  *string   `gorm:"size:200" json:"full_name,omitempty"`
	AvatarURL *string   `gorm:"size:500" json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }
