package models

import "time"

// Notification statuses. PENDING is the only actionable state; the
// transition to ACCEPTED or DECLINED is one-way.
const (
	NotificationPending  = "PENDING"
	NotificationAccepted = "ACCEPTED"
	NotificationDeclined = "DECLINED"
)

// Notification types. REQ_TO_JOIN is sent by a user to a team manager;
// REQ_TO_ADD is sent by a manager to the invitee. Direction is fixed by
// the type at creation time.
const (
	NotificationReqToJoin = "REQ_TO_JOIN"
	NotificationReqToAdd  = "REQ_TO_ADD"
	NotificationInfo      = "INFO"
)

// ValidNotificationType reports whether t is a known notification type.
func ValidNotificationType(t string) bool {
	return t == NotificationReqToJoin || t == NotificationReqToAdd || t == NotificationInfo
}

// Notification is an actionable or informational message. It references
// profiles, organizations and teams by id only; those rows may be deleted
// out from under it, in which case the notification stays visible but
// can no longer be acted on.
type Notification struct {
	NID         uint      `gorm:"primaryKey;column:nid" json:"nid"`
	SenderID    string    `gorm:"size:64;not null;index" json:"sender_id"`
	ReceiverID  string    `gorm:"size:64;not null;index" json:"receiver_id"`
	OID         uint      `gorm:"column:oid;not null" json:"oid"`
	TID         string    `gorm:"column:tid;size:36;not null" json:"tid"`
	Role        *string   `gorm:"size:20" json:"role,omitempty"`
	Body        string    `gorm:"type:text" json:"body"`
	Status      string    `gorm:"size:20;not null;default:PENDING" json:"status"`
	Type        string    `gorm:"size:20;not null" json:"type"`
	DateCreated time.Time `gorm:"autoCreateTime" json:"date_created"`
}

func (Notification) TableName() string { return "notifications" }
