package services

import (
	"testing"
	"time"

	"github.com/okrhub/okrhub/backend/internal/config"
	"github.com/okrhub/okrhub/backend/internal/models"
)

func TestRetentionSweep_KeepsPending(t *testing.T) {
	db := newTestDB(t)
	seedProfile(t, db, "manager")
	seedProfile(t, db, "applicant")
	org := seedOrg(t, db, "manager", "Acme")
	team := seedTeam(t, db, org.OID, "Platform")

	old := time.Now().AddDate(0, 0, -120)
	rows := []models.Notification{
		{SenderID: "applicant", ReceiverID: "manager", OID: org.OID, TID: team.TID,
			Status: models.NotificationPending, Type: models.NotificationReqToJoin, DateCreated: old},
		{SenderID: "applicant", ReceiverID: "manager", OID: org.OID, TID: team.TID,
			Status: models.NotificationDeclined, Type: models.NotificationReqToJoin, DateCreated: old},
		{SenderID: "applicant", ReceiverID: "manager", OID: org.OID, TID: team.TID,
			Status: models.NotificationAccepted, Type: models.NotificationReqToJoin, DateCreated: time.Now()},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("failed to seed notification: %v", err)
		}
	}

	svc := NewRetentionService(db, &config.RetentionConfig{NotificationDays: 90, AuditLogDays: 30})
	svc.Sweep()

	var remaining []models.Notification
	if err := db.Find(&remaining).Error; err != nil {
		t.Fatalf("failed to list notifications: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(remaining))
	}
	for _, n := range remaining {
		if n.Status == models.NotificationDeclined {
			t.Error("old declined notification should have been purged")
		}
	}
}

func TestRetentionSweep_DisabledByZero(t *testing.T) {
	db := newTestDB(t)
	seedProfile(t, db, "manager")
	seedProfile(t, db, "applicant")
	org := seedOrg(t, db, "manager", "Acme")
	team := seedTeam(t, db, org.OID, "Platform")

	n := models.Notification{
		SenderID: "applicant", ReceiverID: "manager", OID: org.OID, TID: team.TID,
		Status: models.NotificationDeclined, Type: models.NotificationReqToJoin,
		DateCreated: time.Now().AddDate(-1, 0, 0),
	}
	if err := db.Create(&n).Error; err != nil {
		t.Fatalf("failed to seed notification: %v", err)
	}

	svc := NewRetentionService(db, &config.RetentionConfig{})
	svc.Sweep()

	var count int64
	db.Model(&models.Notification{}).Count(&count)
	if count != 1 {
		t.Errorf("zero retention should disable the sweep, got %d rows", count)
	}
}
