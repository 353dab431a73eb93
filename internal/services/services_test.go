package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/okrhub/okrhub/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBCounter int64

// newTestDB opens a fresh in-memory database per test, migrated with the
// full schema. Each database gets a unique name so parallel tests do not
// share state.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:servicetest%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Profile{},
		&models.Organization{},
		&models.Team{},
		&models.Membership{},
		&models.Objective{},
		&models.KeyResult{},
		&models.Notification{},
		&models.AuditLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func seedProfile(t *testing.T, db *gorm.DB, uid string) *models.Profile {
	t.Helper()
	p := &models.Profile{
		UID:      uid,
		Email:    uid + "@example.com",
		Username: uid,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("failed to seed profile %s: %v", uid, err)
	}
	return p
}

func seedOrg(t *testing.T, db *gorm.DB, creatorUID, name string) *models.Organization {
	t.Helper()
	org := &models.Organization{
		CreatorID: creatorUID,
		OrgName:   name,
		Managers:  []string{creatorUID},
	}
	if err := db.Create(org).Error; err != nil {
		t.Fatalf("failed to seed organization %s: %v", name, err)
	}
	return org
}

func seedTeam(t *testing.T, db *gorm.DB, oid uint, name string) *models.Team {
	t.Helper()
	team := &models.Team{
		TID:      uuid.NewString(),
		OID:      oid,
		TeamName: name,
	}
	if err := db.Create(team).Error; err != nil {
		t.Fatalf("failed to seed team %s: %v", name, err)
	}
	return team
}

func seedMembership(t *testing.T, db *gorm.DB, uid string, oid uint, tid, role string) *models.Membership {
	t.Helper()
	m := &models.Membership{UID: uid, OID: oid, TID: tid, Role: role}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("failed to seed membership for %s: %v", uid, err)
	}
	return m
}
