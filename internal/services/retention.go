package services

import (
	"time"

	"github.com/okrhub/okrhub/backend/internal/config"
	"github.com/okrhub/okrhub/backend/internal/models"
	"github.com/okrhub/okrhub/backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// RetentionService purges settled notifications and old audit logs on a
// nightly schedule. PENDING notifications are never touched: an
// unanswered request stays actionable indefinitely.
type RetentionService struct {
	db        *gorm.DB
	cfg       *config.RetentionConfig
	scheduler *cron.Cron
}

func NewRetentionService(db *gorm.DB, cfg *config.RetentionConfig) *RetentionService {
	return &RetentionService{db: db, cfg: cfg}
}

// StartScheduler runs the sweep once at startup and then every night.
func (s *RetentionService) StartScheduler() {
	s.scheduler = cron.New()

	if _, err := s.scheduler.AddFunc("30 3 * * *", s.Sweep); err != nil {
		logger.Errorf("[Retention] Failed to add cron job: %v", err)
		return
	}

	s.scheduler.Start()
	go s.Sweep()
	logger.Infof("[Retention] Scheduler started")
}

// StopScheduler halts the nightly sweep.
func (s *RetentionService) StopScheduler() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// Sweep deletes expired rows. Each category is independent; a failure in
// one does not stop the other.
func (s *RetentionService) Sweep() {
	if s.cfg.NotificationDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -s.cfg.NotificationDays)
		res := s.db.
			Where("status != ? AND date_created < ?", models.NotificationPending, cutoff).
			Delete(&models.Notification{})
		if res.Error != nil {
			logger.Errorf("[Retention] Notification sweep failed: %v", res.Error)
		} else if res.RowsAffected > 0 {
			logger.Infof("[Retention] Purged %d settled notifications older than %d days",
				res.RowsAffected, s.cfg.NotificationDays)
		}
	}

	if s.cfg.AuditLogDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -s.cfg.AuditLogDays)
		res := s.db.
			Where("created_at < ?", cutoff).
			Delete(&models.AuditLog{})
		if res.Error != nil {
			logger.Errorf("[Retention] Audit log sweep failed: %v", res.Error)
		} else if res.RowsAffected > 0 {
			logger.Infof("[Retention] Purged %d audit logs older than %d days",
				res.RowsAffected, s.cfg.AuditLogDays)
		}
	}
}
