package main

import (
	"github.com/okrhub/okrhub/backend/internal/config"
	"github.com/okrhub/okrhub/backend/internal/models"
	"github.com/okrhub/okrhub/backend/internal/services"
	"github.com/okrhub/okrhub/backend/internal/utils"
	"github.com/okrhub/okrhub/backend/pkg/logger"
)

// appServices holds all initialized services needed by the application.
type appServices struct {
	profileService      *services.ProfileService
	notificationService *services.NotificationService
	retentionService    *services.RetentionService
	taskQueue           services.TaskQueue
	worker              *services.Worker
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize audit logger
	services.InitAuditLogger(models.GetDB())

	// Initialize task queue (uses Redis if enabled, otherwise sync mode)
	taskQueue := services.InitTaskQueue(cfg)
	notificationService := services.NewNotificationService(models.GetDB(), taskQueue)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(notificationService.ProcessDispatchTask)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(notificationService.ProcessDispatchTask)
			worker.Start()
		}
	}

	// Start retention sweeper for settled notifications and old audit logs
	retentionService := services.NewRetentionService(models.GetDB(), &cfg.Retention)
	retentionService.StartScheduler()

	return &appServices{
		profileService:      services.NewProfileService(models.GetDB()),
		notificationService: notificationService,
		retentionService:    retentionService,
		taskQueue:           taskQueue,
		worker:              worker,
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.retentionService.StopScheduler()
	logger.Info().Msg("Schedulers stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
}
