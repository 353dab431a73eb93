package main

import (
	"github.com/gin-gonic/gin"
	"github.com/okrhub/okrhub/backend/internal/handlers"
	"github.com/okrhub/okrhub/backend/internal/middleware"
	"github.com/okrhub/okrhub/backend/internal/models"
	"github.com/okrhub/okrhub/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for the whole API surface
	apiLimiter := middleware.NewRateLimiter(20, 40)

	// Health check
	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.CheckHealth)

	// API routes. Every route requires a verified token; profiles are
	// provisioned on first sight.
	api := r.Group("/api", apiLimiter.Middleware())
	api.Use(middleware.AuthRequired(svc.profileService))
	api.Use(middleware.AuditLog())
	{
		// Profiles
		profileHandler := handlers.NewProfileHandler(models.GetDB())
		api.GET("/profile", profileHandler.Me)
		api.PUT("/profile", profileHandler.Update)
		api.GET("/profiles/:username", profileHandler.GetByUsername)

		// Organizations and teams
		orgHandler := handlers.NewOrgHandler(models.GetDB())
		api.POST("/orgs", orgHandler.Create)
		api.GET("/orgs", orgHandler.List)
		api.GET("/orgs/:org_id", orgHandler.Get)
		api.PUT("/orgs/:org_id", orgHandler.Update)
		api.POST("/orgs/:org_id/teams", orgHandler.CreateTeam)
		api.GET("/orgs/:org_id/teams", orgHandler.ListTeams)

		// Memberships
		membershipHandler := handlers.NewMembershipHandler(models.GetDB())
		api.POST("/orgs/:org_id/managers", membershipHandler.AddManager)
		api.POST("/orgs/:org_id/teams/:tid/members", membershipHandler.Join)
		api.PUT("/orgs/:org_id/teams/:tid/members/:uid", membershipHandler.ChangeRole)
		api.DELETE("/orgs/:org_id/teams/:tid/members/:uid", membershipHandler.Remove)

		// Notifications
		notificationHandler := handlers.NewNotificationHandler(models.GetDB())
		api.POST("/notifications", notificationHandler.Create)
		api.GET("/notifications", notificationHandler.List)
		api.POST("/notifications/:nid/action", notificationHandler.Action)
		api.DELETE("/notifications/:nid", notificationHandler.Delete)

		// Objectives and key results
		objectiveHandler := handlers.NewObjectiveHandler(models.GetDB())
		api.POST("/teams/:tid/objectives", objectiveHandler.Create)
		api.GET("/teams/:tid/objectives", objectiveHandler.List)
		api.PUT("/objectives/:obj_id", objectiveHandler.Update)
		api.DELETE("/objectives/:obj_id", objectiveHandler.Delete)
		api.GET("/objectives/:obj_id/progress", objectiveHandler.Progress)
		api.POST("/objectives/:obj_id/key-results", objectiveHandler.CreateKeyResult)
		api.PUT("/key-results/:key_id/progress", objectiveHandler.UpdateKeyResultProgress)
		api.DELETE("/key-results/:key_id", objectiveHandler.DeleteKeyResult)

		// Audit logs
		auditLogHandler := handlers.NewAuditLogHandler(models.GetDB())
		api.GET("/audit-logs", auditLogHandler.List)
	}
}
