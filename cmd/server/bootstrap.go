package main

import (
	"github.com/bugtrail/bugtrail/internal/config"
	"github.com/bugtrail/bugtrail/internal/handlers"
	"github.com/bugtrail/bugtrail/internal/models"
	"github.com/bugtrail/bugtrail/internal/services"
	"github.com/bugtrail/bugtrail/internal/utils"
	"github.com/bugtrail/bugtrail/pkg/logger"
)

// appServices holds the initialized handlers shared across route groups.
type appServices struct {
	cfg               *config.Config
	authHandler       *handlers.AuthHandler
	userHandler       *handlers.UserHandler
	projectHandler    *handlers.ProjectHandler
	membershipHandler *handlers.MembershipHandler
	bugHandler        *handlers.BugHandler
	roleHandler       *handlers.RoleHandler
	auditHandler      *handlers.AuditHandler
	healthHandler     *handlers.HealthHandler
}

// bootstrap initializes all application dependencies: database, seeds,
// audit writer and housekeeping scheduler.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	if err := models.SeedRoles(models.GetDB()); err != nil {
		logger.Fatalf("Failed to seed roles: %v", err)
	}

	services.InitAuditLogger(models.GetDB())

	if err := services.StartHousekeeping(models.GetDB(), &cfg.Audit); err != nil {
		logger.Warn().Err(err).Msg("Failed to start housekeeping scheduler")
	}

	db := models.GetDB()
	return &appServices{
		cfg:               cfg,
		authHandler:       handlers.NewAuthHandler(db, cfg),
		userHandler:       handlers.NewUserHandler(db),
		projectHandler:    handlers.NewProjectHandler(db),
		membershipHandler: handlers.NewMembershipHandler(db),
		bugHandler:        handlers.NewBugHandler(db),
		roleHandler:       handlers.NewRoleHandler(db),
		auditHandler:      handlers.NewAuditHandler(db),
		healthHandler:     handlers.NewHealthHandler(),
	}
}

// shutdown gracefully stops background work.
func (s *appServices) shutdown() {
	services.StopHousekeeping()
	logger.Info().Msg("Housekeeping scheduler stopped")
}
