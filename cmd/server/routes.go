package main

import (
	"github.com/bugtrail/bugtrail/internal/middleware"
	"github.com/bugtrail/bugtrail/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS())

	// Credential endpoints get a tighter limit than the rest of the API.
	authLimiter := middleware.NewRateLimiter(5, 10)

	r.GET("/health", svc.healthHandler.CheckHealth)

	api := r.Group("/api")
	{
		// Auth routes (public, rate limited)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/register", svc.authHandler.Register)
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
		}

		// Public reads; OptionalAuth so audit entries can still name the actor.
		public := api.Group("")
		public.Use(middleware.OptionalAuth())
		{
			public.GET("/projects", svc.projectHandler.List)
			public.GET("/projects/:id", svc.projectHandler.GetByID)
			public.GET("/projects/:id/bugs", svc.bugHandler.ListByProject)
			public.GET("/bugs/:id", svc.bugHandler.GetByID)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AuditLog())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			// Users
			protected.GET("/users", svc.userHandler.List)
			protected.PUT("/users/me", svc.userHandler.UpdateProfile)
			protected.DELETE("/users/me", svc.userHandler.DeleteAccount)
			protected.GET("/users/me/projects", svc.userHandler.ListManagedProjects)
			protected.GET("/users/me/bugs", svc.userHandler.ListReportedBugs)
			protected.GET("/users/me/invites", svc.userHandler.ListInvites)

			// Projects
			protected.POST("/projects", svc.projectHandler.Create)
			protected.PUT("/projects/:id", svc.projectHandler.Update)
			protected.DELETE("/projects/:id", svc.projectHandler.Delete)

			// Roles
			protected.GET("/roles", svc.roleHandler.List)
			protected.GET("/roles/:id", svc.roleHandler.GetByID)

			// Memberships
			protected.POST("/projects/:id/members", svc.membershipHandler.Invite)
			protected.GET("/projects/:id/members", svc.membershipHandler.ListMembers)
			protected.POST("/memberships/:id/accept", svc.membershipHandler.Accept)
			protected.DELETE("/memberships/:id", svc.membershipHandler.Remove)

			// Bugs
			protected.POST("/projects/:id/bugs", svc.bugHandler.Create)
			protected.PUT("/bugs/:id", svc.bugHandler.Update)
			protected.PATCH("/bugs/:id/status", svc.bugHandler.UpdateStatusPriority)
			protected.DELETE("/bugs/:id", svc.bugHandler.Delete)

			// Audit
			protected.GET("/audit/logs", svc.auditHandler.List)
		}
	}
}
