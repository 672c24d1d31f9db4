package main

import (
	"log"
	"time"

	"project_flow_app_go/config"
	"project_flow_app_go/db"
	"project_flow_app_go/handlers"
	"project_flow_app_go/middleware"
	"project_flow_app_go/models"
	"project_flow_app_go/services"
	"project_flow_app_go/services/jobs"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg.DBPath, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.LookupCategory{},
		&models.LookupValue{},
		&models.Client{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.TimeEntry{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed the system lookup taxonomy (idempotent)
	if err := services.SeedSystemLookups(db.DB); err != nil {
		log.Fatalf("Failed to seed system lookups: %v", err)
	}

	// Report archive storage (R2 with local fallback)
	services.InitializeStorage(cfg)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: true,
	}))

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})

	// Public routes (no authentication required)
	e.POST("/login", handlers.LoginHandler)

	// Protected routes
	protected := e.Group("")
	protected.Use(middleware.RequireAuth())
	protected.Use(middleware.AuditContext())
	{
		protected.POST("/logout", handlers.LogoutHandler)
		protected.GET("/api/me", handlers.MeHandler)

		// Lookup reads (all roles)
		protected.GET("/api/lookup-categories", handlers.ListLookupCategoriesHandler)
		protected.GET("/api/lookup-categories/:id", handlers.GetLookupCategoryHandler)
		protected.GET("/api/lookup-values", handlers.ListLookupValuesHandler)
		protected.GET("/api/lookup-values/choices", handlers.LookupChoicesHandler)
		protected.GET("/api/lookup-values/:id", handlers.GetLookupValueHandler)
		protected.GET("/api/lookup-values/:id/parent-candidates", handlers.ParentCandidatesHandler)

		// Domain reads (all roles)
		protected.GET("/api/users", handlers.ListUsersHandler)
		protected.GET("/api/users/:id", handlers.GetUserHandler)
		protected.GET("/api/clients", handlers.ListClientsHandler)
		protected.GET("/api/clients/:id", handlers.GetClientHandler)
		protected.GET("/api/projects", handlers.ListProjectsHandler)
		protected.GET("/api/projects/:id", handlers.GetProjectHandler)
		protected.GET("/api/projects/:id/members", handlers.ListProjectMembersHandler)
		protected.GET("/api/tasks", handlers.ListTasksHandler)
		protected.GET("/api/tasks/:id", handlers.GetTaskHandler)

		// Time entries (all roles, member scope enforced in handlers)
		protected.GET("/api/time-entries", handlers.ListTimeEntriesHandler)
		protected.GET("/api/time-entries/:id", handlers.GetTimeEntryHandler)
		protected.POST("/api/time-entries", handlers.CreateTimeEntryHandler)
		protected.PUT("/api/time-entries/:id", handlers.UpdateTimeEntryHandler)
		protected.DELETE("/api/time-entries/:id", handlers.DeleteTimeEntryHandler)

		// Manager routes (admin and manager)
		managerRoutes := protected.Group("")
		managerRoutes.Use(middleware.RequireRole(models.RoleAdmin, models.RoleManager))
		{
			managerRoutes.POST("/api/lookup-categories", handlers.CreateLookupCategoryHandler)
			managerRoutes.PUT("/api/lookup-categories/:id", handlers.UpdateLookupCategoryHandler)
			managerRoutes.DELETE("/api/lookup-categories/:id", handlers.DeleteLookupCategoryHandler)
			managerRoutes.POST("/api/lookup-categories/:id/restore", handlers.RestoreLookupCategoryHandler)
			managerRoutes.POST("/api/lookup-values", handlers.CreateLookupValueHandler)
			managerRoutes.PUT("/api/lookup-values/:id", handlers.UpdateLookupValueHandler)
			managerRoutes.DELETE("/api/lookup-values/:id", handlers.DeleteLookupValueHandler)
			managerRoutes.POST("/api/lookup-values/:id/restore", handlers.RestoreLookupValueHandler)

			managerRoutes.POST("/api/clients", handlers.CreateClientHandler)
			managerRoutes.PUT("/api/clients/:id", handlers.UpdateClientHandler)
			managerRoutes.DELETE("/api/clients/:id", handlers.DeleteClientHandler)
			managerRoutes.POST("/api/clients/:id/restore", handlers.RestoreClientHandler)

			managerRoutes.POST("/api/projects", handlers.CreateProjectHandler)
			managerRoutes.PUT("/api/projects/:id", handlers.UpdateProjectHandler)
			managerRoutes.DELETE("/api/projects/:id", handlers.DeleteProjectHandler)
			managerRoutes.POST("/api/projects/:id/restore", handlers.RestoreProjectHandler)
			managerRoutes.POST("/api/projects/:id/members", handlers.AddProjectMemberHandler)
			managerRoutes.PUT("/api/projects/:id/members/:memberId", handlers.UpdateProjectMemberHandler)
			managerRoutes.DELETE("/api/projects/:id/members/:memberId", handlers.RemoveProjectMemberHandler)
			managerRoutes.POST("/api/projects/:id/members/:memberId/restore", handlers.RestoreProjectMemberHandler)

			managerRoutes.POST("/api/tasks", handlers.CreateTaskHandler)
			managerRoutes.PUT("/api/tasks/:id", handlers.UpdateTaskHandler)
			managerRoutes.DELETE("/api/tasks/:id", handlers.DeleteTaskHandler)
			managerRoutes.POST("/api/tasks/:id/restore", handlers.RestoreTaskHandler)
			managerRoutes.POST("/api/time-entries/:id/restore", handlers.RestoreTimeEntryHandler)

			managerRoutes.GET("/api/reports/time.xlsx", handlers.TimeReportHandler)
			managerRoutes.GET("/api/reports/invoice.pdf", handlers.InvoicePDFHandler)
			managerRoutes.GET("/api/reports/billing-summary", handlers.BillingSummaryHandler)
		}

		// Admin-only routes
		adminRoutes := protected.Group("")
		adminRoutes.Use(middleware.RequireRole(models.RoleAdmin))
		{
			adminRoutes.POST("/api/users", handlers.CreateUserHandler)
			adminRoutes.PUT("/api/users/:id", handlers.UpdateUserHandler)
			adminRoutes.DELETE("/api/users/:id", handlers.DeleteUserHandler)
			adminRoutes.POST("/api/users/:id/restore", handlers.RestoreUserHandler)

			adminRoutes.DELETE("/api/users/:id/purge", handlers.PurgeUserHandler)
			adminRoutes.DELETE("/api/lookup-categories/:id/purge", handlers.PurgeLookupCategoryHandler)
			adminRoutes.DELETE("/api/lookup-values/:id/purge", handlers.PurgeLookupValueHandler)
			adminRoutes.DELETE("/api/clients/:id/purge", handlers.PurgeClientHandler)
			adminRoutes.DELETE("/api/projects/:id/purge", handlers.PurgeProjectHandler)
			adminRoutes.DELETE("/api/tasks/:id/purge", handlers.PurgeTaskHandler)
			adminRoutes.DELETE("/api/time-entries/:id/purge", handlers.PurgeTimeEntryHandler)

			adminRoutes.GET("/api/audit-logs", handlers.ListAuditLogsHandler)
			adminRoutes.GET("/api/audit-logs/:resourceType/:resourceId", handlers.ResourceAuditHistoryHandler)
		}
	}

	// Hourly session cleanup
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			if err := services.CleanupExpiredSessions(db.DB); err != nil {
				log.Printf("Error cleaning up expired sessions: %v", err)
			}
		}
	}()

	// Daily overdue task reminders
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			jobs.SendOverdueTaskReminders(db.DB, cfg)
		}
	}()

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
