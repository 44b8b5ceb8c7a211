package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"avilegal.backend/internal/domain/entities"
	"avilegal.backend/internal/interfaces/http/handlers"
	"avilegal.backend/internal/interfaces/http/middleware"
	"avilegal.backend/pkg/metrics"
)

type routeDeps struct {
	authHandler          *handlers.AuthHandler
	serviceHandler       *handlers.ServiceHandler
	settingsHandler      *handlers.SettingsHandler
	dashboardHandler     *handlers.DashboardHandler
	applicationHandler   *handlers.ApplicationHandler
	paymentHandler       *handlers.PaymentHandler
	documentHandler      *handlers.DocumentHandler
	userHandler          *handlers.UserHandler
	roleHandler          *handlers.RoleHandler
	emailTemplateHandler *handlers.EmailTemplateHandler
	healthHandler        *handlers.HealthHandler
	authMiddleware       gin.HandlerFunc
	principalMiddleware  gin.HandlerFunc
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, X-Idempotency-Hit")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine, h *handlers.HealthHandler) {
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	perm := middleware.RequirePermission

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", d.healthHandler.Health)

		// Public
		auth := v1.Group("/auth")
		{
			auth.POST("/register", d.authHandler.Register)
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/refresh", d.authHandler.Refresh)
			auth.POST("/logout", d.authMiddleware, d.authHandler.Logout)
			auth.GET("/me", d.authMiddleware, d.principalMiddleware, d.authHandler.Me)
			auth.POST("/change-password", d.authMiddleware, d.principalMiddleware, d.authHandler.ChangePassword)
		}

		v1.GET("/services", d.serviceHandler.ListActive)
		v1.GET("/services/:slug", d.serviceHandler.GetBySlug)
		v1.GET("/settings/public", d.settingsHandler.Public)

		customer := v1.Group("/customer")
		customer.Use(d.authMiddleware, d.principalMiddleware)
		{
			customer.GET("/dashboard/stats", d.dashboardHandler.CustomerStats)
			customer.GET("/profile", d.authHandler.Me)
			customer.PUT("/profile", d.authHandler.UpdateProfile)

			applications := customer.Group("/applications")
			{
				applications.GET("", d.applicationHandler.List)
				applications.POST("", d.applicationHandler.Create)
				applications.GET("/:id", d.applicationHandler.Get)
				applications.PUT("/:id", d.applicationHandler.Update)
				applications.DELETE("/:id", d.applicationHandler.Delete)
			}

			payments := customer.Group("/payments")
			{
				payments.GET("/config", d.paymentHandler.Config)
				payments.POST("/initialize", middleware.IdempotencyMiddleware(), d.paymentHandler.Initialize)
				payments.POST("/verify", d.paymentHandler.Verify)
				payments.GET("/history", d.paymentHandler.History)
			}

			documents := customer.Group("/documents")
			{
				documents.GET("/types", d.documentHandler.Types)
				documents.GET("", d.documentHandler.List)
				documents.POST("", d.documentHandler.Upload)
				documents.POST("/upload", d.documentHandler.Upload)
				documents.POST("/signature", d.documentHandler.UploadSignature)
				documents.DELETE("/:id", d.documentHandler.Delete)
			}
		}

		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware, d.principalMiddleware, middleware.RequireStaff())
		{
			admin.GET("/dashboard/stats", perm(entities.PermViewReports), d.dashboardHandler.AdminStats)

			users := admin.Group("/users")
			{
				users.GET("", perm(entities.PermViewUsers), d.userHandler.List)
				users.GET("/:id", perm(entities.PermViewUsers), d.userHandler.Get)
				users.PUT("/:id/status", perm(entities.PermManageUsers, entities.PermSuspendUsers), d.userHandler.UpdateStatus)
				users.PUT("/:id/roles", perm(entities.PermAssignRoles), d.roleHandler.SyncUserRoles)
				users.POST("/:id/roles", perm(entities.PermAssignRoles), d.roleHandler.AssignRole)
				users.DELETE("/:id/roles/:role", perm(entities.PermAssignRoles), d.roleHandler.RemoveRole)
			}

			admin.GET("/staff", perm(entities.PermViewRoles), d.userHandler.ListStaff)
			admin.POST("/staff", perm(entities.PermAssignRoles), d.userHandler.CreateStaff)

			applications := admin.Group("/applications")
			{
				applications.GET("", perm(entities.PermViewApplications), d.applicationHandler.AdminList)
				applications.GET("/:id", perm(entities.PermViewApplications), d.applicationHandler.AdminGet)
				applications.POST("/:id/approve", perm(entities.PermApproveApplications), d.applicationHandler.Approve)
				applications.POST("/:id/reject", perm(entities.PermApproveApplications), d.applicationHandler.Reject)
				applications.POST("/:id/milestones/advance", perm(entities.PermUpdateProgress), d.applicationHandler.AdvanceMilestone)
				applications.POST("/:id/update-milestone", perm(entities.PermUpdateProgress), d.applicationHandler.AdvanceMilestone)
				applications.POST("/:id/complete", perm(entities.PermApproveApplications), d.applicationHandler.Complete)
				applications.POST("/:id/documents", perm(entities.PermManageDocuments), d.documentHandler.AdminUpload)
			}

			documents := admin.Group("/documents")
			{
				documents.GET("", perm(entities.PermViewDocuments), d.documentHandler.AdminList)
				documents.POST("/:id/approve", perm(entities.PermVerifyDocuments), d.documentHandler.Approve)
				documents.POST("/:id/reject", perm(entities.PermVerifyDocuments), d.documentHandler.Reject)
			}

			admin.GET("/payments", perm(entities.PermViewPayments), d.paymentHandler.AdminList)

			services := admin.Group("/services")
			{
				services.GET("", perm(entities.PermViewServices), d.serviceHandler.List)
				services.GET("/:id", perm(entities.PermViewServices), d.serviceHandler.Get)
				services.POST("", perm(entities.PermManageServices), d.serviceHandler.Create)
				services.PUT("/:id", perm(entities.PermManageServices), d.serviceHandler.Update)
				services.DELETE("/:id", perm(entities.PermManageServices), d.serviceHandler.Delete)
			}

			roles := admin.Group("/roles")
			{
				roles.GET("", perm(entities.PermViewRoles), d.roleHandler.List)
				roles.GET("/:id", perm(entities.PermViewRoles), d.roleHandler.Get)
				roles.POST("", perm(entities.PermManageRoles), d.roleHandler.Create)
				roles.PUT("/:id", perm(entities.PermManageRoles), d.roleHandler.Update)
				roles.DELETE("/:id", perm(entities.PermManageRoles), d.roleHandler.Delete)
			}
			admin.GET("/permissions", perm(entities.PermViewRoles), d.roleHandler.Permissions)

			settings := admin.Group("/settings", perm(entities.PermManageSettings))
			{
				settings.GET("", d.settingsHandler.List)
				settings.PUT("", d.settingsHandler.Update)
				settings.POST("/test-email", d.settingsHandler.SendTestEmail)
			}

			templates := admin.Group("/email-templates", perm(entities.PermManageSettings))
			{
				templates.GET("", d.emailTemplateHandler.List)
				templates.GET("/:id", d.emailTemplateHandler.Get)
				templates.PUT("/:id", d.emailTemplateHandler.Update)
				templates.POST("/:id/reset", d.emailTemplateHandler.Reset)
				templates.GET("/:id/preview", d.emailTemplateHandler.Preview)
				templates.POST("/:id/test", d.emailTemplateHandler.SendTest)
			}
		}
	}
}
