package main

import (
	"github.com/gin-gonic/gin"

	"dvlottery.backend/internal/interfaces/http/handlers"
	"dvlottery.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	authHandler             *handlers.AuthHandler
	paymentHandler          *handlers.PaymentHandler
	webhookHandler          *handlers.WebhookHandler
	applicationHandler      *handlers.ApplicationHandler
	adminHandler            *handlers.AdminHandler
	adminApplicationHandler *handlers.AdminApplicationHandler
	templateHandler         *handlers.TemplateHandler
	authMiddleware          gin.HandlerFunc
	optionalAuthMiddleware  gin.HandlerFunc
}

func registerAPIRoutes(r *gin.Engine, d routeDeps) {
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", d.authHandler.Register)
			auth.POST("/verify", d.authHandler.Verify)
			auth.POST("/resend-code", d.authHandler.ResendCode)
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/refresh", d.authHandler.RefreshToken)
			auth.POST("/logout", d.authMiddleware, d.authHandler.Logout)
			auth.POST("/forgot-password", d.authHandler.ForgotPassword)
			auth.POST("/reset-password", d.authHandler.ResetPassword)
		}

		users := api.Group("/users")
		users.Use(d.authMiddleware)
		{
			users.GET("/me", d.authHandler.GetMe)
			users.PATCH("/me", d.authHandler.UpdateMe)
		}

		// Payment routes; identity is optional, the body names the applicant
		api.POST("/checkout", d.optionalAuthMiddleware, middleware.IdempotencyMiddleware(), d.paymentHandler.CreateCheckout)
		api.POST("/payment-success", d.optionalAuthMiddleware, middleware.IdempotencyMiddleware(), d.paymentHandler.PaymentSuccess)
		api.POST("/payment-cancelled", d.optionalAuthMiddleware, d.paymentHandler.PaymentCancelled)

		// Provider callbacks (signature verified in handler)
		api.POST("/webhooks/payment", d.webhookHandler.HandlePaymentWebhook)

		applications := api.Group("/applications")
		applications.Use(d.authMiddleware)
		{
			applications.GET("/:userId", d.applicationHandler.GetApplication)
			applications.PATCH("/:userId/form", d.applicationHandler.UpdateForm)
			applications.POST("/:userId/photo", d.applicationHandler.UploadPhoto)
		}

		api.POST("/admin/login", d.adminHandler.Login)
		api.POST("/admin/refresh", d.adminHandler.RefreshToken)

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(d.authMiddleware, middleware.RequireAdmin())
		{
			admin.GET("/stats", d.adminHandler.GetStats)

			admin.GET("/templates", d.templateHandler.ListTemplates)
			admin.POST("/templates", d.templateHandler.CreateTemplate)
			admin.GET("/templates/:id", d.templateHandler.GetTemplate)
			admin.PATCH("/templates/:id", d.templateHandler.UpdateTemplate)
			admin.DELETE("/templates/:id", d.templateHandler.DeleteTemplate)

			admin.GET("/applications", d.adminApplicationHandler.ListApplications)
			admin.GET("/applications/:id", d.adminApplicationHandler.GetApplication)
			admin.PATCH("/applications/:id", d.adminApplicationHandler.UpdateApplication)

			admin.POST("/send-email", d.templateHandler.SendEmail)
		}
	}
}
