package router

import (
	"pt_studio_backend/internal/handlers"
	"pt_studio_backend/internal/middleware"
	"pt_studio_backend/internal/models"
	"pt_studio_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up the authentication routes.
func SetupAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/refresh-token", authHandler.RefreshToken)

		authRequiredRoutes := authRoutes.Group("")
		authRequiredRoutes.Use(middleware.AuthMiddleware())
		{
			authRequiredRoutes.GET("/me", authHandler.GetProfile)
		}
	}
}

// SetupClientRoutes sets up the client ledger routes, including the nested
// per-client resources (session count reconciliation, payments, recurring
// generation, birthday greeting).
func SetupClientRoutes(
	authenticatedGroup *gin.RouterGroup,
	clientHandler *handlers.ClientHandler,
	sessionHandler *handlers.SessionHandler,
	paymentHandler *handlers.PaymentHandler,
	notificationHandler *handlers.NotificationHandler,
	sessionService services.SessionService,
) {
	clientRoutes := authenticatedGroup.Group("/clients")
	clientRoutes.Use(middleware.RoleAuthMiddleware(models.RoleTrainer, models.RoleAssistant))
	{
		clientRoutes.POST("", clientHandler.CreateClient)
		clientRoutes.GET("", clientHandler.GetClients)
		clientRoutes.POST("/import", clientHandler.ImportClients)
		clientRoutes.GET("/:id", clientHandler.GetClientByID)
		clientRoutes.PUT("/:id", clientHandler.UpdateClient)
		clientRoutes.DELETE("/:id", clientHandler.DeleteClient)
		clientRoutes.GET("/:id/session-count", clientHandler.GetSessionCount(sessionService))
		clientRoutes.POST("/:id/recurring-sessions", sessionHandler.GenerateRecurring)
		clientRoutes.GET("/:id/payments", paymentHandler.GetPaymentsByClient)
		clientRoutes.POST("/:id/birthday-greeting", notificationHandler.SendBirthdayGreeting)
	}
}

// SetupPackageRoutes sets up the training package catalog routes. Catalog
// edits are trainer-only; assistants can read.
func SetupPackageRoutes(authenticatedGroup *gin.RouterGroup, packageHandler *handlers.PackageHandler) {
	packageRoutes := authenticatedGroup.Group("/packages")
	packageRoutes.Use(middleware.RoleAuthMiddleware(models.RoleTrainer, models.RoleAssistant))
	{
		packageRoutes.GET("", packageHandler.GetPackages)
		packageRoutes.GET("/:id", packageHandler.GetPackageByID)

		trainerOnly := packageRoutes.Group("")
		trainerOnly.Use(middleware.RoleAuthMiddleware(models.RoleTrainer))
		{
			trainerOnly.POST("", packageHandler.CreatePackage)
			trainerOnly.PUT("/:id", packageHandler.UpdatePackage)
			trainerOnly.DELETE("/:id", packageHandler.DeletePackage)
		}
	}
}

// SetupPurchaseRoutes sets up the package purchase ledger routes.
func SetupPurchaseRoutes(authenticatedGroup *gin.RouterGroup, purchaseHandler *handlers.PurchaseHandler) {
	purchaseRoutes := authenticatedGroup.Group("/purchases")
	purchaseRoutes.Use(middleware.RoleAuthMiddleware(models.RoleTrainer, models.RoleAssistant))
	{
		purchaseRoutes.POST("", purchaseHandler.AddPurchase)
		purchaseRoutes.GET("", purchaseHandler.GetPurchases)
		purchaseRoutes.GET("/:id", purchaseHandler.GetPurchaseByID)
		purchaseRoutes.PUT("/:id", purchaseHandler.UpdatePurchase)
		purchaseRoutes.DELETE("/:id", purchaseHandler.DeletePurchase)
	}
}

// SetupSessionRoutes sets up the session scheduler routes.
func SetupSessionRoutes(
	authenticatedGroup *gin.RouterGroup,
	sessionHandler *handlers.SessionHandler,
	notificationHandler *handlers.NotificationHandler,
) {
	sessionRoutes := authenticatedGroup.Group("/sessions")
	sessionRoutes.Use(middleware.RoleAuthMiddleware(models.RoleTrainer, models.RoleAssistant))
	{
		sessionRoutes.POST("", sessionHandler.ScheduleSession)
		sessionRoutes.GET("", sessionHandler.GetSessions)
		sessionRoutes.GET("/match", sessionHandler.MatchSlot)
		sessionRoutes.GET("/export", sessionHandler.ExportCalendar)
		sessionRoutes.GET("/:id", sessionHandler.GetSessionByID)
		sessionRoutes.PUT("/:id", sessionHandler.UpdateSession)
		sessionRoutes.DELETE("/:id", sessionHandler.DeleteSession)
		sessionRoutes.POST("/:id/complete", sessionHandler.CompleteSession)
		sessionRoutes.POST("/:id/cancel", sessionHandler.CancelSession)
		sessionRoutes.GET("/:id/ordinal", sessionHandler.GetSessionOrdinal)
		sessionRoutes.POST("/:id/reminder", notificationHandler.SendSessionReminder)
	}
}

// SetupPaymentRoutes sets up the standalone payment routes.
func SetupPaymentRoutes(authenticatedGroup *gin.RouterGroup, paymentHandler *handlers.PaymentHandler) {
	paymentRoutes := authenticatedGroup.Group("/payments")
	paymentRoutes.Use(middleware.RoleAuthMiddleware(models.RoleTrainer, models.RoleAssistant))
	{
		paymentRoutes.POST("", paymentHandler.RecordPayment)
		paymentRoutes.GET("/:id", paymentHandler.GetPaymentByID)
		paymentRoutes.DELETE("/:id", paymentHandler.DeletePayment)
	}
}

// SetupNotificationRoutes sets up the notification overview routes.
func SetupNotificationRoutes(authenticatedGroup *gin.RouterGroup, notificationHandler *handlers.NotificationHandler) {
	notificationRoutes := authenticatedGroup.Group("/notifications")
	notificationRoutes.Use(middleware.RoleAuthMiddleware(models.RoleTrainer, models.RoleAssistant))
	{
		notificationRoutes.GET("/birthdays", notificationHandler.GetBirthdaysToday)
	}
}
