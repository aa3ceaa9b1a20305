package router

import (
	"database/sql"

	"pt_studio_backend/internal/handlers"
	"pt_studio_backend/internal/middleware"
	"pt_studio_backend/internal/notify"
	"pt_studio_backend/internal/repositories"
	"pt_studio_backend/internal/services"
	"pt_studio_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB) {
	// Initialize Repositories
	authRepo := repositories.NewAuthRepository(db)
	clientRepo := repositories.NewClientRepository(db)
	packageRepo := repositories.NewPackageRepository(db)
	purchaseRepo := repositories.NewPurchaseRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)

	// Notification senders
	emailSender := notify.NewResendEmailSender(
		utils.Getenv("RESEND_API_KEY", ""),
		utils.Getenv("EMAIL_FROM", "PT Studio <noreply@pt-studio.example>"),
	)
	smsSender := notify.NewGatewaySMSSender(
		utils.Getenv("SMS_GATEWAY_URL", ""),
		utils.Getenv("SMS_GATEWAY_API_KEY", ""),
	)

	// Initialize Services. The session scheduler is built first because the
	// client service generates recurring bookings through it.
	authService := services.NewAuthService(authRepo, db)
	packageService := services.NewPackageService(packageRepo, db)
	sessionService := services.NewSessionService(sessionRepo, clientRepo, packageRepo, db)
	clientService := services.NewClientService(clientRepo, packageRepo, sessionService, db)
	purchaseService := services.NewPurchaseService(purchaseRepo, clientRepo, db)
	paymentService := services.NewPaymentService(paymentRepo, clientRepo, db)
	notificationService := services.NewNotificationService(clientRepo, sessionRepo, sessionService, emailSender, smsSender)

	// Seed the package catalog with the default bundles on first run.
	if err := packageService.SeedDefaults(); err != nil {
		utils.LogError(err, "Setup: Failed to seed default packages")
	}

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	clientHandler := handlers.NewClientHandler(clientService)
	packageHandler := handlers.NewPackageHandler(packageService)
	purchaseHandler := handlers.NewPurchaseHandler(purchaseService)
	sessionHandler := handlers.NewSessionHandler(sessionService, clientService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	apiV1 := engine.Group("/api/v1")

	SetupAuthRoutes(apiV1, authHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupClientRoutes(authenticated, clientHandler, sessionHandler, paymentHandler, notificationHandler, sessionService)
		SetupPackageRoutes(authenticated, packageHandler)
		SetupPurchaseRoutes(authenticated, purchaseHandler)
		SetupSessionRoutes(authenticated, sessionHandler, notificationHandler)
		SetupPaymentRoutes(authenticated, paymentHandler)
		SetupNotificationRoutes(authenticated, notificationHandler)
	}
}
