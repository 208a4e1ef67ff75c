package service

import (
	"context"
	"net/http"
	"os"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/beingcrieative/mobmail-sub002/internal/auth"
	"github.com/beingcrieative/mobmail-sub002/internal/billing"
	"github.com/beingcrieative/mobmail-sub002/internal/email"
	"github.com/beingcrieative/mobmail-sub002/internal/gate"
	"github.com/beingcrieative/mobmail-sub002/internal/gateway"
	"github.com/beingcrieative/mobmail-sub002/internal/handlers"
	"github.com/beingcrieative/mobmail-sub002/internal/jobs"
	"github.com/beingcrieative/mobmail-sub002/internal/session"
	"github.com/beingcrieative/mobmail-sub002/storage"
)

type Service struct {
	storage        *storage.Storage
	config         *Config
	sessionManager *session.Manager
	gateway        *gateway.Gateway

	pageHandler          *handlers.PageHandler
	authHandler          *handlers.AuthHandler
	userHandler          *handlers.UserHandler
	transcriptionHandler *handlers.TranscriptionHandler
	notificationHandler  *handlers.NotificationHandler
	submissionHandler    *handlers.SubmissionHandler
	paymentHandler       *handlers.PaymentHandler

	retentionJob *jobs.NotificationRetention
}

func New(store *storage.Storage, config *Config) *Service {
	provider := gateway.NewClerkProvider(config.Clerk.FrontendAPI)
	gw := gateway.New(provider, config.Provider.Timeout)

	sessionManager := session.NewManager(config.Session.Secret)

	billingService := billing.NewService(config.Stripe.PriceID, config.BaseURL)
	mailer := email.NewService()

	retentionJob := jobs.NewNotificationRetention(store, config.Jobs.NotificationRetention)
	retentionJob.Start(context.Background())

	return &Service{
		storage:              store,
		config:               config,
		sessionManager:       sessionManager,
		gateway:              gw,
		pageHandler:          handlers.NewPageHandler(store, config.Clerk.PublishableKey),
		authHandler:          handlers.NewAuthHandler(gw, sessionManager),
		userHandler:          handlers.NewUserHandler(store),
		transcriptionHandler: handlers.NewTranscriptionHandler(store, mailer, config.BaseURL),
		notificationHandler:  handlers.NewNotificationHandler(store),
		submissionHandler:    handlers.NewSubmissionHandler(store, mailer),
		paymentHandler:       handlers.NewPaymentHandler(billingService, store.Queries),
		retentionJob:         retentionJob,
	}
}

// Shutdown stops background work started by New.
func (s *Service) Shutdown() {
	if s.retentionJob != nil {
		s.retentionJob.Stop()
	}
}

func (s *Service) RegisterRoutes(e *echo.Echo) {
	// Initialize Clerk SDK with secret key - this configures the default backend
	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	clerk.SetKey(clerkSecretKey)

	// Static files, under /public which the gate allows
	e.Static("/public", "public")

	// Every route passes the edge gate first, then identity loading.
	e.Use(gate.Middleware(gate.DefaultConfig()))
	e.Use(auth.LoadAuth(s.sessionManager, s.gateway, s.storage))

	// Marketing pages (public)
	e.GET("/", s.pageHandler.HandleHome)
	e.GET("/features", s.pageHandler.HandleFeatures)
	e.GET("/pricing", s.pageHandler.HandlePricing)
	e.GET("/about", s.pageHandler.HandleAbout)
	e.GET("/contact", s.pageHandler.HandleContact)
	e.POST("/contact/submit", s.submissionHandler.HandleSubmit)
	e.GET("/privacy", s.pageHandler.HandlePrivacy)
	e.GET("/terms", s.pageHandler.HandleTerms)

	// Auth pages (public; the gate bounces authenticated visitors)
	e.GET("/login", s.pageHandler.HandleLogin)
	e.GET("/register", s.pageHandler.HandleRegister)
	e.GET("/forgot-password", s.pageHandler.HandleForgotPassword)

	// Dashboard pages - require the full session
	dashboard := e.Group("/mobile-v3", auth.RequireAuth())
	dashboard.GET("", s.pageHandler.HandleDashboard)
	dashboard.GET("/transcriptions", s.pageHandler.HandleDashboard)
	dashboard.GET("/profile", s.pageHandler.HandleProfile)
	dashboard.GET("/settings", s.pageHandler.HandleSettings)

	// API routes
	api := e.Group("/api")
	s.authHandler.RegisterAuthRoutes(api)

	api.GET("/users/me", s.userHandler.HandleGetMe)
	api.PUT("/users/me", s.userHandler.HandleUpdateMe)

	api.GET("/transcriptions", s.transcriptionHandler.HandleList)
	api.GET("/transcriptions/:id", s.transcriptionHandler.HandleGet)
	api.DELETE("/transcriptions/:id", s.transcriptionHandler.HandleDelete)

	api.GET("/notifications", s.notificationHandler.HandleList)
	api.POST("/notifications/:id/read", s.notificationHandler.HandleMarkRead)

	api.POST("/submissions", s.submissionHandler.HandleSubmit)

	api.POST("/payments/checkout", s.paymentHandler.HandleCreateCheckout)
	api.GET("/payments/session/:id", s.paymentHandler.HandleGetCheckoutSession)
	api.GET("/payments/subscription", s.paymentHandler.HandleGetSubscription)
	api.POST("/payments/webhook", s.paymentHandler.HandleWebhook)

	// Machine ingest - API key auth instead of session auth
	ingest := e.Group("/api/ingest", auth.APIKeyAuth(s.storage))
	ingest.POST("/transcriptions", s.transcriptionHandler.HandleIngest)

	// Health check and metrics - no auth
	e.GET("/health", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

func (s *Service) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
