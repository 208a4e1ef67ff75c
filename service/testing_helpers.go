package service

import (
	"context"
	"testing"
	"time"

	"github.com/beingcrieative/mobmail-sub002/internal/billing"
	"github.com/beingcrieative/mobmail-sub002/internal/gateway"
	"github.com/beingcrieative/mobmail-sub002/internal/handlers"
	"github.com/beingcrieative/mobmail-sub002/internal/session"
	"github.com/beingcrieative/mobmail-sub002/storage"
	"github.com/beingcrieative/mobmail-sub002/storage/db"
	"github.com/labstack/echo/v4"
	"github.com/oklog/ulid/v2"
)

// stubProvider satisfies gateway.Provider without network calls. Route tests
// never reach the provider; every method reports no session.
type stubProvider struct{}

func (stubProvider) SignIn(ctx context.Context, creds gateway.Credentials) (*gateway.ProviderSession, error) {
	return nil, gateway.ErrNoSession
}

func (stubProvider) SignUp(ctx context.Context, reg gateway.Registration) (*gateway.ProviderSession, error) {
	return nil, gateway.ErrNoSession
}

func (stubProvider) SignOut(ctx context.Context, token string) error { return nil }

func (stubProvider) CurrentSession(ctx context.Context, token string) (*gateway.ProviderSession, error) {
	return nil, gateway.ErrNoSession
}

func (stubProvider) Refresh(ctx context.Context, token string) (*gateway.ProviderSession, error) {
	return nil, gateway.ErrNoSession
}

func (stubProvider) RequestPasswordReset(ctx context.Context, email string) error { return nil }

func (stubProvider) ConfirmPasswordReset(ctx context.Context, resetToken, newPassword string) error {
	return nil
}

// setupTestService builds a service against an in-memory database, without
// starting any background work.
func setupTestService(t *testing.T) *Service {
	t.Helper()

	store, cleanup, err := storage.NewTestStorage()
	if err != nil {
		t.Fatalf("failed to create test storage: %v", err)
	}
	t.Cleanup(cleanup)

	gw := gateway.New(stubProvider{}, time.Second)
	sessionManager := session.NewManager("test-secret")

	config := &Config{
		Environment: "test",
		Port:        "8080",
		BaseURL:     "http://example.com",
	}

	return &Service{
		storage:              store,
		config:               config,
		sessionManager:       sessionManager,
		gateway:              gw,
		pageHandler:          handlers.NewPageHandler(store, ""),
		authHandler:          handlers.NewAuthHandler(gw, sessionManager),
		userHandler:          handlers.NewUserHandler(store),
		transcriptionHandler: handlers.NewTranscriptionHandler(store, nil, config.BaseURL),
		notificationHandler:  handlers.NewNotificationHandler(store),
		submissionHandler:    handlers.NewSubmissionHandler(store, nil),
		paymentHandler:       handlers.NewPaymentHandler(billing.NewService("", config.BaseURL), store.Queries),
	}
}

// setupTestEcho creates an Echo instance with all routes registered.
func setupTestEcho(t *testing.T) (*echo.Echo, *Service) {
	t.Helper()

	e := echo.New()
	svc := setupTestService(t)
	svc.RegisterRoutes(e)

	return e, svc
}

// createTestUser inserts a user for route tests needing one.
func createTestUser(t *testing.T, queries *db.Queries, email string) db.User {
	t.Helper()

	user, err := queries.CreateUser(context.Background(), db.CreateUserParams{
		ID:    ulid.Make().String(),
		Email: email,
	})
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}
