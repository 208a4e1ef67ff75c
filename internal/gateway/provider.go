package gateway

import (
	"context"
	"errors"

	"github.com/beingcrieative/mobmail-sub002/internal/session"
)

// Credentials for a password sign-in.
type Credentials struct {
	Email    string
	Password string
}

// Registration carries the sign-up form fields.
type Registration struct {
	Email    string
	Password string
	Name     string
	Company  string
	Phone    string
}

// ProviderSession is a live session as reported by the identity provider.
type ProviderSession struct {
	Token   string
	Profile *session.Profile
}

// ErrNoSession is returned by CurrentSession when the provider has no live
// session for the presented token.
var ErrNoSession = errors.New("no active session")

// Provider is the identity provider boundary. Every call either resolves
// with a value or an error; no provider-specific response shape leaks past
// this interface.
type Provider interface {
	SignIn(ctx context.Context, creds Credentials) (*ProviderSession, error)
	SignUp(ctx context.Context, reg Registration) (*ProviderSession, error)
	SignOut(ctx context.Context, token string) error
	CurrentSession(ctx context.Context, token string) (*ProviderSession, error)
	Refresh(ctx context.Context, token string) (*ProviderSession, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, resetToken, newPassword string) error
}
