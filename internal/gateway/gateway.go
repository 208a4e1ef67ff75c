package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/beingcrieative/mobmail-sub002/internal/session"
)

// MobileRoot is the path prefix of the authenticated dashboard.
const MobileRoot = "/mobile-v3"

// Result is the uniform success/failure shape every identity-provider
// interaction is normalized into. Consumers never see provider-specific
// response shapes or raw errors.
type Result struct {
	Success bool
	User    *session.Profile
	Error   string
}

func failure(msg string) Result {
	return Result{Success: false, Error: msg}
}

// Event describes an auth state change published to subscribers.
type Event struct {
	Kind string // "sign-in", "sign-out", "refresh"
	User *session.Profile
}

// Gateway is the narrow surface through which authentication state is
// mutated. It wraps the identity provider, writes the Session Marker
// cookies (sole writer), and publishes change events.
type Gateway struct {
	provider Provider
	timeout  time.Duration

	mu     sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

// New creates a Gateway around the given provider. Provider calls are
// bounded by timeout so a slow provider surfaces as a failure rather than
// an indefinite pending state.
func New(provider Provider, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}
	return &Gateway{
		provider: provider,
		timeout:  timeout,
		subs:     map[int]func(Event){},
	}
}

// GetAuthState queries the provider for the session behind token. It never
// returns a raw provider error; failures become the normalized shape.
func (g *Gateway) GetAuthState(ctx context.Context, token string) Result {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	sess, err := g.provider.CurrentSession(ctx, token)
	if err != nil {
		slog.Debug("auth state check failed", "error", err)
		return failure("no active session")
	}
	return Result{Success: true, User: sess.Profile}
}

// Login authenticates with the provider and, on success, writes the Session
// Marker cookies and the profile session. Both trust sources are updated in
// the same call so they cannot diverge.
func (g *Gateway) Login(ctx context.Context, sink session.CookieSink, creds Credentials) Result {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	sess, err := g.provider.SignIn(ctx, creds)
	if err != nil {
		slog.Warn("login failed", "email", creds.Email, "error", err)
		return failure("Invalid email or password")
	}

	session.WriteMarker(sink, session.Marker{
		UserID:    sess.Profile.ID,
		UserEmail: sess.Profile.Email,
		AuthToken: sess.Token,
	})
	g.publish(Event{Kind: "sign-in", User: sess.Profile})
	return Result{Success: true, User: sess.Profile}
}

// Register creates an account and signs the user in.
func (g *Gateway) Register(ctx context.Context, sink session.CookieSink, reg Registration) Result {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	sess, err := g.provider.SignUp(ctx, reg)
	if err != nil {
		slog.Warn("registration failed", "email", reg.Email, "error", err)
		return failure("Registration failed")
	}

	session.WriteMarker(sink, session.Marker{
		UserID:    sess.Profile.ID,
		UserEmail: sess.Profile.Email,
		AuthToken: sess.Token,
	})
	g.publish(Event{Kind: "sign-in", User: sess.Profile})
	return Result{Success: true, User: sess.Profile}
}

// Logout invalidates the provider session and clears the Session Marker
// cookies. The markers are cleared even when the provider call fails:
// a stuck "authenticated" edge decision against a logged-out provider
// session is worse than an orphaned provider session.
func (g *Gateway) Logout(ctx context.Context, sink session.CookieSink, token string) Result {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	err := g.provider.SignOut(ctx, token)

	session.ClearMarker(sink)
	g.publish(Event{Kind: "sign-out"})

	if err != nil {
		slog.Warn("provider logout failed, markers cleared anyway", "error", err)
		return failure("Logout failed")
	}
	return Result{Success: true}
}

// RefreshSession asks the provider for a fresh session token. On success the
// marker cookies are rewritten with the new token.
func (g *Gateway) RefreshSession(ctx context.Context, sink session.CookieSink, token string) Result {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	sess, err := g.provider.Refresh(ctx, token)
	if err != nil {
		slog.Debug("session refresh failed", "error", err)
		return failure("Session refresh failed")
	}

	session.WriteMarker(sink, session.Marker{
		UserID:    sess.Profile.ID,
		UserEmail: sess.Profile.Email,
		AuthToken: sess.Token,
	})
	g.publish(Event{Kind: "refresh", User: sess.Profile})
	return Result{Success: true, User: sess.Profile}
}

// RequestPasswordReset asks the provider to start a reset flow.
func (g *Gateway) RequestPasswordReset(ctx context.Context, email string) Result {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.provider.RequestPasswordReset(ctx, email); err != nil {
		slog.Warn("password reset request failed", "error", err)
		return failure("Password reset request failed")
	}
	return Result{Success: true}
}

// ConfirmPasswordReset completes a reset flow.
func (g *Gateway) ConfirmPasswordReset(ctx context.Context, resetToken, newPassword string) Result {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.provider.ConfirmPasswordReset(ctx, resetToken, newPassword); err != nil {
		slog.Warn("password reset confirmation failed", "error", err)
		return failure("Password reset failed")
	}
	return Result{Success: true}
}

// OnAuthStateChange subscribes to auth change events. The returned handle
// unsubscribes; callers must invoke it on teardown.
func (g *Gateway) OnAuthStateChange(fn func(Event)) func() {
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.subs[id] = fn
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		delete(g.subs, id)
		g.mu.Unlock()
	}
}

// HasAccess evaluates the static route policy: routes under the mobile root
// require authentication, everything else is open. No network calls.
func (g *Gateway) HasAccess(route string, authenticated bool) bool {
	if route == MobileRoot || strings.HasPrefix(route, MobileRoot+"/") {
		return authenticated
	}
	return true
}

func (g *Gateway) publish(ev Event) {
	g.mu.Lock()
	fns := make([]func(Event), 0, len(g.subs))
	for _, fn := range g.subs {
		fns = append(fns, fn)
	}
	g.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Bound is a Gateway scoped to one request: the session token comes from the
// request cookies and cookie writes go to its response.
type Bound struct {
	g     *Gateway
	token string
	sink  session.CookieSink
}

// Bind scopes the gateway to a request/response pair.
func (g *Gateway) Bind(r *http.Request, sink session.CookieSink) *Bound {
	return &Bound{g: g, token: sessionToken(r), sink: sink}
}

func (b *Bound) GetAuthState(ctx context.Context) Result { return b.g.GetAuthState(ctx, b.token) }
func (b *Bound) Logout(ctx context.Context) Result       { return b.g.Logout(ctx, b.sink, b.token) }
func (b *Bound) RefreshSession(ctx context.Context) Result {
	return b.g.RefreshSession(ctx, b.sink, b.token)
}
func (b *Bound) HasAccess(route string, authenticated bool) bool {
	return b.g.HasAccess(route, authenticated)
}
func (b *Bound) OnAuthStateChange(fn func(Event)) func() { return b.g.OnAuthStateChange(fn) }

// sessionToken extracts the provider token from the request: the marker's
// authToken cookie first, then the provider's own session cookie.
func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(session.CookieAuthToken); err == nil && c.Value != "" {
		return c.Value
	}
	if c, err := r.Cookie(session.ProviderSessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return ""
}
