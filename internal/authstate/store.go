// Package authstate owns the UI-facing authentication view: a single
// mutable Auth State behind a publish/subscribe store. Consumers receive the
// store by reference; there is no package-level singleton.
package authstate

import (
	"context"
	"sync"

	"github.com/beingcrieative/mobmail-sub002/internal/gateway"
	"github.com/beingcrieative/mobmail-sub002/internal/session"
)

// ErrCheckFailed is the user-facing message for a failed reconciliation.
const ErrCheckFailed = "Failed to check authentication status"

// AuthGateway is the slice of the auth gateway the store depends on.
type AuthGateway interface {
	GetAuthState(ctx context.Context) gateway.Result
	Logout(ctx context.Context) gateway.Result
	RefreshSession(ctx context.Context) gateway.Result
	HasAccess(route string, authenticated bool) bool
	OnAuthStateChange(fn func(gateway.Event)) func()
}

// State is the reconciled authentication view.
//
// Invariants: IsLoggedIn == (User != nil), and IsLoading is never true at
// the same time as a terminal Error.
type State struct {
	User       *session.Profile
	IsLoading  bool
	IsLoggedIn bool
	Error      string
}

// Store reconciles the identity provider's session truth with the locally
// cached identity markers and notifies subscribers on every change.
type Store struct {
	gw AuthGateway

	mu          sync.Mutex
	state       State
	seq         uint64 // generation counter for in-flight checks
	lastApplied uint64
	nextSubID   int
	subs        map[int]func(State)

	unsubProvider func()
}

// New creates a store in the initial (not loading, logged out) state.
func New(gw AuthGateway) *Store {
	return &Store{
		gw:   gw,
		subs: map[int]func(State){},
	}
}

// Start wires the store to the provider's session-change events as a
// re-reconciliation source. Stop must be called on teardown.
func (s *Store) Start(ctx context.Context) {
	s.unsubProvider = s.gw.OnAuthStateChange(func(gateway.Event) {
		s.CheckAuthStatus(ctx)
	})
}

// Stop releases the provider subscription.
func (s *Store) Stop() {
	if s.unsubProvider != nil {
		s.unsubProvider()
		s.unsubProvider = nil
	}
}

// Snapshot returns the current Auth State.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to be called on every state change. The returned
// handle unsubscribes.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// CheckAuthStatus reconciles the Auth State against the provider-backed
// view. Safe to call concurrently with itself: each call takes a sequence
// number and a completion is applied only when no later-initiated call has
// completed already, so a slow early call cannot overwrite a newer result.
func (s *Store) CheckAuthStatus(ctx context.Context) State {
	s.mu.Lock()
	s.seq++
	mySeq := s.seq
	s.state.IsLoading = true
	s.state.Error = ""
	s.mu.Unlock()
	s.notify()

	res := s.gw.GetAuthState(ctx)

	s.mu.Lock()
	if mySeq <= s.lastApplied {
		// A later-initiated check already completed; discard this result.
		state := s.state
		s.mu.Unlock()
		return state
	}
	s.lastApplied = mySeq

	switch {
	case res.Success && res.User != nil:
		s.state = State{User: res.User, IsLoggedIn: true}
	case res.Success:
		s.state = State{}
	default:
		s.state = State{Error: ErrCheckFailed}
	}
	state := s.state
	s.mu.Unlock()

	s.notify()
	return state
}

// Logout clears the Auth State through the gateway. On gateway failure the
// prior user is preserved and the error surfaced.
func (s *Store) Logout(ctx context.Context) State {
	s.mu.Lock()
	s.state.IsLoading = true
	s.state.Error = ""
	s.mu.Unlock()
	s.notify()

	res := s.gw.Logout(ctx)

	s.mu.Lock()
	if res.Success {
		s.state = State{}
	} else {
		s.state.IsLoading = false
		s.state.Error = res.Error
	}
	state := s.state
	s.mu.Unlock()

	s.notify()
	return state
}

// RefreshSession asks the gateway for a fresh session. On success with a
// user the state is replaced with the logged-in shape; on failure the state
// is left untouched and the caller inspects the returned result.
func (s *Store) RefreshSession(ctx context.Context) gateway.Result {
	res := s.gw.RefreshSession(ctx)

	if res.Success && res.User != nil {
		s.mu.Lock()
		s.state = State{User: res.User, IsLoggedIn: true}
		s.mu.Unlock()
		s.notify()
	}
	return res
}

// CheckAccess is a pure route-policy query with no effect on the state.
func (s *Store) CheckAccess(route string) bool {
	s.mu.Lock()
	loggedIn := s.state.IsLoggedIn
	s.mu.Unlock()
	return s.gw.HasAccess(route, loggedIn)
}

// NotifyMarkerChange is the cross-tab storage analog: when another window
// rewrites the userId or userEmail markers, the store re-reconciles through
// the same CheckAuthStatus path as provider events.
func (s *Store) NotifyMarkerChange(ctx context.Context, key string) {
	if key == session.CookieUserID || key == session.CookieUserEmail {
		s.CheckAuthStatus(ctx)
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	state := s.state
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}
