package authstate

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/beingcrieative/mobmail-sub002/internal/gateway"
	"github.com/beingcrieative/mobmail-sub002/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway lets each test script gateway results, and can block
// GetAuthState completions to order overlapping calls deterministically.
type fakeGateway struct {
	mu         sync.Mutex
	authState  gateway.Result
	logoutRes  gateway.Result
	refreshRes gateway.Result

	gates []chan gateway.Result // when set, consumed in call order; each call blocks on its gate

	subs []func(gateway.Event)
}

func (f *fakeGateway) GetAuthState(ctx context.Context) gateway.Result {
	f.mu.Lock()
	if len(f.gates) > 0 {
		gate := f.gates[0]
		f.gates = f.gates[1:]
		f.mu.Unlock()
		return <-gate
	}
	defer f.mu.Unlock()
	return f.authState
}

func (f *fakeGateway) Logout(ctx context.Context) gateway.Result  { return f.logoutRes }
func (f *fakeGateway) RefreshSession(ctx context.Context) gateway.Result {
	return f.refreshRes
}

func (f *fakeGateway) HasAccess(route string, authenticated bool) bool {
	if route == gateway.MobileRoot || strings.HasPrefix(route, gateway.MobileRoot+"/") {
		return authenticated
	}
	return true
}

func (f *fakeGateway) OnAuthStateChange(fn func(gateway.Event)) func() {
	f.subs = append(f.subs, fn)
	return func() { f.subs = nil }
}

func (f *fakeGateway) fire() {
	for _, fn := range f.subs {
		fn(gateway.Event{Kind: "sign-in"})
	}
}

func loggedIn(id, email string) gateway.Result {
	return gateway.Result{Success: true, User: &session.Profile{ID: id, Email: email}}
}

func TestCheckAuthStatusSuccess(t *testing.T) {
	fg := &fakeGateway{authState: loggedIn("u1", "a@b.com")}
	store := New(fg)

	state := store.CheckAuthStatus(context.Background())

	assert.True(t, state.IsLoggedIn)
	require.NotNil(t, state.User)
	assert.Equal(t, "u1", state.User.ID)
	assert.False(t, state.IsLoading)
	assert.Empty(t, state.Error)
}

func TestCheckAuthStatusFailure(t *testing.T) {
	fg := &fakeGateway{authState: gateway.Result{Success: false, Error: "boom"}}
	store := New(fg)

	state := store.CheckAuthStatus(context.Background())

	assert.False(t, state.IsLoggedIn)
	assert.Nil(t, state.User)
	assert.False(t, state.IsLoading)
	assert.Equal(t, ErrCheckFailed, state.Error)
}

func TestCheckAuthStatusIdempotent(t *testing.T) {
	fg := &fakeGateway{authState: loggedIn("u1", "a@b.com")}
	store := New(fg)

	first := store.CheckAuthStatus(context.Background())
	second := store.CheckAuthStatus(context.Background())

	assert.Equal(t, first, second)
}

func TestStateInvariants(t *testing.T) {
	fg := &fakeGateway{authState: loggedIn("u1", "a@b.com")}
	store := New(fg)

	var seen []State
	unsub := store.Subscribe(func(s State) { seen = append(seen, s) })
	defer unsub()

	store.CheckAuthStatus(context.Background())

	fg.mu.Lock()
	fg.authState = gateway.Result{Success: false, Error: "down"}
	fg.mu.Unlock()
	store.CheckAuthStatus(context.Background())

	require.NotEmpty(t, seen)
	for i, s := range seen {
		assert.Equal(t, s.IsLoggedIn, s.User != nil, "state %d: IsLoggedIn must mirror User presence", i)
		if s.Error != "" {
			assert.False(t, s.IsLoading, "state %d: terminal error with IsLoading set", i)
		}
	}
}

func TestLogoutSuccessClearsState(t *testing.T) {
	fg := &fakeGateway{
		authState: loggedIn("u1", "a@b.com"),
		logoutRes: gateway.Result{Success: true},
	}
	store := New(fg)
	store.CheckAuthStatus(context.Background())

	state := store.Logout(context.Background())

	assert.Equal(t, State{}, state)
}

func TestLogoutFailurePreservesUser(t *testing.T) {
	fg := &fakeGateway{
		authState: loggedIn("u1", "a@b.com"),
		logoutRes: gateway.Result{Success: false, Error: "Logout failed"},
	}
	store := New(fg)
	store.CheckAuthStatus(context.Background())

	state := store.Logout(context.Background())

	require.NotNil(t, state.User)
	assert.Equal(t, "u1", state.User.ID)
	assert.Equal(t, "Logout failed", state.Error)
	assert.False(t, state.IsLoading)
}

func TestRefreshSessionFailureLeavesStateUntouched(t *testing.T) {
	fg := &fakeGateway{
		authState:  loggedIn("u1", "a@b.com"),
		refreshRes: gateway.Result{Success: false, Error: "Session refresh failed"},
	}
	store := New(fg)
	before := store.CheckAuthStatus(context.Background())

	res := store.RefreshSession(context.Background())

	assert.False(t, res.Success)
	assert.Equal(t, before, store.Snapshot())
}

func TestRefreshSessionSuccessReplacesState(t *testing.T) {
	fg := &fakeGateway{refreshRes: loggedIn("u2", "c@d.com")}
	store := New(fg)

	res := store.RefreshSession(context.Background())

	require.True(t, res.Success)
	state := store.Snapshot()
	assert.True(t, state.IsLoggedIn)
	assert.Equal(t, "u2", state.User.ID)
}

func TestCheckAccessHasNoSideEffects(t *testing.T) {
	fg := &fakeGateway{authState: loggedIn("u1", "a@b.com")}
	store := New(fg)

	assert.False(t, store.CheckAccess("/mobile-v3/profile"))
	assert.True(t, store.CheckAccess("/pricing"))
	assert.Equal(t, State{}, store.Snapshot())

	store.CheckAuthStatus(context.Background())
	assert.True(t, store.CheckAccess("/mobile-v3/profile"))
}

// Two overlapping checks where the first-initiated resolves last: the final
// state must reflect the later-initiated call's result.
func TestOverlappingChecksLaterInitiatedWins(t *testing.T) {
	gate1 := make(chan gateway.Result)
	gate2 := make(chan gateway.Result)
	fg := &fakeGateway{gates: []chan gateway.Result{gate1, gate2}}
	store := New(fg)

	firstDone := make(chan State)
	secondDone := make(chan State)

	go func() { firstDone <- store.CheckAuthStatus(context.Background()) }()
	// Give the first call time to claim its sequence number and gate.
	time.Sleep(10 * time.Millisecond)
	go func() { secondDone <- store.CheckAuthStatus(context.Background()) }()
	time.Sleep(10 * time.Millisecond)

	// Complete the second call first with a logged-in result, then the
	// first with a stale logged-out result.
	gate2 <- loggedIn("u-new", "new@b.com")
	second := <-secondDone
	require.NotNil(t, second.User)

	gate1 <- gateway.Result{Success: true}
	<-firstDone

	final := store.Snapshot()
	require.NotNil(t, final.User, "stale completion must not overwrite the newer result")
	assert.Equal(t, "u-new", final.User.ID)
}

func TestProviderEventTriggersReconciliation(t *testing.T) {
	fg := &fakeGateway{authState: loggedIn("u1", "a@b.com")}
	store := New(fg)
	store.Start(context.Background())
	defer store.Stop()

	fg.fire()

	state := store.Snapshot()
	assert.True(t, state.IsLoggedIn)
}

func TestNotifyMarkerChange(t *testing.T) {
	fg := &fakeGateway{authState: loggedIn("u1", "a@b.com")}
	store := New(fg)

	// Irrelevant key: no reconciliation.
	store.NotifyMarkerChange(context.Background(), "theme")
	assert.False(t, store.Snapshot().IsLoggedIn)

	// Marker key: converges on CheckAuthStatus.
	store.NotifyMarkerChange(context.Background(), session.CookieUserID)
	assert.True(t, store.Snapshot().IsLoggedIn)
}
