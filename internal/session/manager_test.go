package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/stockroom/internal/metrics"
	"github.com/aussiebroadwan/stockroom/internal/store"
	"github.com/aussiebroadwan/stockroom/pkg/invsdk"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestLoginSuccess(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	f.login(t)

	st := f.m.State()
	require.True(t, st.Authenticated)
	require.Equal(t, testUser, st.Username)
	require.Equal(t, "A1", st.AccessToken)
	require.Equal(t, "R1", st.RefreshToken)

	for key, want := range map[string]string{
		store.KeyAccessToken:  "A1",
		store.KeyRefreshToken: "R1",
		store.KeyUsername:     testUser,
	} {
		got, ok := f.stored(t, key)
		require.True(t, ok, key)
		require.Equal(t, want, got, key)
	}

	require.Equal(t, RootPath, f.nav.Last())
}

func TestLoginFailureStoresNothing(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})

	err := f.m.Login(context.Background(), testUser, "wrongpass")
	require.ErrorIs(t, err, invsdk.ErrInvalidCredentials)
	require.False(t, f.m.IsAuthenticated())
	require.Equal(t, State{}, f.m.State())

	for _, key := range store.SessionKeys {
		_, ok := f.stored(t, key)
		require.False(t, ok, key)
	}
	require.Empty(t, f.nav.Last())
}

func TestLoginInvalidCredentialsAgainstBackend(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid username or password"}`))
	}))
	defer srv.Close()

	m, err := NewManager(Config{}, invsdk.NewSDKClient(srv.URL), store.NewMemory())
	require.NoError(t, err)

	err = m.Login(context.Background(), "admin", "wrongpass")
	require.ErrorIs(t, err, invsdk.ErrInvalidCredentials)
	require.Contains(t, err.Error(), "Invalid credentials")
	require.False(t, m.IsAuthenticated())
}

func TestLoginIncompleteTokens(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"A"}`))
	}))
	defer srv.Close()

	m, err := NewManager(Config{}, invsdk.NewSDKClient(srv.URL), store.NewMemory())
	require.NoError(t, err)

	require.ErrorIs(t, m.Login(context.Background(), "admin", "secret"), ErrIncompleteTokens)
	require.False(t, m.IsAuthenticated())
}

func TestLoginWhileAuthenticated(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	f.login(t)

	err := f.m.Login(context.Background(), testUser, testPassword)
	require.ErrorIs(t, err, ErrAlreadyAuthenticated)
	require.EqualValues(t, 1, f.backend.logins.Load(), "no second network call")
	require.Equal(t, "A1", f.m.State().AccessToken)
}

func TestLoginReturnsToGuardedRoute(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})

	require.False(t, f.m.Guard("/products"))
	require.Equal(t, LoginPath, f.nav.Last())

	f.login(t)
	require.Equal(t, "/products", f.nav.Last())
	require.True(t, f.m.Guard("/suppliers"))

	// The recorded route is used once
	f.m.Logout()
	f.login(t)
	require.Equal(t, RootPath, f.nav.Last())
}

func TestGuardIgnoresLoginRoute(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	require.False(t, f.m.Guard(LoginPath))
	f.login(t)
	require.Equal(t, RootPath, f.nav.Last())
}

func TestLogout(t *testing.T) {
	t.Parallel()

	t.Run("authenticated", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.login(t)

		f.m.Logout()
		require.Equal(t, State{}, f.m.State())
		for _, key := range store.SessionKeys {
			_, ok := f.stored(t, key)
			require.False(t, ok, key)
		}
		require.Equal(t, RootPath, f.nav.Last())
	})

	t.Run("anonymous", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.m.Logout()
		require.False(t, f.m.IsAuthenticated())
		require.Equal(t, RootPath, f.nav.Last())
		require.Zero(t, f.backend.logins.Load()+f.backend.refreshes.Load())
	})
}

func TestHydration(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	require.NoError(t, st.SetMany(context.Background(), map[string]string{
		store.KeyAccessToken:  "A-persisted",
		store.KeyRefreshToken: "R-persisted",
		store.KeyUsername:     "admin",
	}))

	backend := &fakeBackend{}
	for range 2 {
		m, err := NewManager(Config{}, backend, st)
		require.NoError(t, err)

		state := m.State()
		require.True(t, state.Authenticated)
		require.Equal(t, "A-persisted", state.AccessToken)
		require.Equal(t, "R-persisted", state.RefreshToken)
		require.Equal(t, "admin", state.Username)
	}

	require.Zero(t, backend.logins.Load()+backend.refreshes.Load())
}

func TestHydrationWithoutAccessToken(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	require.NoError(t, st.Set(context.Background(), store.KeyUsername, "admin"))

	m, err := NewManager(Config{}, &fakeBackend{}, st)
	require.NoError(t, err)
	require.False(t, m.IsAuthenticated())
}

func TestHydrationStoreError(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	require.NoError(t, st.Close())

	_, err := NewManager(Config{}, &fakeBackend{}, st)
	require.ErrorIs(t, err, store.ErrClosed)
}

func TestRefreshSuccess(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	f.login(t)

	require.NoError(t, f.m.RefreshAccessToken(context.Background()))

	st := f.m.State()
	require.True(t, st.Authenticated)
	require.Equal(t, "A2", st.AccessToken)
	require.Equal(t, "R2", st.RefreshToken)
	require.Equal(t, testUser, st.Username)

	v, _ := f.stored(t, store.KeyAccessToken)
	require.Equal(t, "A2", v)
	v, _ = f.stored(t, store.KeyRefreshToken)
	require.Equal(t, "R2", v)
}

func TestRefreshFailureClearsSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	f.login(t)

	boom := errors.New("refresh rejected")
	f.backend.failRefresh(boom)

	err := f.m.RefreshAccessToken(context.Background())
	require.ErrorIs(t, err, boom)
	require.Equal(t, State{}, f.m.State())
	require.Equal(t, LoginPath, f.nav.Last())
	for _, key := range store.SessionKeys {
		_, ok := f.stored(t, key)
		require.False(t, ok, key)
	}

	// Absorbing: a later tick does nothing
	f.m.tick()
	require.EqualValues(t, 1, f.backend.refreshes.Load())
}

func TestRefreshWithoutTokens(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	// Access token without a refresh token: authenticated, but not refreshable
	require.NoError(t, st.Set(context.Background(), store.KeyAccessToken, "A-only"))

	nav := &recordingNavigator{}
	backend := &fakeBackend{}
	m, err := NewManager(Config{}, backend, st, WithNavigator(nav))
	require.NoError(t, err)
	require.True(t, m.IsAuthenticated())

	err = m.RefreshAccessToken(context.Background())
	require.ErrorIs(t, err, ErrNotAuthenticated)
	require.False(t, m.IsAuthenticated())
	require.Equal(t, LoginPath, nav.Last())
	require.Zero(t, backend.refreshes.Load())

	_, ok, err := st.Get(context.Background(), store.KeyAccessToken)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRefreshIsSingleFlight(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	f.login(t)

	entered, release := f.backend.blockRefresh()

	const callers = 5
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- f.m.RefreshAccessToken(context.Background())
		}()
	}

	<-entered
	// Give the other callers time to join the in-flight call
	time.Sleep(50 * time.Millisecond)
	release()
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, f.backend.refreshes.Load())
	require.Equal(t, "A2", f.m.State().AccessToken)
}

func TestRefreshDiscardedAfterLogout(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	f.login(t)

	entered, release := f.backend.blockRefresh()

	done := make(chan error, 1)
	go func() { done <- f.m.RefreshAccessToken(context.Background()) }()

	<-entered
	f.m.Logout()
	release()

	require.ErrorIs(t, <-done, ErrSessionChanged)
	require.Equal(t, State{}, f.m.State())
	_, ok := f.stored(t, store.KeyAccessToken)
	require.False(t, ok, "late result must not resurrect the session")
}

func TestRefreshCallerContext(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	f.login(t)

	entered, release := f.backend.blockRefresh()
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.m.RefreshAccessToken(ctx) }()

	<-entered
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	mt := metrics.New()
	f := newFixture(t, Config{}, WithMetrics(mt))

	require.Error(t, f.m.Login(context.Background(), testUser, "nope"))
	f.login(t)
	require.NoError(t, f.m.RefreshAccessToken(context.Background()))

	require.InDelta(t, 1, testutil.ToFloat64(mt.Logins.WithLabelValues(metrics.OutcomeFailure)), 0)
	require.InDelta(t, 1, testutil.ToFloat64(mt.Logins.WithLabelValues(metrics.OutcomeSuccess)), 0)
	require.InDelta(t, 1, testutil.ToFloat64(mt.Refreshes.WithLabelValues("manual", metrics.OutcomeSuccess)), 0)
	require.InDelta(t, 1, testutil.ToFloat64(mt.Authenticated), 0)

	f.m.Logout()
	require.InDelta(t, 0, testutil.ToFloat64(mt.Authenticated), 0)
}

func TestNewManagerValidation(t *testing.T) {
	t.Parallel()

	_, err := NewManager(Config{}, nil, store.NewMemory())
	require.Error(t, err)

	_, err = NewManager(Config{}, &fakeBackend{}, nil)
	require.Error(t, err)
}
