package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aussiebroadwan/stockroom/internal/metrics"
	"github.com/aussiebroadwan/stockroom/internal/store"
	"github.com/aussiebroadwan/stockroom/pkg/cryptox"
	"github.com/aussiebroadwan/stockroom/pkg/invsdk"
	"golang.org/x/sync/singleflight"
)

// Backend is the authentication backend. *invsdk.SDKClient implements it.
type Backend interface {
	Login(ctx context.Context, username, password string) (*invsdk.TokenResponse, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*invsdk.TokenResponse, error)
}

// State is a read-only snapshot of the session.
// Authenticated is true exactly when AccessToken is not empty.
type State struct {
	Authenticated bool
	Username      string
	AccessToken   string
	RefreshToken  string
}

// Manager owns the session: the token pair, the username and the
// authenticated flag. It persists them to a Store, renews them in the
// background and is the only writer of both.
type Manager struct {
	cfg     Config
	backend Backend
	store   store.Store
	nav     Navigator
	logger  *slog.Logger
	metrics *metrics.Metrics

	// persistMu orders store writes the same way as the state changes
	// they mirror. It is taken before mu.
	persistMu sync.Mutex

	mu    sync.RWMutex
	state State
	from  string
	// generation changes on every login, logout and refresh so a late
	// refresh result can tell the session moved on without it.
	generation uint64

	refreshGroup singleflight.Group

	renewMu sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
	resetCh chan struct{}
}

var (
	_ invsdk.Authenticator = (*Manager)(nil)
	_ invsdk.RoleProvider  = (*Manager)(nil)
)

// NewManager creates a Manager and hydrates it from st. A persisted access
// token makes the session authenticated immediately, without asking the
// backend.
func NewManager(cfg Config, backend Backend, st store.Store, opts ...Option) (*Manager, error) {
	if backend == nil {
		return nil, errors.New("session: nil backend")
	}
	if st == nil {
		return nil, errors.New("session: nil store")
	}

	m := &Manager{
		cfg:     cfg.withDefaults(),
		backend: backend,
		store:   st,
		nav:     discardNavigator{},
		logger:  slog.Default(),
		resetCh: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := m.hydrate(); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Manager) hydrate() error {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.StoreTimeout)
	defer cancel()

	values := make(map[string]string, len(store.SessionKeys))
	for _, key := range store.SessionKeys {
		v, ok, err := m.store.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("session: hydrate %s: %w", key, err)
		}
		if ok {
			values[key] = v
		}
	}

	m.mu.Lock()
	m.state = State{
		Authenticated: values[store.KeyAccessToken] != "",
		Username:      values[store.KeyUsername],
		AccessToken:   values[store.KeyAccessToken],
		RefreshToken:  values[store.KeyRefreshToken],
	}
	authenticated := m.state.Authenticated
	m.mu.Unlock()

	m.metrics.SetAuthenticated(authenticated)
	if authenticated {
		m.logger.Debug("session hydrated",
			"username", values[store.KeyUsername],
			"access_token", cryptox.Fingerprint(values[store.KeyAccessToken]),
		)
	}
	return nil
}

// State returns a snapshot of the session.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsAuthenticated reports whether the session holds an access token.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Authenticated
}

// AccessToken returns the current access token.
func (m *Manager) AccessToken() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.AccessToken, m.state.AccessToken != ""
}

// Login authenticates against the backend. On success the tokens and
// username are stored and the view is sent back to the route the Guard
// recorded, or to the root. On failure nothing is stored and the backend
// error is returned wrapped.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	if m.IsAuthenticated() {
		return ErrAlreadyAuthenticated
	}

	tokens, err := m.backend.Login(ctx, username, password)
	if err == nil && (tokens == nil || tokens.AccessToken == "" || tokens.RefreshToken == "") {
		err = ErrIncompleteTokens
	}
	if err != nil {
		m.metrics.Login(metrics.OutcomeFailure)
		m.logger.Info("login failed", "username", username, "error", err)
		return fmt.Errorf("session: login: %w", err)
	}

	m.persistMu.Lock()

	m.mu.Lock()
	if m.state.Authenticated {
		// Another Login won the race while ours was in flight
		m.mu.Unlock()
		m.persistMu.Unlock()
		return ErrAlreadyAuthenticated
	}
	m.state = State{
		Authenticated: true,
		Username:      username,
		AccessToken:   tokens.AccessToken,
		RefreshToken:  tokens.RefreshToken,
	}
	m.generation++
	dest := m.consumeFrom()
	m.mu.Unlock()

	m.persist(ctx, map[string]string{
		store.KeyAccessToken:  tokens.AccessToken,
		store.KeyRefreshToken: tokens.RefreshToken,
		store.KeyUsername:     username,
	})
	m.persistMu.Unlock()

	m.metrics.Login(metrics.OutcomeSuccess)
	m.metrics.SetAuthenticated(true)
	m.logger.Info("logged in",
		"username", username,
		"access_token", cryptox.Fingerprint(tokens.AccessToken),
	)

	m.signalReset()
	m.nav.Navigate(dest)
	return nil
}

// Logout clears the session locally and navigates to the root. The backend
// is not told; its tokens simply expire.
func (m *Manager) Logout() {
	m.clear()
	m.logger.Info("logged out")
	m.nav.Navigate(RootPath)
}

// RefreshAccessToken exchanges the token pair for a new one.
//
// Concurrent callers share a single backend call and its result. If either
// token is missing the session is cleared and ErrNotAuthenticated returned
// without a backend call. A failed refresh is fatal to the session: it is
// cleared, the view is sent to the login route and the error returned.
func (m *Manager) RefreshAccessToken(ctx context.Context) error {
	return m.refresh(ctx, "manual")
}

func (m *Manager) refresh(ctx context.Context, trigger string) error {
	// The shared call must not die with whichever caller started it
	shared := context.WithoutCancel(ctx)

	ch := m.refreshGroup.DoChan("refresh", func() (any, error) {
		return nil, m.doRefresh(shared, trigger)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) doRefresh(ctx context.Context, trigger string) error {
	m.mu.RLock()
	access, refresh := m.state.AccessToken, m.state.RefreshToken
	gen := m.generation
	m.mu.RUnlock()

	if access == "" || refresh == "" {
		m.metrics.Refresh(trigger, metrics.OutcomeFailure)
		m.clear()
		m.nav.Navigate(LoginPath)
		return ErrNotAuthenticated
	}

	tokens, err := m.backend.Refresh(ctx, access, refresh)
	if err == nil && (tokens == nil || tokens.AccessToken == "" || tokens.RefreshToken == "") {
		err = ErrIncompleteTokens
	}

	m.persistMu.Lock()

	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		m.persistMu.Unlock()
		m.metrics.Refresh(trigger, metrics.OutcomeStale)
		m.logger.Debug("discarding stale refresh result", "trigger", trigger)
		return ErrSessionChanged
	}

	if err != nil {
		m.state = State{}
		m.generation++
		m.mu.Unlock()
		m.clearStoreLocked()
		m.persistMu.Unlock()

		m.metrics.Refresh(trigger, metrics.OutcomeFailure)
		m.metrics.SetAuthenticated(false)
		m.logger.Warn("token refresh failed, session cleared", "trigger", trigger, "error", err)
		m.nav.Navigate(LoginPath)
		return fmt.Errorf("session: refresh: %w", err)
	}

	m.state.AccessToken = tokens.AccessToken
	m.state.RefreshToken = tokens.RefreshToken
	m.state.Authenticated = true
	m.generation++
	m.mu.Unlock()

	m.persist(ctx, map[string]string{
		store.KeyAccessToken:  tokens.AccessToken,
		store.KeyRefreshToken: tokens.RefreshToken,
	})
	m.persistMu.Unlock()

	m.metrics.Refresh(trigger, metrics.OutcomeSuccess)
	m.metrics.SetAuthenticated(true)
	m.logger.Debug("tokens refreshed",
		"trigger", trigger,
		"access_token", cryptox.Fingerprint(tokens.AccessToken),
	)

	m.signalReset()
	return nil
}

// clear drops the session in memory and in the store.
func (m *Manager) clear() {
	m.persistMu.Lock()
	defer m.persistMu.Unlock()

	m.mu.Lock()
	m.state = State{}
	m.generation++
	m.mu.Unlock()

	m.clearStoreLocked()
	m.metrics.SetAuthenticated(false)
	m.signalReset()
}

// clearStoreLocked empties the store. Callers hold persistMu.
func (m *Manager) clearStoreLocked() {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.StoreTimeout)
	defer cancel()

	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error("failed to clear session store", "error", err)
	}
}

// persist writes values to the store. The in-memory session stays valid when
// this fails, it just will not survive a restart. Callers hold persistMu.
func (m *Manager) persist(ctx context.Context, values map[string]string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.StoreTimeout)
	defer cancel()

	if err := m.store.SetMany(ctx, values); err != nil {
		m.logger.Error("failed to persist session", "error", err)
	}
}
