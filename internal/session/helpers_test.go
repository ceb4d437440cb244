package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/stockroom/internal/store"
	"github.com/aussiebroadwan/stockroom/pkg/invsdk"
	"github.com/aussiebroadwan/stockroom/pkg/slogx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testUser     = "admin"
	testPassword = "secret"
)

var testSigningKey = []byte("test-signing-key")

// accessToken mints an HS256 token shaped like the backend's.
func accessToken(t *testing.T, userID int64, role string) string {
	t.Helper()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		Type:   "access",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
		},
	})
	signed, err := tok.SignedString(testSigningKey)
	require.NoError(t, err)
	return signed
}

// fakeBackend hands out numbered token pairs. Refresh can be made to block
// until release is closed, or to fail.
type fakeBackend struct {
	logins    atomic.Int32
	refreshes atomic.Int32

	mu         sync.Mutex
	loginErr   error
	refreshErr error
	entered    chan struct{}
	release    chan struct{}
	seq        int
}

func (b *fakeBackend) Login(_ context.Context, username, password string) (*invsdk.TokenResponse, error) {
	b.logins.Add(1)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.loginErr != nil {
		return nil, b.loginErr
	}
	if username != testUser || password != testPassword {
		return nil, invsdk.ErrInvalidCredentials
	}
	b.seq++
	return &invsdk.TokenResponse{
		AccessToken:  fmt.Sprintf("A%d", b.seq),
		RefreshToken: fmt.Sprintf("R%d", b.seq),
	}, nil
}

func (b *fakeBackend) Refresh(_ context.Context, access, refresh string) (*invsdk.TokenResponse, error) {
	b.refreshes.Add(1)

	b.mu.Lock()
	entered, release := b.entered, b.release
	b.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if release != nil {
		<-release
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.refreshErr != nil {
		return nil, b.refreshErr
	}
	b.seq++
	return &invsdk.TokenResponse{
		AccessToken:  fmt.Sprintf("A%d", b.seq),
		RefreshToken: fmt.Sprintf("R%d", b.seq),
	}, nil
}

// blockRefresh makes the next refreshes wait for the returned release func.
func (b *fakeBackend) blockRefresh() (entered <-chan struct{}, release func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entered = make(chan struct{}, 16)
	b.release = make(chan struct{})
	rel := b.release
	return b.entered, func() { close(rel) }
}

func (b *fakeBackend) failRefresh(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshErr = err
}

// recordingNavigator remembers every route it was sent to.
type recordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *recordingNavigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func (n *recordingNavigator) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.paths) == 0 {
		return ""
	}
	return n.paths[len(n.paths)-1]
}

type fixture struct {
	m       *Manager
	backend *fakeBackend
	store   *store.Memory
	nav     *recordingNavigator
}

func newFixture(t *testing.T, cfg Config, opts ...Option) *fixture {
	t.Helper()

	f := &fixture{
		backend: &fakeBackend{},
		store:   store.NewMemory(),
		nav:     &recordingNavigator{},
	}

	opts = append([]Option{WithNavigator(f.nav), WithLogger(slogx.Discard())}, opts...)
	m, err := NewManager(cfg, f.backend, f.store, opts...)
	require.NoError(t, err)
	f.m = m

	t.Cleanup(m.Stop)
	return f
}

func (f *fixture) stored(t *testing.T, key string) (string, bool) {
	t.Helper()
	v, ok, err := f.store.Get(context.Background(), key)
	require.NoError(t, err)
	return v, ok
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	require.NoError(t, f.m.Login(context.Background(), testUser, testPassword))
}
