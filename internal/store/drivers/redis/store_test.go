package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/stockroom/internal/store"
	"github.com/aussiebroadwan/stockroom/internal/store/storetest"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer starts a throwaway Redis and returns its address.
// The test is skipped when no Docker daemon is reachable.
func setupRedisContainer(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForLog("Ready to accept connections").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("%s:%s", host, mappedPort.Port())
}

func TestStore(t *testing.T) {
	addr := setupRedisContainer(t)
	ctx := context.Background()

	t.Run("contract", func(t *testing.T) {
		s, err := NewStore(ctx, Config{Addr: addr, Session: "contract"})
		require.NoError(t, err)
		defer s.Close()

		storetest.Run(t, s)
	})

	t.Run("sessions are isolated", func(t *testing.T) {
		a, err := NewStore(ctx, Config{Addr: addr, Session: "tty-a"})
		require.NoError(t, err)
		defer a.Close()
		b, err := NewStore(ctx, Config{Addr: addr, Session: "tty-b"})
		require.NoError(t, err)
		defer b.Close()

		require.NoError(t, a.Set(ctx, store.KeyAccessToken, "A"))
		_, ok, err := b.Get(ctx, store.KeyAccessToken)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("writes extend the idle expiry", func(t *testing.T) {
		s, err := NewStore(ctx, Config{Addr: addr, Session: "ttl", TTL: time.Hour})
		require.NoError(t, err)
		defer s.Close()

		require.NoError(t, s.Set(ctx, store.KeyRefreshToken, "R"))

		ttl, err := s.TTL(ctx)
		require.NoError(t, err)
		require.Greater(t, ttl, 59*time.Minute)
	})

	t.Run("session expires when idle", func(t *testing.T) {
		s, err := NewStore(ctx, Config{Addr: addr, Session: "short", TTL: time.Second})
		require.NoError(t, err)
		defer s.Close()

		require.NoError(t, s.Set(ctx, store.KeyAccessToken, "A"))
		require.Eventually(t, func() bool {
			_, ok, err := s.Get(ctx, store.KeyAccessToken)
			return err == nil && !ok
		}, 5*time.Second, 100*time.Millisecond)
	})
}

func TestNewStoreUnreachable(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := NewStore(ctx, Config{Addr: "127.0.0.1:1", Session: "x"})
	require.Error(t, err)

	_, err = NewStore(ctx, Config{Addr: "127.0.0.1:1"})
	require.Error(t, err)
}
