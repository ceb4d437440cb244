// Package storetest holds the conformance checks shared by Store drivers.
package storetest

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/stockroom/internal/store"
	"github.com/stretchr/testify/require"
)

// Run checks the behaviour every Store driver must share. Drivers call it
// from their own tests with a fresh, empty store.
func Run(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, store.KeyAccessToken)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, store.KeyAccessToken, "A1"))
	v, ok, err := s.Get(ctx, store.KeyAccessToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "A1", v)

	require.NoError(t, s.SetMany(ctx, map[string]string{
		store.KeyAccessToken:  "A2",
		store.KeyRefreshToken: "R2",
		store.KeyUsername:     "admin",
	}))
	for key, want := range map[string]string{
		store.KeyAccessToken:  "A2",
		store.KeyRefreshToken: "R2",
		store.KeyUsername:     "admin",
	} {
		got, ok, err := s.Get(ctx, key)
		require.NoError(t, err)
		require.True(t, ok, key)
		require.Equal(t, want, got, key)
	}

	require.NoError(t, s.Delete(ctx, store.KeyUsername))
	require.NoError(t, s.Delete(ctx, store.KeyUsername), "delete is idempotent")
	_, ok, err = s.Get(ctx, store.KeyUsername)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Clear(ctx))
	for _, key := range store.SessionKeys {
		_, ok, err := s.Get(ctx, key)
		require.NoError(t, err)
		require.False(t, ok, key)
	}
}
