package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-auth-client/store"
)

func TestMemStoreRoundTrip(t *testing.T) {
	s := store.NewMemStore()
	ctx := context.Background()

	_, found, err := s.Get(ctx, store.KeyToken)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, s.Set(ctx, store.KeyToken, "tok1"))
	value, found, err := s.Get(ctx, store.KeyToken)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "tok1", value)

	require.NoError(t, s.Set(ctx, store.KeyToken, "tok2"))
	value, _, err = s.Get(ctx, store.KeyToken)
	require.NoError(t, err)
	require.Equal(t, "tok2", value)

	require.NoError(t, s.Delete(ctx, store.KeyToken))
	_, found, err = s.Get(ctx, store.KeyToken)
	require.NoError(t, err)
	require.False(t, found)

	// Deleting an absent key is not an error.
	require.NoError(t, s.Delete(ctx, store.KeyToken))
	require.NoError(t, s.Close())
}
