package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/kvstore"
)

func TestManager_StartPersistsAndLoadRestores(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	m := NewManager(store, nil)

	m.Start(ctx, &User{ID: 7, Name: "Asha", Role: "customer"}, Credentials{AccessToken: "a1", RecoveryToken: "r1"})

	restored := NewManager(store, nil)
	restored.Load(ctx)

	snap := restored.Get()
	assert.True(t, snap.LoggedIn())
	assert.Equal(t, int64(7), snap.User.ID)
	assert.Equal(t, "a1", snap.AccessToken)
	assert.Equal(t, "r1", snap.RecoveryToken)
}

func TestManager_ExchangeRotatesRecoveryToken(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	m := NewManager(store, nil)
	m.Start(ctx, &User{ID: 1}, Credentials{AccessToken: "a1", RecoveryToken: "r1"})
	before := m.Generation()

	snap, err := m.Exchange(ctx, func(_ context.Context, cur Snapshot) (Credentials, error) {
		assert.Equal(t, "r1", cur.RecoveryToken)
		return Credentials{AccessToken: "a2", RecoveryToken: "r2", RecoveryUsed: true}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "a2", snap.AccessToken)
	assert.Equal(t, "r2", snap.RecoveryToken)
	assert.Greater(t, snap.Generation, before)

	stored, err := store.Get(ctx, KeyRecoveryToken)
	require.NoError(t, err)
	assert.Equal(t, "r2", stored)
}

func TestManager_ExchangeSpentTokenWithoutReplacement(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	m := NewManager(store, nil)
	m.Start(ctx, &User{ID: 1}, Credentials{RecoveryToken: "r1"})

	_, err := m.Exchange(ctx, func(context.Context, Snapshot) (Credentials, error) {
		return Credentials{AccessToken: "a2", RecoveryUsed: true}, nil
	})
	require.NoError(t, err)

	_, err = store.Get(ctx, KeyRecoveryToken)
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
	assert.Empty(t, m.Get().RecoveryToken)
}

func TestManager_ExchangeErrorLeavesSession(t *testing.T) {
	ctx := context.Background()
	m := NewManager(nil, nil)
	m.Start(ctx, &User{ID: 1}, Credentials{AccessToken: "a1", RecoveryToken: "r1"})
	gen := m.Generation()

	_, err := m.Exchange(ctx, func(context.Context, Snapshot) (Credentials, error) {
		return Credentials{}, errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, gen, m.Generation())
	assert.Equal(t, "r1", m.Get().RecoveryToken)
}

func TestManager_Clear(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	m := NewManager(store, nil)
	m.Start(ctx, &User{ID: 1}, Credentials{AccessToken: "a1", RecoveryToken: "r1"})

	m.Clear(ctx)

	snap := m.Get()
	assert.False(t, snap.LoggedIn())
	assert.Empty(t, snap.AccessToken)
	for _, key := range []string{KeyAccessToken, KeyRecoveryToken, KeyUser} {
		_, err := store.Get(ctx, key)
		assert.ErrorIs(t, err, kvstore.ErrNotFound, key)
	}
}

func TestManager_SnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	m := NewManager(nil, nil)
	m.Start(ctx, &User{ID: 1, Name: "before"}, Credentials{})

	snap := m.Get()
	snap.User.Name = "after"
	assert.Equal(t, "before", m.Get().User.Name)
}
