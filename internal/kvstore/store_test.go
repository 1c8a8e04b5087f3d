package kvstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/database"
)

type brokenStore struct{}

var errBlocked = errors.New("storage blocked")

func (brokenStore) Get(context.Context, string) (string, error) { return "", errBlocked }
func (brokenStore) Set(context.Context, string, string) error   { return errBlocked }
func (brokenStore) Delete(context.Context, string) error        { return errBlocked }

func TestDB_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	db, err := database.Connect(":memory:", nil)
	require.NoError(t, err)

	s, err := NewDB(db)
	require.NoError(t, err)

	_, err = s.Get(ctx, "recoveryToken")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "recoveryToken", "a"))
	require.NoError(t, s.Set(ctx, "recoveryToken", "b"))
	v, err := s.Get(ctx, "recoveryToken")
	require.NoError(t, err)
	assert.Equal(t, "b", v)

	require.NoError(t, s.Delete(ctx, "recoveryToken"))
	_, err = s.Get(ctx, "recoveryToken")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFallback_ServesFromMemoryWhenPrimaryFails(t *testing.T) {
	ctx := context.Background()
	f := NewFallback(brokenStore{}, nil)

	require.NoError(t, f.Set(ctx, "adminActiveSection", "Coupons"))
	v, err := f.Get(ctx, "adminActiveSection")
	require.NoError(t, err)
	assert.Equal(t, "Coupons", v)

	require.NoError(t, f.Delete(ctx, "adminActiveSection"))
	_, err = f.Get(ctx, "adminActiveSection")
	assert.ErrorIs(t, err, ErrNotFound)
}

// switchableStore is a working store whose writes can be made to fail.
type switchableStore struct {
	*Memory
	failWrites bool
}

func (s *switchableStore) Set(ctx context.Context, key, value string) error {
	if s.failWrites {
		return errBlocked
	}
	return s.Memory.Set(ctx, key, value)
}

func (s *switchableStore) Delete(ctx context.Context, key string) error {
	if s.failWrites {
		return errBlocked
	}
	return s.Memory.Delete(ctx, key)
}

func TestFallback_FailedDeleteDoesNotResurrectPrimaryValue(t *testing.T) {
	ctx := context.Background()
	primary := &switchableStore{Memory: NewMemory()}
	f := NewFallback(primary, nil)

	require.NoError(t, f.Set(ctx, "recoveryToken", "rec-1"))

	primary.failWrites = true
	require.NoError(t, f.Delete(ctx, "recoveryToken"))
	_, err := f.Get(ctx, "recoveryToken")
	assert.ErrorIs(t, err, ErrNotFound)

	primary.failWrites = false
	require.NoError(t, f.Set(ctx, "recoveryToken", "rec-2"))
	v, err := f.Get(ctx, "recoveryToken")
	require.NoError(t, err)
	assert.Equal(t, "rec-2", v)
}

func TestFallback_FailedSetShadowsPrimaryValue(t *testing.T) {
	ctx := context.Background()
	primary := &switchableStore{Memory: NewMemory()}
	f := NewFallback(primary, nil)

	require.NoError(t, f.Set(ctx, "accessToken", "old"))
	primary.failWrites = true
	require.NoError(t, f.Set(ctx, "accessToken", "new"))

	v, err := f.Get(ctx, "accessToken")
	require.NoError(t, err)
	assert.Equal(t, "new", v)
}

func TestAvailable(t *testing.T) {
	ctx := context.Background()
	assert.True(t, Available(ctx, NewMemory()))
	assert.False(t, Available(ctx, brokenStore{}))
}

func TestOpen_EmptyDSNIsMemory(t *testing.T) {
	s := Open(context.Background(), "", nil)
	_, ok := s.(*Memory)
	assert.True(t, ok)
}

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, ":memory:", nil)
	_, ok := s.(*Fallback)
	require.True(t, ok)

	require.NoError(t, s.Set(ctx, "k", "v"))
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}
