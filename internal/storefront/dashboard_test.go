package storefront

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/kvstore"
)

func TestDashboard_DefaultsAndPersists(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()

	d := NewDashboard(ctx, store, nil)
	assert.Equal(t, DefaultSection, d.Active())

	require.NoError(t, d.Select(ctx, "Coupons"))
	assert.Equal(t, "Coupons", d.Active())

	restored := NewDashboard(ctx, store, nil)
	assert.Equal(t, "Coupons", restored.Active())
}

func TestDashboard_RejectsUnknownSection(t *testing.T) {
	ctx := context.Background()
	d := NewDashboard(ctx, nil, nil)

	assert.ErrorIs(t, d.Select(ctx, "Wallet"), ErrUnknownSection)
	assert.Equal(t, DefaultSection, d.Active())
}

func TestDashboard_StaleStoredSection(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	require.NoError(t, store.Set(ctx, KeyActiveSection, "Studios"))

	assert.Equal(t, DefaultSection, NewDashboard(ctx, store, nil).Active())
	assert.Len(t, Sections(), 11)
}
