package storefront

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"storefront/internal/kvstore"
)

const (
	KeyActiveSection = "adminActiveSection"
	DefaultSection   = "Dashboard"
)

var sections = []string{
	"Dashboard",
	"Products",
	"Categories",
	"Subcategories",
	"Users",
	"Orders",
	"Queries",
	"Banners",
	"Coupons",
	"Referrals",
	"Offers",
}

// Dashboard remembers which admin section is open across restarts.
type Dashboard struct {
	store kvstore.Store
	log   *zap.Logger

	mu     sync.RWMutex
	active string
}

// NewDashboard restores the persisted section. A missing or stale value
// falls back to DefaultSection.
func NewDashboard(ctx context.Context, store kvstore.Store, log *zap.Logger) *Dashboard {
	if store == nil {
		store = kvstore.NewMemory()
	}
	if log == nil {
		log = zap.NewNop()
	}
	d := &Dashboard{store: store, log: log, active: DefaultSection}

	name, err := store.Get(ctx, KeyActiveSection)
	if err == nil && slices.Contains(sections, name) {
		d.active = name
	}
	return d
}

func Sections() []string {
	return slices.Clone(sections)
}

func (d *Dashboard) Active() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.active
}

func (d *Dashboard) Select(ctx context.Context, name string) error {
	if !slices.Contains(sections, name) {
		return ErrUnknownSection
	}
	d.mu.Lock()
	d.active = name
	d.mu.Unlock()

	if err := d.store.Set(ctx, KeyActiveSection, name); err != nil {
		d.log.Warn("persisting dashboard section", zap.Error(err))
	}
	return nil
}
