// Package session is the single owner of the client's credentials. The HTTP
// layer reads it on every request and writes it only through Exchange, so
// a credential rotation is never observed half-done.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"storefront/internal/kvstore"
)

const (
	KeyAccessToken   = "accessToken"
	KeyRecoveryToken = "recoveryToken"
	KeyUser          = "authUser"
)

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == "admin"
}

// Snapshot is an immutable copy of the session at one generation.
type Snapshot struct {
	AccessToken   string
	RecoveryToken string
	User          *User
	Generation    uint64
}

func (s Snapshot) LoggedIn() bool {
	return s.User != nil
}

// Credentials is the result of one credential exchange. RecoveryUsed marks
// the stored recovery token as spent even when no replacement came back.
type Credentials struct {
	AccessToken   string
	RecoveryToken string
	RecoveryUsed  bool
}

type Manager struct {
	mu       sync.RWMutex
	store    kvstore.Store
	log      *zap.Logger
	access   string
	recovery string
	user     *User
	gen      uint64
}

func NewManager(store kvstore.Store, log *zap.Logger) *Manager {
	if store == nil {
		store = kvstore.NewMemory()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{store: store, log: log}
}

// Load restores a previously persisted session. Missing keys leave the
// corresponding field empty.
func (m *Manager) Load(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.access = m.read(ctx, KeyAccessToken)
	m.recovery = m.read(ctx, KeyRecoveryToken)

	m.user = nil
	if raw := m.read(ctx, KeyUser); raw != "" {
		var u User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			m.log.Warn("discarding unreadable stored user", zap.Error(err))
		} else {
			m.user = &u
		}
	}
	m.gen++
}

func (m *Manager) Get() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot()
}

func (m *Manager) Generation() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gen
}

// Start installs a new session after login or OTP verification.
func (m *Manager) Start(ctx context.Context, user *User, creds Credentials) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.install(ctx, creds)
	m.setUser(ctx, user)
	m.gen++
	return m.snapshot()
}

func (m *Manager) SetUser(ctx context.Context, user *User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setUser(ctx, user)
}

// Exchange runs fn under the write lock and installs what it returns. No
// request can read the session between the old credential being spent and
// the new one being installed. On error nothing is changed.
func (m *Manager) Exchange(ctx context.Context, fn func(context.Context, Snapshot) (Credentials, error)) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	creds, err := fn(ctx, m.snapshot())
	if err != nil {
		return m.snapshot(), err
	}
	m.install(ctx, creds)
	m.gen++
	return m.snapshot(), nil
}

// Clear drops every credential and the user, in memory and in the store.
func (m *Manager) Clear(ctx context.Context) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.access, m.recovery, m.user = "", "", nil
	for _, key := range []string{KeyAccessToken, KeyRecoveryToken, KeyUser} {
		m.remove(ctx, key)
	}
	m.gen++
	return m.gen
}

func (m *Manager) install(ctx context.Context, creds Credentials) {
	if creds.AccessToken != "" {
		m.access = creds.AccessToken
		m.write(ctx, KeyAccessToken, creds.AccessToken)
	}

	switch {
	case creds.RecoveryToken != "":
		// the old token is dead after rotation; never leave it readable
		m.remove(ctx, KeyRecoveryToken)
		m.recovery = creds.RecoveryToken
		m.write(ctx, KeyRecoveryToken, creds.RecoveryToken)
	case creds.RecoveryUsed:
		m.recovery = ""
		m.remove(ctx, KeyRecoveryToken)
	}
}

func (m *Manager) setUser(ctx context.Context, user *User) {
	m.user = user
	if user == nil {
		m.remove(ctx, KeyUser)
		return
	}
	raw, err := json.Marshal(user)
	if err != nil {
		m.log.Warn("encoding user", zap.Error(err))
		return
	}
	m.write(ctx, KeyUser, string(raw))
}

func (m *Manager) snapshot() Snapshot {
	var u *User
	if m.user != nil {
		cp := *m.user
		u = &cp
	}
	return Snapshot{
		AccessToken:   m.access,
		RecoveryToken: m.recovery,
		User:          u,
		Generation:    m.gen,
	}
}

// Storage problems are logged and otherwise ignored; the in-memory copy
// stays authoritative for this process.

func (m *Manager) read(ctx context.Context, key string) string {
	v, err := m.store.Get(ctx, key)
	if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		m.log.Warn("session store read failed", zap.String("key", key), zap.Error(err))
	}
	return v
}

func (m *Manager) write(ctx context.Context, key, value string) {
	if err := m.store.Set(ctx, key, value); err != nil {
		m.log.Warn("session store write failed", zap.String("key", key), zap.Error(err))
	}
}

func (m *Manager) remove(ctx context.Context, key string) {
	if err := m.store.Delete(ctx, key); err != nil {
		m.log.Warn("session store delete failed", zap.String("key", key), zap.Error(err))
	}
}
