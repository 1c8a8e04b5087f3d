package kvstore

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"storefront/internal/database"
)

const probeKey = "__storage_test__"

// Fallback serves every operation from primary and, when primary fails,
// from an in-process memory store. Primary failures are logged only. A key
// whose last write or delete failed on primary is served from memory until
// primary accepts a later write, so primary's stale copy never resurfaces.
type Fallback struct {
	primary Store
	memory  *Memory
	log     *zap.Logger

	mu    sync.Mutex
	local map[string]bool
}

func NewFallback(primary Store, log *zap.Logger) *Fallback {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fallback{primary: primary, memory: NewMemory(), log: log, local: map[string]bool{}}
}

func (f *Fallback) Get(ctx context.Context, key string) (string, error) {
	if f.isLocal(key) {
		return f.memory.Get(ctx, key)
	}
	v, err := f.primary.Get(ctx, key)
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, ErrNotFound):
		return "", err
	}
	f.log.Warn("kvstore get failed, using memory", zap.String("key", key), zap.Error(err))
	return f.memory.Get(ctx, key)
}

func (f *Fallback) Set(ctx context.Context, key, value string) error {
	if err := f.primary.Set(ctx, key, value); err != nil {
		f.log.Warn("kvstore set failed, using memory", zap.String("key", key), zap.Error(err))
		f.setLocal(key, true)
		return f.memory.Set(ctx, key, value)
	}
	f.setLocal(key, false)
	return f.memory.Delete(ctx, key)
}

func (f *Fallback) Delete(ctx context.Context, key string) error {
	if err := f.primary.Delete(ctx, key); err != nil {
		f.log.Warn("kvstore delete failed, using memory", zap.String("key", key), zap.Error(err))
		f.setLocal(key, true)
		return f.memory.Delete(ctx, key)
	}
	f.setLocal(key, false)
	return f.memory.Delete(ctx, key)
}

func (f *Fallback) isLocal(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.local[key]
}

func (f *Fallback) setLocal(key string, local bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if local {
		f.local[key] = true
		return
	}
	delete(f.local, key)
}

// Available writes and removes a probe key.
func Available(ctx context.Context, s Store) bool {
	if err := s.Set(ctx, probeKey, probeKey); err != nil {
		return false
	}
	return s.Delete(ctx, probeKey) == nil
}

// Open selects the store once at startup: the persistent store at dsn when
// it can be opened and passes the probe, memory otherwise. An empty dsn
// means memory.
func Open(ctx context.Context, dsn string, log *zap.Logger) Store {
	if log == nil {
		log = zap.NewNop()
	}
	if dsn == "" {
		return NewMemory()
	}

	db, err := database.Connect(dsn, log)
	if err != nil {
		log.Warn("persistent store unavailable", zap.Error(err))
		return NewMemory()
	}
	persistent, err := NewDB(db)
	if err != nil {
		log.Warn("persistent store unavailable", zap.Error(err))
		return NewMemory()
	}
	if !Available(ctx, persistent) {
		log.Warn("persistent store failed probe, using memory")
		return NewMemory()
	}
	return NewFallback(persistent, log)
}
