package settings

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"avilegal.backend/internal/domain/repositories"
	"avilegal.backend/pkg/logger"
	"avilegal.backend/pkg/redis"
)

const (
	cacheKey = "settings:all"
	// loadedField marks a populated snapshot so an empty settings table is
	// still a cache hit.
	loadedField = "__loaded"

	defaultCacheTTL = 10 * time.Minute
	defaultLocalTTL = 30 * time.Second
)

var (
	redisEnabled = func() bool { return redis.GetClient() != nil }
	redisGetAll  = redis.HGetAll
	redisSetAll  = redis.HSetAll
	redisDel     = redis.Del
)

// Provider serves the key/value settings from a snapshot. Reads go to the
// in-process copy, then Redis, then the database. Writes go to the database
// and drop both caches.
type Provider struct {
	repo     repositories.SettingRepository
	cacheTTL time.Duration
	localTTL time.Duration
	now      func() time.Time

	mu       sync.RWMutex
	snapshot map[string]string
	loadedAt time.Time
}

func NewProvider(repo repositories.SettingRepository) *Provider {
	return &Provider{
		repo:     repo,
		cacheTTL: defaultCacheTTL,
		localTTL: defaultLocalTTL,
		now:      time.Now,
	}
}

// Get returns the value for key, or "" when unset.
func (p *Provider) Get(ctx context.Context, key string) (string, error) {
	snap, err := p.load(ctx)
	if err != nil {
		return "", err
	}
	return snap[key], nil
}

// GetDefault returns the value for key, or def when unset, empty or unreadable.
func (p *Provider) GetDefault(ctx context.Context, key, def string) string {
	v, err := p.Get(ctx, key)
	if err != nil || v == "" {
		return def
	}
	return v
}

// All returns a copy of every setting.
func (p *Provider) All(ctx context.Context) (map[string]string, error) {
	snap, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(snap))
	for k, v := range snap {
		out[k] = v
	}
	return out, nil
}

func (p *Provider) Set(ctx context.Context, key, value string) error {
	return p.SetMany(ctx, map[string]string{key: value})
}

// SetMany writes every pair and invalidates once.
func (p *Provider) SetMany(ctx context.Context, values map[string]string) error {
	for k, v := range values {
		if err := p.repo.Upsert(ctx, k, v); err != nil {
			return err
		}
	}
	p.Invalidate(ctx)
	return nil
}

// Invalidate drops the cached snapshot so the next read reloads it.
func (p *Provider) Invalidate(ctx context.Context) {
	p.mu.Lock()
	p.snapshot = nil
	p.mu.Unlock()

	if redisEnabled() {
		if err := redisDel(ctx, cacheKey); err != nil {
			logger.Warn(ctx, "Failed to drop settings cache", zap.Error(err))
		}
	}
}

func (p *Provider) load(ctx context.Context) (map[string]string, error) {
	p.mu.RLock()
	if p.snapshot != nil && p.now().Sub(p.loadedAt) < p.localTTL {
		snap := p.snapshot
		p.mu.RUnlock()
		return snap, nil
	}
	p.mu.RUnlock()

	if snap, ok := p.fromRedis(ctx); ok {
		p.store(snap)
		return snap, nil
	}

	snap, err := p.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	p.store(snap)
	p.toRedis(ctx, snap)
	return snap, nil
}

func (p *Provider) store(snap map[string]string) {
	p.mu.Lock()
	p.snapshot = snap
	p.loadedAt = p.now()
	p.mu.Unlock()
}

func (p *Provider) fromRedis(ctx context.Context) (map[string]string, bool) {
	if !redisEnabled() {
		return nil, false
	}
	values, err := redisGetAll(ctx, cacheKey)
	if err != nil {
		logger.Warn(ctx, "Settings cache read failed", zap.Error(err))
		return nil, false
	}
	if _, ok := values[loadedField]; !ok {
		return nil, false
	}
	delete(values, loadedField)
	return values, true
}

func (p *Provider) toRedis(ctx context.Context, snap map[string]string) {
	if !redisEnabled() {
		return
	}
	values := make(map[string]string, len(snap)+1)
	for k, v := range snap {
		values[k] = v
	}
	values[loadedField] = "1"
	if err := redisSetAll(ctx, cacheKey, values, p.cacheTTL); err != nil {
		logger.Warn(ctx, "Settings cache write failed", zap.Error(err))
	}
}
