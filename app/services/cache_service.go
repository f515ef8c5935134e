package services

import (
	"context"
	"sync"
	"time"

	"github.com/cn-address-parser/app/models"
)

type memoryEntry struct {
	result   *models.AddressResult
	storedAt time.Time
}

// CacheService is the in-memory ICacheService, used in tests and as the
// fallback when neither Redis nor MongoDB is configured.
type CacheService struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration

	hits   int64
	misses int64
}

// NewCacheService builds an in-memory cache. ttl <= 0 disables expiry.
func NewCacheService(ttl time.Duration) *CacheService {
	return &CacheService{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}
}

func (cs *CacheService) Get(ctx context.Context, key string) (*models.AddressResult, bool, error) {
	cs.mu.RLock()
	entry, ok := cs.entries[key]
	cs.mu.RUnlock()

	if !ok || cs.expired(entry) {
		cs.mu.Lock()
		if ok {
			delete(cs.entries, key)
		}
		cs.misses++
		cs.mu.Unlock()
		return nil, false, nil
	}

	cs.mu.Lock()
	cs.hits++
	cs.mu.Unlock()
	return entry.result, true, nil
}

func (cs *CacheService) Set(ctx context.Context, key string, result *models.AddressResult) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.entries[key] = memoryEntry{result: result, storedAt: time.Now()}
	return nil
}

func (cs *CacheService) Delete(ctx context.Context, key string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	delete(cs.entries, key)
	return nil
}

func (cs *CacheService) Clear(ctx context.Context) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.entries = make(map[string]memoryEntry)
	cs.hits, cs.misses = 0, 0
	return nil
}

func (cs *CacheService) InvalidateByGazetteerVersion(ctx context.Context, gazetteerVersion string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for key, entry := range cs.entries {
		if entry.result.GazetteerVersion != gazetteerVersion {
			delete(cs.entries, key)
		}
	}
	return nil
}

func (cs *CacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	total := cs.hits + cs.misses
	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(cs.hits) / float64(total)
	}
	return &CacheStats{
		HitRate:    hitRate,
		TotalHits:  cs.hits,
		TotalMiss:  cs.misses,
		TotalItems: int64(len(cs.entries)),
	}, nil
}

func (cs *CacheService) Exists(ctx context.Context, key string) (bool, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	entry, ok := cs.entries[key]
	return ok && !cs.expired(entry), nil
}

func (cs *CacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	entry, ok := cs.entries[key]
	if !ok || cs.ttl <= 0 {
		return 0, nil
	}
	remaining := cs.ttl - time.Since(entry.storedAt)
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// CleanupExpired removes all expired entries.
func (cs *CacheService) CleanupExpired() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for key, entry := range cs.entries {
		if cs.expired(entry) {
			delete(cs.entries, key)
		}
	}
}

// StartCleanupWorker periodically sweeps expired entries until ctx is
// cancelled.
func (cs *CacheService) StartCleanupWorker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cs.CleanupExpired()
			}
		}
	}()
}

func (cs *CacheService) Close() error { return nil }

func (cs *CacheService) expired(entry memoryEntry) bool {
	return cs.ttl > 0 && time.Since(entry.storedAt) > cs.ttl
}
