package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cn-address-parser/app/models"
)

// HybridCacheService layers Redis (fast, shared) over MongoDB (persistent).
// Reads fall through Redis to MongoDB and promote hits back up; writes go
// to both.
type HybridCacheService struct {
	redis  *RedisCacheService
	mongo  *MongoCacheService
	logger *zap.Logger
}

func NewHybridCacheService(redisCache *RedisCacheService, mongoCache *MongoCacheService, logger *zap.Logger) *HybridCacheService {
	return &HybridCacheService{
		redis:  redisCache,
		mongo:  mongoCache,
		logger: logger,
	}
}

func (hcs *HybridCacheService) Get(ctx context.Context, key string) (*models.AddressResult, bool, error) {
	result, found, err := hcs.redis.Get(ctx, key)
	if err != nil {
		hcs.logger.Warn("redis unavailable, falling back to mongo", zap.Error(err))
	} else if found {
		return result, true, nil
	}

	result, found, err = hcs.mongo.Get(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}

	// Promote the persistent hit so the next read stays in Redis.
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hcs.redis.Set(bgCtx, key, result); err != nil {
			hcs.logger.Warn("cache promotion failed", zap.Error(err), zap.String("key", key))
		}
	}()

	return result, true, nil
}

func (hcs *HybridCacheService) Set(ctx context.Context, key string, result *models.AddressResult) error {
	return hcs.both(func(c ICacheService) error { return c.Set(ctx, key, result) }, "set")
}

func (hcs *HybridCacheService) Delete(ctx context.Context, key string) error {
	return hcs.both(func(c ICacheService) error { return c.Delete(ctx, key) }, "delete")
}

func (hcs *HybridCacheService) Clear(ctx context.Context) error {
	return hcs.both(func(c ICacheService) error { return c.Clear(ctx) }, "clear")
}

func (hcs *HybridCacheService) InvalidateByGazetteerVersion(ctx context.Context, gazetteerVersion string) error {
	return hcs.both(func(c ICacheService) error {
		return c.InvalidateByGazetteerVersion(ctx, gazetteerVersion)
	}, "invalidate")
}

// both runs op against the two layers concurrently and joins the errors.
func (hcs *HybridCacheService) both(op func(ICacheService) error, name string) error {
	errCh := make(chan error, 2)
	for _, layer := range []ICacheService{hcs.redis, hcs.mongo} {
		go func(c ICacheService) { errCh <- op(c) }(layer)
	}

	var errs []error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("hybrid cache %s: %v", name, errs)
	}
	return nil
}

func (hcs *HybridCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	redisStats, redisErr := hcs.redis.GetStats(ctx)
	mongoStats, mongoErr := hcs.mongo.GetStats(ctx)

	switch {
	case redisErr != nil && mongoErr != nil:
		return nil, fmt.Errorf("both cache layers failed: %v, %v", redisErr, mongoErr)
	case redisErr != nil:
		return mongoStats, nil
	case mongoErr != nil:
		return redisStats, nil
	}

	hits := redisStats.TotalHits + mongoStats.TotalHits
	misses := redisStats.TotalMiss + mongoStats.TotalMiss
	combined := &CacheStats{
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: mongoStats.TotalItems,
	}
	if total := hits + misses; total > 0 {
		combined.HitRate = float64(hits) / float64(total)
	}
	return combined, nil
}

func (hcs *HybridCacheService) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := hcs.redis.Exists(ctx, key)
	if err != nil {
		hcs.logger.Warn("redis exists failed, checking mongo", zap.Error(err))
	} else if exists {
		return true, nil
	}
	return hcs.mongo.Exists(ctx, key)
}

func (hcs *HybridCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return hcs.redis.GetTTL(ctx, key)
}

func (hcs *HybridCacheService) Close() error {
	if err := hcs.redis.Close(); err != nil {
		return err
	}
	return hcs.mongo.Close()
}

// WarmUp preloads the persistent layer's hottest entries.
func (hcs *HybridCacheService) WarmUp(ctx context.Context, limit int) error {
	return hcs.mongo.WarmUp(ctx, limit)
}
