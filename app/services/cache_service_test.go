package services

import (
	"context"
	"testing"
	"time"

	"github.com/cn-address-parser/app/models"
)

func cachedResult(raw, version string) *models.AddressResult {
	return &models.AddressResult{
		Raw:              raw,
		RawFingerprint:   Fingerprint(raw),
		GazetteerVersion: version,
	}
}

func TestCacheServiceSetGet(t *testing.T) {
	ctx := context.Background()
	cache := NewCacheService(0)

	want := cachedResult("广东省深圳市南山区", "pca-2025")
	if err := cache.Set(ctx, want.RawFingerprint, want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, found, err := cache.Get(ctx, want.RawFingerprint)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found {
		t.Fatal("expected cache hit")
	}
	if got != want {
		t.Errorf("Get returned %+v, want the stored result", got)
	}

	if _, found, _ := cache.Get(ctx, "sha256:missing"); found {
		t.Error("expected miss for unknown key")
	}
}

func TestCacheServiceExpiry(t *testing.T) {
	ctx := context.Background()
	cache := NewCacheService(10 * time.Millisecond)

	result := cachedResult("北京市朝阳区", "pca-2025")
	if err := cache.Set(ctx, result.RawFingerprint, result); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if _, found, _ := cache.Get(ctx, result.RawFingerprint); !found {
		t.Fatal("expected hit before expiry")
	}

	time.Sleep(25 * time.Millisecond)

	if _, found, _ := cache.Get(ctx, result.RawFingerprint); found {
		t.Error("expected miss after expiry")
	}
	if exists, _ := cache.Exists(ctx, result.RawFingerprint); exists {
		t.Error("Exists should report false after expiry")
	}
}

func TestCacheServiceDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	cache := NewCacheService(0)

	a := cachedResult("上海市浦东新区", "pca-2025")
	b := cachedResult("天津市和平区", "pca-2025")
	cache.Set(ctx, a.RawFingerprint, a)
	cache.Set(ctx, b.RawFingerprint, b)

	if err := cache.Delete(ctx, a.RawFingerprint); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found, _ := cache.Get(ctx, a.RawFingerprint); found {
		t.Error("expected miss after Delete")
	}
	if _, found, _ := cache.Get(ctx, b.RawFingerprint); !found {
		t.Error("Delete removed an unrelated key")
	}

	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	stats, err := cache.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalItems != 0 {
		t.Errorf("TotalItems = %d after Clear, want 0", stats.TotalItems)
	}
}

func TestCacheServiceInvalidateByGazetteerVersion(t *testing.T) {
	ctx := context.Background()
	cache := NewCacheService(0)

	current := cachedResult("广东省广州市天河区", "pca-2025")
	stale := cachedResult("广东省广州市越秀区", "pca-2024")
	cache.Set(ctx, current.RawFingerprint, current)
	cache.Set(ctx, stale.RawFingerprint, stale)

	if err := cache.InvalidateByGazetteerVersion(ctx, "pca-2025"); err != nil {
		t.Fatalf("InvalidateByGazetteerVersion: %v", err)
	}

	if _, found, _ := cache.Get(ctx, current.RawFingerprint); !found {
		t.Error("current-version entry was evicted")
	}
	if _, found, _ := cache.Get(ctx, stale.RawFingerprint); found {
		t.Error("stale-version entry survived invalidation")
	}
}

func TestCacheServiceStats(t *testing.T) {
	ctx := context.Background()
	cache := NewCacheService(0)

	result := cachedResult("重庆市渝中区", "pca-2025")
	cache.Set(ctx, result.RawFingerprint, result)

	cache.Get(ctx, result.RawFingerprint) // hit
	cache.Get(ctx, result.RawFingerprint) // hit
	cache.Get(ctx, "sha256:missing")      // miss

	stats, err := cache.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalHits != 2 || stats.TotalMiss != 1 {
		t.Errorf("hits/misses = %d/%d, want 2/1", stats.TotalHits, stats.TotalMiss)
	}
	if stats.TotalItems != 1 {
		t.Errorf("TotalItems = %d, want 1", stats.TotalItems)
	}
	wantRate := 2.0 / 3.0
	if stats.HitRate < wantRate-0.001 || stats.HitRate > wantRate+0.001 {
		t.Errorf("HitRate = %f, want ~%f", stats.HitRate, wantRate)
	}
}

func TestCacheServiceCleanupWorker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cache := NewCacheService(5 * time.Millisecond)
	cache.StartCleanupWorker(ctx, 5*time.Millisecond)

	first := cachedResult("四川省成都市武侯区", "pca-2025")
	cache.Set(ctx, first.RawFingerprint, first)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		stats, _ := cache.GetStats(context.Background())
		if stats.TotalItems == 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	stats, _ := cache.GetStats(context.Background())
	if stats.TotalItems != 0 {
		t.Fatal("cleanup worker never swept the expired entry")
	}

	// After cancellation the sweeper must stop touching the map.
	cancel()
	time.Sleep(20 * time.Millisecond)

	second := cachedResult("四川省成都市锦江区", "pca-2025")
	cache.Set(context.Background(), second.RawFingerprint, second)
	time.Sleep(50 * time.Millisecond)

	stats, _ = cache.GetStats(context.Background())
	if stats.TotalItems != 1 {
		t.Errorf("TotalItems = %d after cancel, want the expired entry left in place", stats.TotalItems)
	}
}

func TestCacheServiceGetTTL(t *testing.T) {
	ctx := context.Background()
	cache := NewCacheService(time.Hour)

	result := cachedResult("浙江省杭州市西湖区", "pca-2025")
	cache.Set(ctx, result.RawFingerprint, result)

	ttl, err := cache.GetTTL(ctx, result.RawFingerprint)
	if err != nil {
		t.Fatalf("GetTTL: %v", err)
	}
	if ttl <= 0 || ttl > time.Hour {
		t.Errorf("GetTTL = %v, want within (0, 1h]", ttl)
	}

	if ttl, _ := cache.GetTTL(ctx, "sha256:missing"); ttl != 0 {
		t.Errorf("GetTTL for missing key = %v, want 0", ttl)
	}
}
