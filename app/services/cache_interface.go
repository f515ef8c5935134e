package services

import (
	"context"
	"time"

	"github.com/cn-address-parser/app/models"
)

// CacheStats aggregates hit counters across cache layers.
type CacheStats struct {
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}

// ICacheService is the cache contract for parse results. Keys are the
// sha256 fingerprints of the cleaned input, so every layer addresses the
// same entry for the same address text.
type ICacheService interface {
	// Get returns the cached result for a fingerprint key.
	Get(ctx context.Context, key string) (*models.AddressResult, bool, error)

	// Set stores a parse result under its fingerprint key.
	Set(ctx context.Context, key string, result *models.AddressResult) error

	// Delete removes one entry.
	Delete(ctx context.Context, key string) error

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// InvalidateByGazetteerVersion drops entries produced by a different
	// gazetteer version.
	InvalidateByGazetteerVersion(ctx context.Context, gazetteerVersion string) error

	// GetStats returns hit/miss counters.
	GetStats(ctx context.Context) (*CacheStats, error)

	// Exists reports whether a key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// GetTTL returns the remaining lifetime of a key, 0 when unknown.
	GetTTL(ctx context.Context, key string) (time.Duration, error)

	// Close releases any connections held by the cache.
	Close() error
}
