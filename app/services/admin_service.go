package services

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/cn-address-parser/app/models"
	"github.com/cn-address-parser/internal/search"
)

// SeedResult summarizes one search index seed run.
type SeedResult struct {
	UnitsProcessed   int   `json:"units_processed"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

// SystemStats is the admin stats payload.
type SystemStats struct {
	GazetteerVersion string                 `json:"gazetteer_version"`
	Provinces        int                    `json:"provinces"`
	Uptime           map[string]interface{} `json:"uptime"`
	Cache            *CacheStats            `json:"cache,omitempty"`
	MemoryUsage      map[string]interface{} `json:"memory_usage"`
}

// AdminService groups the operational endpoints: seeding the search index,
// cache invalidation and system stats.
type AdminService struct {
	addresses *AddressService
	cache     ICacheService
	searcher  *search.GazetteerSearcher
	logger    *zap.Logger
}

func NewAdminService(addresses *AddressService, cache ICacheService, searcher *search.GazetteerSearcher, logger *zap.Logger) *AdminService {
	return &AdminService{
		addresses: addresses,
		cache:     cache,
		searcher:  searcher,
		logger:    logger,
	}
}

// BuildAdminUnits flattens regions into search documents, one per distinct
// province, city and district occurrence.
func BuildAdminUnits(regions []models.Region) []models.AdminUnit {
	var units []models.AdminUnit
	seen := make(map[string]bool)

	add := func(unit models.AdminUnit) {
		if !seen[unit.ID] {
			seen[unit.ID] = true
			units = append(units, unit)
		}
	}

	for _, region := range regions {
		add(models.AdminUnit{
			ID:    "p-" + region.Province,
			Level: models.LevelProvince,
			Name:  region.Province,
		})
		add(models.AdminUnit{
			ID:       "c-" + region.Province + "-" + region.City,
			Level:    models.LevelCity,
			Name:     region.City,
			Province: region.Province,
		})
		if region.HasDistrict() {
			add(models.AdminUnit{
				ID:       "d-" + region.Province + "-" + region.City + "-" + region.District,
				Level:    models.LevelDistrict,
				Name:     region.District,
				Province: region.Province,
				City:     region.City,
			})
		}
	}
	return units
}

// SeedSearchIndex configures the search index and loads it with the
// gazetteer's admin units.
func (as *AdminService) SeedSearchIndex(regions []models.Region) (*SeedResult, error) {
	if as.searcher == nil {
		return nil, fmt.Errorf("search is not configured")
	}

	start := time.Now()
	units := BuildAdminUnits(regions)

	if err := as.searcher.ConfigureIndex(); err != nil {
		return nil, err
	}
	if err := as.searcher.SeedUnits(units); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	as.logger.Info("search index seeded",
		zap.Int("units", len(units)),
		zap.Duration("elapsed", elapsed))

	return &SeedResult{
		UnitsProcessed:   len(units),
		ProcessingTimeMs: elapsed.Milliseconds(),
	}, nil
}

// SearchUnits runs a free-text search over the index.
func (as *AdminService) SearchUnits(query string, level int, limit int64) ([]models.AdminUnit, error) {
	if as.searcher == nil {
		return nil, fmt.Errorf("search is not configured")
	}
	return as.searcher.SearchUnits(query, level, limit)
}

// InvalidateCache drops cached results from older gazetteer versions, or
// everything when version is empty.
func (as *AdminService) InvalidateCache(ctx context.Context, version string) error {
	if as.cache == nil {
		return nil
	}
	if version == "" {
		return as.cache.Clear(ctx)
	}
	return as.cache.InvalidateByGazetteerVersion(ctx, version)
}

// GetSystemStats collects runtime and cache statistics.
func (as *AdminService) GetSystemStats(ctx context.Context) (*SystemStats, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stats := &SystemStats{
		GazetteerVersion: as.addresses.GazetteerVersion(),
		Provinces:        len(as.addresses.Provinces()),
		Uptime:           as.addresses.GetStats(),
		MemoryUsage: map[string]interface{}{
			"alloc_mb": m.Alloc / 1024 / 1024,
			"sys_mb":   m.Sys / 1024 / 1024,
			"num_gc":   m.NumGC,
		},
	}

	if as.cache != nil {
		cacheStats, err := as.cache.GetStats(ctx)
		if err != nil {
			as.logger.Warn("cache stats unavailable", zap.Error(err))
		} else {
			stats.Cache = cacheStats
		}
	}

	return stats, nil
}
