package services

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cn-address-parser/app/config"
	"github.com/cn-address-parser/app/models"
	"github.com/cn-address-parser/internal/normalizer"
	"github.com/cn-address-parser/internal/parser"
)

// ErrEmptyAddress is returned for blank input.
var ErrEmptyAddress = errors.New("empty address")

// AddressService runs the parser over cleaned input and caches results by
// input fingerprint.
type AddressService struct {
	parser    *parser.AddressParser
	cache     ICacheService
	logger    *zap.Logger
	startTime time.Time
}

// NewAddressService wires a parser with a cache layer. cache may be nil.
func NewAddressService(p *parser.AddressParser, cache ICacheService, logger *zap.Logger) *AddressService {
	return &AddressService{
		parser:    p,
		cache:     cache,
		logger:    logger,
		startTime: time.Now(),
	}
}

// Fingerprint derives the cache key for an address text.
func Fingerprint(text string) string {
	hash := sha256.Sum256([]byte(text))
	return fmt.Sprintf("sha256:%x", hash)
}

// ParseAddress parses one address, going through the cache when available.
func (as *AddressService) ParseAddress(ctx context.Context, rawAddress string) (*models.AddressResult, error) {
	if rawAddress == "" {
		return nil, ErrEmptyAddress
	}

	// Width folding always applies; full cleaning additionally strips
	// interior whitespace and level separators.
	cleaned := normalizer.CleanKeepDetail(rawAddress)
	if config.C.CleanInput {
		cleaned = normalizer.Clean(rawAddress)
	}
	key := Fingerprint(cleaned)

	if as.cache != nil && config.C.Cache.Enabled {
		cached, found, err := as.cache.Get(ctx, key)
		if err != nil {
			as.logger.Warn("cache lookup failed, parsing directly", zap.Error(err))
		} else if found && cached.GazetteerVersion == as.parser.GazetteerVersion() {
			return cached, nil
		}
	}

	result := as.buildResult(rawAddress, cleaned, key)

	if as.cache != nil && config.C.Cache.Enabled {
		if err := as.cache.Set(ctx, key, result); err != nil {
			as.logger.Warn("cache write failed", zap.Error(err), zap.String("key", key))
		}
	}

	return result, nil
}

// ParseBatch parses addresses in input order. Blank entries produce empty
// results rather than aborting the batch.
func (as *AddressService) ParseBatch(ctx context.Context, addresses []string) ([]*models.AddressResult, error) {
	if len(addresses) > config.C.Batch.MaxSync {
		return nil, fmt.Errorf("batch of %d exceeds limit %d", len(addresses), config.C.Batch.MaxSync)
	}

	results := make([]*models.AddressResult, len(addresses))
	for i, address := range addresses {
		if address == "" {
			results[i] = &models.AddressResult{GazetteerVersion: as.parser.GazetteerVersion()}
			continue
		}
		result, err := as.ParseAddress(ctx, address)
		if err != nil {
			return nil, err
		}
		results[i] = result
	}
	return results, nil
}

// Normalize resolves short forms to canonical names.
func (as *AddressService) Normalize(province, city, district string) string {
	return as.parser.Normalize(province, city, district)
}

// Validate reports whether an address resolves to at least a city.
func (as *AddressService) Validate(ctx context.Context, rawAddress string) (*models.AddressResult, error) {
	return as.ParseAddress(ctx, rawAddress)
}

// Provinces lists all province-level names.
func (as *AddressService) Provinces() []string { return as.parser.Provinces() }

// CitiesOfProvince lists the cities of a province, accepting short forms.
func (as *AddressService) CitiesOfProvince(province string) []string {
	return as.parser.CitiesOfProvince(province)
}

// DistrictsOfCity lists the districts of a city, accepting short forms.
func (as *AddressService) DistrictsOfCity(city string) []string {
	return as.parser.DistrictsOfCity(city)
}

// KnownProvince reports whether the name resolves to a province.
func (as *AddressService) KnownProvince(province string) bool {
	return as.parser.IsKnownProvince(province)
}

// KnownCity reports whether the name resolves to a city.
func (as *AddressService) KnownCity(city string) bool {
	return as.parser.IsKnownCity(city)
}

// GazetteerVersion exposes the dataset version for responses.
func (as *AddressService) GazetteerVersion() string { return as.parser.GazetteerVersion() }

// GetStats reports service uptime.
func (as *AddressService) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"uptime_seconds":    int64(time.Since(as.startTime).Seconds()),
		"start_time":        as.startTime.Format(time.RFC3339),
		"gazetteer_version": as.parser.GazetteerVersion(),
	}
}

func (as *AddressService) buildResult(raw, cleaned, key string) *models.AddressResult {
	parsed := as.parser.Parse(cleaned)
	result := &models.AddressResult{
		Raw:              raw,
		Parsed:           parsed,
		FullAddress:      parsed.FullAddress(),
		Valid:            parsed.IsValid(),
		RawFingerprint:   key,
		GazetteerVersion: as.parser.GazetteerVersion(),
	}
	if cleaned != raw {
		result.Cleaned = cleaned
	}
	return result
}
