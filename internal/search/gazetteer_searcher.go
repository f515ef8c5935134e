// Package search exposes the gazetteer through a Meilisearch index, for
// human-facing lookups the prefix parser does not cover (substring search,
// browsing units by level).
package search

import (
	"errors"
	"fmt"

	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"

	"github.com/cn-address-parser/app/models"
)

const seedBatchSize = 1000

// Config holds the Meilisearch connection settings.
type Config struct {
	Host      string
	APIKey    string
	IndexName string
}

// GazetteerSearcher wraps a Meilisearch index of flattened AdminUnit
// documents.
type GazetteerSearcher struct {
	client    meilisearch.ServiceManager
	logger    *zap.Logger
	indexName string
}

// NewGazetteerSearcher connects to Meilisearch and verifies it is healthy.
func NewGazetteerSearcher(cfg Config, logger *zap.Logger) (*GazetteerSearcher, error) {
	client := meilisearch.New(cfg.Host, meilisearch.WithAPIKey(cfg.APIKey))

	if _, err := client.Health(); err != nil {
		return nil, fmt.Errorf("meilisearch unreachable: %w", err)
	}

	return &GazetteerSearcher{
		client:    client,
		logger:    logger,
		indexName: cfg.IndexName,
	}, nil
}

// ConfigureIndex applies the index settings: unit names are searchable,
// ancestry and level are filterable.
func (gs *GazetteerSearcher) ConfigureIndex() error {
	index := gs.client.Index(gs.indexName)

	task, err := index.UpdateSettings(&meilisearch.Settings{
		SearchableAttributes: []string{"name", "province", "city"},
		FilterableAttributes: []string{"level", "province", "city"},
		SortableAttributes:   []string{"level", "id"},
		RankingRules:         []string{"words", "typo", "proximity", "attribute", "sort", "exactness"},
	})
	if err != nil {
		return fmt.Errorf("configure index: %w", err)
	}

	gs.logger.Info("search index configured", zap.Int64("task_uid", task.TaskUID))
	return nil
}

// SeedUnits loads the admin unit documents into the index in batches.
func (gs *GazetteerSearcher) SeedUnits(units []models.AdminUnit) error {
	if len(units) == 0 {
		return errors.New("no units to seed")
	}

	index := gs.client.Index(gs.indexName)

	for i := 0; i < len(units); i += seedBatchSize {
		end := i + seedBatchSize
		if end > len(units) {
			end = len(units)
		}

		task, err := index.AddDocuments(units[i:end], "id")
		if err != nil {
			return fmt.Errorf("add documents %d-%d: %w", i, end, err)
		}
		gs.logger.Debug("seeded batch",
			zap.Int("from", i),
			zap.Int("to", end),
			zap.Int64("task_uid", task.TaskUID))
	}

	gs.logger.Info("search index seeded", zap.Int("documents", len(units)))
	return nil
}

// SearchUnits searches unit names, optionally restricted to an
// administrative level (0 means any level).
func (gs *GazetteerSearcher) SearchUnits(query string, level int, limit int64) ([]models.AdminUnit, error) {
	if query == "" {
		return nil, errors.New("empty query")
	}
	if limit <= 0 {
		limit = 20
	}

	index := gs.client.Index(gs.indexName)
	req := &meilisearch.SearchRequest{Limit: limit}
	if level > 0 {
		req.Filter = FilterLevel(level)
	}

	result, err := index.Search(query, req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return unitsFromHits(result.Hits), nil
}

// SearchUnitsIn restricts a search to the subtree of a province or city.
func (gs *GazetteerSearcher) SearchUnitsIn(query, province, city string, limit int64) ([]models.AdminUnit, error) {
	if query == "" {
		return nil, errors.New("empty query")
	}
	if limit <= 0 {
		limit = 20
	}

	index := gs.client.Index(gs.indexName)
	req := &meilisearch.SearchRequest{
		Limit:  limit,
		Filter: FilterAncestry(province, city),
	}

	result, err := index.Search(query, req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return unitsFromHits(result.Hits), nil
}

// FilterLevel builds a level filter expression.
func FilterLevel(level int) string {
	return fmt.Sprintf("level = %d", level)
}

// FilterAncestry builds a filter over the province and city attributes.
// Empty components are skipped.
func FilterAncestry(province, city string) string {
	switch {
	case province != "" && city != "":
		return fmt.Sprintf("province = %q AND city = %q", province, city)
	case province != "":
		return fmt.Sprintf("province = %q", province)
	case city != "":
		return fmt.Sprintf("city = %q", city)
	default:
		return ""
	}
}

func unitsFromHits(hits []interface{}) []models.AdminUnit {
	units := make([]models.AdminUnit, 0, len(hits))
	for _, hit := range hits {
		doc, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}

		var unit models.AdminUnit
		if id, ok := doc["id"].(string); ok {
			unit.ID = id
		}
		if level, ok := doc["level"].(float64); ok {
			unit.Level = int(level)
		}
		if name, ok := doc["name"].(string); ok {
			unit.Name = name
		}
		if province, ok := doc["province"].(string); ok {
			unit.Province = province
		}
		if city, ok := doc["city"].(string); ok {
			unit.City = city
		}
		units = append(units, unit)
	}
	return units
}
