// Package gazetteer bundles the administrative division dataset and builds
// the lookup indexes consumed by the address parser.
package gazetteer

import (
	"encoding/csv"
	"fmt"
	"strings"

	_ "embed"

	"github.com/cn-address-parser/app/models"
)

//go:embed data/pca.csv
var pcaCSV string

// Version identifies the bundled dataset. Cache entries carry it so that a
// dataset upgrade invalidates stale results.
const Version = "pca-2025"

// Direct-administered municipalities: province-level units that are their
// own city tier.
var municipalities = map[string]struct{}{
	"北京市": {},
	"上海市": {},
	"天津市": {},
	"重庆市": {},
}

// Prefecture-level cities with no county-level subdivisions.
var noDistrictCities = map[string]struct{}{
	"东莞市":  {},
	"中山市":  {},
	"儋州市":  {},
	"嘉峪关市": {},
}

// LoadRegions parses the embedded CSV (code,province,city,district) into
// records. The header row is skipped, fields are trimmed, and rows without a
// province or city are dropped. District stays empty for unit-less cities.
func LoadRegions() ([]models.Region, error) {
	r := csv.NewReader(strings.NewReader(pcaCSV))
	r.FieldsPerRecord = -1 // district column may be omitted entirely

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read pca.csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("pca.csv: empty dataset")
	}

	regions := make([]models.Region, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < 3 {
			continue
		}
		region := models.Region{
			Province: strings.TrimSpace(row[1]),
			City:     strings.TrimSpace(row[2]),
		}
		if len(row) > 3 {
			region.District = strings.TrimSpace(row[3])
		}
		if region.Province == "" || region.City == "" {
			continue
		}
		regions = append(regions, region)
	}
	if len(regions) == 0 {
		return nil, fmt.Errorf("pca.csv: no usable rows")
	}
	return regions, nil
}
