package gazetteer

import (
	"strings"

	"github.com/cn-address-parser/app/models"
)

// DistrictSuffixes are the county-level type suffixes recognized when
// deriving short forms of a district name.
var DistrictSuffixes = []string{"区", "县", "市", "旗"}

// Owner names the (province, city) pair that owns a district. A district
// short name may have several owners across the country.
type Owner struct {
	Province string
	City     string
}

// Index holds the multi-directional lookups derived from the record list.
// It is built once and read-only afterwards, so concurrent readers need no
// synchronization.
type Index struct {
	Provinces      map[string]struct{}
	ProvinceCities map[string]map[string]struct{}
	// CityToProvince is keyed by the canonical city name and, when the city
	// ends in "市", by its suffix-stripped short form as well.
	CityToProvince map[string]string
	CityDistricts  map[string]map[string]struct{}
	// DistrictToCity is keyed by the canonical district name and by each
	// non-empty suffix-stripped variant. More than one owner under a key
	// means the name is ambiguous without further context.
	DistrictToCity map[string][]Owner
	Cities         map[string]struct{}
	Districts      map[string]struct{}
}

// BuildIndex derives all lookups from the record list in a single pass.
func BuildIndex(regions []models.Region) *Index {
	idx := &Index{
		Provinces:      make(map[string]struct{}),
		ProvinceCities: make(map[string]map[string]struct{}),
		CityToProvince: make(map[string]string),
		CityDistricts:  make(map[string]map[string]struct{}),
		DistrictToCity: make(map[string][]Owner),
		Cities:         make(map[string]struct{}),
		Districts:      make(map[string]struct{}),
	}

	for _, region := range regions {
		idx.Provinces[region.Province] = struct{}{}

		cities := idx.ProvinceCities[region.Province]
		if cities == nil {
			cities = make(map[string]struct{})
			idx.ProvinceCities[region.Province] = cities
		}
		cities[region.City] = struct{}{}

		idx.CityToProvince[region.City] = region.Province
		idx.Cities[region.City] = struct{}{}
		if short := strings.TrimSuffix(region.City, "市"); short != region.City && short != "" {
			idx.CityToProvince[short] = region.Province
		}

		if region.District == "" {
			continue
		}

		districts := idx.CityDistricts[region.City]
		if districts == nil {
			districts = make(map[string]struct{})
			idx.CityDistricts[region.City] = districts
		}
		districts[region.District] = struct{}{}
		idx.Districts[region.District] = struct{}{}

		owner := Owner{Province: region.Province, City: region.City}
		idx.DistrictToCity[region.District] = append(idx.DistrictToCity[region.District], owner)
		for _, suffix := range DistrictSuffixes {
			short := strings.TrimSuffix(region.District, suffix)
			if short != region.District && short != "" {
				idx.DistrictToCity[short] = append(idx.DistrictToCity[short], owner)
			}
		}
	}

	return idx
}

// IsMunicipality reports whether province is a direct-administered
// municipality.
func (idx *Index) IsMunicipality(province string) bool {
	_, ok := municipalities[province]
	return ok
}

// IsNoDistrictCity reports whether city is a prefecture-level city without
// county-level subdivisions.
func (idx *Index) IsNoDistrictCity(city string) bool {
	_, ok := noDistrictCities[city]
	return ok
}

// ValidateDistrict reports whether district is registered under city. Only
// canonical names match.
func (idx *Index) ValidateDistrict(city, district string) bool {
	_, ok := idx.CityDistricts[city][district]
	return ok
}

// FindProvinceByCity resolves a canonical or short city name to its province.
func (idx *Index) FindProvinceByCity(city string) (string, bool) {
	province, ok := idx.CityToProvince[city]
	return province, ok
}

// FindCitiesByDistrict returns every (province, city) pair owning a district
// with the given canonical or short name.
func (idx *Index) FindCitiesByDistrict(district string) []Owner {
	return idx.DistrictToCity[district]
}
