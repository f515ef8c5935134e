// Package parser extracts province, city and district from unstructured
// Chinese address strings using a closed gazetteer of administrative names.
//
// Matching runs three prefix trees (province, city, district) over the head
// of the input, longest registered name first, and resolves omitted levels
// through the gazetteer's reverse indexes. A district name owned by several
// cities stays ambiguous rather than being guessed.
package parser

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/cn-address-parser/app/models"
	"github.com/cn-address-parser/internal/gazetteer"
	"github.com/cn-address-parser/internal/trie"
)

// Suffixes marking a fully-qualified district token. A head-of-text match
// carrying one of these outranks a shorter city interpretation when no
// province context is available.
var qualifiedDistrictSuffixes = []string{"区", "县", "旗"}

// AddressParser owns the three matcher tries and the gazetteer index. All
// state is built once in New and immutable afterwards, so a single instance
// serves unlimited concurrent Parse calls.
type AddressParser struct {
	provinceTrie *trie.Trie[string]
	cityTrie     *trie.Trie[string]
	districtTrie *trie.Trie[string]
	index        *gazetteer.Index
	aliases      map[string]string
}

// New builds a parser over the bundled gazetteer.
func New() (*AddressParser, error) {
	regions, err := gazetteer.LoadRegions()
	if err != nil {
		return nil, fmt.Errorf("load gazetteer: %w", err)
	}
	return NewFromRegions(regions), nil
}

// NewFromRegions builds a parser over an explicit record set. The records
// must be well-formed and deduplicated; that is the loader's contract.
func NewFromRegions(regions []models.Region) *AddressParser {
	index := gazetteer.BuildIndex(regions)
	aliases := gazetteer.ProvinceAliases()

	// Names are inserted in sorted order so that colliding short forms
	// resolve identically on every construction.
	provinceTrie := trie.New[string]()
	for _, province := range sortedKeys(index.Provinces) {
		provinceTrie.Insert(province, province)
	}
	shorts := make([]string, 0, len(aliases))
	for short := range aliases {
		shorts = append(shorts, short)
	}
	sort.Strings(shorts)
	for _, short := range shorts {
		full := aliases[short]
		if _, ok := index.Provinces[full]; ok {
			provinceTrie.Insert(short, full)
		}
	}

	cityTrie := trie.New[string]()
	for _, city := range sortedKeys(index.Cities) {
		cityTrie.Insert(city, city)
		if short := strings.TrimSuffix(city, "市"); short != city && short != "" {
			cityTrie.Insert(short, city)
		}
	}

	districtTrie := trie.New[string]()
	for _, district := range sortedKeys(index.Districts) {
		districtTrie.Insert(district, district)
		for _, suffix := range gazetteer.DistrictSuffixes {
			short := strings.TrimSuffix(district, suffix)
			if short == district || short == "" {
				continue
			}
			// Single-rune short forms collide too easily to be useful.
			if utf8.RuneCountInString(short) < 2 {
				continue
			}
			districtTrie.Insert(short, district)
		}
	}

	return &AddressParser{
		provinceTrie: provinceTrie,
		cityTrie:     cityTrie,
		districtTrie: districtTrie,
		index:        index,
		aliases:      aliases,
	}
}

// Parse extracts the administrative levels from address. It never fails: an
// unrecognized address comes back with all levels empty and the trimmed
// input as Detail.
func (p *AddressParser) Parse(address string) models.ParsedAddress {
	address = strings.TrimSpace(address)

	var result models.ParsedAddress
	if address == "" {
		return result
	}
	remaining := address

	// Province stage.
	if _, province, n, ok := p.provinceTrie.FindLongestPrefix(remaining); ok {
		result.Province = province
		remaining = remaining[n:]

		// A municipality is its own city tier: take an optional district
		// and return without running the city stage at all.
		if p.index.IsMunicipality(province) {
			result.City = province
			if _, district, dn, ok := p.districtTrie.FindLongestPrefix(remaining); ok &&
				p.index.ValidateDistrict(province, district) {
				result.District = district
				remaining = remaining[dn:]
			}
			result.Detail = strings.TrimSpace(remaining)
			return result
		}
	}

	// City stage, unless the head of the text reads better as a district.
	_, city, cityLen, cityOK := p.cityTrie.FindLongestPrefix(remaining)
	_, district, distLen, distOK := p.districtTrie.FindLongestPrefix(remaining)

	if p.preferDistrict(result.Province, cityLen, cityOK, district, distLen, distOK) {
		result.District = district
		remaining = remaining[distLen:]
		// A unique owner fixes both remaining levels; several owners stay
		// unresolved rather than guessed.
		if owners := p.index.DistrictToCity[district]; len(owners) == 1 {
			result.Province = owners[0].Province
			result.City = owners[0].City
		}
	} else if cityOK {
		valid := result.Province == "" || p.index.CityToProvince[city] == result.Province
		if valid {
			result.City = city
			if result.Province == "" {
				result.Province = p.index.CityToProvince[city]
			}
			remaining = remaining[cityLen:]
		}
	}

	// District completion stage.
	if result.District == "" {
		if _, district, n, ok := p.districtTrie.FindLongestPrefix(remaining); ok {
			valid := true
			if result.City != "" {
				valid = p.index.ValidateDistrict(result.City, district) ||
					p.validateDistrictFlexible(result.City, district)
			}
			if valid {
				result.District = district
				remaining = remaining[n:]

				if result.City == "" {
					if owners := p.index.DistrictToCity[district]; len(owners) == 1 {
						result.Province = owners[0].Province
						result.City = owners[0].City
					} else if result.Province != "" {
						for _, owner := range owners {
							if owner.Province == result.Province {
								result.City = owner.City
								break
							}
						}
					}
				}
				if result.Province == "" && result.City != "" {
					result.Province = p.index.CityToProvince[result.City]
				}
			}
		}
	}

	// Municipality backfill: a resolved municipality implies its city.
	if result.Province != "" && result.City == "" && p.index.IsMunicipality(result.Province) {
		result.City = result.Province
	}

	result.Detail = strings.TrimSpace(remaining)
	return result
}

// preferDistrict decides whether the district interpretation of the text
// head outranks the city one. With a province already resolved the city is
// always tried first, in context.
func (p *AddressParser) preferDistrict(province string, cityLen int, cityOK bool, district string, distLen int, distOK bool) bool {
	if province != "" || !distOK {
		return false
	}
	if !cityOK {
		return true
	}
	if distLen > cityLen {
		return true
	}
	for _, suffix := range qualifiedDistrictSuffixes {
		if strings.HasSuffix(district, suffix) {
			return true
		}
	}
	return false
}

// validateDistrictFlexible accepts a matched district that abbreviates, or
// extends, a district registered under city. Best-effort only: it absorbs
// two-character short names the strict check rejects, and its policy can be
// tuned here without touching the stage sequencing.
func (p *AddressParser) validateDistrictFlexible(city, district string) bool {
	for registered := range p.index.CityDistricts[city] {
		if strings.HasPrefix(registered, district) {
			return true
		}
		if strings.HasPrefix(district, strings.TrimRight(registered, "区县市旗")) {
			return true
		}
	}
	return false
}

// ParseBatch parses each address independently, preserving order.
func (p *AddressParser) ParseBatch(addresses []string) []models.ParsedAddress {
	results := make([]models.ParsedAddress, len(addresses))
	for i, address := range addresses {
		results[i] = p.Parse(address)
	}
	return results
}

// IsValidAddress reports whether at least a province or a city can be
// resolved from address.
func (p *AddressParser) IsValidAddress(address string) bool {
	return p.Parse(address).IsValid()
}

// Normalize resolves short forms of province, city and district to their
// canonical names and concatenates them. Unknown names pass through
// unchanged. Unlike ParsedAddress.FullAddress, a municipality's repeated
// province/city name is NOT collapsed here.
func (p *AddressParser) Normalize(province, city, district string) string {
	var b strings.Builder
	b.WriteString(p.normalizeProvince(province))
	b.WriteString(p.normalizeCity(city))
	if district != "" {
		b.WriteString(p.normalizeDistrict(district))
	}
	return b.String()
}

func (p *AddressParser) normalizeProvince(province string) string {
	if full, ok := p.aliases[province]; ok {
		return full
	}
	if _, ok := p.index.Provinces[province]; ok {
		return province
	}
	if withSuffix := province + "省"; p.hasProvince(withSuffix) {
		return withSuffix
	}
	return province
}

func (p *AddressParser) normalizeCity(city string) string {
	if _, ok := p.index.Cities[city]; ok {
		return city
	}
	if withSuffix := city + "市"; p.hasCity(withSuffix) {
		return withSuffix
	}
	return city
}

func (p *AddressParser) normalizeDistrict(district string) string {
	if _, ok := p.index.Districts[district]; ok {
		return district
	}
	for _, suffix := range []string{"区", "县", "市"} {
		if withSuffix := district + suffix; p.hasDistrict(withSuffix) {
			return withSuffix
		}
	}
	return district
}

func (p *AddressParser) hasProvince(name string) bool {
	_, ok := p.index.Provinces[name]
	return ok
}

func (p *AddressParser) hasCity(name string) bool {
	_, ok := p.index.Cities[name]
	return ok
}

func (p *AddressParser) hasDistrict(name string) bool {
	_, ok := p.index.Districts[name]
	return ok
}

// Provinces returns every canonical province name, sorted.
func (p *AddressParser) Provinces() []string {
	return sortedKeys(p.index.Provinces)
}

// CitiesOfProvince returns the canonical city names under province, sorted.
// The input may be a short form.
func (p *AddressParser) CitiesOfProvince(province string) []string {
	return sortedKeys(p.index.ProvinceCities[p.normalizeProvince(province)])
}

// DistrictsOfCity returns the canonical district names under city, sorted.
// The input may be a short form.
func (p *AddressParser) DistrictsOfCity(city string) []string {
	return sortedKeys(p.index.CityDistricts[p.normalizeCity(city)])
}

// IsKnownProvince reports whether province names a registered province,
// accepting short forms.
func (p *AddressParser) IsKnownProvince(province string) bool {
	return p.hasProvince(p.normalizeProvince(province))
}

// IsKnownCity reports whether city names a registered city, accepting
// short forms.
func (p *AddressParser) IsKnownCity(city string) bool {
	return p.hasCity(p.normalizeCity(city))
}

// GazetteerVersion identifies the dataset the parser was built from.
func (p *AddressParser) GazetteerVersion() string {
	return gazetteer.Version
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
