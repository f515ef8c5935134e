package parser

import (
	"fmt"
	"sync"

	"github.com/cn-address-parser/app/models"
)

var (
	defaultParser *AddressParser
	defaultOnce   sync.Once
)

// Default returns the shared process-wide parser, built from the bundled
// gazetteer on first use. Construction is expensive; reads are cheap and
// lock-free, so the instance is meant to live for the whole process.
func Default() *AddressParser {
	defaultOnce.Do(func() {
		p, err := New()
		if err != nil {
			// The dataset is compiled in; failing to load it is a build
			// defect, not a runtime condition.
			panic(fmt.Sprintf("parser: bundled gazetteer unusable: %v", err))
		}
		defaultParser = p
	})
	return defaultParser
}

// Parse resolves address with the shared parser.
func Parse(address string) models.ParsedAddress {
	return Default().Parse(address)
}

// Normalize resolves short forms with the shared parser.
func Normalize(province, city, district string) string {
	return Default().Normalize(province, city, district)
}
