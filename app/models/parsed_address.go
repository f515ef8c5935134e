package models

// ParsedAddress is the result of parsing one address string. An empty field
// means the corresponding level could not be resolved. Detail holds the
// unconsumed remainder of the input, right-trimmed.
type ParsedAddress struct {
	Province string `json:"province,omitempty" bson:"province,omitempty"`
	City     string `json:"city,omitempty" bson:"city,omitempty"`
	District string `json:"district,omitempty" bson:"district,omitempty"`
	Detail   string `json:"detail" bson:"detail"`
}

func (pa ParsedAddress) HasProvince() bool { return pa.Province != "" }
func (pa ParsedAddress) HasCity() bool     { return pa.City != "" }
func (pa ParsedAddress) HasDistrict() bool { return pa.District != "" }

// IsComplete reports whether all three administrative levels were resolved.
func (pa ParsedAddress) IsComplete() bool {
	return pa.Province != "" && pa.City != "" && pa.District != ""
}

// IsValid reports whether at least a province or a city was resolved.
func (pa ParsedAddress) IsValid() bool {
	return pa.Province != "" || pa.City != ""
}

// FullAddress assembles the resolved levels plus the detail into one display
// string. A municipality's city equals its province, and unlike
// parser.Normalize this assembler skips the repeated name.
func (pa ParsedAddress) FullAddress() string {
	var b []byte
	b = append(b, pa.Province...)
	if pa.City != "" && pa.City != pa.Province {
		b = append(b, pa.City...)
	}
	b = append(b, pa.District...)
	b = append(b, pa.Detail...)
	return string(b)
}
