package models

// Region is a single administrative division record: a province-level unit,
// a city-level unit and an optional county-level unit. District is empty for
// prefecture-level cities that have no county-level subdivisions.
type Region struct {
	Province string `json:"province" csv:"province"`
	City     string `json:"city" csv:"city"`
	District string `json:"district,omitempty" csv:"district"`
}

// FullName returns the concatenated canonical name of the record.
func (r Region) FullName() string {
	return r.Province + r.City + r.District
}

// HasDistrict reports whether the record carries a county-level unit.
func (r Region) HasDistrict() bool {
	return r.District != ""
}
