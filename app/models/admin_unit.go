package models

// Administrative levels used by the search index.
const (
	LevelProvince = 1
	LevelCity     = 2
	LevelDistrict = 3
)

// AdminUnit is a flattened administrative unit document as stored in the
// Meilisearch index. Province and City carry the ancestry so that search
// results can be filtered by context.
type AdminUnit struct {
	ID       string `json:"id"`
	Level    int    `json:"level"`
	Name     string `json:"name"`
	Province string `json:"province,omitempty"`
	City     string `json:"city,omitempty"`
}

// Path returns the ancestry names from province down to the unit itself.
// A municipality's city repeats its province and appears once.
func (u AdminUnit) Path() []string {
	var path []string
	if u.Province != "" && u.Province != u.Name {
		path = append(path, u.Province)
	}
	if u.City != "" && u.City != u.Name && u.City != u.Province {
		path = append(path, u.City)
	}
	return append(path, u.Name)
}
