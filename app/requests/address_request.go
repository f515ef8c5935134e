package requests

// ParseAddressRequest is the body of POST /v1/addresses/parse.
type ParseAddressRequest struct {
	Address string `json:"address" binding:"required"`
}

// BatchParseRequest is the body of POST /v1/addresses/parse-batch and
// POST /v1/addresses/jobs.
type BatchParseRequest struct {
	Addresses []string `json:"addresses" binding:"required,min=1"`
}

// NormalizeRequest carries the three levels to canonicalize. All fields
// are optional; empty levels stay empty.
type NormalizeRequest struct {
	Province string `json:"province"`
	City     string `json:"city"`
	District string `json:"district"`
}

// ValidateRequest is the body of POST /v1/addresses/validate.
type ValidateRequest struct {
	Address string `json:"address" binding:"required"`
}

// SearchUnitsRequest is the body of POST /v1/admin/search.
type SearchUnitsRequest struct {
	Query string `json:"query" binding:"required"`
	Level int    `json:"level,omitempty"` // 1 province, 2 city, 3 district; 0 for all
	Limit int64  `json:"limit,omitempty"`
}

// InvalidateCacheRequest drops cache entries older than the given
// gazetteer version; empty clears everything.
type InvalidateCacheRequest struct {
	GazetteerVersion string `json:"gazetteer_version"`
}
