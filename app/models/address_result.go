package models

// AddressResult wraps one parse outcome together with the metadata the
// service layer attaches for caching and API responses.
type AddressResult struct {
	Raw              string        `json:"raw" bson:"raw"`                             // original input
	Cleaned          string        `json:"cleaned,omitempty" bson:"cleaned,omitempty"` // width-folded, trimmed input fed to the parser
	Parsed           ParsedAddress `json:"parsed" bson:"parsed"`
	FullAddress      string        `json:"full_address" bson:"full_address"`
	Valid            bool          `json:"valid" bson:"valid"`
	RawFingerprint   string        `json:"raw_fingerprint" bson:"raw_fingerprint"`
	GazetteerVersion string        `json:"gazetteer_version" bson:"gazetteer_version"`
}
