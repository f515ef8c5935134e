package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AddressCache is the persistent cache document stored in MongoDB, keyed by
// the fingerprint of the cleaned input.
type AddressCache struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	RawFingerprint   string             `bson:"raw_fingerprint" json:"raw_fingerprint"`
	RawAddress       string             `bson:"raw_address" json:"raw_address"`
	Result           AddressResult      `bson:"result" json:"result"`
	GazetteerVersion string             `bson:"gazetteer_version" json:"gazetteer_version"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	LastAccessed     time.Time          `bson:"last_accessed" json:"last_accessed"`
	AccessCount      int                `bson:"access_count" json:"access_count"`
}

// NewAddressCache builds a cache document for a freshly parsed address.
func NewAddressCache(result AddressResult) *AddressCache {
	now := time.Now()
	return &AddressCache{
		RawFingerprint:   result.RawFingerprint,
		RawAddress:       result.Raw,
		Result:           result,
		GazetteerVersion: result.GazetteerVersion,
		CreatedAt:        now,
		LastAccessed:     now,
		AccessCount:      1,
	}
}

// IsExpired reports whether the document is older than the given TTL.
func (ac *AddressCache) IsExpired(ttl time.Duration) bool {
	return ttl > 0 && time.Since(ac.CreatedAt) > ttl
}
