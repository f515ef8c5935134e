package services

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/cn-address-parser/app/config"
	"github.com/cn-address-parser/internal/parser"
)

func testAddressService(t *testing.T, cache ICacheService) *AddressService {
	t.Helper()
	p, err := parser.New()
	if err != nil {
		t.Fatalf("parser.New: %v", err)
	}
	return NewAddressService(p, cache, zap.NewNop())
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("广东省深圳市南山区科技园路1号")
	b := Fingerprint("广东省深圳市南山区科技园路1号")
	c := Fingerprint("广东省深圳市福田区")

	if a != b {
		t.Error("fingerprint is not deterministic")
	}
	if a == c {
		t.Error("distinct inputs produced the same fingerprint")
	}
	if !strings.HasPrefix(a, "sha256:") {
		t.Errorf("fingerprint %q lacks the sha256: prefix", a)
	}
	// sha256 hex digest is 64 characters.
	if len(a) != len("sha256:")+64 {
		t.Errorf("fingerprint length = %d, want %d", len(a), len("sha256:")+64)
	}
}

func TestParseAddressService(t *testing.T) {
	svc := testAddressService(t, nil)
	ctx := context.Background()

	result, err := svc.ParseAddress(ctx, "广东省深圳市南山区科技园路1号")
	if err != nil {
		t.Fatalf("ParseAddress: %v", err)
	}
	if result.Parsed.Province != "广东省" || result.Parsed.City != "深圳市" || result.Parsed.District != "南山区" {
		t.Errorf("parsed = %+v", result.Parsed)
	}
	if result.Parsed.Detail != "科技园路1号" {
		t.Errorf("Detail = %q, want 科技园路1号", result.Parsed.Detail)
	}
	if !result.Valid {
		t.Error("expected Valid = true")
	}
	if result.GazetteerVersion != svc.GazetteerVersion() {
		t.Errorf("GazetteerVersion = %q", result.GazetteerVersion)
	}
	if result.RawFingerprint == "" {
		t.Error("RawFingerprint is empty")
	}

	if _, err := svc.ParseAddress(ctx, ""); err != ErrEmptyAddress {
		t.Errorf("empty input: err = %v, want ErrEmptyAddress", err)
	}
}

func TestParseAddressCleansInput(t *testing.T) {
	svc := testAddressService(t, nil)

	// Fullwidth digits and an interior separator are folded away before
	// matching, so the raw form survives but Cleaned records the fed text.
	result, err := svc.ParseAddress(context.Background(), "广东省，深圳市 南山区科技园路１号")
	if err != nil {
		t.Fatalf("ParseAddress: %v", err)
	}
	if result.Parsed.Province != "广东省" || result.Parsed.City != "深圳市" || result.Parsed.District != "南山区" {
		t.Errorf("parsed = %+v", result.Parsed)
	}
	if result.Cleaned != "广东省深圳市南山区科技园路1号" {
		t.Errorf("Cleaned = %q", result.Cleaned)
	}
	if result.Raw != "广东省，深圳市 南山区科技园路１号" {
		t.Errorf("Raw = %q, want the original input", result.Raw)
	}
}

func TestParseAddressFoldsWhenCleaningDisabled(t *testing.T) {
	saved := config.C.CleanInput
	config.C.CleanInput = false
	defer func() { config.C.CleanInput = saved }()

	svc := testAddressService(t, nil)

	// Fullwidth forms are still folded and the outer whitespace trimmed,
	// but interior spacing survives into the detail.
	result, err := svc.ParseAddress(context.Background(), " 广东省深圳市南山区科技园路１号 A座 ")
	if err != nil {
		t.Fatalf("ParseAddress: %v", err)
	}
	if result.Cleaned != "广东省深圳市南山区科技园路1号 A座" {
		t.Errorf("Cleaned = %q", result.Cleaned)
	}
	if result.Parsed.District != "南山区" {
		t.Errorf("District = %q", result.Parsed.District)
	}
	if result.Parsed.Detail != "科技园路1号 A座" {
		t.Errorf("Detail = %q", result.Parsed.Detail)
	}
}

func TestParseAddressUsesCache(t *testing.T) {
	cache := NewCacheService(0)
	svc := testAddressService(t, cache)
	ctx := context.Background()

	first, err := svc.ParseAddress(ctx, "北京市朝阳区望京街道")
	if err != nil {
		t.Fatalf("first ParseAddress: %v", err)
	}
	second, err := svc.ParseAddress(ctx, "北京市朝阳区望京街道")
	if err != nil {
		t.Fatalf("second ParseAddress: %v", err)
	}
	if first != second {
		t.Error("second parse did not return the cached result")
	}

	stats, _ := cache.GetStats(ctx)
	if stats.TotalHits != 1 {
		t.Errorf("TotalHits = %d, want 1", stats.TotalHits)
	}
}

func TestParseAddressSkipsStaleCacheEntry(t *testing.T) {
	cache := NewCacheService(0)
	svc := testAddressService(t, cache)
	ctx := context.Background()

	raw := "上海市浦东新区世纪大道100号"
	stale := cachedResult(raw, "pca-2019")
	// The service cleans input before fingerprinting; this input is
	// already clean so the keys line up.
	cache.Set(ctx, Fingerprint(raw), stale)

	result, err := svc.ParseAddress(ctx, raw)
	if err != nil {
		t.Fatalf("ParseAddress: %v", err)
	}
	if result == stale {
		t.Fatal("stale gazetteer entry was served from cache")
	}
	if result.GazetteerVersion != svc.GazetteerVersion() {
		t.Errorf("GazetteerVersion = %q", result.GazetteerVersion)
	}
	if result.Parsed.Province != "上海市" {
		t.Errorf("Province = %q", result.Parsed.Province)
	}
}

func TestParseBatchService(t *testing.T) {
	svc := testAddressService(t, nil)
	ctx := context.Background()

	results, err := svc.ParseBatch(ctx, []string{
		"广东省深圳市南山区",
		"",
		"北京朝阳",
	})
	if err != nil {
		t.Fatalf("ParseBatch: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	if results[0].Parsed.City != "深圳市" {
		t.Errorf("results[0].City = %q", results[0].Parsed.City)
	}
	if results[1].Valid || results[1].Parsed.Province != "" {
		t.Errorf("blank entry produced %+v", results[1])
	}
	if results[1].GazetteerVersion != svc.GazetteerVersion() {
		t.Error("blank entry is missing the gazetteer version")
	}
	if results[2].Parsed.Province != "北京市" || results[2].Parsed.District != "朝阳区" {
		t.Errorf("results[2] = %+v", results[2].Parsed)
	}
}

func TestParseBatchLimit(t *testing.T) {
	svc := testAddressService(t, nil)

	oversized := make([]string, config.C.Batch.MaxSync+1)
	for i := range oversized {
		oversized[i] = "北京市"
	}
	if _, err := svc.ParseBatch(context.Background(), oversized); err == nil {
		t.Error("expected an error for a batch over the sync limit")
	}
}

func TestServiceLookups(t *testing.T) {
	svc := testAddressService(t, nil)

	if got := svc.Normalize("广东", "深圳", "南山"); got != "广东省深圳市南山区" {
		t.Errorf("Normalize = %q", got)
	}
	if !svc.KnownProvince("广东") {
		t.Error("KnownProvince(广东) = false")
	}
	if svc.KnownProvince("亚特兰蒂斯") {
		t.Error("KnownProvince accepted an unknown name")
	}
	if !svc.KnownCity("东莞") {
		t.Error("KnownCity(东莞) = false")
	}
	if len(svc.Provinces()) == 0 {
		t.Error("Provinces() is empty")
	}
	if cities := svc.CitiesOfProvince("广东省"); !containsString(cities, "深圳市") {
		t.Errorf("CitiesOfProvince(广东省) = %v", cities)
	}
	if districts := svc.DistrictsOfCity("东莞市"); len(districts) != 0 {
		t.Errorf("DistrictsOfCity(东莞市) = %v, want empty", districts)
	}
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
