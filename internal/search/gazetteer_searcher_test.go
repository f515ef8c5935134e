package search

import (
	"testing"

	"github.com/cn-address-parser/app/models"
)

func TestFilterLevel(t *testing.T) {
	if got := FilterLevel(models.LevelDistrict); got != "level = 3" {
		t.Errorf("FilterLevel = %q", got)
	}
}

func TestFilterAncestry(t *testing.T) {
	cases := []struct {
		province, city string
		want           string
	}{
		{"广东省", "深圳市", `province = "广东省" AND city = "深圳市"`},
		{"广东省", "", `province = "广东省"`},
		{"", "深圳市", `city = "深圳市"`},
		{"", "", ""},
	}
	for _, tc := range cases {
		if got := FilterAncestry(tc.province, tc.city); got != tc.want {
			t.Errorf("FilterAncestry(%q, %q) = %q, want %q", tc.province, tc.city, got, tc.want)
		}
	}
}

func TestUnitsFromHits(t *testing.T) {
	hits := []interface{}{
		map[string]interface{}{
			"id":       "440305",
			"level":    float64(3),
			"name":     "南山区",
			"province": "广东省",
			"city":     "深圳市",
		},
		"not a document",
		map[string]interface{}{
			"id":    "44",
			"level": float64(1),
			"name":  "广东省",
		},
	}

	units := unitsFromHits(hits)
	if len(units) != 2 {
		t.Fatalf("len = %d, want 2", len(units))
	}
	want := models.AdminUnit{ID: "440305", Level: models.LevelDistrict, Name: "南山区", Province: "广东省", City: "深圳市"}
	if units[0] != want {
		t.Errorf("units[0] = %+v, want %+v", units[0], want)
	}
	if units[1].Level != models.LevelProvince || units[1].Name != "广东省" {
		t.Errorf("units[1] = %+v", units[1])
	}
}
