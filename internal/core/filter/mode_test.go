package filter

import (
	"reflect"
	"testing"

	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/core/domain"
)

func TestNormalizeStrictKeepsFieldsVerbatim(t *testing.T) {
	raw := map[string]any{
		"mode":      "strict",
		"limit":     50,
		"gender":    "남성",
		"age_group": "20대",
		"residence": "서울",
		"sort_by":   "match_score",
		"car_brand": nil,
	}

	f := Normalize(raw, domain.ModeStrict)

	if f.Policy.Mode != domain.ModeStrict {
		t.Fatalf("expected strict mode, got %q", f.Policy.Mode)
	}
	if f.Policy.MatchStrategy != "all" || !f.Policy.ExactMatch || f.Policy.AllowNullFields {
		t.Fatalf("unexpected strict policy: %+v", f.Policy)
	}
	if f.Policy.Limit != 50 {
		t.Fatalf("expected limit 50, got %d", f.Policy.Limit)
	}
	if f.Fields["gender"] != "MALE" {
		t.Fatalf("expected gender alias MALE, got %v", f.Fields["gender"])
	}
	if f.Fields["age_group"] != "20대" {
		t.Fatalf("strict mode must not widen age_group, got %v", f.Fields["age_group"])
	}
	for _, key := range []string{"mode", "limit", "sort_by", "car_brand"} {
		if _, ok := f.Fields[key]; ok {
			t.Fatalf("expected %q stripped from fields", key)
		}
	}
}

func TestNormalizeFlexibleWidensAgeGroups(t *testing.T) {
	f := Normalize(map[string]any{"age_group": "20대"}, domain.ModeFlexible)

	want := []string{"10대 후반", "20대", "30대 초반"}
	if !reflect.DeepEqual(f.Fields["age_group"], want) {
		t.Fatalf("expected %v, got %v", want, f.Fields["age_group"])
	}
	if f.Policy.MatchStrategy != "best_match" || f.Policy.MinimumMatchRatio != 0.6 {
		t.Fatalf("unexpected flexible policy: %+v", f.Policy)
	}
}

func TestNormalizeFlexibleDeduplicatesAgeGroupList(t *testing.T) {
	f := Normalize(map[string]any{"age_group": []any{"20대", "20대"}}, domain.ModeFlexible)

	want := []string{"10대 후반", "20대", "30대 초반"}
	if !reflect.DeepEqual(f.Fields["age_group"], want) {
		t.Fatalf("expected deduplicated %v, got %v", want, f.Fields["age_group"])
	}
}

func TestNormalizeFlexibleKeepsUnknownAgeGroup(t *testing.T) {
	f := Normalize(map[string]any{"age_group": "70대"}, domain.ModeFlexible)

	if !reflect.DeepEqual(f.Fields["age_group"], []string{"70대"}) {
		t.Fatalf("expected unknown age group kept as-is, got %v", f.Fields["age_group"])
	}
}

func TestNormalizeFlexibleWidensResidence(t *testing.T) {
	f := Normalize(map[string]any{"residence": "서울"}, domain.ModeFlexible)
	if !reflect.DeepEqual(f.Fields["residence"], []string{"서울", "경기"}) {
		t.Fatalf("expected widened residence, got %v", f.Fields["residence"])
	}

	f = Normalize(map[string]any{"residence": "제주"}, domain.ModeFlexible)
	if !reflect.DeepEqual(f.Fields["residence"], []string{"제주"}) {
		t.Fatalf("expected unknown residence kept as-is, got %v", f.Fields["residence"])
	}
}

func TestNormalizeFlexibleWidensIncomeBounds(t *testing.T) {
	f := Normalize(map[string]any{"income_min": 3000, "income_max": 5000}, domain.ModeFlexible)

	if f.Fields["income_min"] != 2700 {
		t.Fatalf("expected income_min 2700, got %v", f.Fields["income_min"])
	}
	if f.Fields["income_max"] != 5500 {
		t.Fatalf("expected income_max 5500, got %v", f.Fields["income_max"])
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	raw := map[string]any{"age_group": "30대", "residence": "부산"}
	Normalize(raw, domain.ModeFlexible)

	if raw["age_group"] != "30대" || raw["residence"] != "부산" {
		t.Fatalf("input map was mutated: %v", raw)
	}
}

func TestFromRawStripsPolicyKeysWithoutPolicy(t *testing.T) {
	f := FromRaw(map[string]any{
		"mode":      "strict",
		"limit":     10,
		"gender":    "MALE",
		"residence": nil,
	})

	if f.Policy.Mode != "" || f.Policy.Limit != 0 {
		t.Fatalf("expected zero policy, got %+v", f.Policy)
	}
	if len(f.Fields) != 1 || f.Fields["gender"] != "MALE" {
		t.Fatalf("unexpected fields: %v", f.Fields)
	}
}
