// Package filter implements the filter-normalization and predicate-compilation
// engine: raw filter maps from the query interpreter or the client are
// normalized under a search mode, then compiled into a store-agnostic
// predicate set the record store renders into its own query language.
package filter

import (
	"math"

	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/core/domain"
)

// policyKeys are matching-policy flags mixed into raw filter maps. They are
// split into Filter.Policy and never reach the compiler.
var policyKeys = map[string]struct{}{
	"mode":                 {},
	"match_strategy":       {},
	"allow_null_fields":    {},
	"exact_match":          {},
	"minimum_match_ratio":  {},
	"sort_by":              {},
	"limit":                {},
	"similarity_threshold": {},
}

var genderAliases = map[string]string{
	"남성": "MALE",
	"남":  "MALE",
	"여성": "FEMALE",
	"여":  "FEMALE",
}

// ageGroupAdjacency widens a bracket to itself plus the neighboring halves.
var ageGroupAdjacency = map[string][]string{
	"10대": {"10대", "20대 초반"},
	"20대": {"10대 후반", "20대", "30대 초반"},
	"30대": {"20대 후반", "30대", "40대 초반"},
	"40대": {"30대 후반", "40대", "50대 초반"},
	"50대": {"40대 후반", "50대", "60대 초반"},
	"60대": {"50대 후반", "60대", "70대 초반"},
}

// residenceAdjacency widens a region to itself plus its commuting neighbors.
var residenceAdjacency = map[string][]string{
	"서울": {"서울", "경기"},
	"경기": {"서울", "경기", "인천"},
	"부산": {"부산", "경남", "울산"},
	"대구": {"대구", "경북"},
	"광주": {"광주", "전남"},
	"대전": {"대전", "세종", "충남"},
	"인천": {"인천", "경기"},
	"울산": {"울산", "부산", "경남"},
	"세종": {"세종", "대전", "충남"},
}

// Normalize applies the search-mode policy to a raw filter map. The input map
// is not mutated. Strict mode passes field values through unmodified; flexible
// mode widens age groups, residences, and income bounds.
func Normalize(raw map[string]any, mode domain.SearchMode) domain.Filter {
	fields := make(map[string]any, len(raw))
	for key, value := range raw {
		if _, ok := policyKeys[key]; ok {
			continue
		}
		if value == nil {
			continue
		}
		fields[key] = value
	}

	if gender, ok := fields["gender"].(string); ok {
		if canonical, ok := genderAliases[gender]; ok {
			fields["gender"] = canonical
		}
	}

	limit := intValue(raw["limit"])

	if mode == domain.ModeStrict {
		return domain.Filter{
			Policy: domain.Policy{
				Mode:            domain.ModeStrict,
				MatchStrategy:   "all",
				AllowNullFields: false,
				ExactMatch:      true,
				Limit:           limit,
			},
			Fields: fields,
		}
	}

	if ageGroup, ok := fields["age_group"]; ok {
		fields["age_group"] = expandAgeGroup(ageGroup)
	}
	if residence, ok := fields["residence"].(string); ok {
		fields["residence"] = expandResidence(residence)
	}
	if incomeMin, ok := floatValue(fields["income_min"]); ok {
		fields["income_min"] = int(math.Floor(incomeMin * 0.9))
	}
	if incomeMax, ok := floatValue(fields["income_max"]); ok {
		fields["income_max"] = int(math.Floor(incomeMax * 1.1))
	}

	return domain.Filter{
		Policy: domain.Policy{
			Mode:              domain.ModeFlexible,
			MatchStrategy:     "best_match",
			MinimumMatchRatio: 0.6,
			AllowNullFields:   true,
			ExactMatch:        false,
			SortBy:            "match_score",
			Limit:             limit,
		},
		Fields: fields,
	}
}

// FromRaw builds a filter from a raw map without applying any mode policy.
// Refinement filters compile this way: policy keys and nil values are
// stripped, values stay as given.
func FromRaw(raw map[string]any) domain.Filter {
	fields := make(map[string]any, len(raw))
	for key, value := range raw {
		if _, ok := policyKeys[key]; ok {
			continue
		}
		if value == nil {
			continue
		}
		fields[key] = value
	}
	return domain.Filter{Fields: fields}
}

func expandAgeGroup(value any) []string {
	groups, isList := toStringList(value)
	if !isList {
		if s, ok := value.(string); ok {
			groups = []string{s}
		} else {
			return nil
		}
	}

	var expanded []string
	seen := map[string]struct{}{}
	for _, group := range groups {
		widened, ok := ageGroupAdjacency[group]
		if !ok {
			widened = []string{group}
		}
		for _, g := range widened {
			if _, dup := seen[g]; dup {
				continue
			}
			seen[g] = struct{}{}
			expanded = append(expanded, g)
		}
	}
	return expanded
}

func expandResidence(residence string) []string {
	if widened, ok := residenceAdjacency[residence]; ok {
		return widened
	}
	return []string{residence}
}

func toStringList(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func floatValue(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func intValue(value any) int {
	f, ok := floatValue(value)
	if !ok {
		return 0
	}
	return int(f)
}
