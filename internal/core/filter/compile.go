package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/core/domain"
)

// validColumns is the allow-list of panel columns a filter field may target.
// Anything outside it compiles to nothing.
var validColumns = map[string]struct{}{
	"age": {}, "age_group": {}, "gender": {}, "residence": {}, "occupation": {},
	"marital_status": {}, "phone_brand": {}, "car_brand": {},
	"smoking_experience": {}, "drinking_experience": {}, "electronic_devices": {},
	"cigarette_brands": {}, "e_cigarette": {},
}

// fuzzyColumns match by substring rather than equality.
var fuzzyColumns = map[string]struct{}{
	"residence": {}, "occupation": {}, "phone_brand": {}, "car_brand": {},
}

// surveyListFields are the list-valued survey columns; filtering on one means
// "the panel answered this section".
var surveyListFields = []string{
	"smoking_experience", "drinking_experience", "electronic_devices",
	"cigarette_brands", "e_cigarette",
}

// negativeResponses are canonical "never did this" answers. A filter on the
// field additionally excludes panels that gave them.
var negativeResponses = map[string]string{
	"smoking_experience":  "담배를 피워본 적이 없다",
	"drinking_experience": "최근 1년 이내 술을 마시지 않음",
}

// surveyDocumentFields are the nested JSONB survey categories, in compile
// order.
var surveyDocumentFields = []string{
	"survey_health", "survey_consumption", "survey_environment",
	"survey_digital", "survey_lifestyle",
}

var smokingVocabulary = []string{"흡연", "담배", "시가", "파이프", "궐련"}
var drinkingVocabulary = []string{"음주", "술", "알코올", "주류", "음료"}

// SemanticFields are the filter fields whose matching is vector-assisted
// rather than purely structural. A filter touching none of them is "simple"
// and its results count as exact matches.
var SemanticFields = []string{
	"lifestyle_tags", "search_keywords",
	"survey_health", "survey_consumption",
	"survey_lifestyle", "survey_digital", "survey_environment",
}

// IsSimple reports whether the filter uses no semantic fields.
func IsSimple(f domain.Filter) bool {
	for _, field := range SemanticFields {
		if value, ok := f.Fields[field]; ok && value != nil {
			return false
		}
	}
	return true
}

// Compile turns a normalized filter into an ordered predicate set. The input
// is not mutated and compilation is idempotent: the same filter always yields
// the same predicates in the same order.
func Compile(f domain.Filter) []domain.Predicate {
	fields := resolveAliases(f.Fields)

	var preds []domain.Predicate
	preds = append(preds, compileSurveyListFields(fields)...)
	preds = append(preds, compileSurveyDocuments(fields)...)
	preds = append(preds, compileColumns(fields)...)
	return preds
}

// resolveAliases collapses region into residence (overwriting) and brands
// into phone_brand (only when phone_brand is unset). Returns a copy.
func resolveAliases(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}

	if region, ok := out["region"]; ok && region != nil {
		out["residence"] = region
		delete(out, "region")
	}
	if brands, ok := out["brands"]; ok && brands != nil {
		if existing, set := out["phone_brand"]; !set || existing == nil {
			out["phone_brand"] = brands
		}
		delete(out, "brands")
	}
	return out
}

// compileSurveyListFields emits existence predicates for the list-valued
// survey columns, either because the field is filtered literally or because
// lifestyle_tags carries smoking/drinking vocabulary.
func compileSurveyListFields(fields map[string]any) []domain.Predicate {
	implied := impliedSurveyFields(fields)

	var preds []domain.Predicate
	for _, field := range surveyListFields {
		value, present := fields[field]
		_, triggered := implied[field]
		if (!present || value == nil) && !triggered {
			continue
		}
		preds = append(preds, domain.Predicate{Field: field, Op: domain.OpNonEmpty})
		if negative, ok := negativeResponses[field]; ok {
			preds = append(preds, domain.Predicate{
				Field: field,
				Op:    domain.OpExcludesValue,
				Args:  []any{negative},
			})
		}
	}
	return preds
}

func impliedSurveyFields(fields map[string]any) map[string]struct{} {
	implied := map[string]struct{}{}
	tagsValue, ok := fields["lifestyle_tags"]
	if !ok || tagsValue == nil {
		return implied
	}

	tags, isList := toStringList(tagsValue)
	if !isList {
		tags = []string{fmt.Sprint(tagsValue)}
	}
	for _, tag := range tags {
		for _, kw := range smokingVocabulary {
			if containsFold(tag, kw) {
				implied["smoking_experience"] = struct{}{}
			}
		}
		for _, kw := range drinkingVocabulary {
			if containsFold(tag, kw) {
				implied["drinking_experience"] = struct{}{}
			}
		}
	}
	return implied
}

// compileSurveyDocuments emits substring predicates against the nested JSONB
// survey answers. Question keys are compiled in sorted order so compilation
// stays deterministic.
func compileSurveyDocuments(fields map[string]any) []domain.Predicate {
	var preds []domain.Predicate
	for _, field := range surveyDocumentFields {
		survey, ok := fields[field].(map[string]any)
		if !ok {
			continue
		}

		questionKeys := make([]string, 0, len(survey))
		for key := range survey {
			questionKeys = append(questionKeys, key)
		}
		sort.Strings(questionKeys)

		for _, questionKey := range questionKeys {
			answer := survey[questionKey]
			if answer == nil {
				continue
			}
			preds = append(preds, compileSurveyAnswer(field, questionKey, answer)...)
		}
	}
	return preds
}

func compileSurveyAnswer(field, questionKey string, answer any) []domain.Predicate {
	if form, ok := answer.(map[string]any); ok {
		if excluded, ok := form["exclude"]; ok {
			return []domain.Predicate{{
				Field: field,
				Key:   questionKey,
				Op:    domain.OpJSONNotLike,
				Args:  []any{fmt.Sprint(excluded)},
			}}
		}
		if included, ok := form["include"]; ok {
			if values, isList := toStringList(included); isList {
				if len(values) == 0 {
					return nil
				}
				args := make([]any, len(values))
				for i, v := range values {
					args[i] = v
				}
				return []domain.Predicate{{
					Field: field,
					Key:   questionKey,
					Op:    domain.OpJSONLike,
					Args:  args,
				}}
			}
			return []domain.Predicate{{
				Field: field,
				Key:   questionKey,
				Op:    domain.OpJSONLike,
				Args:  []any{fmt.Sprint(included)},
			}}
		}
		return nil
	}

	return []domain.Predicate{{
		Field: field,
		Key:   questionKey,
		Op:    domain.OpJSONLike,
		Args:  []any{fmt.Sprint(answer)},
	}}
}

// anySentinel degrades a fuzzy list match to "the field is populated".
const anySentinel = "any"

// compileColumns handles the allow-listed scalar and categorical columns.
// Unknown fields are dropped silently. Fields are compiled in sorted order.
func compileColumns(fields map[string]any) []domain.Predicate {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var preds []domain.Predicate
	for _, key := range keys {
		if _, ok := validColumns[key]; !ok {
			continue
		}
		value := fields[key]
		if value == nil {
			continue
		}

		_, fuzzy := fuzzyColumns[key]
		if values, isList := toStringList(value); isList {
			switch {
			case fuzzy && len(values) == 1 && values[0] == anySentinel:
				preds = append(preds, domain.Predicate{Field: key, Op: domain.OpNonEmpty})
			case fuzzy:
				args := make([]any, len(values))
				for i, v := range values {
					args[i] = v
				}
				preds = append(preds, domain.Predicate{Field: key, Op: domain.OpLikeAny, Args: args})
			default:
				preds = append(preds, domain.Predicate{Field: key, Op: domain.OpIn, Args: rawList(value, values)})
			}
			continue
		}

		if fuzzy {
			preds = append(preds, domain.Predicate{
				Field: key,
				Op:    domain.OpLikeAny,
				Args:  []any{fmt.Sprint(value)},
			})
			continue
		}
		preds = append(preds, domain.Predicate{Field: key, Op: domain.OpEquals, Args: []any{value}})
	}
	return preds
}

// rawList preserves the original element types for IN operands (ages arrive
// as numbers, not strings).
func rawList(value any, fallback []string) []any {
	if items, ok := value.([]any); ok {
		return items
	}
	out := make([]any, len(fallback))
	for i, v := range fallback {
		out[i] = v
	}
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
