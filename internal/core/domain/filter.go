package domain

// SearchMode selects the matching policy applied to a raw filter.
type SearchMode string

const (
	ModeStrict   SearchMode = "strict"
	ModeFlexible SearchMode = "flexible"
)

// ParseSearchMode mirrors the API contract: anything that is not exactly
// "strict" means best-match semantics.
func ParseSearchMode(s string) SearchMode {
	if s == string(ModeStrict) {
		return ModeStrict
	}
	return ModeFlexible
}

// Policy carries the matching-policy flags a SearchMode attaches to a filter.
// These are never compiled into predicates.
type Policy struct {
	Mode              SearchMode `json:"mode"`
	MatchStrategy     string     `json:"match_strategy"`
	AllowNullFields   bool       `json:"allow_null_fields"`
	ExactMatch        bool       `json:"exact_match"`
	MinimumMatchRatio float64    `json:"minimum_match_ratio,omitempty"`
	SortBy            string     `json:"sort_by,omitempty"`
	Limit             int        `json:"limit,omitempty"`
}

// Filter is a normalized filter specification: policy flags split from the
// domain fields they used to share a map with.
type Filter struct {
	Policy Policy
	Fields map[string]any
}

// Map flattens the filter back into the single-map wire shape used when
// echoing applied filters to the caller.
func (f Filter) Map() map[string]any {
	out := make(map[string]any, len(f.Fields)+8)
	for k, v := range f.Fields {
		out[k] = v
	}
	out["mode"] = string(f.Policy.Mode)
	out["match_strategy"] = f.Policy.MatchStrategy
	out["allow_null_fields"] = f.Policy.AllowNullFields
	out["exact_match"] = f.Policy.ExactMatch
	if f.Policy.MinimumMatchRatio > 0 {
		out["minimum_match_ratio"] = f.Policy.MinimumMatchRatio
	}
	if f.Policy.SortBy != "" {
		out["sort_by"] = f.Policy.SortBy
	}
	if f.Policy.Limit > 0 {
		out["limit"] = f.Policy.Limit
	}
	return out
}

// PredicateOp is the closed set of store-agnostic predicate operators.
type PredicateOp string

const (
	OpEquals        PredicateOp = "equals"
	OpIn            PredicateOp = "in"
	OpLikeAny       PredicateOp = "like_any"
	OpJSONLike      PredicateOp = "json_like"
	OpJSONNotLike   PredicateOp = "json_not_like"
	OpNonEmpty      PredicateOp = "non_empty"
	OpExcludesValue PredicateOp = "excludes_value"
)

// Predicate is one compiled condition. Predicates in a set are ANDed by the
// record store. Key is set only for the JSON-path operators and names the
// question inside the nested survey document.
type Predicate struct {
	Field string
	Key   string
	Op    PredicateOp
	Args  []any
}
