package filter

// Frequency-phrase handling: when the interpreter turns "자주 혼밥하는 사람"
// into a filter on a frequency-style survey question, the literal phrase
// ("자주") never matches stored answers ("거의 매일"). The raw query text is
// scanned for a frequency level and the question value is replaced with the
// canonical answer set for that level.

type frequencyLevel string

const (
	levelHigh   frequencyLevel = "high"
	levelMedium frequencyLevel = "medium"
	levelLow    frequencyLevel = "low"
)

var frequencyLevelOrder = []frequencyLevel{levelHigh, levelMedium, levelLow}

var frequencyKeywords = map[frequencyLevel][]string{
	levelHigh:   {"자주", "많이", "즐겨", "매일", "항상", "빈번"},
	levelMedium: {"가끔", "종종", "때때로", "보통"},
	levelLow:    {"거의 안", "별로 안", "드물게", "안 하"},
}

var frequencyExpansions = map[string]map[frequencyLevel][]string{
	"혼밥빈도": {
		levelHigh:   {"거의 매일", "주 2~3회"},
		levelMedium: {"주 1회", "월 1~2회"},
		levelLow:    {"하지 않"},
	},
	"OTT개수": {
		levelHigh:   {"3개", "4개 이상"},
		levelMedium: {"2개"},
		levelLow:    {"1개"},
	},
	"전통시장": {
		levelHigh:   {"일주일에 1회", "2주에 1회"},
		levelMedium: {"한 달에 1회"},
		levelLow:    {"3개월에 1회"},
	},
}

// frequencySurveyFields are the nested categories whose questions may carry a
// frequency-style answer.
var frequencySurveyFields = []string{
	"survey_lifestyle", "survey_consumption", "survey_health", "survey_digital",
}

// ExpandFrequency rewrites frequency-phrase answers inside the nested survey
// values of a raw filter map using the level detected in the query text.
// Returns a new map; nested survey maps that change are copied.
func ExpandFrequency(raw map[string]any, query string) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		out[k] = v
	}

	level := detectFrequencyLevel(query)

	for _, field := range frequencySurveyFields {
		survey, ok := out[field].(map[string]any)
		if !ok {
			continue
		}

		var rewritten map[string]any
		for questionKey, answer := range survey {
			expansion, known := frequencyExpansions[questionKey]
			if !known {
				continue
			}
			values := expansion[level]
			if len(values) == 0 {
				continue
			}
			if !shouldRewriteAnswer(answer, expansion) {
				continue
			}
			if rewritten == nil {
				rewritten = make(map[string]any, len(survey))
				for k, v := range survey {
					rewritten[k] = v
				}
			}
			rewritten[questionKey] = map[string]any{"include": toAnyList(values)}
		}
		if rewritten != nil {
			out[field] = rewritten
		}
	}
	return out
}

// shouldRewriteAnswer reports whether the answer is a frequency phrase: a bare
// string carrying a frequency keyword, or an include form whose scalar content
// overlaps the frequency vocabulary or the canonical answer set itself.
func shouldRewriteAnswer(answer any, expansion map[frequencyLevel][]string) bool {
	switch v := answer.(type) {
	case string:
		return containsFrequencyKeyword(v)
	case map[string]any:
		include, ok := v["include"].(string)
		if !ok {
			return false
		}
		if containsFrequencyKeyword(include) {
			return true
		}
		for _, values := range expansion {
			for _, canonical := range values {
				if include == canonical {
					return true
				}
			}
		}
		return false
	default:
		return false
	}
}

func containsFrequencyKeyword(s string) bool {
	for _, keywords := range frequencyKeywords {
		for _, kw := range keywords {
			if containsFold(s, kw) {
				return true
			}
		}
	}
	return false
}

func detectFrequencyLevel(query string) frequencyLevel {
	for _, level := range frequencyLevelOrder {
		for _, kw := range frequencyKeywords[level] {
			if containsFold(query, kw) {
				return level
			}
		}
	}
	return levelHigh
}

// multiConditionMarkers are the conjunctions that suggest a query describes
// several independent cohorts.
var multiConditionMarkers = []string{",", "과 ", "와 ", "그리고", "각각", "및 "}

// HasMultiConditionMarkers reports whether the query text looks like it names
// more than one independent condition.
func HasMultiConditionMarkers(query string) bool {
	for _, marker := range multiConditionMarkers {
		if containsFold(query, marker) {
			return true
		}
	}
	return false
}

func toAnyList(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
