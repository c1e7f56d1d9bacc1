package anthropic

import "fmt"

const interpreterSystemPrompt = `You convert Korean natural-language panel search queries into JSON filters.
Return strict JSON only. No markdown, no commentary, no extra keys.`

const filterSchema = `Allowed filter keys:
  age (number), age_group (string like "20대"), gender ("MALE" or "FEMALE"),
  residence (string), occupation (string), marital_status (string),
  income_min (number), income_max (number), phone_brand (string),
  car_brand (string), smoking_experience (array of strings),
  drinking_experience (array of strings), electronic_devices (array of strings),
  cigarette_brands (array of strings), e_cigarette (array of strings),
  survey_health, survey_consumption, survey_environment, survey_digital,
  survey_lifestyle (objects mapping question text to answer text),
  limit (number).
Omit keys the query does not mention. Use null for none of the keys.`

func buildParsePrompt(query string) string {
	return fmt.Sprintf(`Extract one JSON filter object from this query.

%s

Query:
%s`, filterSchema, query)
}

func buildConditionsPrompt(query string) string {
	return fmt.Sprintf(`The query names multiple independent groups of people.
Extract a JSON array with one filter object per group, in the order named.
Shared attributes apply to every group. If a group states how many people it
needs, set that group's "limit".

%s

Query:
%s`, filterSchema, query)
}
