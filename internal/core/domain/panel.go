package domain

// Panel is one survey respondent as read from the record store. All fields
// except PanelID are nullable in the store; absent strings scan to "".
type Panel struct {
	PanelID            string         `json:"panel_id"`
	Age                *int           `json:"age,omitempty"`
	Gender             string         `json:"gender,omitempty"`
	Residence          string         `json:"residence,omitempty"`
	Occupation         string         `json:"occupation,omitempty"`
	MaritalStatus      string         `json:"marital_status,omitempty"`
	PhoneBrand         string         `json:"phone_brand,omitempty"`
	CarBrand           string         `json:"car_brand,omitempty"`
	ProfileSummary     string         `json:"profile_summary,omitempty"`
	Hashtags           []string       `json:"hashtags,omitempty"`
	ElectronicDevices  []string       `json:"electronic_devices,omitempty"`
	SmokingExperience  []string       `json:"smoking_experience,omitempty"`
	CigaretteBrands    []string       `json:"cigarette_brands,omitempty"`
	ECigarette         []string       `json:"e_cigarette,omitempty"`
	DrinkingExperience []string       `json:"drinking_experience,omitempty"`
	SurveyHealth       map[string]any `json:"survey_health,omitempty"`
	SurveyConsumption  map[string]any `json:"survey_consumption,omitempty"`
	SurveyLifestyle    map[string]any `json:"survey_lifestyle,omitempty"`
	SurveyDigital      map[string]any `json:"survey_digital,omitempty"`
	SurveyEnvironment  map[string]any `json:"survey_environment,omitempty"`

	// Similarity is 1 - vector distance, set only when the query ran with an
	// embedding and the row has one stored.
	Similarity *float64 `json:"-"`
}

// RankedPanel is a Panel as returned to the caller, with its concordance
// score attached. Concordance stays nil when no vector ranking was available
// and the filter was not purely structural.
type RankedPanel struct {
	Panel
	Concordance *float64 `json:"concordance"`
}
