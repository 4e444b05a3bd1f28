package api

// RankedRow is one bar of the top-N prevalence chart
type RankedRow struct {
	Place      string  `json:"place"`
	Count      int     `json:"count"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Label      string  `json:"label"`
}

// HighlightRow is one place on the choropleth
type HighlightRow struct {
	Place      string  `json:"place"`
	Percentage float64 `json:"percentage"`
	Highlight  float64 `json:"highlight"`
	OnMap      bool    `json:"on_map"`
}

// PrevalenceResponse is the payload of the prevalence panel
type PrevalenceResponse struct {
	Level         string         `json:"level"`
	Status        string         `json:"status"`
	Title         string         `json:"title"`
	Top           []RankedRow    `json:"top"`
	Highlight     []HighlightRow `json:"highlight"`
	MaxPercentage float64        `json:"max_percentage"`
	Threshold     float64        `json:"threshold"`
	MapAvailable  bool           `json:"map_available"`
	MapError      string         `json:"map_error,omitempty"`
}

// HistogramBin is one bar of a histogram, covering [From, To)
type HistogramBin struct {
	From  float64 `json:"from"`
	To    float64 `json:"to"`
	Count int     `json:"count"`
}

// Histogram is a binned distribution
type Histogram struct {
	Column  string         `json:"column"`
	Bins    []HistogramBin `json:"bins"`
	Skipped int            `json:"skipped"`
}

// CategoryCount is the size of one category
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// DemographicsResponse is the payload of the demographics panel
type DemographicsResponse struct {
	AgeHistogram Histogram       `json:"age_histogram"`
	Sex          []CategoryCount `json:"sex"`
}

// AgeMean is the mean height and weight at one age
type AgeMean struct {
	AgeInMonths float64  `json:"age_in_months"`
	HeightCm    *float64 `json:"height_cm"`
	WeightKg    *float64 `json:"weight_kg"`
}

// NutritionResponse is the payload of the nutrition indicators panel
type NutritionResponse struct {
	GrowthByAge   []AgeMean `json:"growth_by_age"`
	MUACHistogram Histogram `json:"muac_histogram"`
}

// CrossTab is a count table with rows (places) and stacked categories
type CrossTab struct {
	RowKey     string           `json:"row_key"`
	ColumnKey  string           `json:"column_key"`
	Rows       []string         `json:"rows"`
	Categories []string         `json:"categories"`
	Counts     map[string][]int `json:"counts"`
}

// ProgramReachResponse is the payload of the program reach panel
type ProgramReachResponse struct {
	Immunization    CrossTab `json:"immunization"`
	Supplementation CrossTab `json:"supplementation"`
}

// BMIPoint is one child on the BMI scatter
type BMIPoint struct {
	AgeInMonths  float64 `json:"age_in_months"`
	MotherBMI    float64 `json:"mother_bmi"`
	GrowthStatus string  `json:"growth_status"`
}

// BoxSummary is the five-number summary of one group
type BoxSummary struct {
	Group        string    `json:"group"`
	GrowthStatus string    `json:"growth_status"`
	N            int       `json:"n"`
	Min          float64   `json:"min"`
	Q1           float64   `json:"q1"`
	Median       float64   `json:"median"`
	Q3           float64   `json:"q3"`
	Max          float64   `json:"max"`
	LowerWhisker float64   `json:"lower_whisker"`
	UpperWhisker float64   `json:"upper_whisker"`
	Outliers     []float64 `json:"outliers,omitempty"`
}

// MotherChildResponse is the payload of the mother-child panel.
// Sections whose source columns are absent are omitted.
type MotherChildResponse struct {
	BMIAvailable    bool         `json:"bmi_available"`
	BMIPoints       []BMIPoint   `json:"bmi_points,omitempty"`
	AnemiaAvailable bool         `json:"anemia_available"`
	AnemiaAgeBoxes  []BoxSummary `json:"anemia_age_boxes,omitempty"`
}

// NameMapping is one reconciled place name
type NameMapping struct {
	Raw       string  `json:"raw"`
	Canonical string  `json:"canonical"`
	Method    string  `json:"method"`
	Score     float64 `json:"score,omitempty"`
}

// LevelReconciliation reports the name mapping of one level
type LevelReconciliation struct {
	Level          string        `json:"level"`
	GeometryLoaded bool          `json:"geometry_loaded"`
	GeometryError  string        `json:"geometry_error,omitempty"`
	Canonical      int           `json:"canonical_names"`
	Mappings       []NameMapping `json:"mappings"`
	Unmatched      []string      `json:"unmatched"`
}

// ReconciliationResponse reports name mappings for every level
type ReconciliationResponse struct {
	Levels []LevelReconciliation `json:"levels"`
}
