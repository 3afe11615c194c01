package model

// Recommendation is the graded verdict produced by the SRS FI rule table.
type Recommendation string

const (
	RecommendBuy         Recommendation = "BUY"
	RecommendBuyCaveats  Recommendation = "BUY WITH CAVEATS"
	RecommendNeedsReview Recommendation = "NEEDS FURTHER ANALYSIS"
	RecommendAvoid       Recommendation = "NOT RECOMMENDED"
)

// Criterion records one evaluated screening rule. Value is rounded to two
// decimal places for display; Passed is computed from the unrounded source
// metric, so boundary cases never flip on presentation rounding.
type Criterion struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Min    float64 `json:"min_value"`
	Max    float64 `json:"max_value"`
	Passed bool    `json:"passed"`
}

// Evaluation is the outcome of scoring one fund document against the
// Método SRS FI. Built once per analysis request and never mutated.
type Evaluation struct {
	ID             string         `json:"id"`
	Ticker         string         `json:"ticker"`
	Approved       bool           `json:"approved"`
	Recommendation Recommendation `json:"recommendation"`
	Score          float64        `json:"score"`
	Criteria       []Criterion    `json:"criteria"`
	// MissingMetrics lists essential metrics absent from the source set.
	// Omitted from JSON when empty so "all found" and "some found" stay
	// distinguishable in the historical contract.
	MissingMetrics []string  `json:"missing_metrics,omitempty"`
	Metrics        MetricSet `json:"metrics"`
}
