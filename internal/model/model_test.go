package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrFloat64(v float64) *float64 { return &v }

func TestEssentialCount(t *testing.T) {
	tests := []struct {
		name string
		set  MetricSet
		want int
	}{
		{"empty", MetricSet{}, 0},
		{"non-essentials only", MetricSet{NetAssets: ptrFloat64(1e9), MarketPrice: ptrFloat64(100)}, 0},
		{"two essentials", MetricSet{DividendYield: ptrFloat64(11), Vacancy: ptrFloat64(2)}, 2},
		{"all four", MetricSet{
			PriceToBook:    ptrFloat64(0.9),
			DividendYield:  ptrFloat64(11),
			Vacancy:        ptrFloat64(2),
			DailyLiquidity: ptrFloat64(3e6),
		}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.set.EssentialCount())
		})
	}
}

func TestAnalyzable(t *testing.T) {
	assert.True(t, MetricSet{}.Analyzable())
	assert.False(t, MetricSet{Err: &ExtractionError{Kind: ErrUnsupportedDocument}}.Analyzable())
}

// Absent numeric fields and empty missing_metrics stay out of the JSON
// document entirely; absent-vs-empty is part of the wire contract.
func TestMetricSetJSONOmitsAbsentFields(t *testing.T) {
	set := MetricSet{Ticker: "HGLG11", Kind: KindManagementReport, DividendYield: ptrFloat64(11.5)}

	raw, err := json.Marshal(set)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Contains(t, decoded, "dividend_yield_annualized")
	assert.NotContains(t, decoded, "vacancy_or_delinquency")
	assert.NotContains(t, decoded, "net_assets")
	assert.NotContains(t, decoded, "extraction_error")
}

func TestEvaluationJSONMissingMetrics(t *testing.T) {
	full := Evaluation{ID: "x", Ticker: "HGLG11", Recommendation: RecommendBuy, Score: 9}
	raw, err := json.Marshal(full)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.NotContains(t, decoded, "missing_metrics")

	partial := full
	partial.MissingMetrics = []string{"P/VP"}
	raw, err = json.Marshal(partial)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "missing_metrics")
}

func TestEvaluationJSONRoundTrip(t *testing.T) {
	ev := Evaluation{
		ID:             "abc",
		Ticker:         "KNRI11",
		Approved:       false,
		Recommendation: RecommendBuyCaveats,
		Score:          7.5,
		Criteria: []Criterion{
			{Name: "P/VP", Value: 0.95, Min: 0.65, Max: 1.02, Passed: true},
		},
		MissingMetrics: []string{"Vacancy (%)"},
		Metrics:        MetricSet{Ticker: "KNRI11", Kind: KindMonthlyBulletin},
	}

	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	var back Evaluation
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, ev, back)
}
