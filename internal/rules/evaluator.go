// Package rules applies the Método SRS FI screening table to an extracted
// metric set.
package rules

import (
	"math"

	"github.com/google/uuid"

	"github.com/srs-capital/fii-screener/internal/model"
)

// Threshold constants of the SRS FI method. The table is fixed; these are
// not configuration.
const (
	priceToBookMin = 0.65
	priceToBookMax = 1.02

	dividendYieldMin = 10.2
	// dividendYieldDisplayMax caps the displayed accepted range; the rule
	// itself is one-sided.
	dividendYieldDisplayMax = 100

	vacancyMax = 4.0

	// liquidityMinMillions is compared against daily liquidity divided by
	// one million. The display max is a cap like the dividend yield one.
	liquidityMinMillions    = 2.5
	liquidityDisplayMaxMM   = 1_000_000
	liquidityMillionDivisor = 1_000_000
)

// Human-readable names for the four essential metrics, in the fixed order
// used by MissingMetrics.
const (
	NamePriceToBook    = "P/VP"
	NameDividendYield  = "Dividend Yield (% p.a.)"
	NameVacancy        = "Vacancy (%)"
	NameDailyLiquidity = "Daily Liquidity (R$ mm)"
)

// Scores for each rung of the recommendation ladder.
const (
	scoreBuy         = 9.0
	scoreBuyCaveats  = 7.5
	scoreNeedsReview = 6.0
	scoreAvoid       = 5.0
)

// criterionRule binds one essential metric to its pass condition. observed
// transforms the raw metric into the displayed/compared value (identity for
// all rules except liquidity, which is compared in millions).
type criterionRule struct {
	name     string
	source   func(model.MetricSet) *float64
	observed func(float64) float64
	min      float64
	max      float64
	passes   func(float64) bool
}

// srsTable is the fixed rule table, in report order.
var srsTable = []criterionRule{
	{
		name:     NamePriceToBook,
		source:   func(m model.MetricSet) *float64 { return m.PriceToBook },
		observed: identity,
		min:      priceToBookMin,
		max:      priceToBookMax,
		passes:   func(v float64) bool { return v >= priceToBookMin && v <= priceToBookMax },
	},
	{
		name:     NameDividendYield,
		source:   func(m model.MetricSet) *float64 { return m.DividendYield },
		observed: identity,
		min:      dividendYieldMin,
		max:      dividendYieldDisplayMax,
		passes:   func(v float64) bool { return v >= dividendYieldMin },
	},
	{
		name:     NameVacancy,
		source:   func(m model.MetricSet) *float64 { return m.Vacancy },
		observed: identity,
		min:      0,
		max:      vacancyMax,
		passes:   func(v float64) bool { return v < vacancyMax },
	},
	{
		name:     NameDailyLiquidity,
		source:   func(m model.MetricSet) *float64 { return m.DailyLiquidity },
		observed: func(v float64) float64 { return v / liquidityMillionDivisor },
		min:      liquidityMinMillions,
		max:      liquidityDisplayMaxMM,
		passes:   func(v float64) bool { return v >= liquidityMinMillions },
	},
}

func identity(v float64) float64 { return v }

// Evaluate scores a metric set against the four SRS FI criteria. It is a
// pure function, total over any set without an extraction error: a fully
// empty set degenerates to zero evaluated criteria and NOT RECOMMENDED.
//
// A criterion whose source metric is absent is excluded from both the
// criteria list and the pass count; its name is recorded in
// MissingMetrics. Any missing metric forces Approved to false.
func Evaluate(m model.MetricSet) model.Evaluation {
	ev := model.Evaluation{
		ID:      uuid.NewString(),
		Ticker:  m.Ticker,
		Metrics: m,
	}

	allPassed := true
	passed := 0

	for _, rule := range srsTable {
		src := rule.source(m)
		if src == nil {
			ev.MissingMetrics = append(ev.MissingMetrics, rule.name)
			continue
		}
		obs := rule.observed(*src)
		c := model.Criterion{
			Name:   rule.name,
			Value:  round2(obs),
			Min:    rule.min,
			Max:    rule.max,
			// Pass/fail comes from the unrounded observation; Value is
			// presentation only.
			Passed: rule.passes(obs),
		}
		ev.Criteria = append(ev.Criteria, c)
		if c.Passed {
			passed++
		} else {
			allPassed = false
		}
	}

	ev.Approved = allPassed && len(ev.MissingMetrics) == 0

	switch {
	case ev.Approved:
		ev.Recommendation = model.RecommendBuy
		ev.Score = scoreBuy
	case passed >= 3:
		ev.Recommendation = model.RecommendBuyCaveats
		ev.Score = scoreBuyCaveats
	case passed >= 2:
		ev.Recommendation = model.RecommendNeedsReview
		ev.Score = scoreNeedsReview
	default:
		ev.Recommendation = model.RecommendAvoid
		ev.Score = scoreAvoid
	}

	return ev
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
