package model

// TickerUnknown is the sentinel returned when no fund ticker could be
// identified in the document text.
const TickerUnknown = "UNKNOWN"

// Numeric plausibility bounds for extracted values. Anything outside
// (MinPlausible, MaxPlausible) is treated as a regex false positive and
// discarded rather than propagated.
const (
	MinPlausible = 0.0
	MaxPlausible = 1e12
)

// DocumentKind classifies an uploaded fund document by its content.
type DocumentKind string

const (
	KindManagementReport DocumentKind = "management_report"
	KindMonthlyBulletin  DocumentKind = "monthly_bulletin"
	KindAdminReport      DocumentKind = "admin_report"
	KindFactSheet        DocumentKind = "fact_sheet"
	KindShareIssuance    DocumentKind = "share_issuance"
	KindUnknown          DocumentKind = "unknown"
)

// ExtractionErrorKind tags why a document could not be fully extracted.
type ExtractionErrorKind string

const (
	// ErrUnsupportedDocument marks document types known to lack the
	// screening figures (share-issuance material facts).
	ErrUnsupportedDocument ExtractionErrorKind = "unsupported_document"
	// ErrInsufficientMetrics marks documents where fewer than two of the
	// four essential metrics were found.
	ErrInsufficientMetrics ExtractionErrorKind = "insufficient_metrics"
)

// ExtractionError reports a non-fatal extraction failure. When set on a
// MetricSet, the remaining fields are advisory only and the set must not
// be scored.
type ExtractionError struct {
	Kind    ExtractionErrorKind `json:"kind"`
	Message string              `json:"message"`
}

// MetricSet holds the figures scraped from one fund document. Every
// numeric field is independently optional: nil means "not found in this
// document", which is distinct from zero.
type MetricSet struct {
	Ticker string       `json:"ticker"`
	Kind   DocumentKind `json:"document_kind"`

	NetAssets         *float64 `json:"net_assets,omitempty"`
	BookValuePerShare *float64 `json:"book_value_per_share,omitempty"`
	MarketPrice       *float64 `json:"market_price_per_share,omitempty"`
	// PriceToBook is derived (MarketPrice / BookValuePerShare), never
	// scraped directly.
	PriceToBook    *float64 `json:"price_to_book,omitempty"`
	DividendYield  *float64 `json:"dividend_yield_annualized,omitempty"`
	Vacancy        *float64 `json:"vacancy_or_delinquency,omitempty"`
	DailyLiquidity *float64 `json:"daily_liquidity,omitempty"`

	Err *ExtractionError `json:"extraction_error,omitempty"`
}

// Analyzable reports whether the set can be handed to the rule evaluator.
func (m MetricSet) Analyzable() bool {
	return m.Err == nil
}

// EssentialCount returns how many of the four essential metrics are
// present: price-to-book, dividend yield, vacancy and daily liquidity.
func (m MetricSet) EssentialCount() int {
	n := 0
	for _, v := range []*float64{m.PriceToBook, m.DividendYield, m.Vacancy, m.DailyLiquidity} {
		if v != nil {
			n++
		}
	}
	return n
}
