// Package extract turns raw fund-report text into a typed metric set.
//
// The central algorithm is ordered fallback pattern matching: each metric
// has a list of label synonyms tried most-specific-first, and the first
// match that normalizes to a plausible number wins. Real reports use
// inconsistent terminology for the same figure; the ordering favors the
// earliest occurrence under the most specific label. Extraction never
// fails loudly — sparse or malformed input degrades to absent fields and a
// structured extraction error.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/srs-capital/fii-screener/internal/model"
)

// essentialNames label the four essential metrics in insufficient-metrics
// messages, in report order.
var essentialNames = [4]string{"P/VP", "Dividend Yield", "Vacancy", "Daily Liquidity"}

// minEssential is the minimum number of essential metrics a document must
// yield to be considered analyzable.
const minEssential = 2

var tickerRe = regexp.MustCompile(`\b([A-Z]{4}\d{2})\b`)

// Extractor scrapes fund metrics from document text using a compiled
// pattern table. Safe for concurrent use; it holds no per-document state.
type Extractor struct {
	pats compiledPatterns
}

// New returns an Extractor using the embedded default pattern table.
func New() *Extractor {
	e, err := NewWithPatterns(DefaultPatterns())
	if err != nil {
		// The embedded table always compiles; tests enforce it.
		panic(err)
	}
	return e
}

// NewWithPatterns returns an Extractor using a custom pattern table.
func NewWithPatterns(t PatternTable) (*Extractor, error) {
	c, err := compileTable(t)
	if err != nil {
		return nil, err
	}
	return &Extractor{pats: c}, nil
}

// JoinPages concatenates non-empty page texts with newline separators.
// Pages that yielded no text are skipped.
func JoinPages(pages []string) string {
	var b strings.Builder
	for _, p := range pages {
		if p == "" {
			continue
		}
		b.WriteString(p)
		b.WriteByte('\n')
	}
	return b.String()
}

// foldAccents strips combining diacritical marks so "Vacância" and
// "Vacancia" match the same pattern.
var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold returns s with diacritics removed. On a transform error the input
// is returned unchanged.
func Fold(s string) string {
	out, _, err := transform.String(foldAccents, s)
	if err != nil {
		return s
	}
	return out
}

// classifyRule maps keyword sets to a document kind. All keywords must be
// present (accent-folded, lowercase) for the rule to fire.
type classifyRule struct {
	keywords []string
	kind     model.DocumentKind
}

// classifyRules are evaluated in fixed priority order; first match wins.
// Share-issuance material facts come first because they are disqualifying.
var classifyRules = []classifyRule{
	{[]string{"fato relevante", "emissao"}, model.KindShareIssuance},
	{[]string{"relatorio gerencial"}, model.KindManagementReport},
	{[]string{"informe mensal"}, model.KindMonthlyBulletin},
	{[]string{"relatorio do administrador"}, model.KindAdminReport},
	{[]string{"lamina"}, model.KindFactSheet},
}

// Classify tags the document by case- and accent-insensitive keyword
// matching over the full text.
func Classify(text string) model.DocumentKind {
	folded := strings.ToLower(Fold(text))
	for _, rule := range classifyRules {
		matched := true
		for _, kw := range rule.keywords {
			if !strings.Contains(folded, kw) {
				matched = false
				break
			}
		}
		if matched {
			return rule.kind
		}
	}
	return model.KindUnknown
}

// FindTicker returns the most frequent four-letters-two-digits code in the
// text, ties broken by first occurrence. Returns the UNKNOWN sentinel when
// no candidate exists.
func FindTicker(text string) string {
	matches := tickerRe.FindAllString(text, -1)
	if len(matches) == 0 {
		return model.TickerUnknown
	}

	counts := make(map[string]int, len(matches))
	firstSeen := make(map[string]int, len(matches))
	for i, m := range matches {
		if _, ok := firstSeen[m]; !ok {
			firstSeen[m] = i
		}
		counts[m]++
	}

	best := matches[0]
	for _, m := range matches {
		if counts[m] > counts[best] || (counts[m] == counts[best] && firstSeen[m] < firstSeen[best]) {
			best = m
		}
	}
	return best
}

// normalizeNumber converts a Brazilian-formatted numeric string to the
// dot-decimal form: thousands dots are stripped, the decimal comma becomes
// a decimal point. "1.234,56" -> "1234.56", "12,34" -> "12.34".
func normalizeNumber(s string) string {
	s = strings.ReplaceAll(s, ".", "")
	return strings.ReplaceAll(s, ",", ".")
}

// number tries each compiled pattern in order and returns the first
// normalized value inside the plausible range. Matches that fail to parse
// or fall outside the range are skipped, falling through to later matches
// and then later patterns. Exhaustion returns nil, never an error.
func number(text string, patterns []*regexp.Regexp) *float64 {
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			v, err := strconv.ParseFloat(normalizeNumber(m[1]), 64)
			if err != nil {
				continue
			}
			if v <= model.MinPlausible || v >= model.MaxPlausible {
				continue
			}
			return &v
		}
	}
	return nil
}

// Number is the exported single-field form of the ordered-pattern search,
// compiling the given label patterns on the fly.
func Number(text string, patterns []string) *float64 {
	compiled, err := compileAll(patterns)
	if err != nil {
		zap.L().Warn("extract: bad pattern list", zap.Error(err))
		return nil
	}
	return number(text, compiled)
}

// Metrics scrapes a full metric set from per-page document text. It never
// returns an error: unusable documents are reported through the set's
// extraction error field.
func (e *Extractor) Metrics(pages []string) model.MetricSet {
	text := JoinPages(pages)
	folded := Fold(text)

	set := model.MetricSet{
		Ticker: model.TickerUnknown,
		Kind:   Classify(text),
	}

	// Share-issuance notices never contain the screening figures; stop
	// before wasting pattern passes on them.
	if set.Kind == model.KindShareIssuance {
		set.Err = &model.ExtractionError{
			Kind:    model.ErrUnsupportedDocument,
			Message: "document is a share-issuance material fact; upload a management report, monthly bulletin or fact sheet instead",
		}
		return set
	}

	set.Ticker = FindTicker(text)
	set.NetAssets = number(folded, e.pats.netAssets)
	set.BookValuePerShare = number(folded, e.pats.bookValuePerShare)
	set.MarketPrice = number(folded, e.pats.marketPrice)
	set.DividendYield = number(folded, e.pats.dividendYield)
	set.DailyLiquidity = number(folded, e.pats.dailyLiquidity)

	// Vacancy is preferred; delinquency substitutes only when every
	// vacancy pattern came up empty (receivables funds report the latter).
	set.Vacancy = number(folded, e.pats.vacancy)
	if set.Vacancy == nil {
		set.Vacancy = number(folded, e.pats.delinquency)
	}

	if set.MarketPrice != nil && set.BookValuePerShare != nil && *set.BookValuePerShare > 0 {
		ptb := *set.MarketPrice / *set.BookValuePerShare
		set.PriceToBook = &ptb
	}

	if n := set.EssentialCount(); n < minEssential {
		set.Err = &model.ExtractionError{
			Kind:    model.ErrInsufficientMetrics,
			Message: insufficientMessage(set, n),
		}
		zap.L().Debug("extract: insufficient metrics",
			zap.String("ticker", set.Ticker),
			zap.String("kind", string(set.Kind)),
			zap.Int("essential_found", n),
		)
	}

	return set
}

// insufficientMessage enumerates which essential metrics were found and
// which were missing, for display to the uploader.
func insufficientMessage(m model.MetricSet, n int) string {
	present := []*float64{m.PriceToBook, m.DividendYield, m.Vacancy, m.DailyLiquidity}

	var found, missing []string
	for i, v := range present {
		if v != nil {
			found = append(found, essentialNames[i])
		} else {
			missing = append(missing, essentialNames[i])
		}
	}

	if len(found) == 0 {
		return fmt.Sprintf("found %d of 4 essential metrics; missing: %s",
			n, strings.Join(missing, ", "))
	}
	return fmt.Sprintf("found %d of 4 essential metrics (found: %s; missing: %s)",
		n, strings.Join(found, ", "), strings.Join(missing, ", "))
}
