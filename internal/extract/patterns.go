package extract

import (
	_ "embed"
	"os"
	"regexp"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed patterns.yaml
var defaultPatternsYAML []byte

// PatternTable holds the ordered label-synonym patterns for each scraped
// metric. Order matters: patterns are tried left to right and the first one
// yielding a plausible value wins.
type PatternTable struct {
	NetAssets         []string `yaml:"net_assets"`
	BookValuePerShare []string `yaml:"book_value_per_share"`
	MarketPrice       []string `yaml:"market_price"`
	DividendYield     []string `yaml:"dividend_yield"`
	Vacancy           []string `yaml:"vacancy"`
	Delinquency       []string `yaml:"delinquency"`
	DailyLiquidity    []string `yaml:"daily_liquidity"`
}

// DefaultPatterns returns the embedded pattern table.
func DefaultPatterns() PatternTable {
	var t PatternTable
	// The embedded table is validated by tests; a parse failure here is a
	// build defect, not a runtime condition.
	if err := yaml.Unmarshal(defaultPatternsYAML, &t); err != nil {
		panic(err)
	}
	return t
}

// LoadPatterns reads a pattern table override from a YAML file.
func LoadPatterns(path string) (PatternTable, error) {
	var t PatternTable
	data, err := os.ReadFile(path)
	if err != nil {
		return t, eris.Wrap(err, "extract: read pattern file")
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, eris.Wrap(err, "extract: parse pattern file")
	}
	return t, nil
}

// valueCapture is appended to every label pattern: optional separator, an
// optional currency marker, then a run of digits with Brazilian thousands
// separators and decimal comma, optionally followed by a percent sign.
const valueCapture = `[:\s]*R?\$?\s*([\d.,]+)\s*%?`

type compiledPatterns struct {
	netAssets         []*regexp.Regexp
	bookValuePerShare []*regexp.Regexp
	marketPrice       []*regexp.Regexp
	dividendYield     []*regexp.Regexp
	vacancy           []*regexp.Regexp
	delinquency       []*regexp.Regexp
	dailyLiquidity    []*regexp.Regexp
}

func compileTable(t PatternTable) (compiledPatterns, error) {
	var (
		c   compiledPatterns
		err error
	)
	if c.netAssets, err = compileAll(t.NetAssets); err != nil {
		return c, err
	}
	if c.bookValuePerShare, err = compileAll(t.BookValuePerShare); err != nil {
		return c, err
	}
	if c.marketPrice, err = compileAll(t.MarketPrice); err != nil {
		return c, err
	}
	if c.dividendYield, err = compileAll(t.DividendYield); err != nil {
		return c, err
	}
	if c.vacancy, err = compileAll(t.Vacancy); err != nil {
		return c, err
	}
	if c.delinquency, err = compileAll(t.Delinquency); err != nil {
		return c, err
	}
	if c.dailyLiquidity, err = compileAll(t.DailyLiquidity); err != nil {
		return c, err
	}
	return c, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(`(?i)` + p + valueCapture)
		if err != nil {
			return nil, eris.Wrapf(err, "extract: compile pattern %q", p)
		}
		out = append(out, re)
	}
	return out, nil
}
