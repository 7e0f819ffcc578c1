// Package normalize turns raw company-name candidates into clean names.
//
// Cleaning is an ordered table of rules compiled once. Truncation at the
// market-cap label runs first, the token strippers run next, whitespace is
// collapsed after them, and only then are the pattern-specific cut and the
// final validation applied.
package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"InvestingIdeas/internal/domain"
)

// MinLength is the shortest accepted company name, in characters.
const MinLength = 3

var (
	marketCapExpr  = regexp.MustCompile(`Market\s+Cap`)
	digitRunExpr   = regexp.MustCompile(`\d+`)
	exchangeExpr   = regexp.MustCompile(`\b[A-Z]{2,4}:\d+\b`)
	currencyExpr   = regexp.MustCompile(`(?:[A-Za-z]{2}\$|CN¥|NT¥|JP¥|[$¥€£₹])[\d,.]+[bmkBMK]?`)
	percentExpr    = regexp.MustCompile(`\d+\.\d+%|\d+%`)
	durationExpr   = regexp.MustCompile(`\d+[DdYy]`)
	shortDurExpr   = regexp.MustCompile(`[17][YD]`)
	integerExpr    = regexp.MustCompile(`\b\d+\b`)
	trailingVerbRe = regexp.MustCompile(`(?i)\s+(?:Engages|Develops|Designs|Manufactures|Research|Together|Operates).*$`)
)

var excludeWords = map[string]struct{}{
	"Market":       {},
	"Cap":          {},
	"Engages":      {},
	"Develops":     {},
	"Designs":      {},
	"Manufactures": {},
	"New":          {},
	"Together":     {},
	"Research":     {},
	"Stocks":       {},
}

// Rule is one step of the cleaning pipeline. A rule with Only set runs
// exclusively for candidates produced by that method.
type Rule struct {
	Name  string
	Only  domain.Method
	Apply func(string) string
}

func (r Rule) appliesTo(m domain.Method) bool {
	return r.Only == "" || r.Only == m
}

// Normalizer applies the rule table and the final validation.
type Normalizer struct {
	rules []Rule
}

// New returns a Normalizer with the default rule order.
func New() *Normalizer {
	return &Normalizer{rules: DefaultRules()}
}

// DefaultRules returns the cleaning rules in the order they must run.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "truncate-market-cap", Apply: truncateMarketCap},
		{Name: "strip-six-digit-codes", Apply: stripSixDigitCodes},
		{Name: "strip-exchange-codes", Apply: replaceWith(exchangeExpr)},
		{Name: "strip-currency", Apply: replaceWith(currencyExpr)},
		{Name: "strip-percentages", Apply: replaceWith(percentExpr)},
		{Name: "strip-durations", Apply: chain(replaceWith(durationExpr), replaceWith(shortDurExpr))},
		{Name: "strip-integers", Apply: replaceWith(integerExpr)},
		{Name: "collapse-whitespace", Apply: collapseWhitespace},
		{Name: "cut-trailing-description", Only: domain.MethodPattern, Apply: cutTrailingVerb},
	}
}

// Rules exposes the configured rule table.
func (n *Normalizer) Rules() []Rule {
	out := make([]Rule, len(n.rules))
	copy(out, n.rules)
	return out
}

// Clean runs every applicable rule and validates the result. The boolean is
// false when the candidate is rejected; rejection is not an error.
func (n *Normalizer) Clean(candidate domain.Candidate) (string, bool) {
	text := candidate.Text
	if text == "" {
		return "", false
	}
	for _, rule := range n.rules {
		if rule.appliesTo(candidate.Method) {
			text = rule.Apply(text)
		}
	}
	return validate(text)
}

func validate(text string) (string, bool) {
	if utf8.RuneCountInString(text) < MinLength {
		return "", false
	}
	if _, excluded := excludeWords[text]; excluded {
		return "", false
	}
	return text, true
}

func truncateMarketCap(s string) string {
	if loc := marketCapExpr.FindStringIndex(s); loc != nil {
		return s[:loc[0]]
	}
	return s
}

// stripSixDigitCodes drops digit runs of exactly six, including runs glued
// to a ticker ("XYZ123456"). Longer or shorter runs are left for later rules.
func stripSixDigitCodes(s string) string {
	return digitRunExpr.ReplaceAllStringFunc(s, func(m string) string {
		if len(m) == 6 {
			return ""
		}
		return m
	})
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func cutTrailingVerb(s string) string {
	return strings.TrimSpace(trailingVerbRe.ReplaceAllString(s, ""))
}

func replaceWith(expr *regexp.Regexp) func(string) string {
	return func(s string) string {
		return expr.ReplaceAllString(s, "")
	}
}

func chain(fns ...func(string) string) func(string) string {
	return func(s string) string {
		for _, fn := range fns {
			s = fn(s)
		}
		return s
	}
}
