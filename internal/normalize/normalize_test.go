package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InvestingIdeas/internal/domain"
)

func anchor(text string) domain.Candidate {
	return domain.Candidate{Text: text, Method: domain.MethodAnchor}
}

func pattern(text string) domain.Candidate {
	return domain.Candidate{Text: text, Method: domain.MethodPattern}
}

func TestCleanExamples(t *testing.T) {
	t.Parallel()

	n := New()
	cases := []struct {
		name string
		in   domain.Candidate
		want string
		ok   bool
	}{
		{name: "market cap suffix", in: anchor("Apple Inc.Market Cap: US$3.5T"), want: "Apple Inc.", ok: true},
		{name: "codes", in: anchor("XYZ123456 NYSE:1234"), want: "XYZ", ok: true},
		{name: "codes leave too little", in: anchor("XY 123456 NYSE:1234"), ok: false},
		{name: "exclude word", in: anchor("Market"), ok: false},
		{name: "exclude word after cleaning", in: anchor(" Stocks 42 "), ok: false},
		{name: "too short", in: anchor("AB"), ok: false},
		{name: "empty", in: anchor(""), ok: false},
		{name: "currency and percent", in: anchor("Tencent HoldingsHK$4.2b12.5%7D"), want: "Tencent Holdings", ok: true},
		{name: "yen prefixed", in: anchor("Kweichow Moutai CN¥1,900b 600519"), want: "Kweichow Moutai", ok: true},
		{name: "taiwan dollar", in: anchor("TSMC NT$25.1b 3%"), want: "TSMC", ok: true},
		{name: "japanese yen", in: anchor("Sony Group JP¥15.2k"), want: "Sony Group", ok: true},
		{name: "symbols", in: anchor("Reliance ₹19.5b £3 €4.2m"), want: "Reliance", ok: true},
		{name: "durations", in: anchor("Nvidia 1Y 7D 30d 2y"), want: "Nvidia", ok: true},
		{name: "digits inside name kept", in: anchor("3M Company"), want: "3M Company", ok: true},
		{name: "whitespace collapse", in: anchor("  Alpha \n\t Beta  "), want: "Alpha Beta", ok: true},
		{name: "unicode kept", in: anchor("Société Générale"), want: "Société Générale", ok: true},
		{name: "anchor keeps verbs", in: anchor("Acme Develops rockets"), want: "Acme Develops rockets", ok: true},
		{name: "pattern cuts verbs", in: pattern("Acme Corp Develops rockets and more "), want: "Acme Corp", ok: true},
		{name: "pattern cut case insensitive", in: pattern("Globex OPERATES worldwide"), want: "Globex", ok: true},
		{name: "pattern leading verb is kept then rejected", in: pattern("Research"), ok: false},
		{name: "pattern cut leaves nothing", in: pattern("Ab Together we"), ok: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := n.Clean(tc.in)
			require.Equal(t, tc.ok, ok, "got %q", got)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	t.Parallel()

	n := New()
	inputs := []domain.Candidate{
		anchor("Apple Inc.Market Cap: US$3.5T"),
		anchor("XYZ123456 NYSE:1234"),
		anchor("Kweichow Moutai CN¥1,900b 600519"),
		anchor("Nvidia 1Y 7D 30d 2y"),
		anchor("3M Company"),
		anchor("Berkshire Hathaway Class B"),
		anchor("AT&T Inc."),
		pattern("Acme Corp Develops rockets"),
		pattern("Johnson & Johnson "),
		pattern("O'Reilly Automotive"),
	}

	for _, in := range inputs {
		once, ok := n.Clean(in)
		require.True(t, ok, "first pass rejected %q", in.Text)
		twice, ok := n.Clean(domain.Candidate{Text: once, Method: in.Method})
		require.True(t, ok, "second pass rejected %q", once)
		assert.Equal(t, once, twice)
	}
}

func TestRuleOrder(t *testing.T) {
	t.Parallel()

	rules := New().Rules()
	names := make([]string, 0, len(rules))
	for _, r := range rules {
		names = append(names, r.Name)
	}

	assert.Equal(t, []string{
		"truncate-market-cap",
		"strip-six-digit-codes",
		"strip-exchange-codes",
		"strip-currency",
		"strip-percentages",
		"strip-durations",
		"strip-integers",
		"collapse-whitespace",
		"cut-trailing-description",
	}, names)
	assert.Equal(t, domain.MethodPattern, rules[len(rules)-1].Only)
}

func TestIndividualRules(t *testing.T) {
	t.Parallel()

	rules := map[string]Rule{}
	for _, r := range DefaultRules() {
		rules[r.Name] = r
	}

	cases := []struct {
		rule string
		in   string
		want string
	}{
		{"truncate-market-cap", "Foo Market Cap: 1", "Foo "},
		{"truncate-market-cap", "Foo market cap", "Foo market cap"},
		{"strip-six-digit-codes", "A 123456 B 1234567", "A  B 1234567"},
		{"strip-exchange-codes", "Foo SZSE:300750 bar", "Foo  bar"},
		{"strip-currency", "a $1.5b b US$2,000m c €3K", "a  b  c "},
		{"strip-percentages", "up 12.5% and 3%", "up  and "},
		{"strip-durations", "1Y 7D 30d", "  "},
		{"strip-integers", "Foo 42 Bar", "Foo  Bar"},
		{"collapse-whitespace", " a   b ", "a b"},
		{"cut-trailing-description", "Foo Inc Engages in things", "Foo Inc"},
	}

	for _, tc := range cases {
		r, ok := rules[tc.rule]
		require.True(t, ok, tc.rule)
		assert.Equal(t, tc.want, r.Apply(tc.in), "%s(%q)", tc.rule, tc.in)
	}
}
