package parser

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"InvestingIdeas/internal/config"
	"InvestingIdeas/internal/domain"
	"InvestingIdeas/internal/ports"
	"InvestingIdeas/internal/scanner"
)

// CompanyExtractor runs every registered strategy over one idea page.
type CompanyExtractor struct {
	registry *scanner.Registry
}

var _ ports.CompanyExtractor = (*CompanyExtractor)(nil)

// NewCompanyExtractor wires a strategy registry.
func NewCompanyExtractor(reg *scanner.Registry) *CompanyExtractor {
	return &CompanyExtractor{registry: reg}
}

// NewDefaultRegistry registers the anchor strategy followed by the market-cap pattern strategy.
func NewDefaultRegistry(site config.SiteConfig) (*scanner.Registry, error) {
	anchors, err := NewAnchorStrategy(site.StockPathPattern)
	if err != nil {
		return nil, err
	}
	reg := scanner.NewRegistry()
	reg.Register(anchors)
	reg.Register(NewMarketCapStrategy(site.MarketCapMarker))
	return reg, nil
}

// ExtractCandidates returns candidates grouped by strategy, each group in document order.
func (e *CompanyExtractor) ExtractCandidates(markup string) ([]domain.Candidate, error) {
	if e.registry == nil {
		return nil, fmt.Errorf("strategy registry is not configured")
	}

	doc, err := parseDocument(markup)
	if err != nil {
		return nil, err
	}

	var candidates []domain.Candidate
	for _, strategy := range e.registry.Strategies() {
		candidates = append(candidates, strategy.Candidates(doc)...)
	}
	return candidates, nil
}

// AnchorStrategy reads names from links to stock detail pages.
type AnchorStrategy struct {
	hrefExpr *regexp.Regexp
}

var _ scanner.Strategy = (*AnchorStrategy)(nil)

// NewAnchorStrategy matches anchors whose href contains pattern (a regular expression).
func NewAnchorStrategy(pattern string) (*AnchorStrategy, error) {
	expr, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile stock path pattern: %w", err)
	}
	return &AnchorStrategy{hrefExpr: expr}, nil
}

func (s *AnchorStrategy) Method() domain.Method {
	return domain.MethodAnchor
}

func (s *AnchorStrategy) Candidates(doc *goquery.Document) []domain.Candidate {
	var out []domain.Candidate
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !s.hrefExpr.MatchString(href) {
			return
		}
		out = append(out, domain.Candidate{
			Text:   strippedText(a, ""),
			Method: domain.MethodAnchor,
		})
	})
	return out
}

// MarketCapStrategy reads the name that runs up to each market-cap label in
// the flattened page text.
type MarketCapStrategy struct {
	marker string
}

var _ scanner.Strategy = (*MarketCapStrategy)(nil)

// NewMarketCapStrategy scans for marker occurrences.
func NewMarketCapStrategy(marker string) *MarketCapStrategy {
	return &MarketCapStrategy{marker: marker}
}

func (s *MarketCapStrategy) Method() domain.Method {
	return domain.MethodPattern
}

func (s *MarketCapStrategy) Candidates(doc *goquery.Document) []domain.Candidate {
	var out []domain.Candidate
	for _, name := range namesBeforeMarker(flatText(doc.Selection), s.marker) {
		out = append(out, domain.Candidate{Text: name, Method: domain.MethodPattern})
	}
	return out
}

// namesBeforeMarker returns, for every marker, the longest run of name
// characters immediately before it. The run must start with an ASCII letter
// and be at least two characters long.
func namesBeforeMarker(text, marker string) []string {
	if marker == "" {
		return nil
	}

	var names []string
	for offset := 0; ; {
		i := strings.Index(text[offset:], marker)
		if i < 0 {
			break
		}
		end := offset + i

		start := end
		for start > offset {
			r, size := utf8.DecodeLastRuneInString(text[offset:start])
			if !isNameRune(r) {
				break
			}
			start -= size
		}
		for start < end && !isASCIILetter(text[start]) {
			_, size := utf8.DecodeRuneInString(text[start:end])
			start += size
		}
		if run := text[start:end]; utf8.RuneCountInString(run) >= 2 {
			names = append(names, run)
		}

		offset = end + len(marker)
	}
	return names
}

func isNameRune(r rune) bool {
	switch {
	case r < utf8.RuneSelf && isASCIILetter(byte(r)):
		return true
	case unicode.IsSpace(r):
		return true
	}
	switch r {
	case '&', '.', '\'', '-':
		return true
	}
	return false
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
