package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var companiesSuffixExpr = regexp.MustCompile(`\+\d+ companies.*`)

// ExtractionError wraps a markup parsing failure for one page.
type ExtractionError struct {
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

func parseDocument(markup string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, &ExtractionError{Message: "parse document", Cause: err}
	}
	return doc, nil
}

// strippedText trims every text node under sel, drops empty ones and joins
// the rest with sep.
func strippedText(sel *goquery.Selection, sep string) string {
	var parts []string
	walkText(sel.Nodes, func(data string) {
		if s := strings.TrimSpace(data); s != "" {
			parts = append(parts, s)
		}
	})
	return strings.Join(parts, sep)
}

// flatText concatenates every text node under sel verbatim.
func flatText(sel *goquery.Selection) string {
	var b strings.Builder
	walkText(sel.Nodes, func(data string) {
		b.WriteString(data)
	})
	return b.String()
}

func walkText(nodes []*html.Node, visit func(string)) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			visit(n.Data)
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
}

// cleanTitle collapses whitespace and drops a trailing "+N companies..." badge.
func cleanTitle(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = companiesSuffixExpr.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
