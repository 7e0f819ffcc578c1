package parser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"InvestingIdeas/internal/config"
	"InvestingIdeas/internal/domain"
	"InvestingIdeas/internal/ports"
)

// LinkExtractor finds idea cards on the discovery page.
type LinkExtractor struct {
	base          *url.URL
	discoveryURL  string
	selector      string
	titleSelector string
	suffix        string
}

var _ ports.LinkExtractor = (*LinkExtractor)(nil)

// NewLinkExtractor builds an extractor for the configured site.
func NewLinkExtractor(site config.SiteConfig) (*LinkExtractor, error) {
	base, err := url.Parse(site.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", site.BaseURL)
	}

	prefix := site.IdeaPathPrefix
	absolute := strings.TrimSuffix(site.BaseURL, "/") + prefix
	selector := fmt.Sprintf(`a[href^=%q], a[href^=%q]`, prefix, absolute)

	return &LinkExtractor{
		base:          base,
		discoveryURL:  site.DiscoveryURL,
		selector:      selector,
		titleSelector: site.TitleSelector,
		suffix:        site.IdeaURLSuffix,
	}, nil
}

// ExtractLinks returns qualifying idea links in document order, deduplicated by (title, url).
func (l *LinkExtractor) ExtractLinks(markup string) ([]domain.IdeaLink, error) {
	doc, err := parseDocument(markup)
	if err != nil {
		return nil, err
	}

	var (
		links []domain.IdeaLink
		seen  = map[domain.IdeaLink]struct{}{}
	)

	doc.Find(l.selector).Each(func(_ int, a *goquery.Selection) {
		link, ok := l.linkFromAnchor(a)
		if !ok {
			return
		}
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})

	return links, nil
}

func (l *LinkExtractor) linkFromAnchor(a *goquery.Selection) (domain.IdeaLink, bool) {
	href, _ := a.Attr("href")
	href = strings.TrimSpace(href)

	var title string
	if el := a.Find(l.titleSelector).First(); el.Length() > 0 {
		title = cleanTitle(strippedText(el, " "))
	} else {
		title = cleanTitle(strippedText(a, " "))
	}

	if href == "" || title == "" {
		return domain.IdeaLink{}, false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return domain.IdeaLink{}, false
	}
	resolved := l.base.ResolveReference(ref)
	fullURL := resolved.String()

	if !strings.HasSuffix(fullURL, l.suffix) {
		return domain.IdeaLink{}, false
	}
	if strings.TrimRight(fullURL, "/") == strings.TrimRight(l.discoveryURL, "/") {
		return domain.IdeaLink{}, false
	}
	if resolved.Host != l.base.Host {
		return domain.IdeaLink{}, false
	}

	return domain.IdeaLink{Title: title, URL: fullURL}, true
}
