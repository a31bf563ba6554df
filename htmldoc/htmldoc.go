// Package htmldoc adapts a fetched HTML page to the query interface
// the extraction engine consumes: CSS and XPath selectors that each
// return the matched text strings, plus relative URL resolution. One
// x/net/html parse tree backs both query languages.
package htmldoc

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

// Document is one parsed page. Queries are read-only and safe for
// concurrent use.
type Document struct {
	url  string
	base *url.URL
	root *html.Node
	doc  *goquery.Document
}

// Parse reads and parses an HTML page. pageURL is the address the page
// was fetched from; it anchors Resolve and is reported by URL.
func Parse(r io.Reader, pageURL string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var base *url.URL
	if pageURL != "" {
		base, err = url.Parse(pageURL)
		if err != nil {
			return nil, fmt.Errorf("parse page url: %w", err)
		}
	}

	return &Document{
		url:  pageURL,
		base: base,
		root: root,
		doc:  goquery.NewDocumentFromNode(root),
	}, nil
}

// ParseString parses a page held in memory. Mostly a test convenience.
func ParseString(page, pageURL string) (*Document, error) {
	return Parse(strings.NewReader(page), pageURL)
}

// URL returns the address the document was fetched from.
func (d *Document) URL() string {
	return d.url
}

// QueryCSS runs a CSS selector and returns the matched strings. The
// selector may carry one of the suffixes used throughout the source
// configs: "::text" yields the direct text nodes of each match,
// "::attr(name)" yields an attribute value per match, and a bare
// selector yields each match's full text content. A selector that
// fails to compile returns an error; the extractor degrades on it.
func (d *Document) QueryCSS(selector string) ([]string, error) {
	sel, mode, attr := splitCSSSuffix(selector)

	matcher, err := cascadia.Compile(sel)
	if err != nil {
		return nil, fmt.Errorf("invalid css selector %q: %w", sel, err)
	}

	var out []string
	d.doc.FindMatcher(matcher).Each(func(_ int, s *goquery.Selection) {
		switch mode {
		case cssText:
			for _, node := range s.Nodes {
				for c := node.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.TextNode {
						out = append(out, c.Data)
					}
				}
			}
		case cssAttr:
			if v, ok := s.Attr(attr); ok {
				out = append(out, v)
			}
		default:
			out = append(out, s.Text())
		}
	})

	return out, nil
}

// QueryXPath runs an XPath expression and returns the matched strings:
// inner text for element results, the value itself for text and
// attribute results. An expression that fails to compile returns an
// error; the extractor degrades on it.
func (d *Document) QueryXPath(expr string) ([]string, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}

	nodes := htmlquery.QuerySelectorAll(d.root, compiled)
	out := make([]string, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, htmlquery.InnerText(node))
	}
	return out, nil
}

// Resolve makes a possibly relative href absolute against the page
// URL. Already absolute URLs pass through unchanged.
func (d *Document) Resolve(href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", href, err)
	}
	if d.base == nil {
		return ref.String(), nil
	}
	return d.base.ResolveReference(ref).String(), nil
}

type cssMode int

const (
	cssElement cssMode = iota
	cssText
	cssAttr
)

// splitCSSSuffix strips the trailing ::text / ::attr(name) pseudo
// element from a selector and reports which extraction mode it names.
func splitCSSSuffix(selector string) (string, cssMode, string) {
	selector = strings.TrimSpace(selector)

	if strings.HasSuffix(selector, "::text") {
		return strings.TrimSuffix(selector, "::text"), cssText, ""
	}

	if idx := strings.LastIndex(selector, "::attr("); idx >= 0 && strings.HasSuffix(selector, ")") {
		attr := selector[idx+len("::attr(") : len(selector)-1]
		return selector[:idx], cssAttr, strings.TrimSpace(attr)
	}

	return selector, cssElement, ""
}
