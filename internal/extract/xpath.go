package extract

import (
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

// firstNonEmptyText tries each XPath expression in order against doc and
// returns the trimmed text of the first node any of them match (spec §4.3
// step 4: "First expression producing a non-empty result wins"). A
// malformed expression is reported to logBadXPath and treated as no match,
// never as a fatal error (spec §4.3 error model).
func firstNonEmptyText(doc *html.Node, exprs []string, logBadXPath func(expr string, err error)) (string, bool) {
	for _, expr := range exprs {
		nodes, err := htmlquery.QueryAll(doc, expr)
		if err != nil {
			if logBadXPath != nil {
				logBadXPath(expr, err)
			}
			continue
		}
		for _, n := range nodes {
			if text := strings.TrimSpace(htmlquery.InnerText(n)); text != "" {
				return text, true
			}
		}
	}
	return "", false
}

// firstNonEmptyNodes tries each XPath expression in order and returns every
// node the first matching expression selected, so callers can compose a
// body out of possibly several matched elements.
func firstNonEmptyNodes(doc *html.Node, exprs []string, logBadXPath func(expr string, err error)) ([]*html.Node, bool) {
	for _, expr := range exprs {
		nodes, err := htmlquery.QueryAll(doc, expr)
		if err != nil {
			if logBadXPath != nil {
				logBadXPath(expr, err)
			}
			continue
		}
		if len(nodes) > 0 {
			return nodes, true
		}
	}
	return nil, false
}

// firstLinkMatch evaluates exprs for a link-producing directive
// (single_page_link, next_page_link): a string-valued expression yields the
// candidate URL directly, a node-list yields the first element's href (or
// the first attribute node's value) (spec §4.4 "Single-page promotion").
func firstLinkMatch(doc *html.Node, exprs []string, logBadXPath func(expr string, err error)) (string, bool) {
	for _, expr := range exprs {
		if nodes, err := htmlquery.QueryAll(doc, expr); err == nil {
			for _, n := range nodes {
				if n.Type == html.ElementNode {
					if href := htmlquery.SelectAttr(n, "href"); strings.TrimSpace(href) != "" {
						return strings.TrimSpace(href), true
					}
				}
				if v := strings.TrimSpace(htmlquery.InnerText(n)); v != "" {
					return v, true
				}
				if v := strings.TrimSpace(n.Data); v != "" {
					return v, true
				}
			}
		}

		if compiled, cerr := xpath.Compile(expr); cerr == nil {
			nav := htmlquery.CreateXPathNavigator(doc)
			if s, ok := compiled.Evaluate(nav).(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s), true
			}
		} else if logBadXPath != nil {
			logBadXPath(expr, cerr)
		}
	}
	return "", false
}
