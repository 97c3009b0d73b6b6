package readability

import (
	"strings"

	"golang.org/x/net/html"
)

// HeuristicTitle finds a document's <title> text. It is adapted from the
// title/DOM-walk logic the extraction engine used before this port grew a
// directive-driven extractor: a plain depth-first search for <head><title>.
func HeuristicTitle(doc *html.Node) (string, bool) {
	head := findFirst(doc, "head")
	if head == nil {
		return "", false
	}
	t := findFirst(head, "title")
	if t == nil || t.FirstChild == nil {
		return "", false
	}
	title := strings.TrimSpace(t.FirstChild.Data)
	return title, title != ""
}

// HeuristicContent picks a content root the way a generic readability
// heuristic does when no directive matched: prefer <article>, then <main>,
// then <body>, skipping obvious boilerplate containers. The returned node
// still belongs to doc; callers must import/clone it before mutating, per
// the DOM mutation invariants in spec §9.
func HeuristicContent(doc *html.Node) (*html.Node, bool) {
	for _, tag := range []string{"article", "main", "body"} {
		if n := findFirstNonBoilerplate(doc, tag); n != nil {
			return n, true
		}
	}
	return nil, false
}

// findFirstNonBoilerplate is findFirst restricted to tag matches that aren't
// themselves boilerplate chrome (spec §4.4 heuristic fallback): a page whose
// first <article> is actually a cookie-consent widget should fall through to
// its next <article>, not surface the banner as the extracted content.
func findFirstNonBoilerplate(n *html.Node, tag string) *html.Node {
	var res *html.Node
	walk(n, func(cur *html.Node) bool {
		if cur.Type == html.ElementNode && strings.EqualFold(cur.Data, tag) && !IsBoilerplateContainer(cur) {
			res = cur
			return false
		}
		return true
	})
	return res
}

// HeuristicLanguage reads <html lang="...">, falling back to
// <meta http-equiv="content-language">.
func HeuristicLanguage(doc *html.Node) (string, bool) {
	if html := findFirst(doc, "html"); html != nil {
		if v := attr(html, "lang"); v != "" {
			return v, true
		}
	}
	var lang string
	walk(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, "meta") {
			if strings.EqualFold(attr(n, "http-equiv"), "content-language") {
				if v := attr(n, "content"); v != "" {
					lang = v
					return false
				}
			}
		}
		return true
	})
	return lang, lang != ""
}

// IsBoilerplateContainer reports whether n looks like a cookie/consent
// banner or other chrome that should never survive into extracted content.
func IsBoilerplateContainer(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	switch strings.ToLower(n.Data) {
	case "script", "style", "noscript", "nav", "footer", "aside", "iframe":
		return true
	}
	for _, a := range n.Attr {
		key := strings.ToLower(a.Key)
		if key != "id" && key != "class" && !strings.HasPrefix(key, "data-") && key != "aria-label" && key != "role" {
			continue
		}
		val := strings.ToLower(a.Value)
		if containsAny(val, []string{"cookie", "consent", "gdpr"}) {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func findFirst(n *html.Node, tag string) *html.Node {
	var res *html.Node
	walk(n, func(cur *html.Node) bool {
		if cur.Type == html.ElementNode && strings.EqualFold(cur.Data, tag) {
			res = cur
			return false
		}
		return true
	})
	return res
}

// walk runs visit depth-first over n and its descendants, stopping early
// when visit returns false.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Value
		}
	}
	return ""
}
