// Package readability realizes the ReadabilityAdapter external contract
// (spec §2, C6): given a parsed DOM, produce a title, a content subtree, and
// a language when a site's directives don't cover a field. The primary
// implementation delegates to github.com/go-shiori/go-readability, a Go
// port of Mozilla's Readability.js and the direct analog of the heuristic
// scorer graby's PHP original wraps. A local heuristic (heuristic.go,
// adapted from this port's original plain-text extractor) backstops it
// when the library can't produce a result, so autodetection never simply
// fails outright.
package readability

import (
	"bytes"
	"net/url"
	"strings"

	goreadability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// Adapter wraps go-shiori/go-readability with a heuristic fallback.
type Adapter struct{}

// Title returns the best-guess article title for doc, autodetecting only
// when directives produced nothing (spec §9 "Heuristic/directive
// composition": title and body autodetect run independently per field).
func (Adapter) Title(doc *html.Node, pageURL string) (string, bool) {
	if art, err := fromDocument(doc, pageURL); err == nil {
		if t := strings.TrimSpace(art.Title); t != "" {
			return t, true
		}
	}
	return HeuristicTitle(doc)
}

// Content returns the best-guess content subtree for doc.
func (Adapter) Content(doc *html.Node, pageURL string) (*html.Node, bool) {
	if art, err := fromDocument(doc, pageURL); err == nil && strings.TrimSpace(art.Content) != "" {
		if node, ok := parseFragment(art.Content); ok {
			return node, true
		}
	}
	return HeuristicContent(doc)
}

// Language returns the best-guess document language.
func (Adapter) Language(doc *html.Node, pageURL string) (string, bool) {
	if art, err := fromDocument(doc, pageURL); err == nil {
		if l := strings.TrimSpace(art.Language); l != "" {
			return l, true
		}
	}
	return HeuristicLanguage(doc)
}

// fromDocument re-serializes doc and runs it through go-readability's
// FromReader, so the library parses the rendered bytes a second time; the
// page is not re-fetched — the pipeline never performs a second network
// request for this.
func fromDocument(doc *html.Node, pageURL string) (goreadability.Article, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return goreadability.Article{}, err
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		u = &url.URL{}
	}
	return goreadability.FromReader(&buf, u)
}

func parseFragment(fragment string) (*html.Node, bool) {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: 0,
	})
	if err != nil || len(nodes) == 0 {
		return nil, false
	}
	wrapper := &html.Node{Type: html.ElementNode, Data: "div"}
	for _, n := range nodes {
		n.Parent = nil
		n.PrevSibling = nil
		n.NextSibling = nil
		wrapper.AppendChild(n)
	}
	return wrapper, true
}
