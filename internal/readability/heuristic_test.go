package readability

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func parseDoc(t *testing.T, s string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestHeuristicTitle(t *testing.T) {
	doc := parseDoc(t, `<html><head><title>Hello</title></head><body></body></html>`)
	title, ok := HeuristicTitle(doc)
	if !ok || title != "Hello" {
		t.Fatalf("expected Hello, got %q (%v)", title, ok)
	}
}

func TestHeuristicContent_PrefersArticle(t *testing.T) {
	doc := parseDoc(t, `<html><body><nav>nav</nav><article><p>body text</p></article></body></html>`)
	node, ok := HeuristicContent(doc)
	if !ok {
		t.Fatalf("expected a content node")
	}
	if node.Data != "article" {
		t.Fatalf("expected article, got %q", node.Data)
	}
}

func TestHeuristicContent_FallsBackToBody(t *testing.T) {
	doc := parseDoc(t, `<html><body><p>just a paragraph</p></body></html>`)
	node, ok := HeuristicContent(doc)
	if !ok || node.Data != "body" {
		t.Fatalf("expected body fallback, got %+v (%v)", node, ok)
	}
}

func TestIsBoilerplateContainer(t *testing.T) {
	doc := parseDoc(t, `<html><body><div id="cookie-banner">accept cookies</div></body></html>`)
	var found *html.Node
	walk(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "div" {
			found = n
			return false
		}
		return true
	})
	if found == nil || !IsBoilerplateContainer(found) {
		t.Fatalf("expected cookie banner div to be flagged boilerplate")
	}
}
