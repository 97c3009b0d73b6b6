package postprocess

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var whitespaceRunRe = regexp.MustCompile(`[ \t\n\r\f\v]+`)

// NormalizeWhitespace collapses runs of whitespace in every text node under
// root to a single space (spec §4.4 "Post-extraction").
func NormalizeWhitespace(root *html.Node) {
	walk(root, func(n *html.Node) {
		if n.Type == html.TextNode {
			n.Data = whitespaceRunRe.ReplaceAllString(n.Data, " ")
		}
	})
}

// DropEmptyTextNodes removes text nodes that are empty or pure whitespace.
func DropEmptyTextNodes(root *html.Node) {
	var toRemove []*html.Node
	walk(root, func(n *html.Node) {
		if isBlank(n) {
			toRemove = append(toRemove, n)
		}
	})
	for _, n := range toRemove {
		detach(n)
	}
}

// StripEmptyParagraphs removes <p></p> elements left with no text content
// after stripping and whitespace normalization.
func StripEmptyParagraphs(root *html.Node) {
	var toRemove []*html.Node
	walk(root, func(n *html.Node) {
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, "p") && !hasNonBlankContent(n) {
			toRemove = append(toRemove, n)
		}
	})
	for _, n := range toRemove {
		detach(n)
	}
}

func hasNonBlankContent(n *html.Node) bool {
	found := false
	walk(n, func(c *html.Node) {
		switch c.Type {
		case html.TextNode:
			if !isBlank(c) {
				found = true
			}
		case html.ElementNode:
			if strings.EqualFold(c.Data, "img") {
				found = true
			}
		}
	})
	return found
}
