package postprocess

import (
	"strings"

	"golang.org/x/net/html"
)

var cleanStripTags = map[string]bool{
	"script": true, "style": true, "noscript": true,
}

// Clean removes script/style/noscript elements and comment nodes from
// root. It is this port's single-mode stand-in for the adapter's
// clean(content_block, 'select') step (spec §4.4); the readability
// adapter itself runs no such scrub.
func Clean(root *html.Node) {
	var toRemove []*html.Node
	walk(root, func(n *html.Node) {
		switch {
		case n.Type == html.CommentNode:
			toRemove = append(toRemove, n)
		case n.Type == html.ElementNode && cleanStripTags[strings.ToLower(n.Data)]:
			toRemove = append(toRemove, n)
		}
	})
	for _, n := range toRemove {
		detach(n)
	}
}
