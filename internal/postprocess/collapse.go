package postprocess

import (
	"strings"

	"golang.org/x/net/html"
)

var nestingCollapseTags = map[string]bool{
	"div": true, "article": true, "section": true, "header": true, "footer": true,
}

// CollapseNesting removes trivial wrapper nesting: single-child chains of
// div/article/section/header/footer collapse down to the outermost tag
// (spec §4.4 "Post-extraction").
func CollapseNesting(root *html.Node) {
	collapseNode(root)
}

func collapseNode(n *html.Node) {
	if n.Type != html.ElementNode {
		return
	}
	for isContainerCollapseTag(n.Data) {
		only := onlyElementChild(n)
		if only == nil || !isContainerCollapseTag(only.Data) {
			break
		}
		spliceChildrenUp(n, only)
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		collapseNode(c)
		c = next
	}
}

func isContainerCollapseTag(tag string) bool {
	return nestingCollapseTags[strings.ToLower(tag)]
}

// onlyElementChild returns n's sole element child when n has exactly one
// element child and no other non-blank content, else nil.
func onlyElementChild(n *html.Node) *html.Node {
	var only *html.Node
	count := 0
	for _, c := range children(n) {
		switch {
		case c.Type == html.ElementNode:
			count++
			only = c
		case c.Type == html.TextNode && !isBlank(c):
			return nil
		}
	}
	if count == 1 {
		return only
	}
	return nil
}

// spliceChildrenUp replaces wrapper's single child (only) with only's own
// children, collapsing one level of nesting.
func spliceChildrenUp(wrapper, only *html.Node) {
	wrapper.RemoveChild(only)
	for c := only.FirstChild; c != nil; {
		next := c.NextSibling
		only.RemoveChild(c)
		wrapper.AppendChild(c)
		c = next
	}
}
