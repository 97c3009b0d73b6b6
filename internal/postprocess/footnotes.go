package postprocess

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// ConvertLinksToFootnotes replaces every <a href> under root with its inner
// text plus a "[n]" marker, then appends a footnote list mapping each
// marker back to its href (spec §4.4 "Post-extraction"; the pipeline skips
// calling this for Wikipedia hosts, per the same paragraph).
func ConvertLinksToFootnotes(root *html.Node) {
	anchors := collectAnchors(root)
	if len(anchors) == 0 {
		return
	}

	type footnote struct {
		n    int
		href string
	}
	var notes []footnote

	n := 0
	for _, a := range anchors {
		href := attrValue(a, "href")
		if href == "" {
			continue
		}
		n++
		marker := &html.Node{Type: html.TextNode, Data: fmt.Sprintf(" [%d]", n)}
		insertMarkerAfter(a, marker)
		unwrap(a)
		notes = append(notes, footnote{n: n, href: href})
	}
	if len(notes) == 0 {
		return
	}

	list := &html.Node{Type: html.ElementNode, Data: "ol"}
	for _, note := range notes {
		li := &html.Node{Type: html.ElementNode, Data: "li"}
		li.AppendChild(&html.Node{Type: html.TextNode, Data: fmt.Sprintf("%d. %s", note.n, note.href)})
		list.AppendChild(li)
	}
	wrapper := &html.Node{Type: html.ElementNode, Data: "div"}
	for _, a := range []html.Attribute{{Key: "class", Val: "footnotes"}} {
		wrapper.Attr = append(wrapper.Attr, a)
	}
	wrapper.AppendChild(list)
	root.AppendChild(wrapper)
}

// StripAllLinks unwraps every <a> tag under root, keeping its contents in
// place (spec §4.4, link policy "remove").
func StripAllLinks(root *html.Node) {
	for _, a := range collectAnchors(root) {
		unwrap(a)
	}
}

func collectAnchors(root *html.Node) []*html.Node {
	var anchors []*html.Node
	walk(root, func(n *html.Node) {
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, "a") {
			anchors = append(anchors, n)
		}
	})
	return anchors
}

func insertMarkerAfter(n, marker *html.Node) {
	if n.Parent == nil {
		return
	}
	n.Parent.InsertBefore(marker, n.NextSibling)
}

// unwrap replaces n with its children, preserving order, then removes n.
func unwrap(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
		c = next
	}
	parent.RemoveChild(n)
}

func attrValue(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Value
		}
	}
	return ""
}
