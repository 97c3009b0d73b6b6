package extract

import "golang.org/x/net/html"

// cloneNode deep-copies n (and its descendants) into a detached tree. Nodes
// picked up from XPath directives or from the readability adapter must be
// imported this way before they're appended elsewhere, so that mutating the
// copy (stripping, pruning) never reaches back into the source document
// (spec §9 "DOM mutation invariants").
func cloneNode(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	clone := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute{}, n.Attr...),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(cloneNode(c))
	}
	return clone
}

// wrapInContainer builds a detached <div> containing deep clones of nodes,
// in order. Used when a directive matches more than one node (graby's
// body/strip directives operate on node-lists, not single nodes).
func wrapInContainer(nodes []*html.Node) *html.Node {
	wrapper := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: 0}
	for _, n := range nodes {
		wrapper.AppendChild(cloneNode(n))
	}
	return wrapper
}
