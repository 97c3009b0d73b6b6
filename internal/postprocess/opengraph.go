package postprocess

import (
	"strings"

	"golang.org/x/net/html"
)

// ExtractOpenGraph selects every meta[property^="og:"] on the originally
// fetched document and returns a map keyed by the property with ":"
// replaced by "_" (spec §4.4 "OpenGraph").
func ExtractOpenGraph(doc *html.Node) map[string]string {
	og := make(map[string]string)
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || !strings.EqualFold(n.Data, "meta") {
			return
		}
		property := attrValue(n, "property")
		if !strings.HasPrefix(property, "og:") {
			return
		}
		key := strings.ReplaceAll(property, ":", "_")
		og[key] = attrValue(n, "content")
	})
	return og
}
