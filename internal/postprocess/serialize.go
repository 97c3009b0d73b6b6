package postprocess

import (
	"strings"

	"golang.org/x/net/html"
)

var containerSerializationTags = map[string]bool{
	"div": true, "article": true, "section": true, "header": true,
	"footer": true, "li": true, "td": true,
}

// Serialize renders root as innerHTML when its tag is a container
// (div/article/section/header/footer/li/td), otherwise as outerXML (spec
// §4.4 "Post-extraction").
func Serialize(root *html.Node) (string, error) {
	if root.Type == html.ElementNode && containerSerializationTags[strings.ToLower(root.Data)] {
		return innerHTML(root)
	}
	return outerHTML(root)
}

func innerHTML(n *html.Node) (string, error) {
	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func outerHTML(n *html.Node) (string, error) {
	var buf strings.Builder
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
