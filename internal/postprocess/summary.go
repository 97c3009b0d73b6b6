package postprocess

import (
	"strings"

	"golang.org/x/net/html"
)

const defaultSummaryWords = 55

// Summary strips tags from contentHTML, splits on whitespace, and returns
// the first n words (n <= 0 defaults to 55), appending an ellipsis when
// truncated (spec §4.4 "Summary").
func Summary(contentHTML string, n int) string {
	if n <= 0 {
		n = defaultSummaryWords
	}
	text := stripTags(contentHTML)
	words := strings.Fields(text)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + "…"
}

func stripTags(fragment string) string {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type: html.ElementNode,
		Data: "body",
	})
	if err != nil {
		return fragment
	}
	var buf strings.Builder
	for _, n := range nodes {
		walk(n, func(c *html.Node) {
			if c.Type == html.TextNode {
				buf.WriteString(c.Data)
				buf.WriteString(" ")
			}
		})
	}
	return buf.String()
}
