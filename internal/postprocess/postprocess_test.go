package postprocess

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func parseFragmentDiv(t *testing.T, s string) *html.Node {
	t.Helper()
	nodes, err := html.ParseFragment(strings.NewReader(s), &html.Node{Type: html.ElementNode, Data: "body"})
	if err != nil {
		t.Fatalf("parse fragment: %v", err)
	}
	wrapper := &html.Node{Type: html.ElementNode, Data: "div"}
	for _, n := range nodes {
		n.Parent = nil
		n.PrevSibling = nil
		n.NextSibling = nil
		wrapper.AppendChild(n)
	}
	return wrapper
}

func render(t *testing.T, n *html.Node) string {
	t.Helper()
	var buf strings.Builder
	if err := html.Render(&buf, n); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestAbsolutizeURLs(t *testing.T) {
	root := parseFragmentDiv(t, `<a href="/a/b">link</a><img src="c.png">`)
	AbsolutizeURLs(root, "https://example.com/articles/x")
	out := render(t, root)
	if !strings.Contains(out, `href="https://example.com/a/b"`) {
		t.Fatalf("expected absolute href, got %s", out)
	}
	if !strings.Contains(out, `src="https://example.com/articles/c.png"`) {
		t.Fatalf("expected absolute src, got %s", out)
	}
}

func TestAbsolutizeURLs_SkipsAlreadyAbsolute(t *testing.T) {
	root := parseFragmentDiv(t, `<a href="https://other.example/z">link</a>`)
	AbsolutizeURLs(root, "https://example.com/x")
	out := render(t, root)
	if !strings.Contains(out, `href="https://other.example/z"`) {
		t.Fatalf("expected unchanged absolute href, got %s", out)
	}
}

func TestCollapseNesting(t *testing.T) {
	root := parseFragmentDiv(t, `<article><section><p>only content</p></section></article>`)
	CollapseNesting(root)
	out := render(t, root)
	if strings.Contains(out, "<article>") || strings.Contains(out, "<section>") {
		t.Fatalf("expected nesting collapsed, got %s", out)
	}
	if !strings.Contains(out, "<p>only content</p>") {
		t.Fatalf("expected paragraph preserved, got %s", out)
	}
}

func TestCollapseNesting_StopsAtMultipleChildren(t *testing.T) {
	root := parseFragmentDiv(t, `<div id="keep"><p>one</p></div><div id="keep2"><p>two</p></div>`)
	CollapseNesting(root)
	out := render(t, root)
	if !strings.Contains(out, `id="keep"`) || !strings.Contains(out, `id="keep2"`) {
		t.Fatalf("expected both sibling divs preserved since root has two children, got %s", out)
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	root := parseFragmentDiv(t, "<p>hello   \n\t  world</p>")
	NormalizeWhitespace(root)
	out := render(t, root)
	if !strings.Contains(out, "hello world") {
		t.Fatalf("expected collapsed whitespace, got %q", out)
	}
}

func TestStripEmptyParagraphs(t *testing.T) {
	root := parseFragmentDiv(t, `<p>   </p><p>real</p><p><img src="x.png"></p>`)
	StripEmptyParagraphs(root)
	out := render(t, root)
	if strings.Count(out, "<p>") != 2 {
		t.Fatalf("expected empty paragraph removed, got %s", out)
	}
}

func TestConvertLinksToFootnotes(t *testing.T) {
	root := parseFragmentDiv(t, `<p>see <a href="https://example.com/ref">this</a> for more</p>`)
	ConvertLinksToFootnotes(root)
	out := render(t, root)
	if strings.Contains(out, "<a ") {
		t.Fatalf("expected anchor unwrapped, got %s", out)
	}
	if !strings.Contains(out, "this [1]") {
		t.Fatalf("expected footnote marker, got %s", out)
	}
	if !strings.Contains(out, "1. https://example.com/ref") {
		t.Fatalf("expected footnote list entry, got %s", out)
	}
}

func TestStripAllLinks(t *testing.T) {
	root := parseFragmentDiv(t, `<p>see <a href="https://example.com/ref">this</a> for more</p>`)
	StripAllLinks(root)
	out := render(t, root)
	if strings.Contains(out, "<a ") {
		t.Fatalf("expected anchor removed, got %s", out)
	}
	if !strings.Contains(out, "see this for more") {
		t.Fatalf("expected text preserved, got %s", out)
	}
}

func TestSerialize_ContainerUsesInnerHTML(t *testing.T) {
	root := parseFragmentDiv(t, `<p>hi</p>`)
	out, err := Serialize(root)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if strings.Contains(out, "<div>") {
		t.Fatalf("expected innerHTML without the wrapping div, got %s", out)
	}
	if !strings.Contains(out, "<p>hi</p>") {
		t.Fatalf("expected paragraph content, got %s", out)
	}
}

func TestSerialize_NonContainerUsesOuterHTML(t *testing.T) {
	root := &html.Node{Type: html.ElementNode, Data: "p"}
	root.AppendChild(&html.Node{Type: html.TextNode, Data: "hi"})
	out, err := Serialize(root)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if !strings.Contains(out, "<p>hi</p>") {
		t.Fatalf("expected outerHTML with tag, got %s", out)
	}
}

func TestExtractOpenGraph(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(`<html><head>
		<meta property="og:title" content="Hi">
		<meta property="og:site_name" content="Example">
		<meta name="description" content="ignored">
	</head><body></body></html>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	og := ExtractOpenGraph(doc)
	if og["og_title"] != "Hi" {
		t.Fatalf("expected og_title Hi, got %+v", og)
	}
	if og["og_site_name"] != "Example" {
		t.Fatalf("expected og_site_name Example, got %+v", og)
	}
	if _, ok := og["description"]; ok {
		t.Fatalf("expected non-og meta to be excluded, got %+v", og)
	}
}

func TestSummary_TruncatesWithEllipsis(t *testing.T) {
	words := make([]string, 0, 60)
	for i := 0; i < 60; i++ {
		words = append(words, "word")
	}
	html := "<p>" + strings.Join(words, " ") + "</p>"
	out := Summary(html, 0)
	if !strings.HasSuffix(out, "…") {
		t.Fatalf("expected ellipsis, got %q", out)
	}
	if strings.Count(out, "word") != 55 {
		t.Fatalf("expected 55 words, got %d", strings.Count(out, "word"))
	}
}

func TestSummary_ShortTextNotTruncated(t *testing.T) {
	out := Summary("<p>short and sweet</p>", 55)
	if out != "short and sweet" {
		t.Fatalf("expected untruncated text, got %q", out)
	}
}

func TestProcess_FullSequence(t *testing.T) {
	root := parseFragmentDiv(t, `<article><section>
		<script>evil()</script>
		<p>see   <a href="ref">this</a>    </p>
		<p></p>
	</section></article>`)

	out, err := Process(Options{
		ContentBlock:        root,
		EffectiveURL:        "https://example.com/a/",
		RewriteRelativeURLs: true,
		ContentLinks:        ContentLinksFootnotes,
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if strings.Contains(out, "evil()") {
		t.Fatalf("expected script stripped, got %s", out)
	}
	if strings.Contains(out, "<article>") || strings.Contains(out, "<section>") {
		t.Fatalf("expected nesting collapsed, got %s", out)
	}
	if !strings.Contains(out, "this [1]") {
		t.Fatalf("expected footnote marker, got %s", out)
	}
	if !strings.Contains(out, "https://example.com/a/ref") {
		t.Fatalf("expected absolutized footnote href, got %s", out)
	}
}
