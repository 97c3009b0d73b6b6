// Package extract implements the directive-driven extraction engine (spec
// §4.3, C7): it resolves a per-host SiteConfig, applies its XPath
// directives to a parsed document, falls back to a readability heuristic
// per field when directives come up empty, and strips configured noise out
// of the chosen content subtree.
package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"github.com/bdunogier/graby/internal/readability"
	"github.com/bdunogier/graby/internal/siteconfig"
)

// ReadabilityAdapter is the external contract C6 realizes (spec §2).
// extract.Extractor depends on the interface, not the concrete adapter, so
// tests can substitute a stub.
type ReadabilityAdapter interface {
	Title(doc *html.Node, pageURL string) (string, bool)
	Content(doc *html.Node, pageURL string) (*html.Node, bool)
	Language(doc *html.Node, pageURL string) (string, bool)
}

// Result carries everything Extractor.Process populates: the internal
// content_block, title, language, and next_page_url of spec §4.3.
type Result struct {
	OK           bool
	ContentBlock *html.Node
	Title        string
	Author       string
	Date         string
	Language     string
	NextPageURL  string
}

// Extractor applies a resolved SiteConfig's directives to HTML, falling
// back to a readability heuristic (spec §4.3, C7).
type Extractor struct {
	Resolver    *siteconfig.Resolver
	Readability ReadabilityAdapter

	// DefaultAutodetectOnFailure is the autodetect_on_failure value used when
	// a site config leaves the directive undeclared (spec §6
	// extractor.defaultAutodetectOnFailure).
	DefaultAutodetectOnFailure bool
}

// New builds an Extractor backed by resolver and the default readability
// adapter. defaultAutodetectOnFailure seeds site configs that never declare
// autodetect_on_failure themselves.
func New(resolver *siteconfig.Resolver, defaultAutodetectOnFailure bool) *Extractor {
	return &Extractor{
		Resolver:                   resolver,
		Readability:                readability.Adapter{},
		DefaultAutodetectOnFailure: defaultAutodetectOnFailure,
	}
}

// Process runs the full algorithm of spec §4.3 against rawHTML fetched from
// pageURL.
func (e *Extractor) Process(rawHTML []byte, pageURL string) (Result, error) {
	host, err := hostOf(pageURL)
	if err != nil {
		return Result{}, fmt.Errorf("extract: %w", err)
	}

	cfg, err := e.Resolver.BuildForHost(host, true)
	if err != nil {
		return Result{}, fmt.Errorf("extract: resolve site config: %w", err)
	}

	text := applyFindReplace(string(rawHTML), cfg.FindString, cfg.ReplaceString)
	if cfg.EffectiveTidy() {
		text = tidyHTML(text)
	}

	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return Result{}, fmt.Errorf("extract: parse html: %w", err)
	}

	logBad := func(expr string, err error) {
		log.Warn().Str("xpath", expr).Err(err).Msg("malformed xpath directive")
	}

	var res Result

	if title, ok := firstNonEmptyText(doc, cfg.Title, logBad); ok {
		res.Title = title
	}
	var contentNodes []*html.Node
	if nodes, ok := firstNonEmptyNodes(doc, cfg.Body, logBad); ok {
		contentNodes = nodes
	}
	if author, ok := firstNonEmptyText(doc, cfg.Author, logBad); ok {
		res.Author = author
	}
	if date, ok := firstNonEmptyText(doc, cfg.Date, logBad); ok {
		res.Date = date
	}

	autodetect := cfg.AutodetectOnFailure.Value(e.DefaultAutodetectOnFailure)
	if res.Title == "" && autodetect {
		if t, ok := e.Readability.Title(doc, pageURL); ok {
			res.Title = t
		}
	}
	if len(contentNodes) == 0 && autodetect {
		if node, ok := e.Readability.Content(doc, pageURL); ok {
			contentNodes = []*html.Node{node}
		}
	}

	if len(contentNodes) > 0 {
		res.ContentBlock = wrapInContainer(contentNodes)
		stripDirectives(res.ContentBlock, cfg, logBad)
		res.OK = true
	}

	if lang, ok := e.Readability.Language(doc, pageURL); ok {
		res.Language = lang
	}

	if next, ok := firstLinkMatch(doc, cfg.NextPageLink, logBad); ok {
		res.NextPageURL = next
	}

	return res, nil
}

// DetectSinglePageURL resolves host's SiteConfig and evaluates its
// single_page_link directives against rawHTML, returning the first matching
// candidate URL (spec §4.4 "Single-page promotion"). The pipeline calls this
// before extraction so it can decide whether to re-fetch a one-page view.
func (e *Extractor) DetectSinglePageURL(rawHTML []byte, pageURL string) (string, bool, error) {
	host, err := hostOf(pageURL)
	if err != nil {
		return "", false, fmt.Errorf("extract: %w", err)
	}
	cfg, err := e.Resolver.BuildForHost(host, true)
	if err != nil {
		return "", false, fmt.Errorf("extract: resolve site config: %w", err)
	}
	if len(cfg.SinglePageLink) == 0 {
		return "", false, nil
	}
	doc, err := html.Parse(strings.NewReader(string(rawHTML)))
	if err != nil {
		return "", false, fmt.Errorf("extract: parse html: %w", err)
	}
	logBad := func(expr string, err error) {
		log.Warn().Str("xpath", expr).Err(err).Msg("malformed xpath directive")
	}
	candidate, ok := firstLinkMatch(doc, cfg.SinglePageLink, logBad)
	return candidate, ok, nil
}

func hostOf(pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	return u.Hostname(), nil
}

// applyFindReplace performs ordered, literal substring replacement (spec
// §4.3 step 2). It is intentionally not regex-based: site configs encode
// literal find/replace pairs.
func applyFindReplace(html string, find, replace []string) string {
	n := len(find)
	if len(replace) < n {
		n = len(replace)
	}
	for i := 0; i < n; i++ {
		if find[i] == "" {
			continue
		}
		html = strings.ReplaceAll(html, find[i], replace[i])
	}
	return html
}

// tidyHTML emulates an HTML tidy pre-pass by round-tripping the document
// through the parser and serializer: html.Parse already tolerates the
// malformed markup tidy exists to fix, so rendering the parsed tree back
// out yields well-formed markup without a separate tidy library (none
// appears anywhere in the retrieval pack; see DESIGN.md).
func tidyHTML(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}
	var buf strings.Builder
	if err := html.Render(&buf, doc); err != nil {
		return s
	}
	return buf.String()
}

func stripDirectives(root *html.Node, cfg siteconfig.SiteConfig, logBad func(string, error)) {
	removeByXPath(root, cfg.Strip, logBad)
	removeByAttrContains(root, cfg.StripIDOrClass, []string{"id", "class"})
	removeImagesByAttrContains(root, cfg.StripImageSrc)
}

func removeByXPath(root *html.Node, exprs []string, logBad func(string, error)) {
	if len(exprs) == 0 {
		return
	}
	for _, expr := range exprs {
		nodes, ok := firstNonEmptyNodes(root, []string{expr}, logBad)
		if !ok {
			continue
		}
		for _, n := range nodes {
			removeNode(n)
		}
	}
}

func removeByAttrContains(root *html.Node, needles []string, attrs []string) {
	if len(needles) == 0 {
		return
	}
	var toRemove []*html.Node
	walkTree(root, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		for _, a := range attrs {
			v := strings.ToLower(attrValue(n, a))
			for _, needle := range needles {
				if needle != "" && strings.Contains(v, strings.ToLower(needle)) {
					toRemove = append(toRemove, n)
					return
				}
			}
		}
	})
	for _, n := range toRemove {
		removeNode(n)
	}
}

func removeImagesByAttrContains(root *html.Node, needles []string) {
	if len(needles) == 0 {
		return
	}
	var toRemove []*html.Node
	walkTree(root, func(n *html.Node) {
		if n.Type != html.ElementNode || !strings.EqualFold(n.Data, "img") {
			return
		}
		src := strings.ToLower(attrValue(n, "src"))
		for _, needle := range needles {
			if needle != "" && strings.Contains(src, strings.ToLower(needle)) {
				toRemove = append(toRemove, n)
				return
			}
		}
	})
	for _, n := range toRemove {
		removeNode(n)
	}
}

func walkTree(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkTree(c, visit)
	}
}

func attrValue(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Value
		}
	}
	return ""
}

func removeNode(n *html.Node) {
	if n == nil || n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}
