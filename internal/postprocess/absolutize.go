package postprocess

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

var absoluteURLPrefixes = []string{"http://", "https://"}

// AbsolutizeURLs walks a@href, img@src, and iframe@src attributes under
// root (including on root itself) and rewrites relative values against
// baseURL (spec §4.6). Entries that fail to resolve are left untouched.
func AbsolutizeURLs(root *html.Node, baseURL string) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return
	}

	walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		attrName, ok := attrForTag(n.Data)
		if !ok {
			return
		}
		for i := range n.Attr {
			if !strings.EqualFold(n.Attr[i].Key, attrName) {
				continue
			}
			if resolved, ok := resolveURL(base, n.Attr[i].Val); ok {
				n.Attr[i].Val = resolved
			}
		}
	})
}

func attrForTag(tag string) (string, bool) {
	switch strings.ToLower(tag) {
	case "a":
		return "href", true
	case "img", "iframe":
		return "src", true
	default:
		return "", false
	}
}

// resolveURL normalizes value (trim, %20-space round trip) and, unless
// already absolute, resolves it against base after collapsing any "//" run
// in the base path to "/" (spec §4.6).
func resolveURL(base *url.URL, value string) (string, bool) {
	v := normalizeURLValue(value)
	if v == "" {
		return "", false
	}
	if isAbsoluteURL(v) {
		return v, true
	}

	collapsedBase := *base
	collapsedBase.Path = collapseSlashes(collapsedBase.Path)

	ref, err := url.Parse(v)
	if err != nil {
		return "", false
	}
	resolved := collapsedBase.ResolveReference(ref)
	if resolved.String() == "" {
		return "", false
	}
	return resolved.String(), true
}

func normalizeURLValue(v string) string {
	v = strings.TrimSpace(v)
	v = strings.ReplaceAll(v, "%20", " ")
	v = strings.TrimSpace(v)
	v = strings.ReplaceAll(v, " ", "%20")
	return v
}

func isAbsoluteURL(v string) bool {
	lower := strings.ToLower(v)
	for _, p := range absoluteURLPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

func collapseSlashes(path string) string {
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	return path
}
