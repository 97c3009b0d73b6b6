// Package sanitize wraps bluemonday as the XSS filter black box the
// pipeline invokes when xss_filter is enabled (spec §4.8, external
// collaborator — internals not redesigned here).
package sanitize

import "github.com/microcosm-cc/bluemonday"

// Filter sanitizes extracted article HTML. It is safe for concurrent use:
// bluemonday's Policy is immutable once built.
type Filter struct {
	policy *bluemonday.Policy
}

// New builds a Filter with a policy permissive enough for article bodies:
// common text formatting, links, images, and tables survive; scripts,
// styles, and event-handler attributes never do.
func New() *Filter {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("id", "class").Globally()
	p.AllowStyling()
	return &Filter{policy: p}
}

// Sanitize returns html with disallowed elements and attributes removed.
func (f *Filter) Sanitize(html string) string {
	return f.policy.Sanitize(html)
}
