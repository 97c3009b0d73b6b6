// Package siteconfig resolves and merges per-host extraction directives from
// plain-text rule files, the way graby's site_config files drive ftr-site-config.
package siteconfig

import "strings"

// OptBool is a tri-state boolean: declared-true, declared-false, or
// undeclared. It must never collapse to a plain bool because merge()
// distinguishes "undeclared" from "declared false".
type OptBool struct {
	set bool
	val bool
}

// Declared reports whether the directive was present in a rule file.
func (o OptBool) Declared() bool { return o.set }

// Value returns the declared value, or def when undeclared.
func (o OptBool) Value(def bool) bool {
	if !o.set {
		return def
	}
	return o.val
}

func declared(v bool) OptBool { return OptBool{set: true, val: v} }

// Parser names the HTML parser a site config requests. Graby supports
// libxml and html5lib; this port always uses golang.org/x/net/html's
// HTML5 tokenizer, so the field is carried through for directive fidelity
// but does not change which parser runs.
type Parser string

const (
	ParserUnset   Parser = ""
	ParserLibxml  Parser = "libxml"
	ParserHTML5   Parser = "html5lib"
	defaultParser        = ParserLibxml
)

// SiteConfig is the directive set for one hostname (spec §3, C1).
type SiteConfig struct {
	Title          []string
	Body           []string
	Author         []string
	Date           []string
	Strip          []string
	StripIDOrClass []string
	StripImageSrc  []string
	SinglePageLink []string
	NextPageLink   []string
	HTTPHeader     []string
	TestURL        []string

	FindString    []string
	ReplaceString []string

	Tidy                OptBool
	Prune               OptBool
	AutodetectOnFailure OptBool
	ParserName          Parser

	// CacheKey identifies the rule file this config was matched from
	// (e.g. "example.com" or ".example.com" for a wildcard). Cleared once
	// a config has been merged (see Resolver.BuildForHost).
	CacheKey string
}

// defaults applied on read unless the caller explicitly asked for the raw
// tri-state value.
const (
	defaultTidy                = false
	defaultPrune                = true
	defaultAutodetectOnFailure  = true
)

// EffectiveTidy returns Tidy with its default applied.
func (c SiteConfig) EffectiveTidy() bool { return c.Tidy.Value(defaultTidy) }

// EffectivePrune returns Prune with its default applied.
func (c SiteConfig) EffectivePrune() bool { return c.Prune.Value(defaultPrune) }

// EffectiveAutodetectOnFailure returns AutodetectOnFailure with its default applied.
func (c SiteConfig) EffectiveAutodetectOnFailure() bool {
	return c.AutodetectOnFailure.Value(defaultAutodetectOnFailure)
}

// EffectiveParser returns ParserName with its default applied.
func (c SiteConfig) EffectiveParser() Parser {
	if c.ParserName == ParserUnset {
		return defaultParser
	}
	return c.ParserName
}

// normalizeHost lowercases a hostname and strips a leading "www.".
func normalizeHost(host string) string {
	h := strings.ToLower(strings.TrimSpace(host))
	h = strings.TrimPrefix(h, "www.")
	return h
}
