package siteconfig

import (
	"bufio"
	"strings"
)

// parse reads a rule file's text and returns the directives it declares.
// ok is false when the text yields zero usable lines, which callers must
// treat as "no config for this host" rather than a fatal error (spec §7,
// ConfigLoadError).
//
// Parsing rules follow spec §4.2 line by line: a bufio.Scanner over
// trimmed lines, skipping blank and '#' comment lines, splitting each on
// its first colon.
func parse(text string) (SiteConfig, bool) {
	var cfg SiteConfig
	lines := 0

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		colon := strings.IndexByte(raw, ':')
		if colon < 0 {
			continue
		}
		key := strings.TrimSpace(raw[:colon])
		val := strings.TrimSpace(raw[colon+1:])
		if key == "" || val == "" {
			continue
		}

		if applyDirective(&cfg, key, strings.ToLower(key), val) {
			lines++
		}
	}
	return cfg, lines > 0
}

// applyDirective mutates cfg for one parsed key/value pair and reports
// whether the key was recognized. origKey preserves the case the rule file
// declared it in; key is its lowercased form used to match directive names.
func applyDirective(cfg *SiteConfig, origKey, key, val string) bool {
	if pattern, replacement, ok := parseReplaceStringSugar(origKey, key, val); ok {
		cfg.FindString = append(cfg.FindString, pattern)
		cfg.ReplaceString = append(cfg.ReplaceString, replacement)
		return true
	}

	switch key {
	case "title":
		cfg.Title = append(cfg.Title, val)
	case "body":
		cfg.Body = append(cfg.Body, val)
	case "author":
		cfg.Author = append(cfg.Author, val)
	case "date":
		cfg.Date = append(cfg.Date, val)
	case "strip":
		cfg.Strip = append(cfg.Strip, val)
	case "strip_id_or_class":
		cfg.StripIDOrClass = append(cfg.StripIDOrClass, val)
	case "strip_image_src":
		cfg.StripImageSrc = append(cfg.StripImageSrc, val)
	case "single_page_link":
		cfg.SinglePageLink = append(cfg.SinglePageLink, val)
	case "next_page_link":
		cfg.NextPageLink = append(cfg.NextPageLink, val)
	case "http_header":
		cfg.HTTPHeader = append(cfg.HTTPHeader, val)
	case "test_url":
		cfg.TestURL = append(cfg.TestURL, val)
	case "find_string":
		cfg.FindString = append(cfg.FindString, val)
	case "replace_string":
		cfg.ReplaceString = append(cfg.ReplaceString, val)
	case "tidy":
		cfg.Tidy = declared(isYesTrue(val))
	case "prune":
		cfg.Prune = declared(isYesTrue(val))
	case "autodetect_on_failure":
		cfg.AutodetectOnFailure = declared(isYesTrue(val))
	case "parser":
		cfg.ParserName = Parser(strings.ToLower(val))
	default:
		return false
	}
	return true
}

// parseReplaceStringSugar recognizes "replace_string(<pattern>): <replacement>".
// The directive name is matched case-insensitively via lowerKey, but pattern
// is sliced out of origKey so the find string keeps its declared case —
// otherwise `replace_string(<H1>): <h2>` would store a find string that
// never matches case-sensitive markup (spec §4.3 applyFindReplace).
func parseReplaceStringSugar(origKey, lowerKey, val string) (pattern, replacement string, ok bool) {
	const prefix = "replace_string("
	if !strings.HasPrefix(lowerKey, prefix) || !strings.HasSuffix(lowerKey, ")") {
		return "", "", false
	}
	pattern = origKey[len(prefix) : len(origKey)-1]
	if pattern == "" {
		return "", "", false
	}
	return pattern, val, true
}

func isYesTrue(val string) bool {
	v := strings.ToLower(strings.TrimSpace(val))
	return v == "yes" || v == "true"
}
