package pipeline

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeURL rewrites feed:// to http://, prepends http:// to schemaless
// input, and validates the result parses as a URL (spec §4.4 "Normalize
// URL", spec §8 idempotence property).
func NormalizeURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	if strings.HasPrefix(s, "feed://") {
		s = "http://" + strings.TrimPrefix(s, "feed://")
	} else if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return s, nil
}

// URLAllowed applies the allow/block policy of spec §6: a non-empty
// allowedURLs list makes blockedURLs irrelevant, matching is a
// case-insensitive substring test against the URL.
func URLAllowed(rawURL string, allowedURLs, blockedURLs []string) bool {
	lower := strings.ToLower(rawURL)
	if len(allowedURLs) > 0 {
		for _, needle := range allowedURLs {
			if needle != "" && strings.Contains(lower, strings.ToLower(needle)) {
				return true
			}
		}
		return false
	}
	for _, needle := range blockedURLs {
		if needle != "" && strings.Contains(lower, strings.ToLower(needle)) {
			return false
		}
	}
	return true
}
