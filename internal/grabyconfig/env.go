package grabyconfig

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides forcefully overrides cfg fields whose environment
// variable is set, so env takes precedence over the file config; flags
// stay highest precedence only when the caller applies them after this
// call, as cmd/graby does (spec §6, teacher's ApplyEnvOverrides pattern).
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	if v := os.Getenv("GRABY_DEBUG"); v != "" {
		cfg.Debug = parseBool(v, cfg.Debug)
	}
	if v := os.Getenv("GRABY_REWRITE_RELATIVE_URLS"); v != "" {
		cfg.RewriteRelativeURLs = parseBool(v, cfg.RewriteRelativeURLs)
	}
	if v := os.Getenv("GRABY_SINGLEPAGE"); v != "" {
		cfg.SinglePage = parseBool(v, cfg.SinglePage)
	}
	if v := os.Getenv("GRABY_MULTIPAGE"); v != "" {
		cfg.MultiPage = parseBool(v, cfg.MultiPage)
	}
	if v := os.Getenv("GRABY_ERROR_MESSAGE"); v != "" {
		cfg.ErrorMessage = v
	}
	if v := os.Getenv("GRABY_ALLOWED_URLS"); v != "" {
		cfg.AllowedURLs = splitList(v)
	}
	if v := os.Getenv("GRABY_BLOCKED_URLS"); v != "" {
		cfg.BlockedURLs = splitList(v)
	}
	if v := os.Getenv("GRABY_XSS_FILTER"); v != "" {
		cfg.XSSFilter = parseBool(v, cfg.XSSFilter)
	}
	if v := os.Getenv("GRABY_CONTENT_LINKS"); v != "" {
		cfg.ContentLinks = ContentLinks(v)
	}
	if v := os.Getenv("GRABY_SUMMARY_WORDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SummaryWords = n
		}
	}

	if v := os.Getenv("GRABY_USER_AGENT"); v != "" {
		cfg.HTTPClient.UserAgent = v
	}
	if v := os.Getenv("GRABY_CACHE_DIR"); v != "" {
		cfg.HTTPClient.CacheDir = v
	}
	if v := os.Getenv("GRABY_MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPClient.MaxConcurrent = n
		}
	}
	if v := os.Getenv("GRABY_PER_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.HTTPClient.PerRequestTimeout = d
		}
	}
	if v := os.Getenv("GRABY_SSL_VERIFY"); v != "" {
		cfg.HTTPClient.SSLVerify = parseBool(v, cfg.HTTPClient.SSLVerify)
	}
	if v := os.Getenv("GRABY_CACHE_MAX_AGE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.HTTPClient.CacheMaxAge = d
		}
	}
	if v := os.Getenv("GRABY_CACHE_MAX_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			cfg.HTTPClient.CacheMaxBytes = n
		}
	}
	if v := os.Getenv("GRABY_CACHE_MAX_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.HTTPClient.CacheMaxCount = n
		}
	}

	if v := os.Getenv("GRABY_SITE_CONFIG_DIRS"); v != "" {
		cfg.ConfigBuilder.Directories = splitList(v)
	}
	if v := os.Getenv("GRABY_HOSTNAME_REGEX"); v != "" {
		cfg.ConfigBuilder.HostnameRegexPattern = v
	}
}

func parseBool(s string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
