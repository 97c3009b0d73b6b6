// Package grabyconfig assembles runtime configuration for the pipeline from
// flags, environment variables, and an optional YAML/JSON file, the same
// layered precedence (flags > env > file > built-in default) the teacher's
// internal/app config loader used.
package grabyconfig

import (
	"time"
)

// ContentLinks enumerates the content_links policy (spec §6).
type ContentLinks string

const (
	ContentLinksPreserve  ContentLinks = "preserve"
	ContentLinksFootnotes ContentLinks = "footnotes"
	ContentLinksRemove    ContentLinks = "remove"
)

// ContentTypeOverride is one content_type_exc entry (spec §6): an action
// (link|exclude) paired with a display name.
type ContentTypeOverride struct {
	Action string `yaml:"action" json:"action"`
	Name   string `yaml:"name" json:"name"`
}

// HTTPClientConfig configures the Fetcher sub-component (spec §6
// "http_client ... forwarded to those components").
type HTTPClientConfig struct {
	UserAgent         string        `yaml:"userAgent" json:"userAgent"`
	MaxAttempts       int           `yaml:"maxAttempts" json:"maxAttempts"`
	PerRequestTimeout time.Duration `yaml:"perRequestTimeout" json:"perRequestTimeout"`
	RedirectMaxHops   int           `yaml:"redirectMaxHops" json:"redirectMaxHops"`
	MaxConcurrent     int           `yaml:"maxConcurrent" json:"maxConcurrent"`
	CacheDir          string        `yaml:"cacheDir" json:"cacheDir"`
	SSLVerify         bool          `yaml:"sslVerify" json:"sslVerify"`

	// CacheMaxAge, CacheMaxBytes, and CacheMaxCount bound the on-disk cache's
	// growth. Zero/non-positive disables that dimension.
	CacheMaxAge   time.Duration `yaml:"cacheMaxAge" json:"cacheMaxAge"`
	CacheMaxBytes int64         `yaml:"cacheMaxBytes" json:"cacheMaxBytes"`
	CacheMaxCount int           `yaml:"cacheMaxCount" json:"cacheMaxCount"`
}

// ConfigBuilderConfig configures the site-config Resolver (spec §6
// "config_builder ... forwarded to those components").
type ConfigBuilderConfig struct {
	Directories         []string `yaml:"directories" json:"directories"`
	HostnameRegexPattern string  `yaml:"hostnameRegex" json:"hostnameRegex"`
}

// ExtractorConfig configures the directive-driven Extractor (spec §6
// "extractor ... forwarded to those components").
type ExtractorConfig struct {
	DefaultAutodetectOnFailure bool `yaml:"defaultAutodetectOnFailure" json:"defaultAutodetectOnFailure"`
}

// Config is the full set of recognized options (spec §6 "Configuration options").
type Config struct {
	Debug               bool
	RewriteRelativeURLs bool
	SinglePage          bool
	MultiPage           bool
	ErrorMessage        string
	AllowedURLs         []string
	BlockedURLs         []string
	XSSFilter           bool
	ContentTypeExc      map[string]ContentTypeOverride
	ContentLinks        ContentLinks
	SummaryWords        int

	HTTPClient    HTTPClientConfig
	Extractor     ExtractorConfig
	ConfigBuilder ConfigBuilderConfig
}

// Default returns the built-in defaults (spec §6): rewrite_relative_urls,
// singlepage, and multipage all default true.
func Default() Config {
	return Config{
		RewriteRelativeURLs: true,
		SinglePage:          true,
		MultiPage:           true,
		ErrorMessage:        "Could not extract content",
		ContentLinks:        ContentLinksPreserve,
		SummaryWords:        55,
		HTTPClient: HTTPClientConfig{
			UserAgent:         "graby/1.0 (+https://github.com/bdunogier/graby)",
			MaxAttempts:       2,
			PerRequestTimeout: 15 * time.Second,
			RedirectMaxHops:   5,
			MaxConcurrent:     4,
			CacheDir:          ".graby-cache",
			SSLVerify:         true,
			CacheMaxAge:       7 * 24 * time.Hour,
			CacheMaxBytes:     256 * 1024 * 1024,
			CacheMaxCount:     10000,
		},
		Extractor: ExtractorConfig{
			DefaultAutodetectOnFailure: true,
		},
		ConfigBuilder: ConfigBuilderConfig{
			Directories: []string{"site_config"},
		},
	}
}
