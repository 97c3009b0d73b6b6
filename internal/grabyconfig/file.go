package grabyconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the single-file configuration schema (spec §6). Nested
// sections mirror Config's sub-configurations and map naturally onto
// flags/env.
type FileConfig struct {
	Debug               bool     `yaml:"debug" json:"debug"`
	RewriteRelativeURLs *bool    `yaml:"rewriteRelativeUrls" json:"rewriteRelativeUrls"`
	SinglePage          *bool    `yaml:"singlepage" json:"singlepage"`
	MultiPage           *bool    `yaml:"multipage" json:"multipage"`
	ErrorMessage        string   `yaml:"errorMessage" json:"errorMessage"`
	AllowedURLs         []string `yaml:"allowedUrls" json:"allowedUrls"`
	BlockedURLs         []string `yaml:"blockedUrls" json:"blockedUrls"`
	XSSFilter           bool     `yaml:"xssFilter" json:"xssFilter"`
	ContentLinks        string   `yaml:"contentLinks" json:"contentLinks"`
	SummaryWords        int      `yaml:"summaryWords" json:"summaryWords"`

	ContentTypeExc map[string]ContentTypeOverride `yaml:"contentTypeExc" json:"contentTypeExc"`

	HTTPClient struct {
		UserAgent         string        `yaml:"userAgent" json:"userAgent"`
		MaxAttempts       int           `yaml:"maxAttempts" json:"maxAttempts"`
		PerRequestTimeout time.Duration `yaml:"perRequestTimeout" json:"perRequestTimeout"`
		RedirectMaxHops   int           `yaml:"redirectMaxHops" json:"redirectMaxHops"`
		MaxConcurrent     int           `yaml:"maxConcurrent" json:"maxConcurrent"`
		CacheDir          string        `yaml:"cacheDir" json:"cacheDir"`
		SSLVerify         *bool         `yaml:"sslVerify" json:"sslVerify"`
		CacheMaxAge       time.Duration `yaml:"cacheMaxAge" json:"cacheMaxAge"`
		CacheMaxBytes     int64         `yaml:"cacheMaxBytes" json:"cacheMaxBytes"`
		CacheMaxCount     int           `yaml:"cacheMaxCount" json:"cacheMaxCount"`
	} `yaml:"httpClient" json:"httpClient"`

	Extractor struct {
		DefaultAutodetectOnFailure *bool `yaml:"defaultAutodetectOnFailure" json:"defaultAutodetectOnFailure"`
	} `yaml:"extractor" json:"extractor"`

	ConfigBuilder struct {
		Directories   []string `yaml:"directories" json:"directories"`
		HostnameRegex string   `yaml:"hostnameRegex" json:"hostnameRegex"`
	} `yaml:"configBuilder" json:"configBuilder"`
}

// LoadFile reads YAML or JSON into a FileConfig, guessing the format from
// the extension and falling back to trying both (spec §6, teacher's
// LoadConfigFile pattern).
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFile overlays fc onto cfg for fields still at their zero/default
// value, so CLI flags (applied before this) always win.
func ApplyFile(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	def := Default()

	if fc.Debug {
		cfg.Debug = true
	}
	if fc.RewriteRelativeURLs != nil && cfg.RewriteRelativeURLs == def.RewriteRelativeURLs {
		cfg.RewriteRelativeURLs = *fc.RewriteRelativeURLs
	}
	if fc.SinglePage != nil && cfg.SinglePage == def.SinglePage {
		cfg.SinglePage = *fc.SinglePage
	}
	if fc.MultiPage != nil && cfg.MultiPage == def.MultiPage {
		cfg.MultiPage = *fc.MultiPage
	}
	if cfg.ErrorMessage == def.ErrorMessage && fc.ErrorMessage != "" {
		cfg.ErrorMessage = fc.ErrorMessage
	}
	if len(cfg.AllowedURLs) == 0 && len(fc.AllowedURLs) > 0 {
		cfg.AllowedURLs = append([]string{}, fc.AllowedURLs...)
	}
	if len(cfg.BlockedURLs) == 0 && len(fc.BlockedURLs) > 0 {
		cfg.BlockedURLs = append([]string{}, fc.BlockedURLs...)
	}
	if fc.XSSFilter {
		cfg.XSSFilter = true
	}
	if cfg.ContentLinks == def.ContentLinks && fc.ContentLinks != "" {
		cfg.ContentLinks = ContentLinks(fc.ContentLinks)
	}
	if cfg.SummaryWords == def.SummaryWords && fc.SummaryWords > 0 {
		cfg.SummaryWords = fc.SummaryWords
	}
	if len(cfg.ContentTypeExc) == 0 && len(fc.ContentTypeExc) > 0 {
		cfg.ContentTypeExc = fc.ContentTypeExc
	}

	if cfg.HTTPClient.UserAgent == def.HTTPClient.UserAgent && fc.HTTPClient.UserAgent != "" {
		cfg.HTTPClient.UserAgent = fc.HTTPClient.UserAgent
	}
	if cfg.HTTPClient.MaxAttempts == def.HTTPClient.MaxAttempts && fc.HTTPClient.MaxAttempts > 0 {
		cfg.HTTPClient.MaxAttempts = fc.HTTPClient.MaxAttempts
	}
	if cfg.HTTPClient.PerRequestTimeout == def.HTTPClient.PerRequestTimeout && fc.HTTPClient.PerRequestTimeout > 0 {
		cfg.HTTPClient.PerRequestTimeout = fc.HTTPClient.PerRequestTimeout
	}
	if cfg.HTTPClient.RedirectMaxHops == def.HTTPClient.RedirectMaxHops && fc.HTTPClient.RedirectMaxHops > 0 {
		cfg.HTTPClient.RedirectMaxHops = fc.HTTPClient.RedirectMaxHops
	}
	if cfg.HTTPClient.MaxConcurrent == def.HTTPClient.MaxConcurrent && fc.HTTPClient.MaxConcurrent > 0 {
		cfg.HTTPClient.MaxConcurrent = fc.HTTPClient.MaxConcurrent
	}
	if cfg.HTTPClient.CacheDir == def.HTTPClient.CacheDir && fc.HTTPClient.CacheDir != "" {
		cfg.HTTPClient.CacheDir = fc.HTTPClient.CacheDir
	}
	if fc.HTTPClient.SSLVerify != nil && cfg.HTTPClient.SSLVerify == def.HTTPClient.SSLVerify {
		cfg.HTTPClient.SSLVerify = *fc.HTTPClient.SSLVerify
	}
	if cfg.HTTPClient.CacheMaxAge == def.HTTPClient.CacheMaxAge && fc.HTTPClient.CacheMaxAge > 0 {
		cfg.HTTPClient.CacheMaxAge = fc.HTTPClient.CacheMaxAge
	}
	if cfg.HTTPClient.CacheMaxBytes == def.HTTPClient.CacheMaxBytes && fc.HTTPClient.CacheMaxBytes > 0 {
		cfg.HTTPClient.CacheMaxBytes = fc.HTTPClient.CacheMaxBytes
	}
	if cfg.HTTPClient.CacheMaxCount == def.HTTPClient.CacheMaxCount && fc.HTTPClient.CacheMaxCount > 0 {
		cfg.HTTPClient.CacheMaxCount = fc.HTTPClient.CacheMaxCount
	}

	if fc.Extractor.DefaultAutodetectOnFailure != nil && cfg.Extractor.DefaultAutodetectOnFailure == def.Extractor.DefaultAutodetectOnFailure {
		cfg.Extractor.DefaultAutodetectOnFailure = *fc.Extractor.DefaultAutodetectOnFailure
	}

	if len(fc.ConfigBuilder.Directories) > 0 {
		isDefault := len(cfg.ConfigBuilder.Directories) == len(def.ConfigBuilder.Directories)
		if isDefault {
			for i := range cfg.ConfigBuilder.Directories {
				if cfg.ConfigBuilder.Directories[i] != def.ConfigBuilder.Directories[i] {
					isDefault = false
					break
				}
			}
		}
		if isDefault {
			cfg.ConfigBuilder.Directories = append([]string{}, fc.ConfigBuilder.Directories...)
		}
	}
	if cfg.ConfigBuilder.HostnameRegexPattern == "" && fc.ConfigBuilder.HostnameRegex != "" {
		cfg.ConfigBuilder.HostnameRegexPattern = fc.ConfigBuilder.HostnameRegex
	}
}
