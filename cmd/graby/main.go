package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bdunogier/graby/internal/cache"
	"github.com/bdunogier/graby/internal/extract"
	"github.com/bdunogier/graby/internal/fetch"
	"github.com/bdunogier/graby/internal/grabyconfig"
	"github.com/bdunogier/graby/internal/mimedispatch"
	"github.com/bdunogier/graby/internal/pipeline"
	"github.com/bdunogier/graby/internal/siteconfig"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		configPath string
		envPaths   stringListFlag
		verbose    bool
		cacheClear bool
	)

	flag.StringVar(&configPath, "config", "", "Path to a YAML/JSON graby config file")
	flag.Var(&envPaths, "env-file", "Dotenv file to load before reading GRABY_* env vars (repeatable)")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.BoolVar(&cacheClear, "cache-clear", false, "Wipe the HTTP cache directory before processing")
	flag.Parse()

	if err := grabyconfig.LoadEnvFiles(envPaths...); err != nil {
		log.Warn().Err(err).Msg("failed to load env file")
	}

	cfg := grabyconfig.Default()
	if configPath != "" {
		fc, err := grabyconfig.LoadFile(configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", configPath).Msg("failed to load config file")
		}
		grabyconfig.ApplyFile(&cfg, fc)
	}
	grabyconfig.ApplyEnvOverrides(&cfg)

	if verbose {
		cfg.Debug = true
	}
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := grabyconfig.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	if cacheClear {
		if err := cache.ClearDir(cfg.HTTPClient.CacheDir); err != nil {
			log.Fatal().Err(err).Str("dir", cfg.HTTPClient.CacheDir).Msg("failed to clear cache directory")
		}
	}

	args := flag.Args()
	if len(args) == 0 {
		log.Fatal().Msg("usage: graby [flags] <url> [url...]")
	}

	p, err := buildPipeline(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize pipeline")
	}

	results := make([]pipeline.Result, 0, len(args))
	for _, u := range args {
		res, err := p.Process(context.Background(), u)
		if err != nil {
			log.Error().Err(err).Str("url", u).Msg("failed to process url")
			continue
		}
		results = append(results, res)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		log.Fatal().Err(err).Msg("failed to encode results")
	}
}

func buildPipeline(cfg grabyconfig.Config) (*pipeline.Pipeline, error) {
	store, err := siteconfig.NewFileStore(cfg.ConfigBuilder.Directories)
	if err != nil {
		return nil, fmt.Errorf("site config store: %w", err)
	}

	var hostnameRegex *regexp.Regexp
	if cfg.ConfigBuilder.HostnameRegexPattern != "" {
		hostnameRegex, err = regexp.Compile(cfg.ConfigBuilder.HostnameRegexPattern)
		if err != nil {
			return nil, fmt.Errorf("hostname regex: %w", err)
		}
	}
	resolver := siteconfig.NewResolver(store, hostnameRegex)

	client := &fetch.Client{
		HTTPClient:        fetch.NewHighThroughputHTTPClient(cfg.HTTPClient.SSLVerify),
		UserAgent:         cfg.HTTPClient.UserAgent,
		MaxAttempts:       cfg.HTTPClient.MaxAttempts,
		PerRequestTimeout: cfg.HTTPClient.PerRequestTimeout,
		RedirectMaxHops:   cfg.HTTPClient.RedirectMaxHops,
		MaxConcurrent:     cfg.HTTPClient.MaxConcurrent,
		Cache:             &cache.HTTPCache{Dir: cfg.HTTPClient.CacheDir},
		CacheMaxAge:       cfg.HTTPClient.CacheMaxAge,
		CacheMaxBytes:     cfg.HTTPClient.CacheMaxBytes,
		CacheMaxCount:     cfg.HTTPClient.CacheMaxCount,
	}

	mimeTable := mimedispatch.NewDefault()
	for mime, override := range cfg.ContentTypeExc {
		mimeTable.Table[mime] = mimedispatch.Entry{Action: mimedispatch.Action(override.Action), Name: override.Name}
	}

	extractor := extract.New(resolver, cfg.Extractor.DefaultAutodetectOnFailure)

	return pipeline.New(cfg, client, mimeTable, extractor), nil
}

// stringListFlag collects repeatable -env-file flags into a []string.
type stringListFlag []string

func (s *stringListFlag) String() string {
	if s == nil {
		return ""
	}
	return fmt.Sprint([]string(*s))
}

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}
