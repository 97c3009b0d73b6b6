package siteconfig

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

const globalFilename = "global.txt"

var defaultHostnameRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?(\.[a-z0-9]([a-z0-9-]*[a-z0-9])?)*$`)

// Resolver resolves and merges per-host site configs (spec §4.2, C3). It
// replaces the in-instance cache the original tool used with a
// concurrency-safe keyed store: readers never block each other, and at
// most one build runs per cache key at a time via singleflight, the way
// the teacher's robots.Manager deduplicated concurrent robots.txt fetches
// with a mutex-guarded map — here generalized to per-key dedup instead of
// a single global lock, and with no expiry: merged entries are immutable
// once published (spec §5).
type Resolver struct {
	Store         *FileStore
	HostnameRegex *regexp.Regexp

	mu       sync.RWMutex
	unmerged map[string]SiteConfig
	merged   map[string]SiteConfig
	group    singleflight.Group
}

// NewResolver builds a Resolver over store. A nil regexp falls back to a
// conservative default hostname pattern.
func NewResolver(store *FileStore, hostnameRegex *regexp.Regexp) *Resolver {
	if hostnameRegex == nil {
		hostnameRegex = defaultHostnameRegex
	}
	return &Resolver{
		Store:         store,
		HostnameRegex: hostnameRegex,
		unmerged:      make(map[string]SiteConfig),
		merged:        make(map[string]SiteConfig),
	}
}

// ErrInvalidHost is returned when a hostname fails validation (spec §4.2).
type ErrInvalidHost struct{ Host string }

func (e ErrInvalidHost) Error() string { return fmt.Sprintf("siteconfig: invalid host %q", e.Host) }

func (r *Resolver) validateHost(host string) (string, error) {
	h := normalizeHost(host)
	if h == "" || len(h) > 200 || !r.HostnameRegex.MatchString(h) {
		return "", ErrInvalidHost{Host: host}
	}
	return h, nil
}

// LoadSiteConfig returns the unmerged site-specific config for host, or
// (SiteConfig{}, false) if none matched. exactHostMatch disables the
// wildcard lookup step.
func (r *Resolver) LoadSiteConfig(host string, exactHostMatch bool) (SiteConfig, bool, error) {
	h, err := r.validateHost(host)
	if err != nil {
		return SiteConfig{}, false, err
	}

	r.mu.RLock()
	if cfg, ok := r.unmerged[h]; ok {
		r.mu.RUnlock()
		return cfg, true, nil
	}
	r.mu.RUnlock()

	cfg, ok := r.loadSiteConfigUncached(h, exactHostMatch)
	if ok {
		r.mu.Lock()
		r.unmerged[h] = cfg
		r.mu.Unlock()
	}
	return cfg, ok, nil
}

func (r *Resolver) loadSiteConfigUncached(host string, exactHostMatch bool) (SiteConfig, bool) {
	if cfg, ok := r.tryFile(host+".txt", host); ok {
		return cfg, true
	}
	if exactHostMatch {
		return SiteConfig{}, false
	}
	dot := strings.IndexByte(host, '.')
	if dot < 0 {
		return SiteConfig{}, false
	}
	rest := host[dot+1:]
	if rest == "" {
		return SiteConfig{}, false
	}
	wildcardName := "." + rest
	if cfg, ok := r.tryFile(wildcardName+".txt", wildcardName); ok {
		return cfg, true
	}
	return SiteConfig{}, false
}

func (r *Resolver) tryFile(filename, cacheKey string) (SiteConfig, bool) {
	path, ok := r.Store.Lookup(filename)
	if !ok {
		return SiteConfig{}, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return SiteConfig{}, false
	}
	cfg, ok := parse(string(data))
	if !ok {
		// Zero usable lines: ConfigLoadError is non-fatal, treated as no config.
		return SiteConfig{}, false
	}
	cfg.CacheKey = normalizeHost(cacheKey)
	return cfg, true
}

// BuildForHost returns the merged config (site-specific ∪ global) for host,
// building and caching it on first use (spec §4.2, "Merge order").
func (r *Resolver) BuildForHost(host string, addToCache bool) (SiteConfig, error) {
	h, err := r.validateHost(host)
	if err != nil {
		return SiteConfig{}, err
	}

	mergedKey := h + ".merged"
	r.mu.RLock()
	if cfg, ok := r.merged[mergedKey]; ok {
		r.mu.RUnlock()
		return cfg, nil
	}
	r.mu.RUnlock()

	v, err, _ := r.group.Do(mergedKey, func() (interface{}, error) {
		// Re-check under the singleflight key: another goroutine may have
		// published while we waited for the lock above.
		r.mu.RLock()
		if cfg, ok := r.merged[mergedKey]; ok {
			r.mu.RUnlock()
			return cfg, nil
		}
		r.mu.RUnlock()

		site, ok, lerr := r.LoadSiteConfig(h, false)
		if lerr != nil {
			return SiteConfig{}, lerr
		}
		if !ok {
			site = SiteConfig{}
		}

		result := site
		if site.EffectiveAutodetectOnFailure() {
			if global, gok, _ := r.LoadSiteConfig(strings.TrimSuffix(globalFilename, ".txt"), true); gok {
				result = merge(site, global)
			}
		}
		result.CacheKey = ""

		if addToCache {
			r.mu.Lock()
			r.merged[mergedKey] = result
			r.mu.Unlock()
		}
		return result, nil
	})
	if err != nil {
		return SiteConfig{}, err
	}
	return v.(SiteConfig), nil
}
