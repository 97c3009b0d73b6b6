// Package fetch implements the Fetcher external collaborator (spec §4,
// "Out of scope: HTTP transport (only its response contract is used)"):
// the pipeline only relies on Response's status/headers/body/effective
// URL fields, so the transport internals below follow the teacher's
// existing retry/cache/concurrency-gate design rather than a redesign.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bdunogier/graby/internal/cache"
)

// Response is the fetch contract the rest of the pipeline depends on
// (spec §4.4 "Fetching"): status, headers, body, and the URL actually
// served after redirects.
type Response struct {
	Status       int
	Headers      http.Header
	Body         []byte
	EffectiveURL string
}

// Client wraps http.Client with timeouts, bounded retry on transient
// errors, an on-disk conditional cache, and a redirect/concurrency policy.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// PerRequestTimeout bounds each request.
	PerRequestTimeout time.Duration
	// Optional on-disk cache for HTTP GET bodies and headers.
	Cache *cache.HTTPCache
	// If true, bypass cache entirely and fetch fresh (no conditional headers),
	// but still save the latest response to cache.
	BypassCache bool

	// RedirectMaxHops caps redirect following to avoid loops. Zero means default (5).
	RedirectMaxHops int
	// MaxConcurrent limits concurrent in-flight requests per client instance.
	// Zero means unlimited.
	MaxConcurrent int

	// CacheMaxAge, CacheMaxBytes, and CacheMaxCount bound the on-disk cache
	// so it doesn't grow unbounded across runs. Zero/non-positive disables
	// that dimension. Enforced periodically (every cacheMaintenanceEvery
	// saves), not on every request, since both are directory-wide scans.
	CacheMaxAge   time.Duration
	CacheMaxBytes int64
	CacheMaxCount int

	limiter        chan struct{}
	limiterOnce    sync.Once
	saveCount      uint64
	saveCountMutex sync.Mutex
}

// cacheMaintenanceEvery bounds how often a successful cache save triggers a
// full directory scan for eviction, so high request volume doesn't turn
// every fetch into an O(entries) walk.
const cacheMaintenanceEvery = 20

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach our redirect policy without mutating caller's client.
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{Timeout: c.PerRequestTimeout, CheckRedirect: c.checkRedirectFunc()}
}

// Fetch issues a GET with context, user-agent, and bounded retry for
// transient errors, returning the full response contract.
func (c *Client) Fetch(ctx context.Context, target string) (Response, error) {
	var etag, lastMod string
	if c.Cache != nil && !c.BypassCache {
		if meta, err := c.Cache.LoadMeta(ctx, target); err == nil && meta != nil {
			etag = meta.ETag
			lastMod = meta.LastModified
		}
	}
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		resp, err := c.tryOnce(ctx, target, etag, lastMod)
		if err == nil {
			if c.Cache != nil && resp.Status == http.StatusOK {
				_ = c.Cache.Save(ctx, target, resp.Headers.Get("Content-Type"), resp.Headers.Get("ETag"), resp.Headers.Get("Last-Modified"), resp.Body)
				c.maintainCache()
			}
			if resp.Status == http.StatusNotModified && c.Cache != nil {
				if cached, cerr := c.Cache.LoadBody(ctx, target); cerr == nil {
					resp.Body = cached
					resp.Status = http.StatusOK
				}
			}
			return resp, nil
		}
		if !isTransient(err) || i == attempts-1 {
			return Response{}, err
		}
		lastErr = err
		time.Sleep(time.Duration(i+1) * 200 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return Response{}, lastErr
}

func (c *Client) tryOnce(ctx context.Context, target string, etag, lastMod string) (Response, error) {
	c.acquire()
	defer c.release()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Response{}, fmt.Errorf("new request: %w", err)
	}
	if req.URL == nil || !isHTTPScheme(req.URL) {
		return Response{}, fmt.Errorf("unsupported URL scheme: %q", target)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}

	httpClient := c.getHTTPClient()
	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(req.Context(), c.PerRequestTimeout)
		defer cancel()
		req = req.WithContext(ctx)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 && resp.StatusCode <= 599 {
		return Response{}, fmt.Errorf("server error: %d", resp.StatusCode)
	}

	effectiveURL := target
	if resp.Request != nil && resp.Request.URL != nil {
		effectiveURL = resp.Request.URL.String()
	}

	if resp.StatusCode == http.StatusNotModified {
		return Response{Status: resp.StatusCode, Headers: resp.Header, EffectiveURL: effectiveURL}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Response{}, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read body: %w", err)
	}
	return Response{Status: resp.StatusCode, Headers: resp.Header, Body: body, EffectiveURL: effectiveURL}, nil
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return strings.Contains(err.Error(), "server error:")
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		if req.URL == nil || !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// maintainCache throttles eviction to every cacheMaintenanceEvery-th save,
// since PurgeHTTPCacheByAge and EnforceHTTPCacheLimits both walk the whole
// cache directory. Failures are logged, not propagated: a fetch that
// succeeded shouldn't fail because housekeeping couldn't run.
func (c *Client) maintainCache() {
	if c.Cache == nil || (c.CacheMaxAge <= 0 && c.CacheMaxBytes <= 0 && c.CacheMaxCount <= 0) {
		return
	}
	c.saveCountMutex.Lock()
	c.saveCount++
	due := c.saveCount%cacheMaintenanceEvery == 0
	c.saveCountMutex.Unlock()
	if !due {
		return
	}
	if c.CacheMaxAge > 0 {
		if _, err := cache.PurgeHTTPCacheByAge(c.Cache.Dir, c.CacheMaxAge); err != nil {
			log.Warn().Err(err).Str("dir", c.Cache.Dir).Msg("cache age purge failed")
		}
	}
	if c.CacheMaxBytes > 0 || c.CacheMaxCount > 0 {
		if _, err := cache.EnforceHTTPCacheLimits(c.Cache.Dir, c.CacheMaxBytes, c.CacheMaxCount); err != nil {
			log.Warn().Err(err).Str("dir", c.Cache.Dir).Msg("cache limit enforcement failed")
		}
	}
}

func (c *Client) acquire() {
	if c.MaxConcurrent <= 0 {
		return
	}
	c.limiterOnce.Do(func() {
		c.limiter = make(chan struct{}, c.MaxConcurrent)
	})
	c.limiter <- struct{}{}
}

func (c *Client) release() {
	if c.MaxConcurrent <= 0 || c.limiter == nil {
		return
	}
	select {
	case <-c.limiter:
	default:
	}
}
