package client

import (
	"net/http"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
)

// NewCachingTransport wraps base with an HTTP cache that revalidates stored
// responses using their ETag. An empty cacheDir keeps the cache in memory.
func NewCachingTransport(cacheDir string, base http.RoundTripper) *httpcache.Transport {
	var cache httpcache.Cache
	if cacheDir == "" {
		cache = httpcache.NewMemoryCache()
	} else {
		// Use disk-based cache for persistence across runs
		cache = diskcache.New(cacheDir)
	}

	transport := httpcache.NewTransport(cache)
	transport.Transport = base
	return transport
}

// NewCachingHTTPClient creates an HTTP client with disk-based caching.
func NewCachingHTTPClient(cacheDir string) *http.Client {
	return &http.Client{
		Transport: NewCachingTransport(cacheDir, http.DefaultTransport),
	}
}

// NewInMemoryCachingHTTPClient creates an HTTP client with in-memory caching only.
// Suitable for testing or when disk caching is not desired.
func NewInMemoryCachingHTTPClient() *http.Client {
	return NewCachingHTTPClient("")
}

// FromCache reports whether resp was served from the cache.
func FromCache(resp *http.Response) bool {
	return resp.Header.Get(httpcache.XFromCache) == "1"
}
