package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey = "response_meta"
	cacheHitKey     = "cache_hit"
	timingKey       = "processing_time_ms"
)

// WithResponseMeta attaches a metadata map to the request that handlers
// fill and the response envelope echoes. The active-flyer listing uses it
// to report whether the payload came from the Redis cache, and every
// response gets its processing time stamped on the way out.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Set(responseMetaKey, map[string]any{})
		c.Next()
		meta := ensureMeta(c)
		if _, exists := meta[timingKey]; !exists {
			meta[timingKey] = time.Since(start).Milliseconds()
		}
	}
}

// SetCacheHit marks the response as served from or past the listing cache.
func SetCacheHit(c *gin.Context, hit bool) {
	ensureMeta(c)[cacheHitKey] = hit
}

// ExtractMeta returns the metadata collected for the current request, or
// nil when WithResponseMeta is not in the chain.
func ExtractMeta(c *gin.Context) map[string]any {
	if c == nil {
		return nil
	}
	if meta, exists := c.Get(responseMetaKey); exists {
		if typed, ok := meta.(map[string]any); ok {
			return typed
		}
	}
	return nil
}

func ensureMeta(c *gin.Context) map[string]any {
	if meta := ExtractMeta(c); meta != nil {
		return meta
	}
	meta := map[string]any{}
	if c != nil {
		c.Set(responseMetaKey, meta)
	}
	return meta
}
