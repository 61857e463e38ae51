// Package cors grants the browser-based flyer editor access to the API
// from its own origin. Approval links in reviewer mail point at the same
// frontend, so both roles share one origin allow-list.
package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type originSet map[string]struct{}

func (s originSet) allows(origin string) bool {
	if len(s) == 0 {
		return true
	}
	_, ok := s[strings.TrimRight(origin, "/")]
	return ok
}

// New builds the middleware from the configured editor origins. An empty
// list allows any origin, which is the local-development default.
func New(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	allowed := make(originSet, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[strings.TrimRight(origin, "/")] = struct{}{}
	}

	return func(c *gin.Context) {
		header := c.Writer.Header()
		origin := c.GetHeader("Origin")
		switch {
		case origin != "" && (allowAll || allowed.allows(origin)):
			header.Set("Access-Control-Allow-Origin", origin)
		case origin == "" && allowAll:
			header.Set("Access-Control-Allow-Origin", "*")
		}

		header.Set("Vary", "Origin")
		header.Set("Access-Control-Allow-Credentials", "true")
		header.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With, X-Request-ID")
		header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		header.Set("Access-Control-Expose-Headers", "X-Request-ID")
		header.Set("Access-Control-Max-Age", "600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
