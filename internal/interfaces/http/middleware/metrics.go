package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/zambezimeats/backend/internal/infrastructure/telemetry"
)

// unmatchedRoute labels requests that hit no route, keeping label values bounded.
const unmatchedRoute = "unmatched"

// Metrics records request count, latency and in-flight requests per route
// pattern. skipPaths are not recorded.
func Metrics(m *telemetry.HTTPMetrics, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		done := m.Begin()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		done(c.Request.Method, route, c.Writer.Status())
	}
}
