package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zambezimeats/backend/internal/infrastructure/logger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing starts a server span per request through otelgin. Pair it with
// SpanEnricher for request and user attributes.
func Tracing(serviceName string, tp trace.TracerProvider) gin.HandlerFunc {
	return otelgin.Middleware(serviceName, otelgin.WithTracerProvider(tp))
}

// SpanEnricher tags the active span with the request id and, once
// authentication has run, the user id. 5xx responses mark the span failed.
// Place it right after Tracing.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		if id := c.GetString(logger.GinRequestIDKey); id != "" {
			span.SetAttributes(attribute.String("request_id", id))
		}
		if id := c.GetString(logger.GinUserIDKey); id != "" {
			span.SetAttributes(attribute.String("user_id", id))
		}
		if status := c.Writer.Status(); status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
