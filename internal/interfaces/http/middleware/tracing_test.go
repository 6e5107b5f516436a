package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zambezimeats/backend/internal/infrastructure/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func tracedRouter(t *testing.T) (*gin.Engine, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	router := gin.New()
	router.Use(RequestID(), Tracing("zambezi-test", tp), SpanEnricher())
	router.GET("/orders/:number", func(c *gin.Context) {
		c.Set(logger.GinUserIDKey, "user-1")
		c.Status(http.StatusOK)
	})
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	return router, sr
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracing_EnrichesSpan(t *testing.T) {
	router, sr := tracedRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/orders/ZM-20260310-ABC123", nil)
	req.Header.Set(RequestIDHeader, "req-42")

	router.ServeHTTP(httptest.NewRecorder(), req)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /orders/:number", spans[0].Name())
	requestID, ok := spanAttr(spans[0], "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-42", requestID.AsString())
	userID, ok := spanAttr(spans[0], "user_id")
	require.True(t, ok)
	assert.Equal(t, "user-1", userID.AsString())
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}

func TestTracing_ServerErrorMarksSpan(t *testing.T) {
	router, sr := tracedRouter(t)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}
