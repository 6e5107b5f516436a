package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zambezimeats/backend/internal/infrastructure/logger"
	"github.com/zambezimeats/backend/internal/interfaces/http/dto"
)

// WebhookBodyLimit caps payment provider callbacks.
const WebhookBodyLimit int64 = 64 << 10

// BodyLimit rejects requests whose declared length exceeds maxBytes and
// caps the body reader for chunked uploads.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			abortWithError(c, dto.ErrCodeBodyTooBig, "Request body exceeds maximum allowed size")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// abortWithError ends the chain with the standard error envelope.
func abortWithError(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(dto.GetHTTPStatus(code),
		dto.NewErrorResponseWithRequestID(code, message, c.GetString(logger.GinRequestIDKey)))
}
