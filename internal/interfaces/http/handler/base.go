package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"github.com/zambezimeats/backend/internal/infrastructure/logger"
	"github.com/zambezimeats/backend/internal/infrastructure/telemetry"
	"github.com/zambezimeats/backend/internal/interfaces/http/dto"
	"github.com/zambezimeats/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	return c.GetString(logger.GinRequestIDKey)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response, deriving the status from the code.
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// HandleError maps domain errors to their status and anything else to 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.Error(c, dto.NormalizeErrorCode(domainErr.Code), domainErr.Message)
		return
	}

	_ = c.Error(err)
	logger.GetGinLogger(c).Error("Unhandled error",
		zap.Error(err),
		zap.String("trace_id", telemetry.TraceID(c.Request.Context())))
	h.Error(c, dto.ErrCodeInternal, "An unexpected error occurred")
}

// BindJSON binds the request body. Malformed JSON answers 400 and failed
// validation 422; the return value reports whether the handler may go on.
func (h *BaseHandler) BindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.bindError(c, err, dto.ErrCodeInvalidJSON, "Request body is not valid JSON")
		return false
	}
	return true
}

// BindOptionalJSON binds the body when one was sent; an empty body leaves
// req at its zero value.
func (h *BaseHandler) BindOptionalJSON(c *gin.Context, req any) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	return h.BindJSON(c, req)
}

// BindQuery binds query parameters with the same error handling as BindJSON.
func (h *BaseHandler) BindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		h.bindError(c, err, dto.ErrCodeBadRequest, "Invalid query parameters")
		return false
	}
	return true
}

func (h *BaseHandler) bindError(c *gin.Context, err error, code, message string) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		middleware.HandleValidationError(c, err)
		return
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.Error(c, dto.ErrCodeBodyTooBig, "Request body exceeds maximum allowed size")
		return
	}
	h.Error(c, code, message)
}

// ParamUUID parses a UUID path parameter, answering 400 when malformed.
func (h *BaseHandler) ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.Error(c, dto.ErrCodeInvalidID, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// CurrentUser returns the authenticated user's id, answering 401 when the
// request carries none.
func (h *BaseHandler) CurrentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetUserID(c)
	if !ok {
		h.Error(c, dto.ErrCodeUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	return id, true
}

// successPage sends a page of items with pagination meta.
func successPage[T any](c *gin.Context, page shared.Paginated[T]) {
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}
