package shared

import "errors"

// DomainError is a business rule violation identified by a stable code.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches another DomainError by code so that errors.Is works against the
// sentinels below even when the message was customised.
func (e *DomainError) Is(target error) bool {
	var de *DomainError
	if !errors.As(target, &de) {
		return false
	}
	return de.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
)

// NotFound returns an ErrNotFound-compatible error naming the missing resource.
func NotFound(resource string) *DomainError {
	return NewDomainError(ErrNotFound.Code, resource+" not found")
}

// InvalidState returns an ErrInvalidState-compatible error with a custom message.
func InvalidState(message string) *DomainError {
	return NewDomainError(ErrInvalidState.Code, message)
}

// HasCode reports whether err is a DomainError carrying code.
func HasCode(err error, code string) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}

// Forbidden returns an ErrForbidden-compatible error with a custom message.
func Forbidden(message string) *DomainError {
	return NewDomainError(ErrForbidden.Code, message)
}
