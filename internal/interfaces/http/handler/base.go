package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rosterly/backend/internal/domain/shared"
	"github.com/rosterly/backend/internal/interfaces/http/dto"
)

// RequestIDKey is the context key for request ID
const RequestIDKey = "request_id"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// getActor returns the caller identity recorded as created_by on
// writes. There is no auth layer; the proxy in front of the API sets
// the header.
func getActor(c *gin.Context) string {
	if actor := c.GetHeader("X-User"); actor != "" {
		return actor
	}
	return c.PostForm("created_by")
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	requestID := getRequestID(c)
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, requestID))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// PayloadTooLarge sends a 413 response
func (h *BaseHandler) PayloadTooLarge(c *gin.Context, message string) {
	h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeFileTooLarge, message)
}

// UnsupportedMedia sends a 415 response
func (h *BaseHandler) UnsupportedMedia(c *gin.Context, message string) {
	h.Error(c, http.StatusUnsupportedMediaType, dto.ErrCodeUnsupportedMedia, message)
}

// UnprocessableEntity sends a 422 response
func (h *BaseHandler) UnprocessableEntity(c *gin.Context, code, message string) {
	h.Error(c, http.StatusUnprocessableEntity, code, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError converts domain and store errors to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	if errors.Is(err, shared.ErrNotFound) {
		h.NotFound(c, "resource not found")
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.ErrorWithCode(c, normalizeDomainCode(domainErr.Code), domainErr.Message)
		return
	}
	h.InternalError(c, "An unexpected error occurred")
}

// normalizeDomainCode maps domain error codes onto API error codes
func normalizeDomainCode(code string) string {
	switch code {
	case "NOT_FOUND":
		return dto.ErrCodeNotFound
	case "ALREADY_EXISTS":
		return dto.ErrCodeConflict
	case "INVALID_INPUT", "INVALID_STATE":
		return dto.ErrCodeInvalidInput
	default:
		return dto.ErrCodeInternal
	}
}
