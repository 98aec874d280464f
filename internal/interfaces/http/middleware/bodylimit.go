package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rosterly/backend/internal/interfaces/http/dto"
)

// BodyLimit returns a middleware that limits request body size.
// Oversized declared lengths are rejected up front; chunked bodies are
// wrapped so a read past the limit fails mid-stream.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrCodeFileTooLarge, "Request body exceeds maximum allowed size"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
