package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ordersync/backend/internal/interfaces/http/dto"
)

// BodyLimit rejects requests whose declared body exceeds maxBytes and caps
// the reader for bodies without a Content-Length. Zero or less disables it.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(
				dto.GetHTTPStatus(dto.ErrCodeRequestTooLarge),
				dto.NewErrorResponseWithRequestID(
					dto.ErrCodeRequestTooLarge,
					"Request body exceeds maximum allowed size",
					c.GetString(RequestIDKey),
				),
			)
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
