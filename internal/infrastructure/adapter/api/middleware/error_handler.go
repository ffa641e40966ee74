package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainerr "github.com/gscube/bulkerpay/internal/domain/error"
	coreport "github.com/gscube/bulkerpay/internal/domain/port/core"
	"github.com/gscube/bulkerpay/internal/infrastructure/adapter/api/dto"
)

// ErrorHandler middleware recovers from panics and returns a 500 response
func ErrorHandler(logger coreport.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered in API request", map[string]any{
					"error":      err,
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
					"client_ip":  c.ClientIP(),
					"request_id": c.GetHeader("X-Request-ID"),
				})

				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(
					domainerr.CodeInternalServer,
					"Internal server error",
				))
			}
		}()

		c.Next()
	}
}
