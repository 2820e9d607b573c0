package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// Timeout attaches a deadline to every request context so store and
// object-storage calls cannot block past d. Cancellation propagates through
// c.Request.Context() into every service method.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
