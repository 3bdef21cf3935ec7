package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/adsync_backend/utils"
)

// AuthHeaderMiddleware stashes the raw Authorization header in the request
// context so downstream calls can pass it through to other services.
func AuthHeaderMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")
		if auth != "" {
			c.Request = c.Request.WithContext(utils.SetAuthHeaderInContext(c.Request.Context(), auth))
		}
		c.Next()
	}
}
