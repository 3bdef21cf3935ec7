package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/adsync_backend/config"
	"github.com/mmdatafocus/adsync_backend/utils"
)

// RequireServiceToken validates the bearer token on protected routes. It is
// gated by REQUIRE_SERVICE_AUTH so local setups can run open.
func RequireServiceToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !config.RequireServiceAuth() {
			c.Next()
			return
		}

		auth := strings.TrimSpace(c.Request.Header.Get("Authorization"))
		if !strings.HasPrefix(strings.ToLower(auth), "bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		token := strings.TrimSpace(auth[7:])

		validated, err := utils.JwtValidate(token)
		if err != nil || !validated.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		claim, _ := validated.Claims.(*utils.JwtCustomClaim)
		if claim != nil {
			c.Request = c.Request.WithContext(utils.SetCallerInContext(c.Request.Context(), claim.Subject))
		}
		c.Next()
	}
}
