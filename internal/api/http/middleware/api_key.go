package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/planwerk/cockpit-backend/internal/api/http/response"
)

const HeaderAPIKey = "X-API-Key"

// APIKey rejects requests whose X-API-Key header does not match expected.
// An empty expected key disables the check; config validation refuses that
// in production.
func APIKey(expected string) gin.HandlerFunc {
	want := []byte(expected)

	return func(c *gin.Context) {
		if len(want) == 0 {
			c.Next()
			return
		}

		key := []byte(c.GetHeader(HeaderAPIKey))
		if len(key) == 0 || subtle.ConstantTimeCompare(key, want) != 1 {
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", "invalid API key")
			return
		}

		c.Next()
	}
}
