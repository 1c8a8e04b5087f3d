package middleware

import (
	"net/http"
	"strings"

	"storefront/internal/pkg/jwt"
	"storefront/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// AccessCookie carries the access token for clients that cannot attach a
// bearer header.
const AccessCookie = "access_token"

// JWTAuth accepts a bearer token, or the access cookie when no
// Authorization header is sent, and stores user_id and role on the context.
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, code, msg := extractToken(c)
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, code, msg)
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

func extractToken(c *gin.Context) (token, code, msg string) {
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'"
		}
		return strings.TrimSpace(parts[1]), "", ""
	}
	if v, err := c.Cookie(AccessCookie); err == nil && v != "" {
		return v, "", ""
	}
	return "", "AUTH_HEADER_MISSING", "Authentication required"
}
