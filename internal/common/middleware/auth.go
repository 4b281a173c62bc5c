package middleware

import (
	"net/http"
	"strings"

	"github.com/CarNest/CarNest/internal/common/auth"
	"github.com/CarNest/CarNest/internal/common/config"
	"github.com/CarNest/CarNest/internal/common/logger"
	"github.com/gin-gonic/gin"
)

const authInfoKey = "carnest/auth-info"

// AuthInfo is the minimal identity parsed from a JWT, stored on the request
// context for handlers.
type AuthInfo struct {
	Subject string // user ID
	Role    string // renter / owner
}

// AuthFromContext returns the identity attached by JWTAuth.
func AuthFromContext(c *gin.Context) (AuthInfo, bool) {
	v, ok := c.Get(authInfoKey)
	if !ok {
		return AuthInfo{}, false
	}
	ai, ok := v.(AuthInfo)
	return ai, ok
}

// SetAuthInfo attaches an identity to the request context. Exposed for tests.
func SetAuthInfo(c *gin.Context, ai AuthInfo) {
	c.Set(authInfoKey, ai)
}

// JWTAuth validates the bearer token in the Authorization header:
// - paths listed in cfg.PublicPaths pass through untouched
// - HS256 signature plus exp/nbf (and optional iss/aud) are checked
// - the parsed identity is stored on the context for handlers
func JWTAuth(cfg config.AuthConfig, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled || isPublicPath(cfg.PublicPaths, c.Request.URL.Path) {
			c.Next()
			return
		}
		if strings.TrimSpace(cfg.JWTSecret) == "" {
			if log != nil {
				log.Warn("auth enabled but jwt_secret is empty")
			}
			abortJSON(c, http.StatusUnauthorized, "auth not configured")
			return
		}

		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if raw == "" {
			abortJSON(c, http.StatusUnauthorized, "missing authorization")
			return
		}
		tokenStr := raw
		if strings.HasPrefix(strings.ToLower(tokenStr), "bearer ") {
			tokenStr = strings.TrimSpace(tokenStr[len("bearer "):])
		}
		if tokenStr == "" {
			abortJSON(c, http.StatusUnauthorized, "invalid authorization")
			return
		}

		claims, err := auth.ParseAccessToken(cfg, tokenStr)
		if err != nil {
			abortJSON(c, http.StatusUnauthorized, "invalid token")
			return
		}

		SetAuthInfo(c, AuthInfo{
			Subject: claims.Subject,
			Role:    claims.Role,
		})
		c.Next()
	}
}

// RequireRole gates a route on the role carried in the token. Routes without
// a role requirement only need JWTAuth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ai, ok := AuthFromContext(c)
		if !ok || strings.TrimSpace(ai.Subject) == "" {
			abortJSON(c, http.StatusUnauthorized, "missing auth")
			return
		}
		if !strings.EqualFold(strings.TrimSpace(ai.Role), role) {
			abortJSON(c, http.StatusForbidden, "Access denied")
			return
		}
		c.Next()
	}
}

func abortJSON(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

// isPublicPath matches exact entries; entries ending in "/" match as path
// prefixes, which is how static mounts like /images/ are whitelisted.
func isPublicPath(public []string, path string) bool {
	if path == "" || len(public) == 0 {
		return false
	}
	for _, p := range public {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.HasSuffix(p, "/") {
			if strings.HasPrefix(path, p) {
				return true
			}
			continue
		}
		if p == path {
			return true
		}
	}
	return false
}
