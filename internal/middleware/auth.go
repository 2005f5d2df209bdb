package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/procare-io/srportal/internal/auth"
	"github.com/procare-io/srportal/internal/models"
)

const claimsKey = "claims"

type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	rbac       *auth.RBAC
}

func NewAuthMiddleware(jwtManager *auth.JWTManager, rbac *auth.RBAC) *AuthMiddleware {
	if rbac == nil {
		rbac = auth.NewRBAC()
	}
	return &AuthMiddleware{
		jwtManager: jwtManager,
		rbac:       rbac,
	}
}

// RequireAuth rejects requests without a valid bearer token.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Header("WWW-Authenticate", "Bearer")
			AbortWithError(c, http.StatusUnauthorized, "Not authenticated")
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			AbortWithError(c, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		c.Set(claimsKey, claims)
		c.Set("user_email", claims.Email)
		c.Set("user_role", string(claims.Role))
		c.Next()
	}
}

func (m *AuthMiddleware) RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			AbortWithError(c, http.StatusUnauthorized, "Not authenticated")
			return
		}
		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}
		AbortWithError(c, http.StatusForbidden, "Insufficient permissions")
	}
}

func (m *AuthMiddleware) RequirePermission(permission auth.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			AbortWithError(c, http.StatusUnauthorized, "Not authenticated")
			return
		}
		if !m.rbac.HasPermission(claims.Role, permission) {
			AbortWithError(c, http.StatusForbidden, "Insufficient permissions")
			return
		}
		c.Next()
	}
}

// GetClaims returns the claims stored by RequireAuth.
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return ""
}
