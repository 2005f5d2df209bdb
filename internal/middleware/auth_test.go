package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procare-io/srportal/internal/auth"
	"github.com/procare-io/srportal/internal/models"
)

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	jwtManager := auth.NewJWTManager("test-secret", "srportal", time.Hour)
	authMiddleware := NewAuthMiddleware(jwtManager, nil)

	token := func(role models.UserRole) string {
		tok, _, err := jwtManager.GenerateToken(&models.User{Email: "user@example.com", Role: role})
		require.NoError(t, err)
		return tok
	}

	newRouter := func(extra ...gin.HandlerFunc) *gin.Engine {
		router := gin.New()
		router.Use(authMiddleware.RequireAuth())
		handlers := append(extra, func(c *gin.Context) {
			claims, _ := GetClaims(c)
			c.JSON(http.StatusOK, gin.H{"email": claims.Email})
		})
		router.GET("/protected", handlers...)
		return router
	}

	do := func(router *gin.Engine, bearer string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("RequireAuth blocks unauthenticated requests", func(t *testing.T) {
		w := do(newRouter(), "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"detail":"Not authenticated","error":"Not authenticated"}`, w.Body.String())
		assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	})

	t.Run("RequireAuth allows authenticated requests", func(t *testing.T) {
		w := do(newRouter(), token(models.RoleCustomer))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "user@example.com")
	})

	t.Run("RequireAuth rejects invalid token", func(t *testing.T) {
		w := do(newRouter(), "invalid.token.here")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Could not validate credentials")
	})

	t.Run("RequireRole blocks unauthorized roles", func(t *testing.T) {
		router := newRouter(authMiddleware.RequireRole(models.RoleAdmin, models.RoleSalesTech))
		assert.Equal(t, http.StatusForbidden, do(router, token(models.RoleCustomer)).Code)
		assert.Equal(t, http.StatusOK, do(router, token(models.RoleSalesTech)).Code)
	})

	t.Run("RequirePermission checks the role table", func(t *testing.T) {
		router := newRouter(authMiddleware.RequirePermission(auth.PermissionCustomerLookup))
		w := do(router, token(models.RoleCustomer))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "Insufficient permissions")
		assert.Equal(t, http.StatusOK, do(router, token(models.RoleAdmin)).Code)
	})
}
