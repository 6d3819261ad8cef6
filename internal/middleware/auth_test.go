package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motoyard/motoyard-api/pkg/auth"
)

func setupProtected(t *testing.T) (*gin.Engine, auth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:        "test-secret",
		RefreshSecret: "test-refresh",
		Expiry:        time.Hour,
		RefreshExpiry: time.Hour,
	})
	mw := NewAuthMiddleware(jwtSvc)

	engine := gin.New()
	group := engine.Group("/dealers/:dealerID")
	group.Use(mw.Authenticate(), mw.RequireDealer())
	group.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return engine, jwtSvc
}

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	engine, _ := setupProtected(t)

	req := httptest.NewRequest(http.MethodGet, "/dealers/"+uuid.NewString()+"/ping", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateRejectsGarbageToken(t *testing.T) {
	engine, _ := setupProtected(t)

	req := httptest.NewRequest(http.MethodGet, "/dealers/"+uuid.NewString()+"/ping", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireDealerAllowsOwnResources(t *testing.T) {
	engine, jwtSvc := setupProtected(t)

	dealerID := uuid.New()
	token, err := jwtSvc.GenerateAccessToken(dealerID, "one@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/dealers/"+dealerID.String()+"/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireDealerBlocksCrossTenant(t *testing.T) {
	engine, jwtSvc := setupProtected(t)

	token, err := jwtSvc.GenerateAccessToken(uuid.New(), "one@example.com")
	require.NoError(t, err)

	// Valid token, someone else's dealer id in the path.
	req := httptest.NewRequest(http.MethodGet, "/dealers/"+uuid.NewString()+"/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
