package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", Middleware(testSecret), func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": actor.UserID, "email": EmailFrom(c)})
	})
	r.POST("/internal", ServiceKey("svc-key"), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestMiddlewareAcceptsValidToken(t *testing.T) {
	token, err := GenerateToken(testSecret, "user-1", "anna@example.com", time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	newRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"user-1","email":"anna@example.com"}`, w.Body.String())
}

func TestMiddlewareRejects(t *testing.T) {
	expired, err := GenerateToken(testSecret, "user-1", "", -time.Minute)
	require.NoError(t, err)
	wrongKey, err := GenerateToken("other-secret", "user-1", "", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"missing header", "", "authentication required"},
		{"not bearer", "Basic abc", "authentication required"},
		{"garbage", "Bearer not-a-jwt", "invalid token"},
		{"wrong secret", "Bearer " + wrongKey, "invalid token"},
		{"expired", "Bearer " + expired, "session expired, please log in again"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			newRouter().ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
}

func TestServiceKey(t *testing.T) {
	r := newRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/internal", nil)
	req.Header.Set(InternalKeyHeader, "svc-key")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/internal", nil)
	req.Header.Set(InternalKeyHeader, "wrong")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGenerateTokenNeedsSecret(t *testing.T) {
	_, err := GenerateToken("", "user-1", "", time.Hour)
	assert.Error(t, err)
}
