package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yhsong/finbell/internal/domain"
	"github.com/yhsong/finbell/internal/dto"
	"github.com/yhsong/finbell/internal/utils"
)

const testSecret = "test-secret-key-that-is-at-least-32-characters-long"

func guardedRouter(jwtManager *utils.JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/probe", AuthMiddleware(jwtManager), func(c *gin.Context) {
		userID, _ := currentUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return router
}

func sessionTokenFor(t *testing.T, jwtManager *utils.JWTManager, userID string) string {
	t.Helper()
	token, err := jwtManager.GenerateSessionToken(&domain.User{
		ID:       userID,
		Email:    "user@example.com",
		Nickname: "tester",
	})
	require.NoError(t, err)
	return token
}

func TestAuthMiddlewareBearerHeader(t *testing.T) {
	jwtManager := utils.NewJWTManager(testSecret, time.Hour)
	router := guardedRouter(jwtManager)
	token := sessionTokenFor(t, jwtManager, "user-1")

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "user-1", body["user_id"])
}

func TestAuthMiddlewareAuthenticationCookie(t *testing.T) {
	jwtManager := utils.NewJWTManager(testSecret, time.Hour)
	router := guardedRouter(jwtManager)
	token := sessionTokenFor(t, jwtManager, "user-2")

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.AddCookie(&http.Cookie{Name: "Authentication", Value: token})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "user-2", body["user_id"])
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	jwtManager := utils.NewJWTManager(testSecret, time.Hour)
	router := guardedRouter(jwtManager)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, dto.CodeInvalidToken, body.ErrorCode)
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	jwtManager := utils.NewJWTManager(testSecret, time.Hour)
	router := guardedRouter(jwtManager)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      "user-3",
		"email":    "user@example.com",
		"nickname": "tester",
		"exp":      time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, dto.CodeTokenExpired, body.ErrorCode)
}

func TestAuthMiddlewareGarbageToken(t *testing.T) {
	jwtManager := utils.NewJWTManager(testSecret, time.Hour)
	router := guardedRouter(jwtManager)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, dto.CodeInvalidToken, body.ErrorCode)
}
