package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yhsong/finbell/internal/dto"
	"github.com/yhsong/finbell/internal/utils"
)

// sessionCookieName is the cookie the session guard accepts interchangeably
// with the bearer header.
const sessionCookieName = "Authentication"

// sessionToken extracts the session token from the Authorization header or
// the Authentication cookie. The header wins when both are present.
func sessionToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	cookie, err := c.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie
}

// AuthMiddleware validates the session token and adds user info to context
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				ErrorCode: dto.CodeInvalidToken,
				Message:   "authentication required",
			})
			c.Abort()
			return
		}

		claims, err := jwtManager.VerifySessionToken(token)
		if err != nil {
			status, code, message := classify(err)
			c.JSON(status, dto.ErrorResponse{ErrorCode: code, Message: message})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("nickname", claims.Nickname)

		c.Next()
	}
}

// currentUserID returns the authenticated user id set by AuthMiddleware.
func currentUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok
}
