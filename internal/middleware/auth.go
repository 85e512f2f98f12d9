package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"comment-history-api/internal/response"
)

// Context keys set by Auth
const (
	ContextUserID   = "user_id"
	ContextJWTToken = "jwtToken"
)

// Auth returns a middleware that validates HMAC-signed JWT tokens and stores the caller's id in the context
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header is required")
			return
		}

		// "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}
		tokenString := parts[1]

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "Invalid token claims")
			return
		}

		userID, err := userIDFromClaims(claims)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextJWTToken, tokenString)

		c.Next()
	}
}

// userIDFromClaims accepts "user_id", then "sub", then "uid"
func userIDFromClaims(claims jwt.MapClaims) (uuid.UUID, error) {
	for _, key := range []string{"user_id", "sub", "uid"} {
		raw, ok := claims[key].(string)
		if !ok {
			continue
		}
		userID, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, errInvalidUserID
		}
		return userID, nil
	}
	return uuid.Nil, errMissingUserID
}

type authError string

func (e authError) Error() string { return string(e) }

const (
	errMissingUserID authError = "User ID not found in token"
	errInvalidUserID authError = "Invalid user ID format"
)

func abortUnauthorized(c *gin.Context, message string) {
	response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, message)
	c.Abort()
}
