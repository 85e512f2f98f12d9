package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"comment-history-api/internal/middleware"
	"comment-history-api/internal/response"
)

// currentUserID extracts the authenticated caller set by middleware.Auth.
// On failure it writes a 401 response and returns false.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get(middleware.ContextUserID)
	if !exists {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "User ID not found in context")
		return uuid.Nil, false
	}
	userID, ok := raw.(uuid.UUID)
	if !ok {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid user ID format")
		return uuid.Nil, false
	}
	return userID, true
}

// parseUUIDParam reads a path parameter as a UUID, answering 400 when it is malformed
func parseUUIDParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid "+label)
		return uuid.Nil, false
	}
	return id, true
}
