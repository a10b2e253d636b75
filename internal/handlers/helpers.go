package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hearthlabs/hearth-backend/internal/platform/apierr"
)

// Session handling lives in front of this service; the gateway forwards the
// authenticated user in this header.
const userIDHeader = "X-User-ID"

func writeError(c *gin.Context, e *apierr.Error) {
	status := e.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"error": e.Code})
}

func requireUserID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetHeader(userIDHeader)
	if raw == "" {
		writeError(c, apierr.New(http.StatusUnauthorized, "missing_user_id", nil))
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		writeError(c, apierr.New(http.StatusUnauthorized, "invalid_user_id", err))
		return uuid.Nil, false
	}
	return userID, true
}
