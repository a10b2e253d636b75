package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hearthlabs/hearth-backend/internal/platform/apierr"
	"github.com/hearthlabs/hearth-backend/internal/platform/logger"
	"github.com/hearthlabs/hearth-backend/internal/services"
)

type InsightsHandler struct {
	log     *logger.Logger
	service services.InsightsService
}

func NewInsightsHandler(log *logger.Logger, service services.InsightsService) *InsightsHandler {
	return &InsightsHandler{
		log:     log.With("handler", "InsightsHandler"),
		service: service,
	}
}

// GET /api/children/:childId/insights
func (h *InsightsHandler) GetInsights(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	childID, err := uuid.Parse(c.Param("childId"))
	if err != nil {
		writeError(c, apierr.New(http.StatusBadRequest, "invalid_child_id", err))
		return
	}

	insights := h.service.GetChildInsights(c.Request.Context(), userID, childID)
	c.JSON(http.StatusOK, gin.H{"insights": insights})
}
