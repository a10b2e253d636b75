package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hearthlabs/hearth-backend/internal/platform/apierr"
	"github.com/hearthlabs/hearth-backend/internal/platform/logger"
	"github.com/hearthlabs/hearth-backend/internal/services"
)

type TipsHandler struct {
	log     *logger.Logger
	service services.TipsService
}

func NewTipsHandler(log *logger.Logger, service services.TipsService) *TipsHandler {
	return &TipsHandler{
		log:     log.With("handler", "TipsHandler"),
		service: service,
	}
}

// GET /api/children/:childId/tips
func (h *TipsHandler) GetTips(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	childID, err := uuid.Parse(c.Param("childId"))
	if err != nil {
		writeError(c, apierr.New(http.StatusBadRequest, "invalid_child_id", err))
		return
	}

	tips, err := h.service.GetTips(c.Request.Context(), userID, childID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(c, apierr.New(http.StatusNotFound, "child_not_found", err))
			return
		}
		writeError(c, apierr.New(http.StatusInternalServerError, "tips_failed", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"tips": tips})
}
