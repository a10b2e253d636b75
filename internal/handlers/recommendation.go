package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hearthlabs/hearth-backend/internal/platform/apierr"
	"github.com/hearthlabs/hearth-backend/internal/platform/logger"
	"github.com/hearthlabs/hearth-backend/internal/services"
)

type RecommendationHandler struct {
	log     *logger.Logger
	service services.RecommendationService
	cache   services.RecommendationCache
}

func NewRecommendationHandler(log *logger.Logger, service services.RecommendationService, cache services.RecommendationCache) *RecommendationHandler {
	return &RecommendationHandler{
		log:     log.With("handler", "RecommendationHandler"),
		service: service,
		cache:   cache,
	}
}

// GET /api/children/:childId/recommendations?limit=5&faith_mode=false
func (h *RecommendationHandler) GetRecommendations(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	childID, err := uuid.Parse(c.Param("childId"))
	if err != nil {
		writeError(c, apierr.New(http.StatusBadRequest, "invalid_child_id", err))
		return
	}

	faithMode := false
	if raw := c.Query("faith_mode"); raw != "" {
		faithMode, _ = strconv.ParseBool(raw)
	}
	limit := services.DefaultRecommendationLimit
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	ctx := c.Request.Context()
	key := services.CacheKey(userID, childID, faithMode)
	if limit == services.DefaultRecommendationLimit {
		if cached, hit := h.cache.Get(ctx, key); hit {
			c.JSON(http.StatusOK, gin.H{"recommendations": cached, "cached": true})
			return
		}
	}

	result, err := h.service.GetRecommendations(ctx, services.RecommendationRequest{
		UserID:    userID,
		ChildID:   childID,
		FaithMode: faithMode,
		Limit:     limit,
	})
	if err != nil {
		if errors.Is(err, services.ErrFallbackExhausted) {
			writeError(c, apierr.New(http.StatusNotFound, "no_recommendations_available", err))
			return
		}
		writeError(c, apierr.New(http.StatusInternalServerError, "recommendations_failed", err))
		return
	}

	if limit == services.DefaultRecommendationLimit {
		h.cache.Set(ctx, key, result)
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": result, "cached": false})
}
