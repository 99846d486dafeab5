package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ratery_backend/internal/middleware"
	"ratery_backend/internal/services"
)

type StatsHandler struct {
	*BaseHandler
	statsService services.StatsService
}

func NewStatsHandler(base *BaseHandler, statsService services.StatsService) *StatsHandler {
	return &StatsHandler{
		BaseHandler:  base,
		statsService: statsService,
	}
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	stats := r.Group("/stats")
	stats.Use(middleware.AuthMiddleware())
	{
		stats.GET("/me", h.GetMyStats)
	}
}

func (h *StatsHandler) GetMyStats(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.statsService.GetMyStats(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
