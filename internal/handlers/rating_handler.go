package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ratery_backend/internal/middleware"
	"ratery_backend/internal/services"
	"ratery_backend/internal/services/dto"
	"ratery_backend/pkg/apperrors"
)

type RatingHandler struct {
	*BaseHandler
	ratingService services.RatingService
}

func NewRatingHandler(base *BaseHandler, ratingService services.RatingService) *RatingHandler {
	return &RatingHandler{
		BaseHandler:   base,
		ratingService: ratingService,
	}
}

func (h *RatingHandler) RegisterRoutes(r *gin.RouterGroup) {
	rate := r.Group("/rate")
	rate.Use(middleware.AuthMiddleware())
	{
		rate.GET("/next", h.NextTarget)
		rate.POST("", h.SubmitRating)
		rate.POST("/skip", h.SkipTarget)
	}
}

// NextTarget выдает следующее фото для оценки. Пустая очередь без
// кандидатов - не ошибка, клиент получает явное пустое состояние.
func (h *RatingHandler) NextTarget(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.ratingService.NextTarget(h.GetDB(c), userID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNoCandidates) {
			c.JSON(http.StatusOK, dto.EmptyQueueResponse{
				Empty:   true,
				Message: "No photos to rate right now, come back later",
			})
			return
		}
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *RatingHandler) SubmitRating(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SubmitRatingRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.ratingService.SubmitRating(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *RatingHandler) SkipTarget(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SkipTargetRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.ratingService.SkipTarget(h.GetDB(c), userID, &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Skipped"})
}
