package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ratery_backend/internal/middleware"
	"ratery_backend/internal/models"
	"ratery_backend/internal/services"
	"ratery_backend/internal/services/dto"
	"ratery_backend/pkg/apperrors"
)

type PhotoHandler struct {
	*BaseHandler
	photoService services.PhotoService
}

func NewPhotoHandler(base *BaseHandler, photoService services.PhotoService) *PhotoHandler {
	return &PhotoHandler{
		BaseHandler:  base,
		photoService: photoService,
	}
}

func (h *PhotoHandler) RegisterRoutes(r *gin.RouterGroup) {
	photos := r.Group("/photos")
	photos.Use(middleware.AuthMiddleware())
	{
		photos.POST("", h.Upload)
		photos.GET("/my", h.GetMyPhotos)
	}

	admin := r.Group("/admin/photos")
	admin.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(models.UserRoleAdmin))
	{
		admin.GET("/pending", h.GetPendingModeration)
		admin.POST("/:photoId/approve", h.Approve)
		admin.POST("/:photoId/reject", h.Reject)
	}
}

// Upload принимает multipart-форму с полем "photo"
func (h *PhotoHandler) Upload(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Missing file field 'photo'"))
		return
	}

	resp, err := h.photoService.Upload(c.Request.Context(), h.GetDB(c), userID, file)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *PhotoHandler) GetMyPhotos(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	photos, err := h.photoService.GetMyPhotos(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"photos": photos})
}

// --- Admin handlers ---

func (h *PhotoHandler) GetPendingModeration(c *gin.Context) {
	page, pageSize := ParsePagination(c)

	resp, err := h.photoService.GetPendingModeration(h.GetDB(c), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PhotoHandler) Approve(c *gin.Context) {
	photoID := c.Param("photoId")

	if err := h.photoService.Approve(h.GetDB(c), photoID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Photo approved"})
}

func (h *PhotoHandler) Reject(c *gin.Context) {
	photoID := c.Param("photoId")

	var req dto.RejectPhotoRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.photoService.Reject(h.GetDB(c), photoID, req.Reason); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Photo rejected"})
}
