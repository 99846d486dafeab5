package dto

import (
	"time"

	"ratery_backend/internal/models"
)

// PhotoResponse - фото пользователя
type PhotoResponse struct {
	ID              string             `json:"id"`
	URL             string             `json:"url"`
	ThumbnailURL    string             `json:"thumbnail_url,omitempty"`
	Status          models.PhotoStatus `json:"status"`
	RejectionReason string             `json:"rejection_reason,omitempty"`
	IsActive        bool               `json:"is_active"`
	CreatedAt       time.Time          `json:"created_at"`
}

// PhotoListResponse - список фото с пагинацией
type PhotoListResponse struct {
	Photos     []*PhotoResponse `json:"photos"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// RejectPhotoRequest - отклонение фото модератором
type RejectPhotoRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}
