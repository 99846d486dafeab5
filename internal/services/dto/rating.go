package dto

// NextTargetResponse - следующее фото для оценки
type NextTargetResponse struct {
	QueueItemID    string `json:"queue_item_id"`
	PhotoID        string `json:"photo_id"`
	PhotoURL       string `json:"photo_url"`
	TargetAgeRange string `json:"target_age_range,omitempty"`
	TargetCountry  string `json:"target_country,omitempty"`
	QueueRemaining int64  `json:"queue_remaining"`
}

// EmptyQueueResponse - очередь пуста, оценивать нечего
type EmptyQueueResponse struct {
	Empty   bool   `json:"empty"`
	Message string `json:"message"`
}

// SubmitRatingRequest - выставление оценки
type SubmitRatingRequest struct {
	QueueItemID    string  `json:"queue_item_id" validate:"required"`
	Score          float64 `json:"score" validate:"required,is-rating-score"`
	ViewDurationMs *int64  `json:"view_duration_ms,omitempty" validate:"omitempty,min=0"`
}

// SubmitRatingResponse - результат выставления оценки
type SubmitRatingResponse struct {
	RatingID          string `json:"rating_id"`
	RatingsGivenCount int    `json:"ratings_given_count"`
	QueueRemaining    int64  `json:"queue_remaining"`
}

// SkipTargetRequest - пропуск фото без оценки
type SkipTargetRequest struct {
	QueueItemID string `json:"queue_item_id" validate:"required"`
}
